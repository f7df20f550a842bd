package util

import (
	"fmt"
	"regexp"
	"strings"
)

var emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail checks basic email shape and length.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("email is empty")
	}
	if len(email) > 255 {
		return fmt.Errorf("email too long, max 255 characters")
	}
	if !emailRe.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ValidateName checks a user or workspace display name (1-100 characters).
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("name is empty")
	}
	if len(name) > 100 {
		return fmt.Errorf("name too long, max 100 characters")
	}
	return nil
}

// ValidateDatasetName checks a dataset name (1-200 characters).
func ValidateDatasetName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("dataset name is empty")
	}
	if len(name) > 200 {
		return fmt.Errorf("dataset name too long, max 200 characters")
	}
	return nil
}

// ValidateRowCount rejects negative dataset row counts.
func ValidateRowCount(rowCount int64) error {
	if rowCount < 0 {
		return fmt.Errorf("row_count must be non-negative, got %d", rowCount)
	}
	return nil
}
