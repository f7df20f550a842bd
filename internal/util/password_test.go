package util

import (
	"strings"
	"testing"
	"time"
)

func TestHashPassword(t *testing.T) {
	password := "MyPassword123"

	hashed, err := HashPassword(password, 4)
	if err != nil {
		t.Fatalf("HashPassword error = %v, want nil", err)
	}
	if !strings.HasPrefix(hashed, "$2") {
		t.Errorf("hash %q is not a bcrypt digest", hashed)
	}

	// empty passwords are rejected
	if _, err := HashPassword("", 4); err == nil {
		t.Error("HashPassword(\"\") error = nil, want error")
	}

	// same password must produce different digests (random salt)
	hashed2, _ := HashPassword(password, 4)
	if hashed == hashed2 {
		t.Error("two hashes of the same password are identical, want distinct salts")
	}
}

func TestHashPassword_CostClamped(t *testing.T) {
	// out-of-range costs fall back to the bcrypt default instead of failing
	if _, err := HashPassword("Password1", 99); err != nil {
		t.Errorf("HashPassword with cost 99 error = %v, want nil", err)
	}
	if _, err := HashPassword("Password1", -1); err != nil {
		t.Errorf("HashPassword with cost -1 error = %v, want nil", err)
	}
}

func TestCheckPassword(t *testing.T) {
	password := "TestPass456"
	hashed, _ := HashPassword(password, 4)

	if !CheckPassword(password, hashed) {
		t.Error("correct password did not verify")
	}
	if CheckPassword("WrongPass", hashed) {
		t.Error("wrong password verified")
	}
	if CheckPassword("", hashed) {
		t.Error("empty password verified")
	}
	if CheckPassword(password, "") {
		t.Error("empty hash verified")
	}
	if CheckPassword(password, "invalid-format") {
		t.Error("garbage hash verified")
	}
}

func TestIsStrongPassword(t *testing.T) {
	cases := []struct {
		pwd  string
		want bool
	}{
		{"Password1", true},
		{"Aa1aaaaa", true},
		{"short1A", false},             // < 8
		{"alllowercase1", false},       // no upper
		{"ALLUPPERCASE1", false},       // no lower
		{"NoDigitsHere", false},        // no digit
		{"", false},
		{strings.Repeat("Aa1", 30), false}, // > 72
	}

	for _, tc := range cases {
		if got := IsStrongPassword(tc.pwd); got != tc.want {
			t.Errorf("IsStrongPassword(%q) = %v, want %v", tc.pwd, got, tc.want)
		}
	}
}

func TestBurnPasswordCheck(t *testing.T) {
	// must not panic and must take a bcrypt-comparison amount of time
	start := time.Now()
	BurnPasswordCheck("whatever")
	if time.Since(start) > 5*time.Second {
		t.Error("BurnPasswordCheck took unreasonably long")
	}
}
