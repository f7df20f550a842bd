package models

import "time"

// Session stores user login sessions (for logout, invalidation, audit).
// Expiry and revocation are checked against the current clock on every
// authenticated request, never cached.
type Session struct {
	ID        string    `gorm:"primaryKey;size:36"` // UUID
	UserID    string    `gorm:"size:36;index;not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
	Revoked   bool      `gorm:"index;not null"`
	CreatedAt time.Time

	User User `gorm:"constraint:OnDelete:CASCADE"`
}

// Live reports whether the session can still authenticate requests at
// the given instant. A session expires the moment now passes ExpiresAt,
// with no grace window.
func (s *Session) Live(now time.Time) bool {
	return !s.Revoked && now.Before(s.ExpiresAt)
}
