package models

import "time"

// PasswordResetToken is a single-use reset token. A user has at most one
// active token; requesting another replaces it.
type PasswordResetToken struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	UserID    uint      `gorm:"not null;uniqueIndex" json:"-"`
	Token     string    `gorm:"not null;uniqueIndex" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"-"`
	CreatedAt time.Time `json:"-"`
}

// Expired reports whether the token is past its expiry.
func (t *PasswordResetToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
