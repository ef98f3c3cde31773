package domain

import (
	"time"
)

// User represents an account in the system. Accounts are created either via
// email/password registration or on first Google sign-in, in which case
// PasswordHash stays nil and GoogleSub carries the Google subject identifier.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"not null" json:"name"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash *string   `json:"-"` // Never expose this via JSON
	GoogleSub    *string   `gorm:"uniqueIndex" json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// HasPassword reports whether the account can authenticate with a password.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}
