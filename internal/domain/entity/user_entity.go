package entity

import (
	"time"
)

// User is the registered identity. Passwords are stored as one-way digests
// in PasswordHash; the plaintext never reaches this struct.
//
// Email is matched exactly (case-sensitive) for both uniqueness and login.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	PhoneNumber  string
	City         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DisplayName joins first and last name the way public listings show it.
func (u User) DisplayName() string {
	return u.FirstName + " " + u.LastName
}
