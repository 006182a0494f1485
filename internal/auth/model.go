package auth

import (
	"errors"
	"time"
)

// Admin is a back-office user who manages listings and leads.
type Admin struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

var (
	// ErrInvalidCredentials covers both unknown emails and wrong
	// passwords, so login responses never reveal which one it was.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAdminNotFound is returned when no admin matches the lookup.
	ErrAdminNotFound = errors.New("admin not found")

	// ErrSessionNotFound is returned for unknown or expired session tokens.
	ErrSessionNotFound = errors.New("session not found")
)
