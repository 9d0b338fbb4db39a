package domain

import (
	"errors"
	"time"
)

var (
	ErrEmailTaken         = errors.New("account with this email already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("token is invalid or expired")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrAlreadyVerified    = errors.New("email already verified")
)

type User struct {
	ID           string
	Email        string
	PasswordHash string
	IsVerified   bool
	// RefreshToken holds the single currently-valid refresh token,
	// nil when the user has no active session.
	RefreshToken *string
	AvatarURL    *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
