package domain

import (
	"errors"
	"time"
)

// ErrContactNotFound is returned both when a contact does not exist and
// when it belongs to another user, so callers cannot tell the two apart.
var ErrContactNotFound = errors.New("contact not found")

type Contact struct {
	ID       string
	OwnerID  string
	Name     string
	Email    string
	Phone    string
	Birthday *time.Time
	About    *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// BirthdayReminder is one row of the digest query: a contact whose
// birthday falls inside the digest window, joined with its owner's email.
type BirthdayReminder struct {
	OwnerEmail  string
	ContactName string
	Birthday    time.Time
}
