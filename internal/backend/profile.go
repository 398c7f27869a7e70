package backend

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// Local profile validation failures.
var (
	ErrNameTooShort      = errors.New("name must be at least 2 characters")
	ErrCurrentPassword   = errors.New("current password required")
	ErrPasswordTooShort  = errors.New("password too short")
	ErrPasswordsMismatch = errors.New("passwords mismatch")
)

// MinPasswordLength is the shortest password the backend accepts.
const MinPasswordLength = 6

// Validate checks an edited profile before it is sent.
func (p Profile) Validate() error {
	if utf8.RuneCountInString(strings.TrimSpace(p.Name)) < 2 {
		return ErrNameTooShort
	}
	return nil
}

// ValidatePasswordChange checks a password change before it is sent.
func ValidatePasswordChange(current, next, confirm string) error {
	switch {
	case current == "":
		return ErrCurrentPassword
	case utf8.RuneCountInString(next) < MinPasswordLength:
		return ErrPasswordTooShort
	case next != confirm:
		return ErrPasswordsMismatch
	}
	return nil
}
