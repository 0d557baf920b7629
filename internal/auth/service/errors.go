package service

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrAccountDisabled    = errors.New("account disabled")
	ErrAccountLocked      = errors.New("account locked")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrStaleObjectState   = errors.New("stale object state")

	ErrDuplicateIdentifier = errors.New("duplicate identifier")

	ErrMailNotConfigured = errors.New("mail not configured")
	ErrMailDisabled      = errors.New("mail disabled")

	// ErrConfiguration marks a deployment fault: a missing key, a missing
	// seeded role. It is never a caller mistake.
	ErrConfiguration = errors.New("configuration error")

	ErrUserDoesNotExist = errors.New("user does not exist")
	ErrUserNotFound     = errors.New("user not found")
	ErrRoleNotFound     = errors.New("role not found")
	ErrValidation       = errors.New("validation failed")
)

// AccountLockedError carries the end of the lockout window.
type AccountLockedError struct {
	Until time.Time
}

func (e *AccountLockedError) Error() string {
	return fmt.Sprintf("account locked until %s", e.Until.UTC().Format(time.RFC3339))
}

func (e *AccountLockedError) Unwrap() error { return ErrAccountLocked }

// Identifier fields checked for uniqueness.
const (
	FieldUsername = "username"
	FieldEmail    = "email"
)

// DuplicateIdentifierError names the field and value that collided. Reason
// tells which stored field it collided with, so a username that equals an
// existing email is reported as such.
type DuplicateIdentifierError struct {
	Field  string
	Value  string
	Reason string
}

func (e *DuplicateIdentifierError) Error() string {
	return fmt.Sprintf("%s %q %s", e.Field, e.Value, e.Reason)
}

func (e *DuplicateIdentifierError) Unwrap() error { return ErrDuplicateIdentifier }

// ValidationError maps field names to messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(e.Fields))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }
