package domain

import "time"

type User struct {
	ID                 string
	Username           string
	NormalizedUsername string // upper-invariant, unique
	Email              string
	NormalizedEmail    string // upper-invariant, unique when set
	PasswordHash       string // argon2 encoded, never leaves the identity manager
	FirstName          string
	LastName           string
	PhoneNumber        string

	Enabled           bool
	LockoutEnabled    bool
	LockoutEnd        *time.Time // nullable
	AccessFailedCount int

	// ConcurrencyStamp changes on every successful write. Callers echo it
	// back to prove they are updating the version they read.
	ConcurrencyStamp string

	RoleID string
	Role   string // resolved role name, empty when unassigned

	CreatedAt  time.Time
	CreatedBy  string
	UpdatedAt  time.Time
	ModifiedBy string
}
