package domain

import "time"

// Built-in roles seeded by the initial migration.
const (
	RoleAdmin = "Admin"
	RoleUser  = "User"
)

type Role struct {
	ID        string
	Name      string
	CreatedAt time.Time
}
