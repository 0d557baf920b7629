package domain

import "time"

// ResetToken is the persisted half of a password reset token. Only the
// fingerprint of the opaque value is stored.
type ResetToken struct {
	ID        string
	UserID    string
	TokenHash string // base64url SHA-256 of the opaque token
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}
