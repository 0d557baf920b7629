package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/workouttracker/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrConflict is returned by guarded writes when the stored concurrency
	// stamp no longer matches the one the caller read.
	ErrConflict = errors.New("store: concurrency stamp mismatch")

	// ErrNestedTx is returned when a Tx-scoped store is asked to begin
	// another transaction.
	ErrNestedTx = errors.New("store: nested transactions are not supported")
)

// Store is the root data access interface. Concrete drivers implement this.
// It exposes sub-repositories to keep concerns tidy and testable, and so a
// Tx-scoped store can never start a nested transaction.
type Store interface {
	Users() Users
	Roles() Roles
	ResetTokens() ResetTokens
	SmtpSettings() SmtpSettings

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)
	GetUserByNormalizedUsername(ctx context.Context, normalized string) (domain.User, error)
	GetUserByNormalizedEmail(ctx context.Context, normalized string) (domain.User, error)

	// ListUsers returns every user ordered by username.
	ListUsers(ctx context.Context) ([]domain.User, error)

	// CreateUser inserts a new user. A duplicate normalized username or
	// email yields ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateUser writes the profile fields of u and stores u.ConcurrencyStamp
	// as the new stamp, but only if the row still carries expectedStamp.
	// Otherwise it returns ErrConflict.
	UpdateUser(ctx context.Context, u domain.User, expectedStamp string) error

	// UpdateAccessState persists lockout bookkeeping. Last write wins.
	UpdateAccessState(ctx context.Context, userID string, failedCount int, lockoutEnabled bool, lockoutEnd *time.Time, stamp string) error

	// UpdatePasswordHash sets the password hash, rotates the stamp and
	// records the actor, stamping updated_at with at.
	UpdatePasswordHash(ctx context.Context, userID, hash, stamp, modifiedBy string, at time.Time) error

	// DeleteUser cascades to user_roles and reset_tokens.
	DeleteUser(ctx context.Context, userID string) error

	// IsEmpty returns true if there are no users.
	IsEmpty(ctx context.Context) (bool, error)

	// ExistsNormalizedUsername / ExistsNormalizedEmail report whether any
	// user other than excludeID holds the value. excludeID may be empty.
	ExistsNormalizedUsername(ctx context.Context, normalized, excludeID string) (bool, error)
	ExistsNormalizedEmail(ctx context.Context, normalized, excludeID string) (bool, error)

	AddUserRole(ctx context.Context, userID, roleID string) error
	RemoveUserRole(ctx context.Context, userID, roleID string) error
	RemoveUserRoles(ctx context.Context, userID string) error

	// ListUserRoles returns the roles assigned to a user, ordered by name.
	ListUserRoles(ctx context.Context, userID string) ([]domain.Role, error)
}

type Roles interface {
	// GetRoleByName matches case-insensitively.
	GetRoleByName(ctx context.Context, name string) (domain.Role, error)

	// ListAll returns all roles ordered by name.
	ListAll(ctx context.Context) ([]domain.Role, error)
}

// ResetTokens persists password reset token fingerprints. The sqlite driver
// implements it on the main database; the redis driver is an alternative
// backend selected by configuration.
type ResetTokens interface {
	CreateResetToken(ctx context.Context, t domain.ResetToken) error

	// ConsumeResetToken marks the unexpired, unused token for userID as used.
	// Any other state yields ErrNotFound.
	ConsumeResetToken(ctx context.Context, userID, tokenHash string, now time.Time) error

	// DeleteExpiredResetTokens removes expired and used tokens.
	DeleteExpiredResetTokens(ctx context.Context, now time.Time) (int64, error)
}

type SmtpSettings interface {
	// GetSmtpSettings returns ErrNotFound when nothing has been saved.
	GetSmtpSettings(ctx context.Context) (domain.SmtpSettings, error)

	// UpsertSmtpSettings replaces the single settings row.
	UpsertSmtpSettings(ctx context.Context, s domain.SmtpSettings) error
}
