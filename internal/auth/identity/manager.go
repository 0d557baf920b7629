// Package identity owns user credentials on top of the store: password
// hashing, normalization, lockout bookkeeping, role assignment and reset
// token issue/consume. Callers never see a raw password hash.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/workouttracker/internal/auth/domain"
	"github.com/aussiebroadwan/workouttracker/internal/auth/store"
	"github.com/aussiebroadwan/workouttracker/pkg/cryptox"
	"github.com/aussiebroadwan/workouttracker/pkg/idx"
)

// DefaultResetTokenTTL bounds how long an issued reset token stays valid.
const DefaultResetTokenTTL = 24 * time.Hour

// UserStore is the capability the authentication services depend on.
// Manager is the production implementation.
type UserStore interface {
	FindByID(ctx context.Context, id string) (domain.User, error)
	FindByUsername(ctx context.Context, username string) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	IsEmpty(ctx context.Context) (bool, error)

	// UsernameTaken / EmailTaken check a normalized value against every
	// user except excludeID.
	UsernameTaken(ctx context.Context, normalized, excludeID string) (bool, error)
	EmailTaken(ctx context.Context, normalized, excludeID string) (bool, error)

	// Create hashes password and inserts u, returning the stored record.
	Create(ctx context.Context, u domain.User, password string) (domain.User, error)
	VerifyPassword(ctx context.Context, u domain.User, password string) bool

	// Update persists profile fields of u if expectedStamp is still current,
	// rotating the stamp. A mismatch yields store.ErrConflict.
	Update(ctx context.Context, u domain.User, expectedStamp string) (domain.User, error)
	Delete(ctx context.Context, id string) error

	// SetAccessState persists failed-attempt and lockout fields.
	SetAccessState(ctx context.Context, userID string, failedCount int, lockoutEnabled bool, lockoutEnd *time.Time) error

	AssignRole(ctx context.Context, userID, roleName string) error
	RemoveRole(ctx context.Context, userID, roleName string) error
	RemoveRoles(ctx context.Context, userID string) error
	RolesOf(ctx context.Context, userID string) ([]string, error)

	GenerateResetToken(ctx context.Context, u domain.User) (string, error)

	// ConsumeResetToken burns token and sets newPassword. A missing, used,
	// expired or foreign token yields store.ErrNotFound.
	ConsumeResetToken(ctx context.Context, u domain.User, token, newPassword string) error

	// WithinTx runs fn against a UserStore bound to one transaction. If fn
	// fails every write made through it is discarded.
	WithinTx(ctx context.Context, fn func(users UserStore) error) error
}

type Options struct {
	Hasher *cryptox.Hasher

	// ResetTokens overrides where reset tokens live. Nil keeps them in the
	// main store, inside the same transaction as the password change.
	ResetTokens   store.ResetTokens
	ResetTokenTTL time.Duration

	Now func() time.Time
}

type Manager struct {
	store  store.Store
	inTx   bool
	hasher *cryptox.Hasher
	resets store.ResetTokens
	ttl    time.Duration
	now    func() time.Time
}

var _ UserStore = (*Manager)(nil)

func NewManager(st store.Store, opts Options) (*Manager, error) {
	if opts.Hasher == nil {
		return nil, errors.New("identity: hasher is required")
	}
	if opts.ResetTokenTTL <= 0 {
		opts.ResetTokenTTL = DefaultResetTokenTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Manager{
		store:  st,
		hasher: opts.Hasher,
		resets: opts.ResetTokens,
		ttl:    opts.ResetTokenTTL,
		now:    opts.Now,
	}, nil
}

// Normalize folds an identifier for uniqueness comparisons.
func Normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func (m *Manager) bind(tx store.Tx) *Manager {
	bound := *m
	bound.store = tx
	bound.inTx = true
	return &bound
}

func (m *Manager) WithinTx(ctx context.Context, fn func(users UserStore) error) error {
	return m.atomically(ctx, func(bound *Manager) error { return fn(bound) })
}

// atomically joins the current transaction or opens a new one.
func (m *Manager) atomically(ctx context.Context, fn func(bound *Manager) error) error {
	if m.inTx {
		return fn(m)
	}
	return m.store.WithTx(ctx, func(tx store.Tx) error {
		return fn(m.bind(tx))
	})
}

func (m *Manager) resetTokens() store.ResetTokens {
	if m.resets != nil {
		return m.resets
	}
	return m.store.ResetTokens()
}

func (m *Manager) FindByID(ctx context.Context, id string) (domain.User, error) {
	return m.store.Users().GetUserByID(ctx, id)
}

func (m *Manager) FindByUsername(ctx context.Context, username string) (domain.User, error) {
	return m.store.Users().GetUserByNormalizedUsername(ctx, Normalize(username))
}

func (m *Manager) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	return m.store.Users().GetUserByNormalizedEmail(ctx, Normalize(email))
}

func (m *Manager) List(ctx context.Context) ([]domain.User, error) {
	return m.store.Users().ListUsers(ctx)
}

func (m *Manager) IsEmpty(ctx context.Context) (bool, error) {
	return m.store.Users().IsEmpty(ctx)
}

func (m *Manager) UsernameTaken(ctx context.Context, normalized, excludeID string) (bool, error) {
	return m.store.Users().ExistsNormalizedUsername(ctx, normalized, excludeID)
}

func (m *Manager) EmailTaken(ctx context.Context, normalized, excludeID string) (bool, error) {
	return m.store.Users().ExistsNormalizedEmail(ctx, normalized, excludeID)
}

func (m *Manager) Create(ctx context.Context, u domain.User, password string) (domain.User, error) {
	hash, err := m.hasher.Hash(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := m.now().UTC()
	if u.ID == "" {
		u.ID = idx.NewAt(now).String()
	}
	u.NormalizedUsername = Normalize(u.Username)
	u.NormalizedEmail = Normalize(u.Email)
	u.PasswordHash = hash
	u.ConcurrencyStamp = idx.NewStamp()
	u.CreatedAt = now
	u.UpdatedAt = now
	if u.ModifiedBy == "" {
		u.ModifiedBy = u.CreatedBy
	}

	if err := m.store.Users().CreateUser(ctx, u); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

func (m *Manager) VerifyPassword(_ context.Context, u domain.User, password string) bool {
	return m.hasher.Verify(password, u.PasswordHash) == nil
}

func (m *Manager) Update(ctx context.Context, u domain.User, expectedStamp string) (domain.User, error) {
	u.NormalizedEmail = Normalize(u.Email)
	u.ConcurrencyStamp = idx.NewStamp()
	u.UpdatedAt = m.now().UTC()

	if err := m.store.Users().UpdateUser(ctx, u, expectedStamp); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.store.Users().DeleteUser(ctx, id)
}

// SetAccessState rotates the stamp but is not itself guarded by it:
// concurrent logins race and the last write wins.
func (m *Manager) SetAccessState(
	ctx context.Context,
	userID string,
	failedCount int,
	lockoutEnabled bool,
	lockoutEnd *time.Time,
) error {
	return m.store.Users().UpdateAccessState(ctx, userID, failedCount, lockoutEnabled, lockoutEnd, idx.NewStamp())
}

func (m *Manager) AssignRole(ctx context.Context, userID, roleName string) error {
	role, err := m.store.Roles().GetRoleByName(ctx, roleName)
	if err != nil {
		return fmt.Errorf("role %q: %w", roleName, err)
	}
	return m.store.Users().AddUserRole(ctx, userID, role.ID)
}

func (m *Manager) RemoveRole(ctx context.Context, userID, roleName string) error {
	role, err := m.store.Roles().GetRoleByName(ctx, roleName)
	if err != nil {
		return fmt.Errorf("role %q: %w", roleName, err)
	}
	return m.store.Users().RemoveUserRole(ctx, userID, role.ID)
}

func (m *Manager) RemoveRoles(ctx context.Context, userID string) error {
	return m.store.Users().RemoveUserRoles(ctx, userID)
}

func (m *Manager) RolesOf(ctx context.Context, userID string) ([]string, error) {
	roles, err := m.store.Users().ListUserRoles(ctx, userID)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = r.Name
	}
	return names, nil
}

func (m *Manager) GenerateResetToken(ctx context.Context, u domain.User) (string, error) {
	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return "", err
	}

	now := m.now().UTC()
	err = m.resetTokens().CreateResetToken(ctx, domain.ResetToken{
		ID:        idx.NewAt(now).String(),
		UserID:    u.ID,
		TokenHash: cryptox.FingerprintToken(token),
		ExpiresAt: now.Add(m.ttl),
		CreatedAt: now,
	})
	if err != nil {
		return "", fmt.Errorf("save reset token: %w", err)
	}
	return token, nil
}

// ConsumeResetToken burns the token and sets the new password hash in one
// transaction. With an external token store the burn happens first, so a
// failed password write still spends the token.
func (m *Manager) ConsumeResetToken(ctx context.Context, u domain.User, token, newPassword string) error {
	hash, err := m.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	fingerprint := cryptox.FingerprintToken(token)

	return m.atomically(ctx, func(bound *Manager) error {
		// 1. Burn the token; only one caller can win this.
		now := bound.now()
		if err := bound.resetTokens().ConsumeResetToken(ctx, u.ID, fingerprint, now); err != nil {
			return err
		}

		// 2. Swap the password and rotate the stamp.
		return bound.store.Users().UpdatePasswordHash(ctx, u.ID, hash, idx.NewStamp(), u.Email, now)
	})
}
