package sqlite_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/workouttracker/internal/auth/domain"
	"github.com/aussiebroadwan/workouttracker/internal/auth/store"
	"github.com/aussiebroadwan/workouttracker/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/workouttracker/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())
	return s
}

func newUser(username, email string) domain.User {
	now := time.Now().UTC()
	return domain.User{
		ID:                 idx.New().String(),
		Username:           username,
		NormalizedUsername: strings.ToUpper(username),
		Email:              email,
		NormalizedEmail:    strings.ToUpper(email),
		PasswordHash:       "hash",
		Enabled:            true,
		ConcurrencyStamp:   idx.NewStamp(),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

func TestSeededRoles(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	roles, err := s.Roles().ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, roles, 2)
	require.Equal(t, domain.RoleAdmin, roles[0].Name)
	require.Equal(t, domain.RoleUser, roles[1].Name)

	role, err := s.Roles().GetRoleByName(ctx, "user")
	require.NoError(t, err)
	require.Equal(t, domain.RoleUser, role.Name)

	_, err = s.Roles().GetRoleByName(ctx, "Coach")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestUsersCRUD(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	empty, err := s.Users().IsEmpty(ctx)
	require.NoError(t, err)
	require.True(t, empty)

	u := newUser("alice", "alice@example.com")
	require.NoError(t, s.Users().CreateUser(ctx, u))

	role, err := s.Roles().GetRoleByName(ctx, domain.RoleUser)
	require.NoError(t, err)
	require.NoError(t, s.Users().AddUserRole(ctx, u.ID, role.ID))

	t.Run("lookups resolve the role", func(t *testing.T) {
		got, err := s.Users().GetUserByNormalizedUsername(ctx, "ALICE")
		require.NoError(t, err)
		require.Equal(t, u.ID, got.ID)
		require.Equal(t, domain.RoleUser, got.Role)
		require.Equal(t, role.ID, got.RoleID)
		require.True(t, got.Enabled)
		require.Nil(t, got.LockoutEnd)

		got, err = s.Users().GetUserByNormalizedEmail(ctx, "ALICE@EXAMPLE.COM")
		require.NoError(t, err)
		require.Equal(t, u.ID, got.ID)

		_, err = s.Users().GetUserByID(ctx, "missing")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("duplicates are rejected", func(t *testing.T) {
		dup := newUser("ALICE", "other@example.com")
		require.ErrorIs(t, s.Users().CreateUser(ctx, dup), store.ErrAlreadyExists)

		dup = newUser("alice2", "Alice@Example.com")
		require.ErrorIs(t, s.Users().CreateUser(ctx, dup), store.ErrAlreadyExists)
	})

	t.Run("users without email do not collide", func(t *testing.T) {
		require.NoError(t, s.Users().CreateUser(ctx, newUser("noemail1", "")))
		require.NoError(t, s.Users().CreateUser(ctx, newUser("noemail2", "")))
	})

	t.Run("exists checks honour exclusion", func(t *testing.T) {
		found, err := s.Users().ExistsNormalizedUsername(ctx, "ALICE", "")
		require.NoError(t, err)
		require.True(t, found)

		found, err = s.Users().ExistsNormalizedUsername(ctx, "ALICE", u.ID)
		require.NoError(t, err)
		require.False(t, found)

		found, err = s.Users().ExistsNormalizedEmail(ctx, "ALICE@EXAMPLE.COM", "")
		require.NoError(t, err)
		require.True(t, found)

		found, err = s.Users().ExistsNormalizedEmail(ctx, "", "")
		require.NoError(t, err)
		require.False(t, found)
	})

	t.Run("list orders by username", func(t *testing.T) {
		users, err := s.Users().ListUsers(ctx)
		require.NoError(t, err)
		require.Len(t, users, 3)
		require.Equal(t, "alice", users[0].Username)
	})
}

func TestUpdateUserConcurrencyStamp(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	u := newUser("bob", "bob@example.com")
	require.NoError(t, s.Users().CreateUser(ctx, u))

	oldStamp := u.ConcurrencyStamp
	u.FirstName = "Bob"
	u.ConcurrencyStamp = idx.NewStamp()
	require.NoError(t, s.Users().UpdateUser(ctx, u, oldStamp))

	got, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "Bob", got.FirstName)
	require.Equal(t, u.ConcurrencyStamp, got.ConcurrencyStamp)

	// A writer still holding the old stamp loses.
	stale := u
	stale.LastName = "Builder"
	stale.ConcurrencyStamp = idx.NewStamp()
	require.ErrorIs(t, s.Users().UpdateUser(ctx, stale, oldStamp), store.ErrConflict)

	missing := newUser("ghost", "")
	require.ErrorIs(t, s.Users().UpdateUser(ctx, missing, missing.ConcurrencyStamp), store.ErrNotFound)
}

func TestAccessStateAndPassword(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	u := newUser("carol", "")
	require.NoError(t, s.Users().CreateUser(ctx, u))

	until := time.Now().Add(30 * time.Minute).UTC().Truncate(time.Second)
	require.NoError(t, s.Users().UpdateAccessState(ctx, u.ID, 3, true, &until, "s2"))

	got, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, 3, got.AccessFailedCount)
	require.True(t, got.LockoutEnabled)
	require.NotNil(t, got.LockoutEnd)
	require.True(t, until.Equal(*got.LockoutEnd))
	require.Equal(t, "s2", got.ConcurrencyStamp)

	changedAt := time.Date(2031, 3, 4, 5, 6, 7, 0, time.UTC)
	require.NoError(t, s.Users().UpdatePasswordHash(ctx, u.ID, "new-hash", "s3", "carol", changedAt))
	got, err = s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "new-hash", got.PasswordHash)
	require.Equal(t, "carol", got.ModifiedBy)
	require.True(t, changedAt.Equal(got.UpdatedAt), "updated_at comes from the caller")

	require.ErrorIs(t, s.Users().UpdateAccessState(ctx, "missing", 0, false, nil, "x"), store.ErrNotFound)
}

func TestResetTokens(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	u := newUser("dave", "dave@example.com")
	require.NoError(t, s.Users().CreateUser(ctx, u))

	now := time.Now().UTC()
	live := domain.ResetToken{ID: idx.New().String(), UserID: u.ID, TokenHash: "live", ExpiresAt: now.Add(time.Hour), CreatedAt: now}
	expired := domain.ResetToken{ID: idx.New().String(), UserID: u.ID, TokenHash: "expired", ExpiresAt: now.Add(-time.Minute), CreatedAt: now}
	require.NoError(t, s.ResetTokens().CreateResetToken(ctx, live))
	require.NoError(t, s.ResetTokens().CreateResetToken(ctx, expired))

	require.ErrorIs(t, s.ResetTokens().ConsumeResetToken(ctx, "other-user", "live", now), store.ErrNotFound)
	require.NoError(t, s.ResetTokens().ConsumeResetToken(ctx, u.ID, "live", now))
	require.ErrorIs(t, s.ResetTokens().ConsumeResetToken(ctx, u.ID, "live", now), store.ErrNotFound)
	require.ErrorIs(t, s.ResetTokens().ConsumeResetToken(ctx, u.ID, "expired", now), store.ErrNotFound)

	n, err := s.ResetTokens().DeleteExpiredResetTokens(ctx, now)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)
}

func TestSmtpSettingsUpsert(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	_, err := s.SmtpSettings().GetSmtpSettings(ctx)
	require.ErrorIs(t, err, store.ErrNotFound)

	settings := domain.SmtpSettings{
		Host: "smtp.example.com", Port: 587, Username: "mailer", Password: "iv:ct",
		SenderEmail: "noreply@example.com", SenderName: "WorkoutTracker",
		Authentication: true, EnableSsl: true, Enabled: true, UpdatedAt: time.Now(),
	}
	require.NoError(t, s.SmtpSettings().UpsertSmtpSettings(ctx, settings))

	settings.Enabled = false
	settings.Port = 25
	require.NoError(t, s.SmtpSettings().UpsertSmtpSettings(ctx, settings))

	got, err := s.SmtpSettings().GetSmtpSettings(ctx)
	require.NoError(t, err)
	require.Equal(t, 25, got.Port)
	require.False(t, got.Enabled)
	require.True(t, got.EnableSsl)
	require.Equal(t, "iv:ct", got.Password)
}

func TestWithTxRollsBack(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	boom := errors.New("boom")
	u := newUser("erin", "")
	err := s.WithTx(ctx, func(tx store.Tx) error {
		require.NoError(t, tx.Users().CreateUser(ctx, u))
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = s.Users().GetUserByID(ctx, u.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.WithTx(ctx, func(tx store.Tx) error {
		require.ErrorIs(t, tx.WithTx(ctx, func(store.Tx) error { return nil }), store.ErrNestedTx)
		return tx.Users().CreateUser(ctx, u)
	}))
	_, err = s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
}

func TestDeleteUserCascades(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	u := newUser("frank", "")
	require.NoError(t, s.Users().CreateUser(ctx, u))
	require.NoError(t, s.Users().AddUserRole(ctx, u.ID, "role_user"))

	require.NoError(t, s.Users().DeleteUser(ctx, u.ID))
	roles, err := s.Users().ListUserRoles(ctx, u.ID)
	require.NoError(t, err)
	require.Empty(t, roles)
	require.ErrorIs(t, s.Users().DeleteUser(ctx, u.ID), store.ErrNotFound)
}

func TestSchemaVersion(t *testing.T) {
	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	version, dirty, err := s.SchemaVersion()
	require.NoError(t, err)
	require.Zero(t, version)
	require.False(t, dirty)

	require.NoError(t, s.ApplyMigrations())
	require.NoError(t, s.ApplyMigrations())

	version, dirty, err = s.SchemaVersion()
	require.NoError(t, err)
	require.Equal(t, uint(1), version)
	require.False(t, dirty)
}
