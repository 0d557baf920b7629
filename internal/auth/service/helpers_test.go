package service_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/workouttracker/internal/auth/domain"
	"github.com/aussiebroadwan/workouttracker/internal/auth/identity"
	"github.com/aussiebroadwan/workouttracker/internal/auth/mail"
	"github.com/aussiebroadwan/workouttracker/internal/auth/service"
	"github.com/aussiebroadwan/workouttracker/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/workouttracker/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

const strongPassword = "Abc12345!"

var testSigningKey = []byte("0123456789abcdef0123456789abcdef")

type env struct {
	store  *sqlite.Store
	users  *identity.Manager
	clock  *fakeClock
	mail   *fakeMail
	smtp   *fakeSettings
	issuer *service.TokenIssuer
	auth   *service.AuthService
	resets *service.PasswordResetService
	admin  *service.UserService
	cipher *cryptox.CredentialCipher
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeMail struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
}

func (f *fakeMail) Send(_ context.Context, msg mail.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeMail) Sent() []mail.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]mail.Message(nil), f.sent...)
}

type fakeSettings struct {
	settings domain.SmtpSettings
	err      error
}

func (f *fakeSettings) Current(context.Context) (domain.SmtpSettings, error) {
	return f.settings, f.err
}

func newEnv(t *testing.T) *env {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	pepper, err := cryptox.LoadOrCreatePepper(filepath.Join(t.TempDir(), "pepper"))
	require.NoError(t, err)

	clock := &fakeClock{now: time.Now().UTC().Truncate(time.Second)}

	users, err := identity.NewManager(st, identity.Options{
		Hasher: cryptox.NewHasher(pepper),
		Now:    clock.Now,
	})
	require.NoError(t, err)

	issuer, err := service.NewTokenIssuer(service.TokenIssuerConfig{
		SigningKey: testSigningKey,
		Issuer:     "workouttracker",
		Audience:   []string{"workouttracker-client"},
		Clock:      clock.Now,
	})
	require.NoError(t, err)

	cipher, err := cryptox.NewCredentialCipher([]byte("test-encryption-key"))
	require.NoError(t, err)

	m := &fakeMail{}
	settings := &fakeSettings{settings: domain.SmtpSettings{Host: "smtp.example.com", Port: 587, Enabled: true}}

	return &env{
		store:  st,
		users:  users,
		clock:  clock,
		mail:   m,
		smtp:   settings,
		issuer: issuer,
		cipher: cipher,
		auth: &service.AuthService{
			Users:    users,
			Issuer:   issuer,
			Lockout:  service.DefaultLockoutPolicy(),
			Mail:     m,
			Settings: settings,
			Clock:    clock.Now,
		},
		resets: &service.PasswordResetService{
			Users:     users,
			Mail:      m,
			Settings:  settings,
			ClientURL: "https://app.example.com",
		},
		admin: &service.UserService{Users: users},
	}
}

func (e *env) register(t *testing.T, username, email string) domain.User {
	t.Helper()
	u, err := e.auth.Register(context.Background(), service.RegisterInput{
		Username:  username,
		Email:     email,
		Password:  strongPassword,
		FirstName: "Test",
		LastName:  "User",
	})
	require.NoError(t, err)
	return u
}
