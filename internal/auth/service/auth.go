package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/workouttracker/internal/auth/domain"
	"github.com/aussiebroadwan/workouttracker/internal/auth/identity"
	"github.com/aussiebroadwan/workouttracker/internal/auth/mail"
	"github.com/aussiebroadwan/workouttracker/internal/auth/store"
	"github.com/aussiebroadwan/workouttracker/pkg/slogx"
)

const (
	welcomeSubject = "Welcome to WorkoutTracker!"
	welcomeBody    = "Thank you for registering with us!"
)

// AuthService runs login, registration and logout.
type AuthService struct {
	Users    UserStore
	Issuer   *TokenIssuer
	Lockout  LockoutPolicy
	Mail     MailDispatcher
	Settings SettingsProvider
	Clock    func() time.Time
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	UserID    string
	Username  string
	Roles     []string
}

type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	FirstName   string
	LastName    string
	PhoneNumber string
}

func (s *AuthService) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

// Login verifies credentials and returns a session token.
//
// Not-found, disabled, locked and bad-password outcomes stay distinct here;
// the transport decides how much of that to reveal.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (LoginResult, error) {
	l := slogx.FromContext(ctx)
	now := s.now()

	// 1. Resolve by username, then by email.
	user, err := s.findForLogin(ctx, identifier)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			l.Info("login for unknown account")
		}
		return LoginResult{}, err
	}
	l = l.With(slog.String("user_id", user.ID))

	// 2. Gate on enabled and lockout.
	decision := s.Lockout.Evaluate(user.Enabled, user.LockoutEnabled, user.LockoutEnd, now)
	if decision.Blocked {
		switch decision.Reason {
		case LockoutDisabled:
			l.Info("login to disabled account")
			return LoginResult{}, ErrAccountDisabled
		default:
			l.Info("login to locked account", slog.Time("locked_until", decision.Until))
			return LoginResult{}, &AccountLockedError{Until: decision.Until}
		}
	}

	// 3. Check the password and record a failure.
	if !s.Users.VerifyPassword(ctx, user, password) {
		count, lock := s.Lockout.OnFailure(user.AccessFailedCount)
		lockoutEnabled, lockoutEnd := user.LockoutEnabled, user.LockoutEnd
		if lock {
			until := s.Lockout.LockUntil(now)
			lockoutEnabled, lockoutEnd = true, &until
		}

		if err := s.Users.SetAccessState(ctx, user.ID, count, lockoutEnabled, lockoutEnd); err != nil {
			l.Error("failed to record failed login", slog.Any("error", err))
			return LoginResult{}, fmt.Errorf("record failed login: %w", err)
		}

		l.Info("login with bad password",
			slog.Int("failed_count", count),
			slog.Bool("locked", lock),
		)
		return LoginResult{}, ErrInvalidCredentials
	}

	// 4. Reset counters, collect roles, issue the token.
	count, lockoutEnabled := s.Lockout.OnSuccess()
	if err := s.Users.SetAccessState(ctx, user.ID, count, lockoutEnabled, user.LockoutEnd); err != nil {
		l.Error("failed to reset access state", slog.Any("error", err))
		return LoginResult{}, fmt.Errorf("reset access state: %w", err)
	}

	roles, err := s.Users.RolesOf(ctx, user.ID)
	if err != nil {
		return LoginResult{}, fmt.Errorf("load roles: %w", err)
	}

	token, expiresAt, err := s.Issuer.Issue(user.ID, user.Username, roles)
	if err != nil {
		l.Error("failed to sign session token", slog.Any("error", err))
		return LoginResult{}, err
	}

	l.Info("login succeeded")
	return LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		UserID:    user.ID,
		Username:  user.Username,
		Roles:     roles,
	}, nil
}

func (s *AuthService) findForLogin(ctx context.Context, identifier string) (domain.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return domain.User{}, ErrAccountNotFound
	}

	user, err := s.Users.FindByUsername(ctx, identifier)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return domain.User{}, err
	}

	user, err = s.Users.FindByEmail(ctx, identifier)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrAccountNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

// Register creates an enabled account with the default role. Creation and
// role assignment commit together; the welcome mail is best effort.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (domain.User, error) {
	l := slogx.FromContext(ctx)

	// 1. Validate input.
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	var v fieldChecks
	v.username(in.Username)
	v.email(in.Email, true)
	v.password("password", in.Password)
	v.name("first_name", in.FirstName, true)
	v.name("last_name", in.LastName, true)
	if err := v.err(); err != nil {
		return domain.User{}, err
	}

	// 2. Uniqueness, creation and role assignment as one unit.
	var created domain.User
	err := s.Users.WithinTx(ctx, func(users UserStore) error {
		if err := checkIdentifiers(ctx, users, in.Username, in.Email, ""); err != nil {
			return err
		}

		u, err := users.Create(ctx, domain.User{
			Username:    in.Username,
			Email:       in.Email,
			FirstName:   in.FirstName,
			LastName:    in.LastName,
			PhoneNumber: in.PhoneNumber,
			Enabled:     true,
			CreatedBy:   in.Email,
			ModifiedBy:  in.Email,
		}, in.Password)
		if err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return &DuplicateIdentifierError{Field: FieldUsername, Value: in.Username, Reason: "is already taken"}
			}
			return fmt.Errorf("create user: %w", err)
		}

		if err := users.AssignRole(ctx, u.ID, domain.RoleUser); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("%w: default role %q is missing", ErrConfiguration, domain.RoleUser)
			}
			return fmt.Errorf("assign default role: %w", err)
		}

		u.Role = domain.RoleUser
		created = u
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrConfiguration) {
			l.Error("registration blocked by configuration", slog.Any("error", err))
		}
		return domain.User{}, err
	}

	l.Info("user registered", slog.String("user_id", created.ID))

	// 3. Welcome mail, never fatal.
	s.sendWelcome(ctx, created)

	return created, nil
}

func (s *AuthService) sendWelcome(ctx context.Context, u domain.User) {
	if s.Mail == nil || s.Settings == nil {
		return
	}
	l := slogx.FromContext(ctx)

	settings, err := s.Settings.Current(ctx)
	if err != nil || !settings.Enabled {
		return
	}

	err = s.Mail.Send(ctx, mail.Message{
		To:      u.Email,
		Subject: welcomeSubject,
		Body:    welcomeBody,
	})
	if err != nil {
		l.Warn("welcome mail not sent", slog.String("user_id", u.ID), slog.Any("error", err))
	}
}

// Logout has nothing to revoke: session tokens are self-contained and stay
// valid until they expire. The client discards its copy.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	slogx.FromContext(ctx).Info("user signed out", slog.String("user_id", userID))
	return nil
}

// checkIdentifiers runs the four directional uniqueness checks: username
// against usernames and emails, then email against emails and usernames.
func checkIdentifiers(ctx context.Context, users UserStore, username, email, excludeID string) error {
	type check struct {
		field, value, reason string
		taken                func(context.Context, string, string) (bool, error)
	}

	var checks []check
	if username != "" {
		checks = append(checks,
			check{FieldUsername, username, "is already taken", users.UsernameTaken},
			check{FieldUsername, username, "is already used as an email by another user", users.EmailTaken},
		)
	}
	if email != "" {
		checks = append(checks,
			check{FieldEmail, email, "is already registered", users.EmailTaken},
			check{FieldEmail, email, "is already used as a username by another user", users.UsernameTaken},
		)
	}

	for _, c := range checks {
		taken, err := c.taken(ctx, identity.Normalize(c.value), excludeID)
		if err != nil {
			return fmt.Errorf("check %s uniqueness: %w", c.field, err)
		}
		if taken {
			return &DuplicateIdentifierError{Field: c.field, Value: c.value, Reason: c.reason}
		}
	}
	return nil
}
