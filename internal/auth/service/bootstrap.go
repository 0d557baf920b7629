package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aussiebroadwan/workouttracker/internal/auth/domain"
	"github.com/aussiebroadwan/workouttracker/internal/auth/store"
	"github.com/aussiebroadwan/workouttracker/pkg/cryptox"
	"github.com/aussiebroadwan/workouttracker/pkg/slogx"
)

var (
	ErrBootstrapAlready      = errors.New("system already bootstrapped")
	ErrBootstrapUnauthorized = errors.New("unauthorized bootstrap attempt")
	ErrBootstrapDisabled     = errors.New("bootstrap disabled")
)

// BootstrapService creates the first administrator on an empty system.
type BootstrapService struct {
	Users UserStore
	Token string // Pre-configured bootstrap token; empty disables bootstrap
}

func (s *BootstrapService) IsBootstrapped(ctx context.Context) (bool, error) {
	empty, err := s.Users.IsEmpty(ctx)
	if err != nil {
		return false, err
	}
	return !empty, nil
}

func (s *BootstrapService) Bootstrap(ctx context.Context, token string, req domain.BootstrapData) (domain.User, error) {
	l := slogx.FromContext(ctx)

	// 1. Bootstrap must be switched on.
	if s.Token == "" {
		return domain.User{}, ErrBootstrapDisabled
	}

	// 2. Check if already bootstrapped
	if bootstrapped, err := s.IsBootstrapped(ctx); err != nil {
		return domain.User{}, err
	} else if bootstrapped {
		l.Warn("attempted bootstrap on already-bootstrapped system")
		return domain.User{}, ErrBootstrapAlready
	}

	// 3. Validate provided token
	if !cryptox.EqualSecrets(token, s.Token) {
		l.Warn("unauthorized bootstrap attempt")
		return domain.User{}, ErrBootstrapUnauthorized
	}

	// 4. Validate the admin profile.
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	var v fieldChecks
	v.username(req.Username)
	v.email(req.Email, false)
	v.password("password", req.Password)
	if err := v.err(); err != nil {
		return domain.User{}, err
	}

	// 5. Create the admin and grant the role in one transaction.
	var admin domain.User
	err := s.Users.WithinTx(ctx, func(users UserStore) error {
		empty, err := users.IsEmpty(ctx)
		if err != nil {
			return err
		}
		if !empty {
			return ErrBootstrapAlready
		}

		u, err := users.Create(ctx, domain.User{
			Username:  req.Username,
			Email:     req.Email,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Enabled:   true,
			CreatedBy: "bootstrap",
		}, req.Password)
		if err != nil {
			return fmt.Errorf("create admin user: %w", err)
		}

		if err := users.AssignRole(ctx, u.ID, domain.RoleAdmin); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("%w: role %q is missing", ErrConfiguration, domain.RoleAdmin)
			}
			return err
		}

		u.Role = domain.RoleAdmin
		admin = u
		return nil
	})
	if err != nil {
		l.Error("bootstrap failed", slog.Any("error", err))
		return domain.User{}, err
	}

	l.Info("successfully bootstrapped system", slog.String("admin_user_id", admin.ID))
	return admin, nil
}
