package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aussiebroadwan/workouttracker/internal/auth/domain"
	"github.com/aussiebroadwan/workouttracker/internal/auth/store"
	"github.com/aussiebroadwan/workouttracker/pkg/slogx"
)

// UserService is the administrative view of accounts. Every write runs in
// one transaction and rotates the concurrency stamp.
type UserService struct {
	Users UserStore
	Guard ConcurrencyGuard
}

type CreateUserInput struct {
	Username    string
	Email       string
	Password    string
	FirstName   string
	LastName    string
	PhoneNumber string
	Role        string
	Enabled     bool
}

type UpdateUserInput struct {
	ID               string
	Email            string // empty keeps the current email
	FirstName        string
	LastName         string
	PhoneNumber      string // empty keeps the current phone
	Role             string // empty keeps the current role
	Enabled          bool
	ConcurrencyStamp string
}

func (s *UserService) Get(ctx context.Context, id string) (domain.User, error) {
	u, err := s.Users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return u, nil
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.Users.List(ctx)
}

// Create adds an account with the chosen role. When no email is given and
// the username is itself an address, it doubles as the email.
func (s *UserService) Create(ctx context.Context, in CreateUserInput, actor string) (domain.User, error) {
	l := slogx.FromContext(ctx)

	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if in.Email == "" && IsValidEmail(in.Username) {
		in.Email = in.Username
	}

	var v fieldChecks
	v.username(in.Username)
	v.email(in.Email, false)
	v.password("password", in.Password)
	v.name("first_name", in.FirstName, false)
	v.name("last_name", in.LastName, false)
	if strings.TrimSpace(in.Role) == "" {
		v.fail("role", "role is required")
	}
	if err := v.err(); err != nil {
		return domain.User{}, err
	}

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
			Enabled:     in.Enabled,
			CreatedBy:   actor,
			ModifiedBy:  actor,
		}, in.Password)
		if err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return &DuplicateIdentifierError{Field: FieldUsername, Value: in.Username, Reason: "is already taken"}
			}
			return fmt.Errorf("create user: %w", err)
		}

		if err := assignRole(ctx, users, u.ID, in.Role); err != nil {
			return err
		}

		created, err = users.FindByID(ctx, u.ID)
		return err
	})
	if err != nil {
		return domain.User{}, err
	}

	l.Info("user created", slog.String("user_id", created.ID), slog.String("role", created.Role))
	return created, nil
}

// Update applies in if in.ConcurrencyStamp is still current.
func (s *UserService) Update(ctx context.Context, in UpdateUserInput, actor string) (domain.User, error) {
	l := slogx.FromContext(ctx)
	in.Email = strings.TrimSpace(in.Email)

	var v fieldChecks
	v.email(in.Email, false)
	v.name("first_name", in.FirstName, false)
	v.name("last_name", in.LastName, false)
	if err := v.err(); err != nil {
		return domain.User{}, err
	}

	var updated domain.User
	err := s.Users.WithinTx(ctx, func(users UserStore) error {
		// 1. Load and guard against a stale read.
		u, err := users.FindByID(ctx, in.ID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		if err := s.Guard.Check(in.ConcurrencyStamp, u.ConcurrencyStamp); err != nil {
			return err
		}

		// 2. Email must stay unique in both directions.
		if in.Email != "" {
			if err := checkIdentifiers(ctx, users, "", in.Email, u.ID); err != nil {
				return err
			}
			u.Email = in.Email
		}

		// 3. Replace the role.
		if in.Role != "" {
			if err := users.RemoveRoles(ctx, u.ID); err != nil {
				return fmt.Errorf("remove roles: %w", err)
			}
			if err := assignRole(ctx, users, u.ID, in.Role); err != nil {
				return err
			}
		}

		// 4. Profile fields.
		if in.PhoneNumber != "" {
			u.PhoneNumber = in.PhoneNumber
		}
		u.Enabled = in.Enabled
		u.FirstName = in.FirstName
		u.LastName = in.LastName
		u.ModifiedBy = actor

		// 5. Persist with the stamp the caller read.
		if _, err := users.Update(ctx, u, in.ConcurrencyStamp); err != nil {
			return mapUpdateErr(err)
		}

		updated, err = users.FindByID(ctx, u.ID)
		return err
	})
	if err != nil {
		return domain.User{}, err
	}

	l.Info("user updated", slog.String("user_id", updated.ID))
	return updated, nil
}

// SetEnabled enables or disables an account.
func (s *UserService) SetEnabled(ctx context.Context, id string, enabled bool, actor string) (domain.User, error) {
	return s.mutate(ctx, id, actor, func(users UserStore, u *domain.User) error {
		u.Enabled = enabled
		return nil
	})
}

// AddRole grants role; granting a held role is a no-op.
func (s *UserService) AddRole(ctx context.Context, id, role, actor string) (domain.User, error) {
	return s.mutate(ctx, id, actor, func(users UserStore, u *domain.User) error {
		return assignRole(ctx, users, u.ID, role)
	})
}

func (s *UserService) RemoveRole(ctx context.Context, id, role, actor string) (domain.User, error) {
	return s.mutate(ctx, id, actor, func(users UserStore, u *domain.User) error {
		if err := users.RemoveRole(ctx, u.ID, role); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrRoleNotFound
			}
			return err
		}
		return nil
	})
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.Users.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	slogx.FromContext(ctx).Info("user deleted", slog.String("user_id", id))
	return nil
}

// mutate loads the user, applies fn and saves it inside one transaction.
func (s *UserService) mutate(
	ctx context.Context,
	id, actor string,
	fn func(users UserStore, u *domain.User) error,
) (domain.User, error) {
	var out domain.User
	err := s.Users.WithinTx(ctx, func(users UserStore) error {
		u, err := users.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		if err := fn(users, &u); err != nil {
			return err
		}

		u.ModifiedBy = actor
		if _, err := users.Update(ctx, u, u.ConcurrencyStamp); err != nil {
			return mapUpdateErr(err)
		}

		out, err = users.FindByID(ctx, id)
		return err
	})
	return out, err
}

func assignRole(ctx context.Context, users UserStore, userID, role string) error {
	err := users.AssignRole(ctx, userID, role)
	switch {
	case err == nil, errors.Is(err, store.ErrAlreadyExists):
		return nil
	case errors.Is(err, store.ErrNotFound):
		return ErrRoleNotFound
	default:
		return fmt.Errorf("assign role: %w", err)
	}
}

func mapUpdateErr(err error) error {
	switch {
	case errors.Is(err, store.ErrConflict):
		return ErrStaleObjectState
	case errors.Is(err, store.ErrNotFound):
		return ErrUserNotFound
	case errors.Is(err, store.ErrAlreadyExists):
		return &DuplicateIdentifierError{Field: FieldEmail, Reason: "is already registered"}
	default:
		return fmt.Errorf("update user: %w", err)
	}
}
