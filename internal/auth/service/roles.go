package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/workouttracker/internal/auth/domain"
	"github.com/aussiebroadwan/workouttracker/internal/auth/store"
)

// RolesService exposes the fixed role catalogue.
type RolesService struct {
	Store store.Store
}

// ListAll returns all roles ordered by name.
func (s *RolesService) ListAll(ctx context.Context) ([]domain.Role, error) {
	return s.Store.Roles().ListAll(ctx)
}

// EnsureDefaults checks that the seeded Admin and User roles exist.
// Registration and bootstrap cannot work without them, so a missing role
// is reported as ErrConfiguration.
func (s *RolesService) EnsureDefaults(ctx context.Context) error {
	for _, name := range []string{domain.RoleAdmin, domain.RoleUser} {
		_, err := s.Store.Roles().GetRoleByName(ctx, name)
		switch {
		case errors.Is(err, store.ErrNotFound):
			return fmt.Errorf("%w: role %q is not seeded", ErrConfiguration, name)
		case err != nil:
			return fmt.Errorf("look up role %q: %w", name, err)
		}
	}
	return nil
}
