package service_test

import (
	"context"
	"testing"

	"github.com/aussiebroadwan/workouttracker/internal/auth/domain"
	"github.com/aussiebroadwan/workouttracker/internal/auth/service"
	"github.com/aussiebroadwan/workouttracker/internal/auth/store"
	"github.com/stretchr/testify/require"
)

func TestRolesListAll(t *testing.T) {
	e := newEnv(t)
	svc := &service.RolesService{Store: e.store}

	roles, err := svc.ListAll(context.Background())
	require.NoError(t, err)

	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, r.Name)
	}
	require.Equal(t, []string{domain.RoleAdmin, domain.RoleUser}, names)
}

func TestRolesEnsureDefaults(t *testing.T) {
	e := newEnv(t)

	t.Run("seeded", func(t *testing.T) {
		svc := &service.RolesService{Store: e.store}
		require.NoError(t, svc.EnsureDefaults(context.Background()))
	})

	t.Run("missing role", func(t *testing.T) {
		svc := &service.RolesService{Store: noRolesStore{Store: e.store}}
		require.ErrorIs(t, svc.EnsureDefaults(context.Background()), service.ErrConfiguration)
	})
}

// noRolesStore hides every role, as if the seed migration never ran.
type noRolesStore struct {
	store.Store
}

func (s noRolesStore) Roles() store.Roles { return emptyRoles{} }

type emptyRoles struct{}

func (emptyRoles) GetRoleByName(context.Context, string) (domain.Role, error) {
	return domain.Role{}, store.ErrNotFound
}

func (emptyRoles) ListAll(context.Context) ([]domain.Role, error) { return nil, nil }
