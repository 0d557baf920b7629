package sqlite

import (
	"context"
	"strings"

	"github.com/aussiebroadwan/workouttracker/internal/auth/domain"
)

type rolesRepo struct {
	q querier
}

func (r *rolesRepo) GetRoleByName(ctx context.Context, name string) (domain.Role, error) {
	return getRole(ctx, r.q, `SELECT id, name, created_at FROM roles WHERE normalized_name = ?`, strings.ToUpper(name))
}

func (r *rolesRepo) ListAll(ctx context.Context) ([]domain.Role, error) {
	return queryRoles(ctx, r.q, `SELECT id, name, created_at FROM roles ORDER BY name`)
}

func getRole(ctx context.Context, q querier, query string, arg any) (domain.Role, error) {
	var role domain.Role
	if err := q.QueryRowContext(ctx, query, arg).Scan(&role.ID, &role.Name, &role.CreatedAt); err != nil {
		return domain.Role{}, mapNotFound(err)
	}
	return role, nil
}

func queryRoles(ctx context.Context, q querier, query string, args ...any) ([]domain.Role, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var roles []domain.Role
	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.CreatedAt); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}
