package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/workouttracker/internal/auth/domain"
	"github.com/aussiebroadwan/workouttracker/internal/auth/store"
)

type usersRepo struct {
	q querier
}

// The role columns resolve the single assigned role through user_roles.
const selectUser = `
SELECT u.id, u.username, u.normalized_username, u.email, u.normalized_email,
       u.password_hash, u.first_name, u.last_name, u.phone_number,
       u.enabled, u.lockout_enabled, u.lockout_end, u.access_failed_count,
       u.concurrency_stamp, u.created_at, u.created_by, u.updated_at, u.modified_by,
       (SELECT r.id FROM user_roles ur JOIN roles r ON r.id = ur.role_id
         WHERE ur.user_id = u.id ORDER BY r.name LIMIT 1),
       (SELECT r.name FROM user_roles ur JOIN roles r ON r.id = ur.role_id
         WHERE ur.user_id = u.id ORDER BY r.name LIMIT 1)
FROM users u`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (domain.User, error) {
	var (
		u          domain.User
		email      sql.NullString
		normEmail  sql.NullString
		lockoutEnd sql.NullTime
		roleID     sql.NullString
		roleName   sql.NullString
	)
	err := row.Scan(
		&u.ID, &u.Username, &u.NormalizedUsername, &email, &normEmail,
		&u.PasswordHash, &u.FirstName, &u.LastName, &u.PhoneNumber,
		&u.Enabled, &u.LockoutEnabled, &lockoutEnd, &u.AccessFailedCount,
		&u.ConcurrencyStamp, &u.CreatedAt, &u.CreatedBy, &u.UpdatedAt, &u.ModifiedBy,
		&roleID, &roleName,
	)
	if err != nil {
		return domain.User{}, err
	}

	u.Email = mapNullString(email)
	u.NormalizedEmail = mapNullString(normEmail)
	u.LockoutEnd = mapNullTimePtr(lockoutEnd)
	u.RoleID = mapNullString(roleID)
	u.Role = mapNullString(roleName)
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return u, nil
}

func (r *usersRepo) getOne(ctx context.Context, where string, arg any) (domain.User, error) {
	u, err := scanUser(r.q.QueryRowContext(ctx, selectUser+" WHERE "+where, arg))
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return r.getOne(ctx, "u.id = ?", id)
}

func (r *usersRepo) GetUserByNormalizedUsername(ctx context.Context, normalized string) (domain.User, error) {
	return r.getOne(ctx, "u.normalized_username = ?", normalized)
}

func (r *usersRepo) GetUserByNormalizedEmail(ctx context.Context, normalized string) (domain.User, error) {
	if normalized == "" {
		return domain.User{}, store.ErrNotFound
	}
	return r.getOne(ctx, "u.normalized_email = ?", normalized)
}

func (r *usersRepo) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := r.q.QueryContext(ctx, selectUser+" ORDER BY u.normalized_username")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.q.ExecContext(ctx, `
INSERT INTO users (
    id, username, normalized_username, email, normalized_email, password_hash,
    first_name, last_name, phone_number, enabled, lockout_enabled, lockout_end,
    access_failed_count, concurrency_stamp, created_at, created_by, updated_at, modified_by
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.NormalizedUsername, mapStringNull(u.Email), mapStringNull(u.NormalizedEmail), u.PasswordHash,
		u.FirstName, u.LastName, u.PhoneNumber, u.Enabled, u.LockoutEnabled, mapOptionalTime(u.LockoutEnd),
		u.AccessFailedCount, u.ConcurrencyStamp, u.CreatedAt.UTC(), u.CreatedBy, u.UpdatedAt.UTC(), u.ModifiedBy,
	)
	return mapConstraint(err)
}

func (r *usersRepo) UpdateUser(ctx context.Context, u domain.User, expectedStamp string) error {
	res, err := r.q.ExecContext(ctx, `
UPDATE users SET
    email = ?, normalized_email = ?, first_name = ?, last_name = ?, phone_number = ?,
    enabled = ?, concurrency_stamp = ?, updated_at = ?, modified_by = ?
WHERE id = ? AND concurrency_stamp = ?`,
		mapStringNull(u.Email), mapStringNull(u.NormalizedEmail), u.FirstName, u.LastName, u.PhoneNumber,
		u.Enabled, u.ConcurrencyStamp, u.UpdatedAt.UTC(), u.ModifiedBy,
		u.ID, expectedStamp,
	)
	if err != nil {
		return mapConstraint(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}

	// Nothing matched: either the user is gone or the stamp moved on.
	if _, err := r.GetUserByID(ctx, u.ID); err != nil {
		return err
	}
	return store.ErrConflict
}

func (r *usersRepo) UpdateAccessState(
	ctx context.Context,
	userID string,
	failedCount int,
	lockoutEnabled bool,
	lockoutEnd *time.Time,
	stamp string,
) error {
	return requireOneRow(r.q.ExecContext(ctx, `
UPDATE users SET access_failed_count = ?, lockout_enabled = ?, lockout_end = ?, concurrency_stamp = ?
WHERE id = ?`,
		failedCount, lockoutEnabled, mapOptionalTime(lockoutEnd), stamp, userID,
	))
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID, hash, stamp, modifiedBy string, at time.Time) error {
	return requireOneRow(r.q.ExecContext(ctx, `
UPDATE users SET password_hash = ?, concurrency_stamp = ?, modified_by = ?, updated_at = ?
WHERE id = ?`,
		hash, stamp, modifiedBy, at.UTC(), userID,
	))
}

func (r *usersRepo) DeleteUser(ctx context.Context, userID string) error {
	return requireOneRow(r.q.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, userID))
}

func (r *usersRepo) IsEmpty(ctx context.Context) (bool, error) {
	var count int64
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return false, err
	}
	return count == 0, nil
}

func (r *usersRepo) ExistsNormalizedUsername(ctx context.Context, normalized, excludeID string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE normalized_username = ? AND id <> ?)`, normalized, excludeID)
}

func (r *usersRepo) ExistsNormalizedEmail(ctx context.Context, normalized, excludeID string) (bool, error) {
	if normalized == "" {
		return false, nil
	}
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE normalized_email = ? AND id <> ?)`, normalized, excludeID)
}

func (r *usersRepo) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var found bool
	if err := r.q.QueryRowContext(ctx, query, args...).Scan(&found); err != nil {
		return false, err
	}
	return found, nil
}

func (r *usersRepo) AddUserRole(ctx context.Context, userID, roleID string) error {
	_, err := r.q.ExecContext(ctx, `INSERT INTO user_roles (user_id, role_id) VALUES (?, ?)`, userID, roleID)
	return mapConstraint(err)
}

func (r *usersRepo) RemoveUserRole(ctx context.Context, userID, roleID string) error {
	return requireOneRow(r.q.ExecContext(ctx, `DELETE FROM user_roles WHERE user_id = ? AND role_id = ?`, userID, roleID))
}

func (r *usersRepo) RemoveUserRoles(ctx context.Context, userID string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM user_roles WHERE user_id = ?`, userID)
	return err
}

func (r *usersRepo) ListUserRoles(ctx context.Context, userID string) ([]domain.Role, error) {
	return queryRoles(ctx, r.q, `
SELECT r.id, r.name, r.created_at FROM roles r
JOIN user_roles ur ON ur.role_id = r.id
WHERE ur.user_id = ? ORDER BY r.name`, userID)
}
