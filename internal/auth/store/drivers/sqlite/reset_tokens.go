package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/workouttracker/internal/auth/domain"
)

type resetTokensRepo struct {
	q querier
}

func (r *resetTokensRepo) CreateResetToken(ctx context.Context, t domain.ResetToken) error {
	_, err := r.q.ExecContext(ctx, `
INSERT INTO reset_tokens (id, user_id, token_hash, expires_at, used_at, created_at)
VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.TokenHash, t.ExpiresAt.UTC(), mapOptionalTime(t.UsedAt), t.CreatedAt.UTC(),
	)
	return mapConstraint(err)
}

// ConsumeResetToken flips used_at in a single guarded UPDATE so two
// concurrent consumers cannot both succeed.
func (r *resetTokensRepo) ConsumeResetToken(ctx context.Context, userID, tokenHash string, now time.Time) error {
	now = now.UTC()
	return requireOneRow(r.q.ExecContext(ctx, `
UPDATE reset_tokens SET used_at = ?
WHERE user_id = ? AND token_hash = ? AND used_at IS NULL AND expires_at > ?`,
		now, userID, tokenHash, now,
	))
}

func (r *resetTokensRepo) DeleteExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM reset_tokens WHERE expires_at <= ? OR used_at IS NOT NULL`, now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
