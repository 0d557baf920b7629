// Package redis keeps password reset tokens in Redis instead of the main
// database. Entries expire through Redis TTLs, so there is nothing to purge.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/workouttracker/internal/auth/domain"
	"github.com/aussiebroadwan/workouttracker/internal/auth/store"
	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "wt:reset"

// ResetTokens implements store.ResetTokens. Each token fingerprint maps to
// the id of the user it was issued for.
type ResetTokens struct {
	redis  redis.UniversalClient
	prefix string
}

var _ store.ResetTokens = (*ResetTokens)(nil)

func NewResetTokens(client redis.UniversalClient, prefix string) *ResetTokens {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &ResetTokens{redis: client, prefix: prefix}
}

func (s *ResetTokens) key(tokenHash string) string {
	return s.prefix + ":" + tokenHash
}

func (s *ResetTokens) CreateResetToken(ctx context.Context, t domain.ResetToken) error {
	ttl := t.ExpiresAt.Sub(t.CreatedAt)
	if ttl <= 0 {
		return fmt.Errorf("redis reset store: token already expired")
	}

	ok, err := s.redis.SetNX(ctx, s.key(t.TokenHash), t.UserID, ttl).Result()
	if err != nil {
		return fmt.Errorf("redis reset store: save: %w", err)
	}
	if !ok {
		return store.ErrAlreadyExists
	}
	return nil
}

// ConsumeResetToken deletes the entry only when it belongs to userID. The
// WATCH guards against a concurrent consumer deleting it first.
func (s *ResetTokens) ConsumeResetToken(ctx context.Context, userID, tokenHash string, _ time.Time) error {
	const maxRetries = 4
	key := s.key(tokenHash)

	for range maxRetries {
		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			owner, err := tx.Get(ctx, key).Result()
			if err != nil {
				return err
			}
			if owner != userID {
				return store.ErrNotFound
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Del(ctx, key)
				return nil
			})
			return err
		}, key)

		switch {
		case err == nil:
			return nil
		case errors.Is(err, redis.TxFailedErr):
			continue
		case errors.Is(err, redis.Nil), errors.Is(err, store.ErrNotFound):
			return store.ErrNotFound
		default:
			return fmt.Errorf("redis reset store: consume: %w", err)
		}
	}

	return store.ErrNotFound
}

// DeleteExpiredResetTokens is a no-op; Redis expires keys itself and
// consumed keys are deleted on use.
func (s *ResetTokens) DeleteExpiredResetTokens(context.Context, time.Time) (int64, error) {
	return 0, nil
}

// Ping reports whether Redis is reachable.
func (s *ResetTokens) Ping(ctx context.Context) error {
	return s.redis.Ping(ctx).Err()
}
