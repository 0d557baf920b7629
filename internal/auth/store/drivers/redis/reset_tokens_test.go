package redis_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aussiebroadwan/workouttracker/internal/auth/domain"
	"github.com/aussiebroadwan/workouttracker/internal/auth/store"
	redisstore "github.com/aussiebroadwan/workouttracker/internal/auth/store/drivers/redis"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func token(userID, hash string, ttl time.Duration) domain.ResetToken {
	now := time.Now()
	return domain.ResetToken{ID: hash, UserID: userID, TokenHash: hash, CreatedAt: now, ExpiresAt: now.Add(ttl)}
}

func TestResetTokensSingleUse(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestRedis(t)
	s := redisstore.NewResetTokens(client, "")

	require.NoError(t, s.CreateResetToken(ctx, token("user-1", "fp-1", time.Hour)))
	require.True(t, mr.Exists("wt:reset:fp-1"))
	require.ErrorIs(t, s.CreateResetToken(ctx, token("user-1", "fp-1", time.Hour)), store.ErrAlreadyExists)

	// Wrong owner leaves the token in place.
	require.ErrorIs(t, s.ConsumeResetToken(ctx, "user-2", "fp-1", time.Now()), store.ErrNotFound)
	require.True(t, mr.Exists("wt:reset:fp-1"))

	require.NoError(t, s.ConsumeResetToken(ctx, "user-1", "fp-1", time.Now()))
	require.ErrorIs(t, s.ConsumeResetToken(ctx, "user-1", "fp-1", time.Now()), store.ErrNotFound)
}

func TestResetTokensExpire(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestRedis(t)
	s := redisstore.NewResetTokens(client, "test")

	require.NoError(t, s.CreateResetToken(ctx, token("user-1", "fp", time.Minute)))
	mr.FastForward(2 * time.Minute)

	require.ErrorIs(t, s.ConsumeResetToken(ctx, "user-1", "fp", time.Now()), store.ErrNotFound)

	n, err := s.DeleteExpiredResetTokens(ctx, time.Now())
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestResetTokensRejectsExpiredOnCreate(t *testing.T) {
	_, client := newTestRedis(t)
	s := redisstore.NewResetTokens(client, "")

	require.Error(t, s.CreateResetToken(context.Background(), token("user-1", "fp", -time.Second)))
}

func TestResetTokensConcurrentConsume(t *testing.T) {
	ctx := context.Background()
	_, client := newTestRedis(t)
	s := redisstore.NewResetTokens(client, "")

	require.NoError(t, s.CreateResetToken(ctx, token("user-1", "fp", time.Hour)))

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.ConsumeResetToken(ctx, "user-1", "fp", time.Now()) == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, wins)
}

func TestResetTokensPing(t *testing.T) {
	mr, client := newTestRedis(t)
	s := redisstore.NewResetTokens(client, "")

	require.NoError(t, s.Ping(context.Background()))
	mr.Close()
	require.Error(t, s.Ping(context.Background()))
}
