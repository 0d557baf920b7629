package http_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	authhttp "github.com/aussiebroadwan/workouttracker/internal/auth/http"
	redisstore "github.com/aussiebroadwan/workouttracker/internal/auth/store/drivers/redis"
	"github.com/aussiebroadwan/workouttracker/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/workouttracker/pkg/authsdk"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestReadyzReportsUnavailableDependencies(t *testing.T) {
	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	h := authhttp.ReadyzHandler(time.Now(), "test", st, redisstore.NewResetTokens(client, ""))

	t.Run("Healthy", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody[authsdk.HealthResponse](t, rec)
		require.Equal(t, "ok", body.Checks.ResetTokens)
	})

	t.Run("RedisDown", func(t *testing.T) {
		mr.Close()

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		body := decodeBody[authsdk.HealthResponse](t, rec)
		require.Equal(t, "degraded", body.Status)
		require.Equal(t, "ok", body.Checks.Database)
		require.Equal(t, "unavailable", body.Checks.ResetTokens)
	})
}

func TestLivezIgnoresDependencies(t *testing.T) {
	rec := httptest.NewRecorder()
	authhttp.LivezHandler(time.Now().Add(-time.Minute), "v1.2.3").
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[authsdk.HealthResponse](t, rec)
	require.Equal(t, "v1.2.3", body.Version)
	require.Equal(t, "1m0s", body.Uptime)
	require.Nil(t, body.Checks)
}
