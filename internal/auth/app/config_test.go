package app_test

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/aussiebroadwan/workouttracker/internal/auth/app"
	"github.com/aussiebroadwan/workouttracker/internal/auth/service"
	"github.com/aussiebroadwan/workouttracker/pkg/httpx"
	"github.com/stretchr/testify/require"
)

var testEncryptionKey = base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef"))

func TestLoadConfigDefaults(t *testing.T) {
	v := app.NewViper()
	v.Set("auth.signing_key", "signing-key")
	v.Set("encryption.key", testEncryptionKey)

	cfg, err := app.LoadConfig(v)
	require.NoError(t, err)

	require.Equal(t, "workouttracker", cfg.Issuer)
	require.Equal(t, "workouttracker-client", cfg.Audience)
	require.Equal(t, time.Hour, cfg.TokenTTL)
	require.Equal(t, "http://localhost:4200", cfg.ClientURL)
	require.Equal(t, "workouttracker.db", cfg.DatabaseFile)
	require.Equal(t, "pepper", cfg.PepperFile)
	require.Equal(t, 24*time.Hour, cfg.ResetTokenTTL)
	require.Equal(t, app.ResetStoreSQLite, cfg.ResetStore)
	require.Equal(t, []string{"http://localhost:4200"}, cfg.CORSOrigins)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, 10*time.Second, cfg.ShutdownGracePeriod)
	require.Equal(t, time.Hour, cfg.HousekeepingInterval)
	require.Equal(t, []byte("0123456789abcdef0123456789abcdef"), cfg.EncryptionKey)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("WT_AUTH_SIGNING_KEY", "from-env")
	t.Setenv("ENCRYPTION_KEY", testEncryptionKey)
	t.Setenv("WT_AUTH_TOKEN_TTL", "15m")
	t.Setenv("WT_CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("WT_HTTP_PORT", "9090")
	t.Setenv("WT_RESET_STORE", "REDIS")
	t.Setenv("WT_REDIS_ADDR", "localhost:6379")

	cfg, err := app.LoadConfig(app.NewViper())
	require.NoError(t, err)

	require.Equal(t, "from-env", cfg.SigningKey)
	require.Equal(t, 15*time.Minute, cfg.TokenTTL)
	require.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSOrigins)
	require.Equal(t, 9090, cfg.Port)
	require.Equal(t, app.ResetStoreRedis, cfg.ResetStore)
	require.Equal(t, "localhost:6379", cfg.RedisAddr)
}

func TestLoadConfigPrefixedEncryptionKeyWins(t *testing.T) {
	other := base64.StdEncoding.EncodeToString([]byte("other-key"))
	t.Setenv("WT_AUTH_SIGNING_KEY", "k")
	t.Setenv("WT_ENCRYPTION_KEY", other)
	t.Setenv("ENCRYPTION_KEY", testEncryptionKey)

	cfg, err := app.LoadConfig(app.NewViper())
	require.NoError(t, err)
	require.Equal(t, []byte("other-key"), cfg.EncryptionKey)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		set  map[string]any
	}{
		{
			name: "missing signing key",
			set:  map[string]any{"encryption.key": testEncryptionKey},
		},
		{
			name: "missing encryption key",
			set:  map[string]any{"auth.signing_key": "k"},
		},
		{
			name: "encryption key not base64",
			set:  map[string]any{"auth.signing_key": "k", "encryption.key": "not base64!!"},
		},
		{
			name: "redis without address",
			set: map[string]any{
				"auth.signing_key": "k",
				"encryption.key":   testEncryptionKey,
				"reset.store":      "redis",
			},
		},
		{
			name: "unknown reset store",
			set: map[string]any{
				"auth.signing_key": "k",
				"encryption.key":   testEncryptionKey,
				"reset.store":      "memcached",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := app.NewViper()
			for k, val := range tt.set {
				v.Set(k, val)
			}

			_, err := app.LoadConfig(v)
			require.ErrorIs(t, err, service.ErrConfiguration)
		})
	}
}

func TestEncryptSecret(t *testing.T) {
	envelope, err := app.EncryptSecret([]byte("key"), "smtp-password")
	require.NoError(t, err)
	require.NotContains(t, envelope, "smtp-password")

	_, err = app.EncryptSecret(nil, "x")
	require.ErrorIs(t, err, service.ErrConfiguration)
}

func TestLoadConfigRateLimits(t *testing.T) {
	t.Setenv("WT_AUTH_SIGNING_KEY", "k")
	t.Setenv("ENCRYPTION_KEY", testEncryptionKey)
	t.Setenv("RATELIMIT_STRICT_REQUESTS", "1000")
	t.Setenv("RATELIMIT_STRICT_WINDOW_SEC", "30")
	t.Setenv("WT_RATELIMIT_MODERATE_BURST", "77")
	t.Setenv("RATELIMIT_LENIENT_REQUESTS", "-5")

	cfg, err := app.LoadConfig(app.NewViper())
	require.NoError(t, err)

	def := httpx.DefaultRateLimits()
	require.Equal(t, httpx.RateLimitConfig{RequestsPerWindow: 1000, Window: 30 * time.Second, Burst: def.Strict.Burst}, cfg.RateLimits.Strict)
	require.Equal(t, 77, cfg.RateLimits.Moderate.Burst)
	require.Equal(t, def.Moderate.RequestsPerWindow, cfg.RateLimits.Moderate.RequestsPerWindow)
	require.Equal(t, def.Lenient, cfg.RateLimits.Lenient)
}
