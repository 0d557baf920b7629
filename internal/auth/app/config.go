package app

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/workouttracker/internal/auth/service"
	"github.com/aussiebroadwan/workouttracker/pkg/httpx"
	"github.com/spf13/viper"
)

const envPrefix = "WT"

// Reset token store backends.
const (
	ResetStoreSQLite = "sqlite"
	ResetStoreRedis  = "redis"
)

type Config struct {
	SigningKey string        // Required: HS256 key for session tokens
	Issuer     string        // Token issuer (default: workouttracker)
	Audience   string        // Token audience (default: workouttracker-client)
	TokenTTL   time.Duration // Session token lifetime (default: 1h)

	EncryptionKey []byte // Required: decoded CredentialCipher key material
	ClientURL     string // Base URL for password reset links

	DatabaseFile string // SQLite database file (default: workouttracker.db)
	PepperFile   string // Password pepper file (default: pepper)

	ResetTokenTTL time.Duration // Reset token lifetime (default: 24h)
	ResetStore    string        // sqlite or redis (default: sqlite)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	CORSOrigins    []string
	BootstrapToken string           // Optional: enables the first-admin bootstrap endpoint
	RateLimits     httpx.RateLimits // Non-positive values fall back to httpx.DefaultRateLimits

	Env                  string // Environment (dev, staging, prod) (default: dev)
	LogLevel             string // Log level (debug, info, warn, error) (default: info)
	LogFormat            string // Log format (json, text) (default: json)
	Port                 int
	ShutdownGracePeriod  time.Duration
	HousekeepingInterval time.Duration
}

// NewViper returns a viper instance with defaults and env bindings applied.
func NewViper() *viper.Viper {
	v := viper.New()
	ApplyDefaults(v)
	return v
}

// ApplyDefaults configures defaults and env bindings on v. WT_AUTH_SIGNING_KEY
// sets auth.signing_key and so on. ENCRYPTION_KEY is honoured without the prefix.
func ApplyDefaults(v *viper.Viper) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("encryption.key", envPrefix+"_ENCRYPTION_KEY", "ENCRYPTION_KEY")

	// RATELIMIT_STRICT_REQUESTS and friends are also read without the prefix.
	for _, profile := range rateLimitProfiles {
		for _, field := range []string{"requests", "window_sec", "burst"} {
			key := "ratelimit." + profile + "." + field
			env := strings.ToUpper("ratelimit_" + profile + "_" + field)
			_ = v.BindEnv(key, envPrefix+"_"+env, env)
		}
	}

	v.SetDefault("auth.issuer", "workouttracker")
	v.SetDefault("auth.audience", "workouttracker-client")
	v.SetDefault("auth.token_ttl", time.Hour)
	v.SetDefault("client.url", "http://localhost:4200")
	v.SetDefault("database.file", "workouttracker.db")
	v.SetDefault("pepper.file", "pepper")
	v.SetDefault("reset.token_ttl", 24*time.Hour)
	v.SetDefault("reset.store", ResetStoreSQLite)
	v.SetDefault("redis.db", 0)
	v.SetDefault("cors.allowed_origins", "http://localhost:4200")
	v.SetDefault("env", "dev")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.shutdown_grace", 10*time.Second)
	v.SetDefault("housekeeping.interval", time.Hour)
}

var rateLimitProfiles = []string{"strict", "moderate", "lenient"}

func loadRateLimits(v *viper.Viper) httpx.RateLimits {
	read := func(profile string) httpx.RateLimitConfig {
		return httpx.RateLimitConfig{
			RequestsPerWindow: v.GetInt("ratelimit." + profile + ".requests"),
			Window:            time.Duration(v.GetInt("ratelimit."+profile+".window_sec")) * time.Second,
			Burst:             v.GetInt("ratelimit." + profile + ".burst"),
		}
	}
	return httpx.RateLimits{
		Strict:   read("strict"),
		Moderate: read("moderate"),
		Lenient:  read("lenient"),
	}.Or(httpx.DefaultRateLimits())
}

// LoadConfig reads the runtime configuration from v. A missing signing key,
// an unusable encryption key or an incomplete redis setup is reported as
// service.ErrConfiguration.
func LoadConfig(v *viper.Viper) (Config, error) {
	cfg := Config{
		SigningKey:           v.GetString("auth.signing_key"),
		Issuer:               v.GetString("auth.issuer"),
		Audience:             v.GetString("auth.audience"),
		TokenTTL:             v.GetDuration("auth.token_ttl"),
		ClientURL:            v.GetString("client.url"),
		DatabaseFile:         v.GetString("database.file"),
		PepperFile:           v.GetString("pepper.file"),
		ResetTokenTTL:        v.GetDuration("reset.token_ttl"),
		ResetStore:           strings.ToLower(strings.TrimSpace(v.GetString("reset.store"))),
		RedisAddr:            v.GetString("redis.addr"),
		RedisPassword:        v.GetString("redis.password"),
		RedisDB:              v.GetInt("redis.db"),
		CORSOrigins:          splitList(v.GetStringSlice("cors.allowed_origins")),
		BootstrapToken:       v.GetString("bootstrap.token"),
		RateLimits:           loadRateLimits(v),
		Env:                  v.GetString("env"),
		LogLevel:             v.GetString("log.level"),
		LogFormat:            v.GetString("log.format"),
		Port:                 v.GetInt("http.port"),
		ShutdownGracePeriod:  v.GetDuration("http.shutdown_grace"),
		HousekeepingInterval: v.GetDuration("housekeeping.interval"),
	}

	if strings.TrimSpace(cfg.SigningKey) == "" {
		return Config{}, fmt.Errorf("%w: auth.signing_key is required", service.ErrConfiguration)
	}

	key, err := DecodeEncryptionKey(v.GetString("encryption.key"))
	if err != nil {
		return Config{}, err
	}
	cfg.EncryptionKey = key

	switch cfg.ResetStore {
	case ResetStoreSQLite:
	case ResetStoreRedis:
		if strings.TrimSpace(cfg.RedisAddr) == "" {
			return Config{}, fmt.Errorf("%w: redis.addr is required when reset.store is redis", service.ErrConfiguration)
		}
	default:
		return Config{}, fmt.Errorf("%w: unknown reset.store %q", service.ErrConfiguration, cfg.ResetStore)
	}

	return cfg, nil
}

// DecodeEncryptionKey turns the configured base64 key into raw key material.
func DecodeEncryptionKey(encoded string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, fmt.Errorf("%w: encryption.key is required", service.ErrConfiguration)
	}

	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: encryption.key is not valid base64", service.ErrConfiguration)
	}
	if len(key) == 0 {
		return nil, fmt.Errorf("%w: encryption.key is empty", service.ErrConfiguration)
	}
	return key, nil
}

// splitList accepts both YAML lists and comma separated env values.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for part := range strings.SplitSeq(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
