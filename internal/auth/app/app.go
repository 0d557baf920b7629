package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/workouttracker/internal/auth/http"
	"github.com/aussiebroadwan/workouttracker/internal/auth/identity"
	"github.com/aussiebroadwan/workouttracker/internal/auth/mail"
	"github.com/aussiebroadwan/workouttracker/internal/auth/service"
	"github.com/aussiebroadwan/workouttracker/internal/auth/store"
	redisstore "github.com/aussiebroadwan/workouttracker/internal/auth/store/drivers/redis"
	"github.com/aussiebroadwan/workouttracker/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/workouttracker/pkg/cryptox"
	"github.com/aussiebroadwan/workouttracker/pkg/httpx"
	"github.com/aussiebroadwan/workouttracker/pkg/jwtx"
	"github.com/aussiebroadwan/workouttracker/pkg/slogx"
	goredis "github.com/redis/go-redis/v9"
)

// BuildVersion is overridden at build time via -ldflags.
var BuildVersion = "v0.1.0"

// Application encapsulates the identity service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db          store.Store
	redis       *goredis.Client // nil unless reset.store=redis
	resetTokens store.ResetTokens
	users       *identity.Manager
	cipher      *cryptox.CredentialCipher
	issuer      *service.TokenIssuer
	verifier    *jwtx.HS256Verifier

	// Services
	authService         *service.AuthService
	passwordReset       *service.PasswordResetService
	userService         *service.UserService
	rolesService        *service.RolesService
	smtpSettings        *service.SmtpSettingsService
	bootstrapService    *service.BootstrapService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// NewLogger builds the process logger from cfg.
func NewLogger(cfg Config) *slog.Logger {
	return slogx.New(slogx.Config{
		Service: "identity-service",
		Version: BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg:    cfg,
		logger: NewLogger(cfg),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initResetTokens(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	if err := app.initCrypto(); err != nil {
		app.closeStores()
		return nil, err
	}

	app.initServices()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.rolesService.EnsureDefaults(ctx); err != nil {
		app.closeStores()
		return nil, err
	}

	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("identity service starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"reset_store", app.cfg.ResetStore,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.housekeepingService.Stop()
			app.closeStores()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down identity service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis client", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("identity service stopped")
	return nil
}

func (app *Application) closeStores() {
	if app.redis != nil {
		_ = app.redis.Close()
	}
	_ = app.db.Close()
}

// OpenStore opens the SQLite database at file and applies pending migrations.
func OpenStore(file string) (*sqlite.Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", file)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply database migrations: %w", err)
	}
	return db, nil
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	db, err := OpenStore(app.cfg.DatabaseFile)
	if err != nil {
		return err
	}
	app.db = db

	app.logger.Info("database migrations applied successfully", "file", app.cfg.DatabaseFile)
	return nil
}

// initResetTokens picks where password reset tokens live.
func (app *Application) initResetTokens() error {
	if app.cfg.ResetStore != ResetStoreRedis {
		app.resetTokens = app.db.ResetTokens()
		return nil
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:     app.cfg.RedisAddr,
		Password: app.cfg.RedisPassword,
		DB:       app.cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("%w: redis unreachable at %s: %v", service.ErrConfiguration, app.cfg.RedisAddr, err)
	}

	app.redis = client
	app.resetTokens = redisstore.NewResetTokens(client, "")
	app.logger.Info("reset tokens stored in redis", "addr", app.cfg.RedisAddr, "db", app.cfg.RedisDB)
	return nil
}

// initCrypto loads the pepper and builds the hasher, cipher, issuer and verifier.
func (app *Application) initCrypto() error {
	pepper, err := cryptox.LoadOrCreatePepper(app.cfg.PepperFile)
	if err != nil {
		return fmt.Errorf("%w: pepper: %v", service.ErrConfiguration, err)
	}

	var resets store.ResetTokens
	if app.redis != nil {
		resets = app.resetTokens
	}

	app.users, err = identity.NewManager(app.db, identity.Options{
		Hasher:        cryptox.NewHasher(pepper),
		ResetTokens:   resets,
		ResetTokenTTL: app.cfg.ResetTokenTTL,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", service.ErrConfiguration, err)
	}

	app.cipher, err = cryptox.NewCredentialCipher(app.cfg.EncryptionKey)
	if err != nil {
		return fmt.Errorf("%w: %v", service.ErrConfiguration, err)
	}

	audience := []string{app.cfg.Audience}
	app.issuer, err = service.NewTokenIssuer(service.TokenIssuerConfig{
		SigningKey: []byte(app.cfg.SigningKey),
		Issuer:     app.cfg.Issuer,
		Audience:   audience,
		TTL:        app.cfg.TokenTTL,
	})
	if err != nil {
		return err
	}

	app.verifier, err = jwtx.NewHS256Verifier([]byte(app.cfg.SigningKey), jwtx.VerifyOptions{
		Issuer:   app.cfg.Issuer,
		Audience: audience,
		Leeway:   30 * time.Second,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", service.ErrConfiguration, err)
	}
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.smtpSettings = &service.SmtpSettingsService{Store: app.db, Cipher: app.cipher}
	dispatcher := mail.NewSMTPDispatcher(app.db.SmtpSettings(), app.cipher)

	app.authService = &service.AuthService{
		Users:    app.users,
		Issuer:   app.issuer,
		Lockout:  service.DefaultLockoutPolicy(),
		Mail:     dispatcher,
		Settings: app.smtpSettings,
	}
	app.passwordReset = &service.PasswordResetService{
		Users:     app.users,
		Mail:      dispatcher,
		Settings:  app.smtpSettings,
		ClientURL: app.cfg.ClientURL,
	}
	app.userService = &service.UserService{Users: app.users}
	app.rolesService = &service.RolesService{Store: app.db}
	app.bootstrapService = &service.BootstrapService{
		Users: app.users,
		Token: app.cfg.BootstrapToken,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.resetTokens,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.verifier,
		BuildVersion,
		app.db,
		app.logger,
		app.cfg.CORSOrigins,
	)

	router.ResetTokens = app.resetTokens
	router.Limits = app.cfg.RateLimits.Or(httpx.DefaultRateLimits())
	router.AuthService = app.authService
	router.PasswordResetService = app.passwordReset
	router.UserService = app.userService
	router.RolesService = app.rolesService
	router.SmtpSettingsService = app.smtpSettings
	router.BootstrapService = app.bootstrapService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}

// Handler exposes the wired router, mainly for in-process tests.
func (app *Application) Handler() http.Handler {
	return app.router
}

// EncryptSecret seals plaintext with the configured encryption key, producing
// an envelope operators can paste into the settings row.
func EncryptSecret(key []byte, plaintext string) (string, error) {
	c, err := cryptox.NewCredentialCipher(key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", service.ErrConfiguration, err)
	}
	return c.Encrypt(plaintext)
}
