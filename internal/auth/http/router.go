package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/workouttracker/internal/auth/domain"
	"github.com/aussiebroadwan/workouttracker/internal/auth/service"
	"github.com/aussiebroadwan/workouttracker/internal/auth/store"
	"github.com/aussiebroadwan/workouttracker/pkg/httpx"
	"github.com/aussiebroadwan/workouttracker/pkg/jwtx"
	"github.com/aussiebroadwan/workouttracker/pkg/slogx"

	_ "github.com/aussiebroadwan/workouttracker/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store       store.Store
	ResetTokens store.ResetTokens // Optional: checked by /readyz when it lives outside the database
	Limits      httpx.RateLimits  // Defaults to httpx.DefaultRateLimits

	AuthService          *service.AuthService
	PasswordResetService *service.PasswordResetService
	UserService          *service.UserService
	RolesService         *service.RolesService
	SmtpSettingsService  *service.SmtpSettingsService
	BootstrapService     *service.BootstrapService
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
	corsOrigins []string,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
		Limits:       httpx.DefaultRateLimits(),
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.CORS(corsOrigins),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerUsers()
	r.registerRoles()
	r.registerSmtpSettings()
	r.registerSystem()
	r.registerBootstrap()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			WorkoutTracker Identity Service API
//	@version		0.1.0
//	@description	Account registration, login with lockout, password reset and user administration for WorkoutTracker.
//	@description
//	@description				Session tokens are HS256-signed JWTs carrying the user's roles in the "role" claim.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/workouttracker
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Session token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// admin wraps h with authentication, the Admin role and a per-user limit.
func (r *Router) admin(h http.HandlerFunc, limit httpx.RateLimitConfig) http.Handler {
	return httpx.Chain(h,
		httpx.AuthnMiddleware(r.verifier),
		httpx.RequireAnyRole(domain.RoleAdmin),
		httpx.RateLimitByUser(limit),
	)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{
		AuthService:          r.AuthService,
		PasswordResetService: r.PasswordResetService,
	}

	// POST /login - strict rate limit by IP + username to slow credential stuffing
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIPAndJSONField(r.Limits.Strict, "username"),
		),
	)

	// POST /register, /forgot-password, /reset-password - strict rate limit by IP
	r.Mux.Handle("POST /v1/auth/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIP(r.Limits.Strict),
		),
	)
	r.Mux.Handle("POST /v1/auth/forgot-password",
		httpx.Chain(http.HandlerFunc(h.HandleForgotPassword),
			httpx.RateLimitByIP(r.Limits.Strict),
		),
	)
	r.Mux.Handle("POST /v1/auth/reset-password",
		httpx.Chain(http.HandlerFunc(h.HandleResetPassword),
			httpx.RateLimitByIP(r.Limits.Strict),
		),
	)

	// POST /logout - authenticated, moderate rate limit by user
	r.Mux.Handle("POST /v1/auth/logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(r.Limits.Moderate),
		),
	)
}

func (r *Router) registerUsers() {
	h := &UsersHandler{UserService: r.UserService}

	// GET /users/me - any signed-in account
	r.Mux.Handle("GET /v1/users/me",
		httpx.Chain(http.HandlerFunc(h.HandleMe),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireAnyRole(domain.RoleAdmin, domain.RoleUser),
			httpx.RateLimitByUser(r.Limits.Lenient),
		),
	)

	// Administration - Admin role only
	r.Mux.Handle("GET /v1/users", r.admin(h.HandleList, r.Limits.Lenient))
	r.Mux.Handle("POST /v1/users", r.admin(h.HandleCreate, r.Limits.Moderate))
	r.Mux.Handle("GET /v1/users/{id}", r.admin(h.HandleGet, r.Limits.Lenient))
	r.Mux.Handle("PUT /v1/users/{id}", r.admin(h.HandleUpdate, r.Limits.Moderate))
	r.Mux.Handle("DELETE /v1/users/{id}", r.admin(h.HandleDelete, r.Limits.Moderate))
	r.Mux.Handle("POST /v1/users/{id}/enabled", r.admin(h.HandleSetEnabled, r.Limits.Moderate))
	r.Mux.Handle("POST /v1/users/{id}/roles", r.admin(h.HandleAddRole, r.Limits.Moderate))
	r.Mux.Handle("DELETE /v1/users/{id}/roles/{role}", r.admin(h.HandleRemoveRole, r.Limits.Moderate))
}

func (r *Router) registerRoles() {
	h := &RolesHandler{RolesService: r.RolesService}
	r.Mux.Handle("GET /v1/roles", r.admin(h.ServeHTTP, r.Limits.Moderate))
}

func (r *Router) registerSmtpSettings() {
	h := &SmtpSettingsHandler{SmtpSettingsService: r.SmtpSettingsService}
	r.Mux.Handle("GET /v1/smtp-settings", r.admin(h.HandleGet, r.Limits.Moderate))
	r.Mux.Handle("PUT /v1/smtp-settings", r.admin(h.HandlePut, r.Limits.Moderate))
}

func (r *Router) registerBootstrap() {
	// POST /bootstrap - very strict rate limit by IP (one-time setup endpoint)
	bootstrapHandler := &BootstrapHandler{BootstrapService: r.BootstrapService}
	r.Mux.Handle("POST /v1/bootstrap",
		httpx.Chain(bootstrapHandler,
			httpx.RateLimitByIP(r.Limits.Strict),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(r.Limits.Lenient),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.ResetTokens),
			httpx.RateLimitByIP(r.Limits.Lenient),
		),
	)
}
