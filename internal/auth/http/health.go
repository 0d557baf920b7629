package http

import (
	"context"
	"net/http"
	"time"

	"github.com/aussiebroadwan/workouttracker/internal/auth/store"
	"github.com/aussiebroadwan/workouttracker/pkg/authsdk"
	"github.com/aussiebroadwan/workouttracker/pkg/httpx"
	"github.com/aussiebroadwan/workouttracker/pkg/slogx"
)

// checkTimeout bounds each readiness dependency check.
const checkTimeout = 2 * time.Second

// pinger is implemented by reset-token stores that live outside the database.
type pinger interface {
	Ping(ctx context.Context) error
}

func uptime(since time.Time) string {
	return time.Since(since).Round(time.Second).String()
}

// LivezHandler godoc
//
//	@Summary		Liveness probe
//	@Description	Reports that the process is serving requests. Never touches dependencies.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version"
//	@Router			/livez [get].
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, authsdk.HealthResponse{
			Status:  "ok",
			Uptime:  uptime(startTime),
			Version: version,
		})
	}
}

// ReadyzHandler godoc
//
//	@Summary		Readiness probe
//	@Description	Checks the account database and, when Redis holds reset tokens, the Redis connection.
//	@Description	Failure details are logged, the response only names the failing dependency.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	authsdk.HealthResponse	"one or more dependencies unavailable"
//	@Router			/readyz [get].
func ReadyzHandler(
	startTime time.Time,
	version string,
	st store.Store,
	resets store.ResetTokens,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := slogx.FromContext(r.Context())

		check := func(name string, ping func(context.Context) error) string {
			ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
			defer cancel()

			if err := ping(ctx); err != nil {
				log.Error("readiness check failed", "dependency", name, "error", err)
				return "unavailable"
			}
			return "ok"
		}

		checks := &authsdk.HealthChecks{
			Database:    check("database", st.Ping),
			ResetTokens: "ok",
		}
		if p, ok := resets.(pinger); ok {
			checks.ResetTokens = check("reset_tokens", p.Ping)
		}

		status, code := "ok", http.StatusOK
		if checks.Database != "ok" || checks.ResetTokens != "ok" {
			status, code = "degraded", http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, code, authsdk.HealthResponse{
			Status:  status,
			Uptime:  uptime(startTime),
			Version: version,
			Checks:  checks,
		})
	}
}
