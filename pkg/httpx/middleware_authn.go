package httpx

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/workouttracker/pkg/jwtx"
	"github.com/aussiebroadwan/workouttracker/pkg/slogx"
)

// AuthnMiddleware requires a valid bearer session token and injects its
// claims into the request context. Failures answer 401 with both an
// RFC 6750 challenge and the JSON error envelope used by every handler.
func AuthnMiddleware(v jwtx.Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				writeUnauthorized(w, "invalid_request", "missing bearer token")
				return
			}

			claims, err := v.Verify(raw)
			if err != nil {
				slogx.FromContext(r.Context()).Warn("session token rejected", "reason", err)
				writeUnauthorized(w, "invalid_token", describeVerifyError(err))
				return
			}

			next.ServeHTTP(w, r.WithContext(contextWithAuth(r.Context(), claims)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func describeVerifyError(err error) string {
	switch {
	case errors.Is(err, jwtx.ErrExpired):
		return "session token has expired"
	case errors.Is(err, jwtx.ErrNotYetValid):
		return "session token is not valid yet"
	default:
		return "session token could not be verified"
	}
}

func contextWithAuth(ctx context.Context, c jwtx.Claims) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, c.Subject)
	ctx = context.WithValue(ctx, CtxKeyRoles, c.Roles)
	ctx = context.WithValue(ctx, CtxKeyClaims, c)
	return slogx.WithUser(ctx, c.Subject)
}

func writeUnauthorized(w http.ResponseWriter, challenge, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="workouttracker", error="`+challenge+`", error_description="`+desc+`"`)
	WriteJSON(w, http.StatusUnauthorized, map[string]string{
		"error":             "unauthorized",
		"error_description": desc,
	})
}
