package httpx

import (
	"net/http"
	"slices"
)

// RequireAnyRole lets the request through when the caller holds at least
// one of the listed roles. Must run after AuthnMiddleware.
func RequireAnyRole(required ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, have := range rolesFromCtx(r.Context()) {
				if slices.Contains(required, have) {
					next.ServeHTTP(w, r)
					return
				}
			}

			WriteJSON(w, http.StatusForbidden, map[string]string{
				"error":             "forbidden",
				"error_description": "caller lacks the required role",
			})
		})
	}
}
