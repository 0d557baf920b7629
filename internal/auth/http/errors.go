package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/workouttracker/internal/auth/service"
	"github.com/aussiebroadwan/workouttracker/pkg/authsdk"
	"github.com/aussiebroadwan/workouttracker/pkg/httpx"
	"github.com/aussiebroadwan/workouttracker/pkg/slogx"
)

// writeError translates a service error into an HTTP response. Unknown
// errors are logged and reported as 500 without detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr   *service.ValidationError
		locked *service.AccountLockedError
		dup    *service.DuplicateIdentifierError
	)

	switch {
	case errors.As(err, &verr):
		writeValidation(w, verr.Fields)

	// Not-found and bad password look the same to the caller.
	case errors.Is(err, service.ErrAccountNotFound), errors.Is(err, service.ErrInvalidCredentials):
		writeErr(w, http.StatusUnauthorized, authsdk.ErrorCodeInvalidCredentials, "Invalid username or password")
	case errors.Is(err, service.ErrAccountDisabled):
		writeErr(w, http.StatusForbidden, authsdk.ErrorCodeAccountDisabled, "Account is disabled")
	case errors.As(err, &locked):
		until := locked.Until.UTC()
		httpx.WriteJSON(w, http.StatusLocked, authsdk.ErrorResponse{
			Error:            authsdk.ErrorCodeAccountLocked,
			ErrorDescription: "Account is locked after too many failed attempts",
			LockedUntil:      &until,
		})

	case errors.As(err, &dup):
		httpx.WriteJSON(w, http.StatusConflict, authsdk.ErrorResponse{
			Error:            authsdk.ErrorCodeDuplicateIdentifier,
			ErrorDescription: dup.Error(),
			Field:            dup.Field,
		})
	case errors.Is(err, service.ErrStaleObjectState):
		writeErr(w, http.StatusConflict, authsdk.ErrorCodeStaleObjectState,
			"The record was changed by someone else; reload and try again")

	case errors.Is(err, service.ErrMailNotConfigured):
		writeErr(w, http.StatusServiceUnavailable, authsdk.ErrorCodeMailNotConfigured, "Mail settings are not configured")
	case errors.Is(err, service.ErrMailDisabled):
		writeErr(w, http.StatusServiceUnavailable, authsdk.ErrorCodeMailDisabled, "Mail is disabled")
	case errors.Is(err, service.ErrInvalidToken):
		writeErr(w, http.StatusBadRequest, authsdk.ErrorCodeInvalidToken, "Reset token is invalid or expired")
	case errors.Is(err, service.ErrUserDoesNotExist):
		writeErr(w, http.StatusNotFound, authsdk.ErrorCodeUserDoesNotExist, "User does not exist")
	case errors.Is(err, service.ErrUserNotFound):
		writeErr(w, http.StatusNotFound, authsdk.ErrorCodeNotFound, "User not found")
	case errors.Is(err, service.ErrRoleNotFound):
		writeErr(w, http.StatusNotFound, authsdk.ErrorCodeNotFound, "Role not found")

	case errors.Is(err, service.ErrBootstrapDisabled):
		writeErr(w, http.StatusNotFound, authsdk.ErrorCodeNotFound, "Bootstrap endpoint is not enabled")
	case errors.Is(err, service.ErrBootstrapAlready):
		writeErr(w, http.StatusUnauthorized, authsdk.ErrorCodeUnauthorized, "System has already been bootstrapped")
	case errors.Is(err, service.ErrBootstrapUnauthorized):
		writeErr(w, http.StatusUnauthorized, authsdk.ErrorCodeUnauthorized, "Invalid bootstrap token")

	default:
		slogx.FromContext(r.Context()).Error("request failed", slog.Any("error", err))
		writeErr(w, http.StatusInternalServerError, authsdk.ErrorCodeServerError, "An internal error occurred")
	}
}

func writeErr(w http.ResponseWriter, status int, code, description string) {
	httpx.WriteJSON(w, status, authsdk.ErrorResponse{Error: code, ErrorDescription: description})
}

func writeValidation(w http.ResponseWriter, fields map[string]string) {
	httpx.WriteJSON(w, http.StatusBadRequest, authsdk.ValidationErrorResponse{
		Code:    authsdk.ErrorCodeValidation,
		Message: "validation failed for some fields",
		Details: fields,
	})
}

// decode reads the JSON body into dst, writing a 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httpx.DecodeJSON(w, r, dst); err != nil {
		writeErr(w, http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest, "Request body must be valid JSON")
		return false
	}
	return true
}
