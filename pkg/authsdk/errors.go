package authsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Error codes returned in ErrorResponse.Error.
const (
	ErrorCodeInvalidRequest      = "invalid_request"
	ErrorCodeValidation          = "validation_error"
	ErrorCodeInvalidCredentials  = "invalid_credentials"
	ErrorCodeAccountDisabled     = "account_disabled"
	ErrorCodeAccountLocked       = "account_locked"
	ErrorCodeDuplicateIdentifier = "duplicate_identifier"
	ErrorCodeStaleObjectState    = "stale_object_state"
	ErrorCodeInvalidToken        = "invalid_token"
	ErrorCodeUserDoesNotExist    = "user_does_not_exist"
	ErrorCodeMailNotConfigured   = "mail_not_configured"
	ErrorCodeMailDisabled        = "mail_disabled"
	ErrorCodeNotFound            = "not_found"
	ErrorCodeUnauthorized        = "unauthorized"
	ErrorCodeForbidden           = "forbidden"
	ErrorCodeRateLimited         = "rate_limit_exceeded"
	ErrorCodeServerError         = "server_error"
)

// APIError is the client-side form of an error response.
type APIError struct {
	StatusCode  int
	Code        string
	Description string

	// Field is set for duplicate_identifier errors.
	Field string

	// LockedUntil is set for account_locked errors.
	LockedUntil *time.Time

	// Fields is set for validation errors.
	Fields map[string]string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// IsCode reports whether err is an APIError with the given code.
func IsCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

// parseErrorResponse turns a non-2xx response into an *APIError.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	// Validation errors carry "code" instead of "error".
	var valErr ValidationErrorResponse
	if err := json.Unmarshal(body, &valErr); err == nil && valErr.Code != "" {
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        valErr.Code,
			Description: valErr.Message,
			Fields:      valErr.Details,
		}
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        errResp.Error,
			Description: errResp.ErrorDescription,
			Field:       errResp.Field,
			LockedUntil: errResp.LockedUntil,
		}
	}

	// Fallback: create generic error from status code
	return &APIError{
		StatusCode:  resp.StatusCode,
		Code:        ErrorCodeServerError,
		Description: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
