package authsdk

import (
	"context"
	"net/http"
)

// Role catalogue and mail settings. Every call here requires the Admin role.

func (s *Session) ListRoles(ctx context.Context) (*ListRolesResponse, error) {
	return sessionJSON[ListRolesResponse](ctx, s, http.MethodGet, "/v1/roles", nil)
}

// GetSmtpSettings returns the mail configuration without its password.
func (s *Session) GetSmtpSettings(ctx context.Context) (*SmtpSettingsResponse, error) {
	return sessionJSON[SmtpSettingsResponse](ctx, s, http.MethodGet, "/v1/smtp-settings", nil)
}

// SaveSmtpSettings stores the mail configuration. An empty Password keeps
// the stored one.
func (s *Session) SaveSmtpSettings(ctx context.Context, req SmtpSettingsRequest) (*SmtpSettingsResponse, error) {
	return sessionJSON[SmtpSettingsResponse](ctx, s, http.MethodPut, "/v1/smtp-settings", req)
}

// sessionJSON performs an authenticated request and decodes a 200 body into T.
func sessionJSON[T any](ctx context.Context, s *Session, method, path string, payload any) (*T, error) {
	resp, err := s.doAuthRequest(ctx, method, path, payload)
	if err != nil {
		return nil, err
	}

	var out T
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
