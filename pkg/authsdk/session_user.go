package authsdk

import (
	"context"
	"net/http"
	"net/url"
)

// Me returns the account behind the session.
func (s *Session) Me(ctx context.Context) (*UserResponse, error) {
	return s.userRequest(ctx, http.MethodGet, "/v1/users/me", nil, http.StatusOK)
}

// ============================================================================
// Admin operations (require the Admin role)
// ============================================================================

func (s *Session) ListUsers(ctx context.Context) (*ListUsersResponse, error) {
	return sessionJSON[ListUsersResponse](ctx, s, http.MethodGet, "/v1/users", nil)
}

func (s *Session) GetUser(ctx context.Context, id string) (*UserResponse, error) {
	return s.userRequest(ctx, http.MethodGet, userPath(id), nil, http.StatusOK)
}

func (s *Session) CreateUser(ctx context.Context, req CreateUserRequest) (*UserResponse, error) {
	return s.userRequest(ctx, http.MethodPost, "/v1/users", req, http.StatusCreated)
}

// UpdateUser fails with stale_object_state if req.ConcurrencyStamp is not
// the stored stamp.
func (s *Session) UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (*UserResponse, error) {
	return s.userRequest(ctx, http.MethodPut, userPath(id), req, http.StatusOK)
}

func (s *Session) SetUserEnabled(ctx context.Context, id string, enabled bool) (*UserResponse, error) {
	return s.userRequest(ctx, http.MethodPost, userPath(id)+"/enabled", SetEnabledRequest{Enabled: enabled}, http.StatusOK)
}

func (s *Session) AddUserRole(ctx context.Context, id, role string) (*UserResponse, error) {
	return s.userRequest(ctx, http.MethodPost, userPath(id)+"/roles", AddRoleRequest{Role: role}, http.StatusOK)
}

func (s *Session) RemoveUserRole(ctx context.Context, id, role string) (*UserResponse, error) {
	return s.userRequest(ctx, http.MethodDelete, userPath(id)+"/roles/"+url.PathEscape(role), nil, http.StatusOK)
}

func (s *Session) DeleteUser(ctx context.Context, id string) error {
	resp, err := s.doAuthRequest(ctx, http.MethodDelete, userPath(id), nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

func (s *Session) userRequest(ctx context.Context, method, path string, payload any, expected int) (*UserResponse, error) {
	resp, err := s.doAuthRequest(ctx, method, path, payload)
	if err != nil {
		return nil, err
	}

	var user UserResponse
	if err := decodeJSON(resp, &user, expected); err != nil {
		return nil, err
	}
	return &user, nil
}

func userPath(id string) string {
	return "/v1/users/" + url.PathEscape(id)
}
