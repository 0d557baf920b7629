package http

import (
	"net/http"

	"github.com/aussiebroadwan/workouttracker/internal/auth/domain"
	"github.com/aussiebroadwan/workouttracker/internal/auth/service"
	"github.com/aussiebroadwan/workouttracker/pkg/authsdk"
	"github.com/aussiebroadwan/workouttracker/pkg/httpx"
	"github.com/aussiebroadwan/workouttracker/pkg/idx"
)

type UsersHandler struct {
	UserService *service.UserService
}

func toUserResponse(u domain.User) authsdk.UserResponse {
	return authsdk.UserResponse{
		ID:                u.ID,
		Username:          u.Username,
		Email:             u.Email,
		FirstName:         u.FirstName,
		LastName:          u.LastName,
		PhoneNumber:       u.PhoneNumber,
		Enabled:           u.Enabled,
		Role:              u.Role,
		LockoutEnd:        u.LockoutEnd,
		AccessFailedCount: u.AccessFailedCount,
		ConcurrencyStamp:  u.ConcurrencyStamp,
		CreatedAt:         u.CreatedAt,
		CreatedBy:         u.CreatedBy,
		UpdatedAt:         u.UpdatedAt,
		ModifiedBy:        u.ModifiedBy,
	}
}

// pathUserID reads the {id} segment. Anything that is not a ULID cannot
// name a user, so it answers 404 without touching the store.
func pathUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, err := idx.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, r, service.ErrUserNotFound)
		return "", false
	}
	return id.String(), true
}

// actor names the authenticated caller for audit fields.
func actor(r *http.Request) string {
	if claims, ok := httpx.ClaimsFromContext(r.Context()); ok && claims.Name != "" {
		return claims.Name
	}
	id, _ := httpx.UserIDFromContext(r.Context())
	return id
}

// HandleMe returns the caller's own account.
//
//	@Summary		Current user
//	@Tags			Users
//	@Produce		json
//	@Success		200	{object}	authsdk.UserResponse
//	@Failure		401	{object}	authsdk.ErrorResponse	"Missing or invalid token"
//	@Security		BearerAuth
//	@Router			/v1/users/me [get].
func (h *UsersHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.UserIDFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, authsdk.ErrorCodeUnauthorized, "missing subject")
		return
	}

	u, err := h.UserService.Get(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(u))
}

// HandleList returns every account.
//
//	@Summary		List users
//	@Tags			Users
//	@Produce		json
//	@Success		200	{object}	authsdk.ListUsersResponse
//	@Failure		403	{object}	authsdk.ErrorResponse	"Admin role required"
//	@Security		BearerAuth
//	@Router			/v1/users [get].
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.UserService.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := authsdk.ListUsersResponse{Users: make([]authsdk.UserResponse, len(users))}
	for i, u := range users {
		resp.Users[i] = toUserResponse(u)
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleGet returns one account.
//
//	@Summary		Get user
//	@Tags			Users
//	@Produce		json
//	@Param			id	path		string	true	"User ID"
//	@Success		200	{object}	authsdk.UserResponse
//	@Failure		404	{object}	authsdk.ErrorResponse	"User not found"
//	@Security		BearerAuth
//	@Router			/v1/users/{id} [get].
func (h *UsersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUserID(w, r)
	if !ok {
		return
	}

	u, err := h.UserService.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(u))
}

// HandleCreate adds an account with a chosen role.
//
//	@Summary		Create user
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.CreateUserRequest	true	"Account details"
//	@Success		201		{object}	authsdk.UserResponse
//	@Failure		400		{object}	authsdk.ValidationErrorResponse
//	@Failure		404		{object}	authsdk.ErrorResponse	"Role not found"
//	@Failure		409		{object}	authsdk.ErrorResponse	"Username or email already in use"
//	@Security		BearerAuth
//	@Router			/v1/users [post].
func (h *UsersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req authsdk.CreateUserRequest
	if !decode(w, r, &req) {
		return
	}

	u, err := h.UserService.Create(r.Context(), service.CreateUserInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
		Role:        req.Role,
		Enabled:     req.Enabled,
	}, actor(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toUserResponse(u))
}

// HandleUpdate changes an account guarded by its concurrency stamp.
//
//	@Summary		Update user
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"User ID"
//	@Param			request	body		authsdk.UpdateUserRequest	true	"New values and the stamp last read"
//	@Success		200		{object}	authsdk.UserResponse
//	@Failure		409		{object}	authsdk.ErrorResponse	"Stale stamp or email in use"
//	@Security		BearerAuth
//	@Router			/v1/users/{id} [put].
func (h *UsersHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUserID(w, r)
	if !ok {
		return
	}

	var req authsdk.UpdateUserRequest
	if !decode(w, r, &req) {
		return
	}

	u, err := h.UserService.Update(r.Context(), service.UpdateUserInput{
		ID:               id,
		Email:            req.Email,
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		PhoneNumber:      req.PhoneNumber,
		Role:             req.Role,
		Enabled:          req.Enabled,
		ConcurrencyStamp: req.ConcurrencyStamp,
	}, actor(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(u))
}

// HandleSetEnabled enables or disables an account.
//
//	@Summary		Enable or disable user
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"User ID"
//	@Param			request	body		authsdk.SetEnabledRequest	true	"Enabled flag"
//	@Success		200		{object}	authsdk.UserResponse
//	@Security		BearerAuth
//	@Router			/v1/users/{id}/enabled [post].
func (h *UsersHandler) HandleSetEnabled(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUserID(w, r)
	if !ok {
		return
	}

	var req authsdk.SetEnabledRequest
	if !decode(w, r, &req) {
		return
	}

	u, err := h.UserService.SetEnabled(r.Context(), id, req.Enabled, actor(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(u))
}

// HandleAddRole grants a role.
//
//	@Summary		Add role to user
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"User ID"
//	@Param			request	body		authsdk.AddRoleRequest	true	"Role name"
//	@Success		200		{object}	authsdk.UserResponse
//	@Security		BearerAuth
//	@Router			/v1/users/{id}/roles [post].
func (h *UsersHandler) HandleAddRole(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUserID(w, r)
	if !ok {
		return
	}

	var req authsdk.AddRoleRequest
	if !decode(w, r, &req) {
		return
	}

	u, err := h.UserService.AddRole(r.Context(), id, req.Role, actor(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(u))
}

// HandleRemoveRole revokes a role.
//
//	@Summary		Remove role from user
//	@Tags			Users
//	@Produce		json
//	@Param			id		path		string	true	"User ID"
//	@Param			role	path		string	true	"Role name"
//	@Success		200		{object}	authsdk.UserResponse
//	@Security		BearerAuth
//	@Router			/v1/users/{id}/roles/{role} [delete].
func (h *UsersHandler) HandleRemoveRole(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUserID(w, r)
	if !ok {
		return
	}

	u, err := h.UserService.RemoveRole(r.Context(), id, r.PathValue("role"), actor(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(u))
}

// HandleDelete removes an account.
//
//	@Summary		Delete user
//	@Tags			Users
//	@Param			id	path	string	true	"User ID"
//	@Success		204	"Deleted"
//	@Failure		404	{object}	authsdk.ErrorResponse	"User not found"
//	@Security		BearerAuth
//	@Router			/v1/users/{id} [delete].
func (h *UsersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUserID(w, r)
	if !ok {
		return
	}

	if err := h.UserService.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
