package http

import (
	"net/http"

	"github.com/aussiebroadwan/workouttracker/internal/auth/domain"
	"github.com/aussiebroadwan/workouttracker/internal/auth/service"
	"github.com/aussiebroadwan/workouttracker/pkg/authsdk"
	"github.com/aussiebroadwan/workouttracker/pkg/httpx"
)

// RolesHandler lists the fixed role catalogue (Admin, User).
type RolesHandler struct {
	RolesService *service.RolesService
}

// ServeHTTP handles the list roles endpoint
//
//	@Summary		List all roles
//	@Description	Returns a list of all available roles in the system. Requires the Admin role.
//	@Tags			Roles
//	@Produce		json
//	@Success		200	{object}	authsdk.ListRolesResponse	"List of roles"
//	@Failure		401	{object}	authsdk.ErrorResponse		"Unauthorized - missing or invalid token"
//	@Failure		403	{object}	authsdk.ErrorResponse		"Forbidden - Admin role required"
//	@Failure		500	{object}	authsdk.ErrorResponse		"Internal server error"
//	@Security		BearerAuth
//	@Router			/v1/roles [get].
func (h *RolesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	roles, err := h.RolesService.ListAll(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := authsdk.ListRolesResponse{Roles: make([]authsdk.RoleInfo, 0, len(roles))}
	for _, role := range roles {
		resp.Roles = append(resp.Roles, toRoleInfo(role))
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func toRoleInfo(r domain.Role) authsdk.RoleInfo {
	return authsdk.RoleInfo{ID: r.ID, Name: r.Name}
}
