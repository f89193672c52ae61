package handler

import (
	"net/http"

	"github.com/getsy/restaurant-backend/internal/api"
	"github.com/getsy/restaurant-backend/internal/models"
	"github.com/getsy/restaurant-backend/internal/service"
)

// RoleHandler handles role requests
type RoleHandler struct {
	roleService *service.RoleService
}

// NewRoleHandler creates a new role handler
func NewRoleHandler(roleService *service.RoleService) *RoleHandler {
	return &RoleHandler{
		roleService: roleService,
	}
}

// List lists all roles
func (h *RoleHandler) List(w http.ResponseWriter, r *http.Request) {
	roles, err := h.roleService.ListRoles(r.Context())
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	respondJSON(w, roles)
}

// Get gets a role by ID
func (h *RoleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "role")
	if !ok {
		return
	}

	role, err := h.roleService.GetRole(r.Context(), id)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	respondJSON(w, role)
}

// Create creates a new role
func (h *RoleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.RoleRequest
	if !decode(w, r, &req) {
		return
	}

	role, err := h.roleService.CreateRole(r.Context(), req)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	respondCreated(w, role)
}

// Update applies a partial update to a role
func (h *RoleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "role")
	if !ok {
		return
	}

	var patch models.RolePatch
	if !decode(w, r, &patch) {
		return
	}

	role, err := h.roleService.UpdateRole(r.Context(), id, patch)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	respondJSON(w, role)
}

// Delete deletes a role
func (h *RoleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "role")
	if !ok {
		return
	}

	if err := h.roleService.DeleteRole(r.Context(), id); err != nil {
		api.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
