package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/getsy/restaurant-backend/internal/api"
	"github.com/getsy/restaurant-backend/internal/models"
	"github.com/getsy/restaurant-backend/internal/service"
)

// UserHandler handles account and user-related requests
type UserHandler struct {
	authService *service.AuthService
}

// NewUserHandler creates a new user handler
func NewUserHandler(authService *service.AuthService) *UserHandler {
	return &UserHandler{
		authService: authService,
	}
}

// LoginResponse is returned by a successful login
type LoginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register creates a new account
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.UserRequest
	if !decode(w, r, &req) {
		return
	}

	user, err := h.authService.RegisterUser(r.Context(), req)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	respondCreated(w, user)
}

// Login exchanges credentials for a session token
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decode(w, r, &req) {
		return
	}

	token, user, err := h.authService.Login(r.Context(), req)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	respondJSON(w, LoginResponse{Token: token, User: user})
}

// RequestRecovery sends a password recovery code. The answer is the same
// whether or not the email belongs to an account.
func (h *UserHandler) RequestRecovery(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !decode(w, r, &req) {
		return
	}

	if err := h.authService.RequestPasswordRecovery(r.Context(), req.Email); err != nil {
		api.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

// ResetPassword redeems a recovery code
func (h *UserHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req models.PasswordResetRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.authService.ResetPassword(r.Context(), req); err != nil {
		api.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// List lists all users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.authService.ListUsers(r.Context())
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	respondJSON(w, users)
}

// Get gets a user by ID. Only the user themselves and admins may read it.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "user")
	if !ok || !selfOrAdmin(w, r, id) {
		return
	}
	h.getUser(w, r, id)
}

// Me gets the authenticated user
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	h.getUser(w, r, userID)
}

func (h *UserHandler) getUser(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	user, err := h.authService.GetUser(r.Context(), id)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	respondJSON(w, user)
}

// Update applies a partial update to a user's profile. Only the user
// themselves and admins may change it.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "user")
	if !ok || !selfOrAdmin(w, r, id) {
		return
	}

	var patch models.UserPatch
	if !decode(w, r, &patch) {
		return
	}

	user, err := h.authService.UpdateUser(r.Context(), id, patch)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	respondJSON(w, user)
}

// SetRole assigns a user to another role
func (h *UserHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "user")
	if !ok {
		return
	}

	var req models.RoleAssignment
	if !decode(w, r, &req) {
		return
	}

	user, err := h.authService.AssignRole(r.Context(), id, req)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	respondJSON(w, user)
}

// SetBlocked blocks or unblocks a user
func (h *UserHandler) SetBlocked(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "user")
	if !ok {
		return
	}

	var req struct {
		Blocked bool `json:"blocked"`
	}
	if !decode(w, r, &req) {
		return
	}

	user, err := h.authService.SetUserBlocked(r.Context(), id, req.Blocked)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	respondJSON(w, user)
}

// Delete deletes a user
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "user")
	if !ok {
		return
	}

	if err := h.authService.DeleteUser(r.Context(), id); err != nil {
		api.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ChangePassword changes the current user's password
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if !decode(w, r, &req) {
		return
	}

	if err := h.authService.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		api.WriteError(w, r, err)
		return
	}

	respondJSON(w, struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}{
		Success: true,
		Message: "Password changed successfully",
	})
}
