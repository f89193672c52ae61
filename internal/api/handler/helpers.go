package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/getsy/restaurant-backend/internal/api"
	"github.com/getsy/restaurant-backend/internal/middleware"
	"github.com/getsy/restaurant-backend/internal/models"
)

// decode reads a JSON body into v, answering 400 when it is malformed
func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		api.BadRequest(w, "Invalid request body")
		return false
	}
	return true
}

// pathID parses the named path variable as a UUID
func pathID(w http.ResponseWriter, r *http.Request, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		api.BadRequest(w, "Invalid "+label+" ID")
		return uuid.Nil, false
	}
	return id, true
}

// currentUser returns the authenticated user's id
func currentUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		api.Unauthorized(w, "User ID not found in context")
		return uuid.Nil, false
	}
	return userID, true
}

// selfOrAdmin allows the request when the caller is the user id or holds
// the admin role
func selfOrAdmin(w http.ResponseWriter, r *http.Request, id uuid.UUID) bool {
	userID, ok := currentUser(w, r)
	if !ok {
		return false
	}
	if userID == id {
		return true
	}
	if roleID, ok := middleware.GetRoleID(r.Context()); ok && roleID == models.AdminRoleID {
		return true
	}

	api.Forbidden(w, "Cannot access another user's account")
	return false
}

func respondJSON(w http.ResponseWriter, v interface{}) {
	api.RespondJSON(w, http.StatusOK, v)
}

func respondCreated(w http.ResponseWriter, v interface{}) {
	api.RespondJSON(w, http.StatusCreated, v)
}
