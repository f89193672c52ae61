package handler

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/getsy/restaurant-backend/internal/api"
	"github.com/getsy/restaurant-backend/internal/middleware"
	"github.com/getsy/restaurant-backend/internal/models"
	"github.com/getsy/restaurant-backend/internal/websockets"
)

// WebSocketHandler upgrades authenticated requests to the live reservation
// feed
type WebSocketHandler struct {
	hub      *websockets.Hub
	upgrader *websocket.Upgrader
}

func NewWebSocketHandler(hub *websockets.Hub, allowedOrigins []string) *WebSocketHandler {
	return &WebSocketHandler{
		hub:      hub,
		upgrader: websockets.NewUpgrader(allowedOrigins),
	}
}

// ServeHTTP accepts an optional restaurant_id to subscribe to right away.
// Administrators join as admin clients, everyone else as user clients who may
// only follow the restaurants they manage.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	clientType := websockets.ClientTypeUser
	if roleID, ok := middleware.GetRoleID(r.Context()); ok && roleID == models.AdminRoleID {
		clientType = websockets.ClientTypeAdmin
	}

	if requested := r.URL.Query().Get("client_type"); requested != "" {
		ct := websockets.ClientType(requested)
		if !ct.Valid() {
			api.BadRequest(w, "invalid client_type")
			return
		}
		if ct == websockets.ClientTypeAdmin && clientType != websockets.ClientTypeAdmin {
			api.Forbidden(w, "admin feed requires the admin role")
			return
		}
		clientType = ct
	}

	restaurantID := r.URL.Query().Get("restaurant_id")
	if restaurantID != "" {
		if _, err := uuid.Parse(restaurantID); err != nil {
			api.BadRequest(w, "Invalid restaurant ID")
			return
		}

		if err := h.hub.CanFollow(r.Context(), userID.String(), clientType, restaurantID); err != nil {
			if errors.Is(err, websockets.ErrFollowDenied) {
				api.Forbidden(w, err.Error())
				return
			}
			api.WriteError(w, r, err)
			return
		}
	}

	// Upgrade the HTTP connection to a WebSocket connection
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// If upgrading fails, the upgrader has already written the error to the response
		return
	}

	websockets.ServeWs(h.hub, conn, userID.String(), clientType, restaurantID)
}
