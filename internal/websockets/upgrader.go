package websockets

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// NewUpgrader returns an upgrader that accepts connections from the given
// origins. Requests without an Origin header (non-browser clients) are allowed.
func NewUpgrader(allowedOrigins []string) *websocket.Upgrader {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}

	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || allowed["*"] || allowed[origin]
		},
		Error: func(w http.ResponseWriter, r *http.Request, status int, reason error) {
			logrus.WithError(reason).WithField("status", status).Warn("WebSocket upgrade failed")
			http.Error(w, reason.Error(), status)
		},
	}
}
