package router

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/getsy/restaurant-backend/internal/api"
	"github.com/getsy/restaurant-backend/internal/api/handler"
	"github.com/getsy/restaurant-backend/internal/middleware"
	"github.com/getsy/restaurant-backend/internal/models"
)

// Handlers groups the request handlers the router dispatches to
type Handlers struct {
	Restaurants  *handler.RestaurantHandler
	Events       *handler.EventHandler
	Reservations *handler.ReservationHandler
	Reviews      *handler.ReviewHandler
	Users        *handler.UserHandler
	Roles        *handler.RoleHandler
	WebSocket    http.Handler
}

// HealthChecker reports whether the backing store is reachable
type HealthChecker func(ctx context.Context) error

// Router handles HTTP routing
type Router struct {
	mux     *mux.Router
	handler http.Handler
}

// New creates a new router. Reads of the public catalogue are open; every
// other route requires a session token.
func New(h Handlers, auth middleware.TokenValidator, allowedOrigins []string, health HealthChecker) *Router {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		api.RespondJSON(w, http.StatusNotFound, api.ErrorResponse{Error: "route not found"})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		api.RespondJSON(w, http.StatusMethodNotAllowed, api.ErrorResponse{Error: "method not allowed"})
	})
	r.Use(middleware.Logger)

	r.HandleFunc("/health", func(w http.ResponseWriter, req *http.Request) {
		if health != nil {
			if err := health(req.Context()); err != nil {
				api.RespondJSON(w, http.StatusServiceUnavailable, map[string]bool{"alive": false})
				return
			}
		}
		api.RespondJSON(w, http.StatusOK, map[string]bool{"alive": true})
	}).Methods(http.MethodGet)

	public := r.PathPrefix("/api").Subrouter()

	public.HandleFunc("/auth/register", h.Users.Register).Methods(http.MethodPost)
	public.HandleFunc("/auth/login", h.Users.Login).Methods(http.MethodPost)
	public.HandleFunc("/auth/recover", h.Users.RequestRecovery).Methods(http.MethodPost)
	public.HandleFunc("/auth/reset", h.Users.ResetPassword).Methods(http.MethodPost)

	public.HandleFunc("/restaurants", h.Restaurants.List).Methods(http.MethodGet)
	public.HandleFunc("/restaurants/search", h.Restaurants.Search).Methods(http.MethodGet)
	public.HandleFunc("/restaurants/{id}", h.Restaurants.Get).Methods(http.MethodGet)
	public.HandleFunc("/restaurants/{id}/schedules", h.Restaurants.Schedules).Methods(http.MethodGet)
	public.HandleFunc("/restaurants/{id}/events", h.Events.ForRestaurant).Methods(http.MethodGet)
	public.HandleFunc("/restaurants/{id}/reviews", h.Reviews.ForRestaurant).Methods(http.MethodGet)

	public.HandleFunc("/events", h.Events.List).Methods(http.MethodGet)
	public.HandleFunc("/events/{id}", h.Events.Get).Methods(http.MethodGet)
	public.HandleFunc("/events/{id}/restaurants", h.Events.Restaurants).Methods(http.MethodGet)

	public.HandleFunc("/reviews", h.Reviews.List).Methods(http.MethodGet)
	public.HandleFunc("/reviews/{id}", h.Reviews.Get).Methods(http.MethodGet)

	// Protected routes
	authed := r.PathPrefix("/api").Subrouter()
	authed.Use(middleware.Auth(auth))

	authed.Handle("/ws", h.WebSocket).Methods(http.MethodGet)

	authed.HandleFunc("/users/me", h.Users.Me).Methods(http.MethodGet)
	authed.HandleFunc("/users/me/password", h.Users.ChangePassword).Methods(http.MethodPut)
	authed.HandleFunc("/users/{id}", h.Users.Get).Methods(http.MethodGet)
	authed.HandleFunc("/users/{id}", h.Users.Update).Methods(http.MethodPut, http.MethodPatch)
	authed.HandleFunc("/users/{id}/reviews", h.Reviews.ForUser).Methods(http.MethodGet)

	authed.HandleFunc("/reservations", h.Reservations.List).Methods(http.MethodGet)
	authed.HandleFunc("/reservations", h.Reservations.Create).Methods(http.MethodPost)
	authed.HandleFunc("/reservations/{id}", h.Reservations.Get).Methods(http.MethodGet)
	authed.HandleFunc("/reservations/{id}", h.Reservations.Update).Methods(http.MethodPut, http.MethodPatch)
	authed.HandleFunc("/reservations/{id}", h.Reservations.Delete).Methods(http.MethodDelete)
	authed.HandleFunc("/reservations/{id}/status", h.Reservations.SetStatus).Methods(http.MethodPut)

	authed.HandleFunc("/reviews", h.Reviews.Create).Methods(http.MethodPost)
	authed.HandleFunc("/reviews/{id}", h.Reviews.Update).Methods(http.MethodPut, http.MethodPatch)
	authed.HandleFunc("/reviews/{id}", h.Reviews.Delete).Methods(http.MethodDelete)

	// admin only
	admin := r.PathPrefix("/api").Subrouter()
	admin.Use(middleware.Auth(auth), middleware.RequireRole(models.AdminRoleID))

	admin.HandleFunc("/restaurants", h.Restaurants.Create).Methods(http.MethodPost)
	admin.HandleFunc("/restaurants/{id}", h.Restaurants.Update).Methods(http.MethodPut, http.MethodPatch)
	admin.HandleFunc("/restaurants/{id}", h.Restaurants.Delete).Methods(http.MethodDelete)

	admin.HandleFunc("/events", h.Events.Create).Methods(http.MethodPost)
	admin.HandleFunc("/events/{id}", h.Events.Update).Methods(http.MethodPut, http.MethodPatch)
	admin.HandleFunc("/events/{id}", h.Events.Delete).Methods(http.MethodDelete)

	admin.HandleFunc("/users", h.Users.List).Methods(http.MethodGet)
	admin.HandleFunc("/users/{id}", h.Users.Delete).Methods(http.MethodDelete)
	admin.HandleFunc("/users/{id}/block", h.Users.SetBlocked).Methods(http.MethodPut)
	admin.HandleFunc("/users/{id}/role", h.Users.SetRole).Methods(http.MethodPut)

	admin.HandleFunc("/roles", h.Roles.List).Methods(http.MethodGet)
	admin.HandleFunc("/roles", h.Roles.Create).Methods(http.MethodPost)
	admin.HandleFunc("/roles/{id}", h.Roles.Get).Methods(http.MethodGet)
	admin.HandleFunc("/roles/{id}", h.Roles.Update).Methods(http.MethodPut, http.MethodPatch)
	admin.HandleFunc("/roles/{id}", h.Roles.Delete).Methods(http.MethodDelete)

	return &Router{
		mux:     r,
		handler: middleware.CORS(allowedOrigins)(r),
	}
}

// ServeHTTP implements the http.Handler interface
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.handler.ServeHTTP(w, req)
}
