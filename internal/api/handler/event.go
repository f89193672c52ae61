package handler

import (
	"net/http"

	"github.com/getsy/restaurant-backend/internal/api"
	"github.com/getsy/restaurant-backend/internal/models"
	"github.com/getsy/restaurant-backend/internal/service"
)

// EventHandler handles event requests
type EventHandler struct {
	eventService *service.EventService
}

// NewEventHandler creates a new event handler
func NewEventHandler(eventService *service.EventService) *EventHandler {
	return &EventHandler{
		eventService: eventService,
	}
}

// List lists all events
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	events, err := h.eventService.ListEvents(r.Context())
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	respondJSON(w, events)
}

// Get gets an event by ID
func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "event")
	if !ok {
		return
	}

	event, err := h.eventService.GetEvent(r.Context(), id)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	respondJSON(w, event)
}

// Create creates a new event
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.EventRequest
	if !decode(w, r, &req) {
		return
	}

	event, err := h.eventService.CreateEvent(r.Context(), req)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	respondCreated(w, event)
}

// Update applies a partial update to an event
func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "event")
	if !ok {
		return
	}

	var patch models.EventPatch
	if !decode(w, r, &patch) {
		return
	}

	event, err := h.eventService.UpdateEvent(r.Context(), id, patch)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	respondJSON(w, event)
}

// Delete deletes an event
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "event")
	if !ok {
		return
	}

	if err := h.eventService.DeleteEvent(r.Context(), id); err != nil {
		api.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Restaurants lists the restaurants taking part in an event. It accepts the
// same query parameters as the restaurant list.
func (h *EventHandler) Restaurants(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "event")
	if !ok {
		return
	}

	filter, _, err := parseRestaurantFilter(r.URL.Query())
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	restaurants, err := h.eventService.ListEventRestaurants(r.Context(), id, filter)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	respondJSON(w, restaurants)
}

// ForRestaurant lists the events a restaurant takes part in
func (h *EventHandler) ForRestaurant(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "restaurant")
	if !ok {
		return
	}

	events, err := h.eventService.ListRestaurantEvents(r.Context(), id)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	respondJSON(w, events)
}
