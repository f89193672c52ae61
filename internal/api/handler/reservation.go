package handler

import (
	"net/http"

	"github.com/getsy/restaurant-backend/internal/api"
	"github.com/getsy/restaurant-backend/internal/apperr"
	"github.com/getsy/restaurant-backend/internal/models"
	"github.com/getsy/restaurant-backend/internal/service"
)

// ReservationHandler handles reservation requests. Every reservation is
// scoped to the authenticated user.
type ReservationHandler struct {
	reservationService *service.ReservationService
}

// NewReservationHandler creates a new reservation handler
func NewReservationHandler(reservationService *service.ReservationService) *ReservationHandler {
	return &ReservationHandler{
		reservationService: reservationService,
	}
}

// List lists the user's reservations, optionally filtered by status
func (h *ReservationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var status *models.ReservationStatus
	if statusStr := r.URL.Query().Get("status"); statusStr != "" {
		s := models.ReservationStatus(statusStr)
		status = &s
	}

	reservations, err := h.reservationService.ListReservationsForUser(r.Context(), userID, status)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	respondJSON(w, reservations)
}

// Get gets one of the user's reservations
func (h *ReservationHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", "reservation")
	if !ok {
		return
	}

	reservation, err := h.reservationService.GetReservation(r.Context(), id, userID)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	respondJSON(w, reservation)
}

// Create books a table for the authenticated user
func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req models.ReservationRequest
	if !decode(w, r, &req) {
		return
	}
	req.UserID = &userID

	reservation, err := h.reservationService.CreateReservation(r.Context(), req)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	respondCreated(w, reservation)
}

// Update applies a partial update to one of the user's reservations
func (h *ReservationHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", "reservation")
	if !ok {
		return
	}

	var patch models.ReservationPatch
	if !decode(w, r, &patch) {
		return
	}

	reservation, err := h.reservationService.UpdateReservation(r.Context(), id, userID, patch)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	respondJSON(w, reservation)
}

// SetStatus moves one of the user's reservations to a new status
func (h *ReservationHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", "reservation")
	if !ok {
		return
	}

	var req struct {
		Status models.ReservationStatus `json:"status"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.Status == "" {
		api.WriteError(w, r, apperr.Missing("status"))
		return
	}

	reservation, err := h.reservationService.SetReservationStatus(r.Context(), id, userID, req.Status)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	respondJSON(w, reservation)
}

// Delete deletes one of the user's reservations
func (h *ReservationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", "reservation")
	if !ok {
		return
	}

	if err := h.reservationService.DeleteReservation(r.Context(), id, userID); err != nil {
		api.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
