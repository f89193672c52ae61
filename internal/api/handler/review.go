package handler

import (
	"net/http"

	"github.com/getsy/restaurant-backend/internal/api"
	"github.com/getsy/restaurant-backend/internal/models"
	"github.com/getsy/restaurant-backend/internal/service"
)

// ReviewHandler handles review requests
type ReviewHandler struct {
	reviewService *service.ReviewService
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviewService *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
	}
}

// List lists all reviews
func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.reviewService.ListReviews(r.Context())
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	respondJSON(w, reviews)
}

// ForRestaurant lists the reviews of a restaurant
func (h *ReviewHandler) ForRestaurant(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "restaurant")
	if !ok {
		return
	}

	reviews, err := h.reviewService.ListReviewsForRestaurant(r.Context(), id)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	respondJSON(w, reviews)
}

// ForUser lists the reviews written by a user
func (h *ReviewHandler) ForUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "user")
	if !ok {
		return
	}

	reviews, err := h.reviewService.ListReviewsForUser(r.Context(), id)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	respondJSON(w, reviews)
}

// Get gets a review by ID
func (h *ReviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "review")
	if !ok {
		return
	}

	review, err := h.reviewService.GetReview(r.Context(), id)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	respondJSON(w, review)
}

// Create creates a review written by the authenticated user
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req models.ReviewRequest
	if !decode(w, r, &req) {
		return
	}
	req.UserID = &userID

	review, err := h.reviewService.CreateReview(r.Context(), req)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	respondCreated(w, review)
}

// Update applies a partial update to one of the authenticated user's reviews
func (h *ReviewHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	id, ok := pathID(w, r, "id", "review")
	if !ok {
		return
	}

	var patch models.ReviewPatch
	if !decode(w, r, &patch) {
		return
	}

	review, err := h.reviewService.UpdateReview(r.Context(), id, userID, patch)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	respondJSON(w, review)
}

// Delete deletes one of the authenticated user's reviews
func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	id, ok := pathID(w, r, "id", "review")
	if !ok {
		return
	}

	if err := h.reviewService.DeleteReview(r.Context(), id, userID); err != nil {
		api.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
