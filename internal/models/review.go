package models

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/getsy/restaurant-backend/internal/apperr"
)

const (
	MinRating = 0.0
	MaxRating = 5.0
)

// ValidateRating checks that rating lies in [0, 5] with at most one decimal
func ValidateRating(rating float64) error {
	if math.IsNaN(rating) || rating < MinRating || rating > MaxRating {
		return apperr.Invalid("rating", "must be between 0 and 5")
	}
	scaled := rating * 10
	if math.Abs(scaled-math.Round(scaled)) > 1e-9 {
		return apperr.Invalid("rating", "must have at most one decimal place")
	}
	return nil
}

// Review is a user's rating and comment for a restaurant
type Review struct {
	ID           uuid.UUID `db:"id" json:"id"`
	RestaurantID uuid.UUID `db:"restaurant_id" json:"restaurant_id"`
	UserID       uuid.UUID `db:"user_id" json:"user_id"`
	Description  string    `db:"description" json:"description"`
	Rating       float64   `db:"rating" json:"rating"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// ReviewRequest is used for review creation
type ReviewRequest struct {
	RestaurantID *uuid.UUID `json:"restaurant_id" validate:"required"`
	UserID       *uuid.UUID `json:"user_id" validate:"required"`
	Description  string     `json:"description" validate:"required"`
	Rating       *float64   `json:"rating" validate:"required"`
}

// ReviewPatch is used for partial review updates. A review stays attached to
// its restaurant and author.
type ReviewPatch struct {
	Description *string  `json:"description"`
	Rating      *float64 `json:"rating"`
}

// Apply merges the fields present in the patch into review
func (p ReviewPatch) Apply(review *Review) {
	if p.Description != nil {
		review.Description = *p.Description
	}
	if p.Rating != nil {
		review.Rating = *p.Rating
	}
}
