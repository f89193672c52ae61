package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/getsy/restaurant-backend/internal/apperr"
	"github.com/getsy/restaurant-backend/internal/db/repository"
	"github.com/getsy/restaurant-backend/internal/models"
)

// ReviewService handles restaurant reviews
type ReviewService struct {
	repos *repository.Repositories
}

// NewReviewService creates a new review service
func NewReviewService(repos *repository.Repositories) *ReviewService {
	return &ReviewService{
		repos: repos,
	}
}

// CreateReview creates a new review
func (s *ReviewService) CreateReview(ctx context.Context, req models.ReviewRequest) (*models.Review, error) {
	if err := models.Validate(req); err != nil {
		return nil, err
	}

	if err := models.ValidateRating(*req.Rating); err != nil {
		return nil, err
	}

	return s.repos.Review.Create(ctx, models.Review{
		RestaurantID: *req.RestaurantID,
		UserID:       *req.UserID,
		Description:  req.Description,
		Rating:       *req.Rating,
	})
}

// GetReview retrieves a review by ID
func (s *ReviewService) GetReview(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	return s.repos.Review.GetByID(ctx, id)
}

// ListReviews lists every review
func (s *ReviewService) ListReviews(ctx context.Context) ([]models.Review, error) {
	reviews, err := s.repos.Review.List(ctx)
	return nonEmptyReviews(reviews, err, "no reviews found")
}

// ListReviewsForRestaurant lists the reviews of a restaurant
func (s *ReviewService) ListReviewsForRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]models.Review, error) {
	reviews, err := s.repos.Review.ListByRestaurant(ctx, restaurantID)
	return nonEmptyReviews(reviews, err, "no reviews found for this restaurant")
}

// ListReviewsForUser lists the reviews written by a user
func (s *ReviewService) ListReviewsForUser(ctx context.Context, userID uuid.UUID) ([]models.Review, error) {
	reviews, err := s.repos.Review.ListByUser(ctx, userID)
	return nonEmptyReviews(reviews, err, "no reviews found for this user")
}

func nonEmptyReviews(reviews []models.Review, err error, message string) ([]models.Review, error) {
	if err != nil {
		return nil, err
	}
	if len(reviews) == 0 {
		return nil, apperr.NoResults("review", message)
	}
	return reviews, nil
}

// UpdateReview merges the fields present in patch into a review written by
// userID
func (s *ReviewService) UpdateReview(ctx context.Context, id, userID uuid.UUID, patch models.ReviewPatch) (*models.Review, error) {
	if patch.Rating != nil {
		if err := models.ValidateRating(*patch.Rating); err != nil {
			return nil, err
		}
	}
	if patch.Description != nil && strings.TrimSpace(*patch.Description) == "" {
		return nil, apperr.Missing("description")
	}

	review, err := s.repos.Review.GetForUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	patch.Apply(review)
	return s.repos.Review.Update(ctx, *review)
}

// DeleteReview deletes a review written by userID
func (s *ReviewService) DeleteReview(ctx context.Context, id, userID uuid.UUID) error {
	return s.repos.Review.Delete(ctx, id, userID)
}
