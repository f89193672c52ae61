package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/getsy/restaurant-backend/internal/models"
)

const reviewEntity = "review"

// ReviewRepository handles review data access
type ReviewRepository struct {
	db DBTX
}

// NewReviewRepository creates a new review repository
func NewReviewRepository(db DBTX) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// GetByID retrieves a review by ID
func (r *ReviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	query := `
		SELECT id, restaurant_id, user_id, description, rating, created_at, updated_at
		FROM reviews
		WHERE id = $1
	`

	var review models.Review
	if err := r.db.GetContext(ctx, &review, query, id); err != nil {
		return nil, classify(err, reviewEntity, "failed to get review")
	}

	return &review, nil
}

// GetForUser retrieves a review written by userID. A review by someone else
// is reported as not found.
func (r *ReviewRepository) GetForUser(ctx context.Context, id, userID uuid.UUID) (*models.Review, error) {
	query := `
		SELECT id, restaurant_id, user_id, description, rating, created_at, updated_at
		FROM reviews
		WHERE id = $1 AND user_id = $2
	`

	var review models.Review
	if err := r.db.GetContext(ctx, &review, query, id, userID); err != nil {
		return nil, classify(err, reviewEntity, "failed to get review")
	}

	return &review, nil
}

// List retrieves all reviews
func (r *ReviewRepository) List(ctx context.Context) ([]models.Review, error) {
	return r.list(ctx, "", nil)
}

// ListByRestaurant retrieves the reviews of a restaurant
func (r *ReviewRepository) ListByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]models.Review, error) {
	return r.list(ctx, "WHERE restaurant_id = $1", restaurantID)
}

// ListByUser retrieves the reviews written by a user
func (r *ReviewRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Review, error) {
	return r.list(ctx, "WHERE user_id = $1", userID)
}

func (r *ReviewRepository) list(ctx context.Context, where string, arg interface{}) ([]models.Review, error) {
	query := `
		SELECT id, restaurant_id, user_id, description, rating, created_at, updated_at
		FROM reviews ` + where + `
		ORDER BY created_at DESC
	`

	var args []interface{}
	if arg != nil {
		args = append(args, arg)
	}

	var reviews []models.Review
	if err := r.db.SelectContext(ctx, &reviews, query, args...); err != nil {
		return nil, classify(err, reviewEntity, "failed to list reviews")
	}

	return reviews, nil
}

// Create creates a new review
func (r *ReviewRepository) Create(ctx context.Context, review models.Review) (*models.Review, error) {
	query := `
		INSERT INTO reviews (restaurant_id, user_id, description, rating)
		VALUES ($1, $2, $3, $4)
		RETURNING id, restaurant_id, user_id, description, rating, created_at, updated_at
	`

	var created models.Review
	err := r.db.GetContext(
		ctx,
		&created,
		query,
		review.RestaurantID,
		review.UserID,
		review.Description,
		review.Rating,
	)
	if err != nil {
		return nil, classify(err, reviewEntity, "failed to create review")
	}

	return &created, nil
}

// Update updates the text and rating of a review owned by its user
func (r *ReviewRepository) Update(ctx context.Context, review models.Review) (*models.Review, error) {
	query := `
		UPDATE reviews
		SET description = $1, rating = $2, updated_at = NOW()
		WHERE id = $3 AND user_id = $4
		RETURNING id, restaurant_id, user_id, description, rating, created_at, updated_at
	`

	var updated models.Review
	err := r.db.GetContext(
		ctx,
		&updated,
		query,
		review.Description,
		review.Rating,
		review.ID,
		review.UserID,
	)
	if err != nil {
		return nil, classify(err, reviewEntity, "failed to update review")
	}

	return &updated, nil
}

// Delete deletes a review written by userID
func (r *ReviewRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return classifyDelete(err, reviewEntity, "failed to delete review")
	}

	return expectAffected(result, reviewEntity)
}
