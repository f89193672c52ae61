package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getsy/restaurant-backend/internal/apperr"
	"github.com/getsy/restaurant-backend/internal/models"
)

var reviewColumns = []string{"id", "restaurant_id", "user_id", "description", "rating", "created_at", "updated_at"}

func TestCreateReviewRejectsBadRating(t *testing.T) {
	repos, mock := newRepos(t)
	svc := NewReviewService(repos)

	for _, rating := range []float64{-1, 5.5, 4.25} {
		_, err := svc.CreateReview(context.Background(), models.ReviewRequest{
			RestaurantID: ptr(uuid.New()),
			UserID:       ptr(uuid.New()),
			Description:  "Great crust",
			Rating:       ptr(rating),
		})
		e, ok := apperr.As(err)
		require.True(t, ok, "rating %v", rating)
		assert.Equal(t, "rating", e.Field)
	}

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateReviewUnknownRestaurant(t *testing.T) {
	repos, mock := newRepos(t)
	svc := NewReviewService(repos)

	mock.ExpectQuery("INSERT INTO reviews").WillReturnError(fkError("reviews_restaurant_id_fkey"))

	_, err := svc.CreateReview(context.Background(), models.ReviewRequest{
		RestaurantID: ptr(uuid.New()),
		UserID:       ptr(uuid.New()),
		Description:  "Great crust",
		Rating:       ptr(4.5),
	})
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.CodeInvalidReference, e.Code)
	assert.Equal(t, "restaurant_id", e.Field)
}

func TestListReviewsForRestaurantEmpty(t *testing.T) {
	repos, mock := newRepos(t)
	svc := NewReviewService(repos)

	mock.ExpectQuery("FROM reviews").WillReturnRows(sqlmock.NewRows(reviewColumns))

	_, err := svc.ListReviewsForRestaurant(context.Background(), uuid.New())
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindNotFound, e.Kind)
	assert.Equal(t, "no reviews found for this restaurant", e.Message)
}

func TestUpdateReviewKeepsUnsetFields(t *testing.T) {
	repos, mock := newRepos(t)
	svc := NewReviewService(repos)

	id := uuid.New()
	restaurantID := uuid.New()
	userID := uuid.New()
	now := time.Now()

	mock.ExpectQuery("FROM reviews").
		WithArgs(id, userID).
		WillReturnRows(sqlmock.NewRows(reviewColumns).
			AddRow(id.String(), restaurantID.String(), userID.String(), "Great crust", 4.0, now, now))
	mock.ExpectQuery("UPDATE reviews").
		WithArgs("Great crust", 4.5, id, userID).
		WillReturnRows(sqlmock.NewRows(reviewColumns).
			AddRow(id.String(), restaurantID.String(), userID.String(), "Great crust", 4.5, now, now))

	updated, err := svc.UpdateReview(context.Background(), id, userID, models.ReviewPatch{Rating: ptr(4.5)})
	require.NoError(t, err)
	assert.Equal(t, 4.5, updated.Rating)
	assert.Equal(t, "Great crust", updated.Description)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateReviewBlankDescription(t *testing.T) {
	repos, _ := newRepos(t)
	svc := NewReviewService(repos)

	_, err := svc.UpdateReview(context.Background(), uuid.New(), uuid.New(), models.ReviewPatch{Description: ptr("  ")})
	assert.True(t, apperr.HasCode(err, apperr.CodeMissingField))
}

func TestUpdateAnotherUsersReviewIsNotFound(t *testing.T) {
	repos, mock := newRepos(t)
	svc := NewReviewService(repos)

	id := uuid.New()
	userID := uuid.New()
	mock.ExpectQuery("FROM reviews").WithArgs(id, userID).WillReturnError(sql.ErrNoRows)

	_, err := svc.UpdateReview(context.Background(), id, userID, models.ReviewPatch{Rating: ptr(1.0)})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteAnotherUsersReviewIsNotFound(t *testing.T) {
	repos, mock := newRepos(t)
	svc := NewReviewService(repos)

	id := uuid.New()
	userID := uuid.New()
	mock.ExpectExec("DELETE FROM reviews").WithArgs(id, userID).WillReturnResult(sqlmock.NewResult(0, 0))

	err := svc.DeleteReview(context.Background(), id, userID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}
