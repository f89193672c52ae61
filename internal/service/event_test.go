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

var eventColumns = []string{"id", "name", "description", "created_at", "updated_at"}

func TestCreateEventRequiresDescription(t *testing.T) {
	repos, mock := newRepos(t)
	svc := NewEventService(repos)

	_, err := svc.CreateEvent(context.Background(), models.EventRequest{Name: "Jazz night"})
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.CodeMissingField, e.Code)
	assert.Equal(t, "description", e.Field)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListEventsEmptyIsNotFound(t *testing.T) {
	repos, mock := newRepos(t)
	svc := NewEventService(repos)

	mock.ExpectQuery("FROM events").WillReturnRows(sqlmock.NewRows(eventColumns))

	_, err := svc.ListEvents(context.Background())
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindNotFound, e.Kind)
	assert.Equal(t, "no events found", e.Message)
}

func TestUpdateEventKeepsUnsetFields(t *testing.T) {
	repos, mock := newRepos(t)
	svc := NewEventService(repos)

	id := uuid.New()
	now := time.Now()

	mock.ExpectQuery("FROM events").WithArgs(id).
		WillReturnRows(sqlmock.NewRows(eventColumns).AddRow(id.String(), "Jazz night", "Live music", now, now))
	mock.ExpectQuery("UPDATE events").
		WithArgs("Blues night", "Live music", id).
		WillReturnRows(sqlmock.NewRows(eventColumns).AddRow(id.String(), "Blues night", "Live music", now, now))

	updated, err := svc.UpdateEvent(context.Background(), id, models.EventPatch{Name: ptr("Blues night")})
	require.NoError(t, err)
	assert.Equal(t, "Blues night", updated.Name)
	assert.Equal(t, "Live music", updated.Description)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListRestaurantEventsUnknownRestaurant(t *testing.T) {
	repos, mock := newRepos(t)
	svc := NewEventService(repos)

	mock.ExpectQuery("FROM restaurants WHERE id").WillReturnError(sql.ErrNoRows)

	_, err := svc.ListRestaurantEvents(context.Background(), uuid.New())
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListEventRestaurants(t *testing.T) {
	repos, mock := newRepos(t)
	svc := NewEventService(repos)

	eventID := uuid.New()
	restaurantID := uuid.New()
	now := time.Now()

	mock.ExpectQuery("FROM events").WithArgs(eventID).
		WillReturnRows(sqlmock.NewRows(eventColumns).AddRow(eventID.String(), "Jazz night", "Live music", now, now))
	mock.ExpectQuery("JOIN restaurants r").WithArgs(eventID).
		WillReturnRows(restaurantRows(restaurantID, "Luigi's", 20))

	restaurants, err := svc.ListEventRestaurants(context.Background(), eventID, models.RestaurantFilter{})
	require.NoError(t, err)
	require.Len(t, restaurants, 1)
	assert.Equal(t, restaurantID, restaurants[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListEventRestaurantsFiltered(t *testing.T) {
	repos, mock := newRepos(t)
	svc := NewEventService(repos)

	eventID := uuid.New()
	now := time.Now()

	mock.ExpectQuery("FROM events").WithArgs(eventID).
		WillReturnRows(sqlmock.NewRows(eventColumns).AddRow(eventID.String(), "Jazz night", "Live music", now, now))
	mock.ExpectQuery("JOIN restaurants r").WithArgs(eventID).
		WillReturnRows(sqlmock.NewRows(restaurantColumns).
			AddRow(uuid.New().String(), "Cheap Eats", "+64 9 555 0101", "a@example.test", "", "2 Main St",
				5.0, 45.0, "1010", 20, "fast-food", nil, nil, uuid.New().String(), now, now).
			AddRow(uuid.New().String(), "Luigi's", "+64 9 555 0100", "b@example.test", "", "1 Queen St",
				20.0, 35.0, "1010", 20, "pizza", nil, nil, uuid.New().String(), now, now))

	filter := models.RestaurantFilter{Price: &models.PriceRange{Min: 15, Max: 40}}
	restaurants, err := svc.ListEventRestaurants(context.Background(), eventID, filter)
	require.NoError(t, err)
	require.Len(t, restaurants, 1)
	assert.Equal(t, "Luigi's", restaurants[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListEventRestaurantsRejectsInvertedPrice(t *testing.T) {
	repos, mock := newRepos(t)
	svc := NewEventService(repos)

	filter := models.RestaurantFilter{Price: &models.PriceRange{Min: 40, Max: 15}}
	_, err := svc.ListEventRestaurants(context.Background(), uuid.New(), filter)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.NoError(t, mock.ExpectationsWereMet())
}
