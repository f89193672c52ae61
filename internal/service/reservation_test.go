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
	"github.com/getsy/restaurant-backend/internal/websockets"
)

func reservationRequest(restaurantID uuid.UUID, pax int) models.ReservationRequest {
	date := models.NewDate(2026, time.December, 24)
	tod := models.TimeOfDay("19:30")
	return models.ReservationRequest{
		RestaurantID: &restaurantID,
		UserID:       ptr(uuid.New()),
		Date:         &date,
		Time:         &tod,
		Pax:          &pax,
	}
}

func storedReservation(status models.ReservationStatus, pax int) models.Reservation {
	return models.Reservation{
		ID:           uuid.New(),
		UserID:       uuid.New(),
		RestaurantID: uuid.New(),
		Date:         models.NewDate(2026, time.December, 24),
		Time:         "19:30",
		Pax:          pax,
		Status:       status,
	}
}

func TestCreateReservationDefaultsToPending(t *testing.T) {
	repos, mock := newRepos(t)
	publisher := &fakePublisher{}
	notifier := &fakeNotifier{}
	svc := NewReservationService(repos, notifier, publisher, false)

	req := reservationRequest(uuid.New(), 2)
	stored := models.Reservation{
		ID:           uuid.New(),
		UserID:       *req.UserID,
		RestaurantID: *req.RestaurantID,
		Date:         *req.Date,
		Time:         *req.Time,
		Pax:          2,
		Status:       models.ReservationStatusPending,
	}

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO reservations").
		WithArgs(stored.UserID, stored.RestaurantID, nil, "2026-12-24", "19:30", 2, "pending", nil).
		WillReturnRows(reservationRows(stored))
	mock.ExpectCommit()

	created, err := svc.CreateReservation(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationStatusPending, created.Status)
	assert.Equal(t, models.TimeOfDay("19:30"), created.Time)

	require.Len(t, publisher.messages, 1)
	assert.Equal(t, websockets.TypeReservationNew, publisher.messages[0].msgType)
	assert.Equal(t, stored.RestaurantID, publisher.messages[0].restaurantID)
	assert.Empty(t, notifier.notices)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateReservationMissingUser(t *testing.T) {
	repos, mock := newRepos(t)
	svc := NewReservationService(repos, nil, nil, true)

	req := reservationRequest(uuid.New(), 2)
	req.UserID = nil

	_, err := svc.CreateReservation(context.Background(), req)
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.CodeMissingField, e.Code)
	assert.Equal(t, "user_id", e.Field)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateReservationRejectsTerminalInitialStatus(t *testing.T) {
	repos, _ := newRepos(t)
	svc := NewReservationService(repos, nil, nil, false)

	req := reservationRequest(uuid.New(), 2)
	req.Status = ptr(models.ReservationStatusCompleted)

	_, err := svc.CreateReservation(context.Background(), req)
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, "status", e.Field)
}

func TestCreateReservationRejectsBadTime(t *testing.T) {
	repos, _ := newRepos(t)
	svc := NewReservationService(repos, nil, nil, false)

	req := reservationRequest(uuid.New(), 2)
	req.Time = ptr(models.TimeOfDay("half past seven"))

	_, err := svc.CreateReservation(context.Background(), req)
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, "time", e.Field)
}

func TestCreateReservationCapacityExceeded(t *testing.T) {
	repos, mock := newRepos(t)
	publisher := &fakePublisher{}
	svc := NewReservationService(repos, nil, publisher, true)

	restaurantID := uuid.New()
	req := reservationRequest(restaurantID, 4)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(restaurantID).WillReturnRows(restaurantRows(restaurantID, "Luigi's", 10))
	mock.ExpectQuery("COALESCE").WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(8))
	mock.ExpectRollback()

	_, err := svc.CreateReservation(context.Background(), req)
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.CodeCapacityExceeded, e.Code)
	assert.Equal(t, "pax", e.Field)
	assert.Empty(t, publisher.messages)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateReservationUnknownRestaurant(t *testing.T) {
	repos, mock := newRepos(t)
	svc := NewReservationService(repos, nil, nil, true)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := svc.CreateReservation(context.Background(), reservationRequest(uuid.New(), 2))
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.CodeInvalidReference, e.Code)
	assert.Equal(t, "restaurant_id", e.Field)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetReservationOfAnotherUser(t *testing.T) {
	repos, mock := newRepos(t)
	svc := NewReservationService(repos, nil, nil, false)

	mock.ExpectQuery("FROM reservations WHERE id").WillReturnError(sql.ErrNoRows)

	_, err := svc.GetReservation(context.Background(), uuid.New(), uuid.New())
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestListReservationsRejectsUnknownStatus(t *testing.T) {
	repos, mock := newRepos(t)
	svc := NewReservationService(repos, nil, nil, false)

	_, err := svc.ListReservationsForUser(context.Background(), uuid.New(), ptr(models.ReservationStatus("seated")))
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateReservationInvalidTransition(t *testing.T) {
	repos, mock := newRepos(t)
	publisher := &fakePublisher{}
	svc := NewReservationService(repos, nil, publisher, false)

	stored := storedReservation(models.ReservationStatusPending, 2)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM reservations WHERE id").WillReturnRows(reservationRows(stored))
	mock.ExpectRollback()

	_, err := svc.SetReservationStatus(context.Background(), stored.ID, stored.UserID, models.ReservationStatusCompleted)
	assert.True(t, apperr.HasCode(err, apperr.CodeInvalidTransition))
	assert.Empty(t, publisher.messages)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateTerminalReservationIsRejected(t *testing.T) {
	repos, mock := newRepos(t)
	svc := NewReservationService(repos, nil, nil, false)

	stored := storedReservation(models.ReservationStatusCancelled, 2)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM reservations WHERE id").WillReturnRows(reservationRows(stored))
	mock.ExpectRollback()

	_, err := svc.UpdateReservation(context.Background(), stored.ID, stored.UserID, models.ReservationPatch{Pax: ptr(3)})
	assert.True(t, apperr.HasCode(err, apperr.CodeInvalidTransition))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmReservationNotifiesGuest(t *testing.T) {
	repos, mock := newRepos(t)
	publisher := &fakePublisher{}
	notifier := &fakeNotifier{}
	svc := NewReservationService(repos, notifier, publisher, true)

	stored := storedReservation(models.ReservationStatusPending, 4)
	confirmed := stored
	confirmed.Status = models.ReservationStatusConfirmed

	guest := models.User{
		ID:          stored.UserID,
		Name:        "Aroha",
		Email:       "aroha@example.test",
		PhoneNumber: "+64211234567",
		Status:      models.UserStatusActive,
	}

	mock.ExpectBegin()
	mock.ExpectQuery("FROM reservations WHERE id").WillReturnRows(reservationRows(stored))
	mock.ExpectQuery("FOR UPDATE").WillReturnRows(restaurantRows(stored.RestaurantID, "Luigi's", 10))
	mock.ExpectQuery("COALESCE").
		WithArgs(stored.RestaurantID, "2026-12-24", "19:30", "confirmed", stored.ID).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(6))
	mock.ExpectQuery("UPDATE reservations").WillReturnRows(reservationRows(confirmed))
	mock.ExpectCommit()
	mock.ExpectQuery("FROM users WHERE id").WillReturnRows(userRows(guest))
	mock.ExpectQuery("FROM restaurants WHERE id").WillReturnRows(restaurantRows(stored.RestaurantID, "Luigi's", 10))

	updated, err := svc.SetReservationStatus(context.Background(), stored.ID, stored.UserID, models.ReservationStatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationStatusConfirmed, updated.Status)

	require.Len(t, publisher.messages, 1)
	assert.Equal(t, websockets.TypeReservationUpdate, publisher.messages[0].msgType)

	require.Len(t, notifier.notices, 1)
	notice := notifier.notices[0]
	assert.Equal(t, "+64211234567", notice.Phone)
	assert.Equal(t, "Luigi's", notice.RestaurantName)
	assert.Contains(t, notice.Message(), "is confirmed")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePendingReservationSkipsCapacity(t *testing.T) {
	repos, mock := newRepos(t)
	notifier := &fakeNotifier{}
	svc := NewReservationService(repos, notifier, nil, true)

	stored := storedReservation(models.ReservationStatusPending, 2)
	grown := stored
	grown.Pax = 40

	mock.ExpectBegin()
	mock.ExpectQuery("FROM reservations WHERE id").WillReturnRows(reservationRows(stored))
	mock.ExpectQuery("UPDATE reservations").WillReturnRows(reservationRows(grown))
	mock.ExpectCommit()

	updated, err := svc.UpdateReservation(context.Background(), stored.ID, stored.UserID, models.ReservationPatch{Pax: ptr(40)})
	require.NoError(t, err)
	assert.Equal(t, 40, updated.Pax)
	assert.Empty(t, notifier.notices)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteReservationPublishes(t *testing.T) {
	repos, mock := newRepos(t)
	publisher := &fakePublisher{}
	svc := NewReservationService(repos, nil, publisher, false)

	stored := storedReservation(models.ReservationStatusConfirmed, 2)

	mock.ExpectQuery("FROM reservations WHERE id").WillReturnRows(reservationRows(stored))
	mock.ExpectExec("DELETE FROM reservations").
		WithArgs(stored.ID, stored.UserID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, svc.DeleteReservation(context.Background(), stored.ID, stored.UserID))
	require.Len(t, publisher.messages, 1)
	assert.Equal(t, websockets.TypeReservationDelete, publisher.messages[0].msgType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompleteElapsedPublishesEachReservation(t *testing.T) {
	repos, mock := newRepos(t)
	publisher := &fakePublisher{}
	svc := NewReservationService(repos, nil, publisher, false)

	done := storedReservation(models.ReservationStatusCompleted, 2)
	rows := reservationRows(done)

	mock.ExpectQuery("UPDATE reservations").WillReturnRows(rows)

	count, err := svc.CompleteElapsed(context.Background(), time.Date(2026, time.December, 25, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Len(t, publisher.messages, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNeedsCapacityCheck(t *testing.T) {
	pending := storedReservation(models.ReservationStatusPending, 2)
	confirmed := pending
	confirmed.Status = models.ReservationStatusConfirmed

	assert.True(t, needsCapacityCheck(pending, confirmed))
	assert.False(t, needsCapacityCheck(confirmed, confirmed))

	smaller := confirmed
	smaller.Pax = 1
	assert.False(t, needsCapacityCheck(confirmed, smaller))

	larger := confirmed
	larger.Pax = 3
	assert.True(t, needsCapacityCheck(confirmed, larger))

	moved := confirmed
	moved.Time = "20:00"
	assert.True(t, needsCapacityCheck(confirmed, moved))

	cancelled := confirmed
	cancelled.Status = models.ReservationStatusCancelled
	assert.False(t, needsCapacityCheck(confirmed, cancelled))
}
