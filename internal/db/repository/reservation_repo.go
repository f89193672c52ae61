package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/getsy/restaurant-backend/internal/models"
)

const reservationEntity = "reservation"

const reservationColumns = `id, user_id, restaurant_id, event_id, date, time, pax, status, notes, created_at, updated_at`

// ReservationRepository handles reservation data access
type ReservationRepository struct {
	db DBTX
}

// NewReservationRepository creates a new reservation repository
func NewReservationRepository(db DBTX) *ReservationRepository {
	return &ReservationRepository{db: db}
}

// GetForUser retrieves a reservation owned by userID. A reservation that
// exists but belongs to someone else is reported as not found.
func (r *ReservationRepository) GetForUser(ctx context.Context, id, userID uuid.UUID) (*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1 AND user_id = $2`

	var reservation models.Reservation
	if err := r.db.GetContext(ctx, &reservation, query, id, userID); err != nil {
		return nil, classify(err, reservationEntity, "failed to get reservation")
	}

	return &reservation, nil
}

// ListByUser retrieves a user's reservations, optionally filtered by status
func (r *ReservationRepository) ListByUser(ctx context.Context, userID uuid.UUID, status *models.ReservationStatus) ([]models.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE user_id = $1`
	args := []interface{}{userID}

	if status != nil {
		query += ` AND status = $2`
		args = append(args, *status)
	}
	query += ` ORDER BY date DESC, time DESC`

	reservations := []models.Reservation{}
	if err := r.db.SelectContext(ctx, &reservations, query, args...); err != nil {
		return nil, classify(err, reservationEntity, "failed to list reservations")
	}

	return reservations, nil
}

// Create creates a new reservation
func (r *ReservationRepository) Create(ctx context.Context, reservation models.Reservation) (*models.Reservation, error) {
	query := `
		INSERT INTO reservations (user_id, restaurant_id, event_id, date, time, pax, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + reservationColumns

	var created models.Reservation
	err := r.db.GetContext(
		ctx,
		&created,
		query,
		reservation.UserID,
		reservation.RestaurantID,
		reservation.EventID,
		reservation.Date,
		reservation.Time,
		reservation.Pax,
		reservation.Status,
		reservation.Notes,
	)
	if err != nil {
		return nil, classify(err, reservationEntity, "failed to create reservation")
	}

	return &created, nil
}

// Update writes every mutable column of a reservation owned by its user
func (r *ReservationRepository) Update(ctx context.Context, reservation models.Reservation) (*models.Reservation, error) {
	query := `
		UPDATE reservations
		SET restaurant_id = $1, event_id = $2, date = $3, time = $4, pax = $5, status = $6, notes = $7,
			updated_at = NOW()
		WHERE id = $8 AND user_id = $9
		RETURNING ` + reservationColumns

	var updated models.Reservation
	err := r.db.GetContext(
		ctx,
		&updated,
		query,
		reservation.RestaurantID,
		reservation.EventID,
		reservation.Date,
		reservation.Time,
		reservation.Pax,
		reservation.Status,
		reservation.Notes,
		reservation.ID,
		reservation.UserID,
	)
	if err != nil {
		return nil, classify(err, reservationEntity, "failed to update reservation")
	}

	return &updated, nil
}

// Delete deletes a reservation owned by userID
func (r *ReservationRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM reservations WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return classifyDelete(err, reservationEntity, "failed to delete reservation")
	}

	return expectAffected(result, reservationEntity)
}

// ConfirmedPax sums the party sizes of confirmed reservations in a slot.
// excludeID leaves out the reservation being changed.
func (r *ReservationRepository) ConfirmedPax(ctx context.Context, slot models.ReservationSlot, excludeID *uuid.UUID) (int, error) {
	query := `
		SELECT COALESCE(SUM(pax), 0)
		FROM reservations
		WHERE restaurant_id = $1 AND date = $2 AND time = $3 AND status = $4
		  AND ($5::uuid IS NULL OR id <> $5)
	`

	var pax int
	err := r.db.GetContext(
		ctx,
		&pax,
		query,
		slot.RestaurantID,
		slot.Date,
		slot.Time,
		models.ReservationStatusConfirmed,
		excludeID,
	)
	if err != nil {
		return 0, classify(err, reservationEntity, "failed to sum slot reservations")
	}

	return pax, nil
}

// CountActiveForRestaurant counts pending and confirmed reservations
func (r *ReservationRepository) CountActiveForRestaurant(ctx context.Context, restaurantID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM reservations
		WHERE restaurant_id = $1 AND status IN ($2, $3)
	`

	var count int
	err := r.db.GetContext(
		ctx,
		&count,
		query,
		restaurantID,
		models.ReservationStatusPending,
		models.ReservationStatusConfirmed,
	)
	if err != nil {
		return 0, classify(err, reservationEntity, "failed to count active reservations")
	}

	return count, nil
}

// CompleteElapsed marks confirmed reservations whose slot started before now
// as completed. now is compared against the wall-clock date and time.
func (r *ReservationRepository) CompleteElapsed(ctx context.Context, now time.Time) ([]models.Reservation, error) {
	query := `
		UPDATE reservations
		SET status = $1, updated_at = NOW()
		WHERE status = $2 AND (date + time) < $3::timestamp
		RETURNING ` + reservationColumns

	completed := []models.Reservation{}
	err := r.db.SelectContext(
		ctx,
		&completed,
		query,
		models.ReservationStatusCompleted,
		models.ReservationStatusConfirmed,
		now.Format("2006-01-02 15:04:05"),
	)
	if err != nil {
		return nil, classify(err, reservationEntity, "failed to complete elapsed reservations")
	}

	return completed, nil
}
