package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/getsy/restaurant-backend/internal/apperr"
	"github.com/getsy/restaurant-backend/internal/db/repository"
	"github.com/getsy/restaurant-backend/internal/models"
	"github.com/getsy/restaurant-backend/internal/websockets"
)

// Publisher pushes reservation changes to live subscribers of a restaurant
type Publisher interface {
	Publish(restaurantID uuid.UUID, msgType websockets.MessageType, payload interface{}) error
}

// ReservationService handles the reservation lifecycle
type ReservationService struct {
	repos           *repository.Repositories
	notifier        Notifier
	publisher       Publisher
	enforceCapacity bool
}

// NewReservationService creates a new reservation service. When
// enforceCapacity is set, bookings that would overfill a time slot are
// rejected.
func NewReservationService(repos *repository.Repositories, notifier Notifier, publisher Publisher, enforceCapacity bool) *ReservationService {
	return &ReservationService{
		repos:           repos,
		notifier:        notifier,
		publisher:       publisher,
		enforceCapacity: enforceCapacity,
	}
}

// CreateReservation books a table. Status defaults to pending; only pending
// and confirmed are accepted as initial states.
func (s *ReservationService) CreateReservation(ctx context.Context, req models.ReservationRequest) (*models.Reservation, error) {
	if err := models.Validate(req); err != nil {
		return nil, err
	}

	tod, err := models.ParseTimeOfDay(string(*req.Time))
	if err != nil {
		return nil, apperr.Invalid("time", err.Error())
	}

	status := models.ReservationStatusPending
	if req.Status != nil {
		status = *req.Status
	}
	if status != models.ReservationStatusPending && status != models.ReservationStatusConfirmed {
		return nil, apperr.Invalid("status", "a new reservation must be pending or confirmed")
	}

	reservation := models.Reservation{
		UserID:       *req.UserID,
		RestaurantID: *req.RestaurantID,
		EventID:      req.EventID,
		Date:         *req.Date,
		Time:         tod,
		Pax:          *req.Pax,
		Status:       status,
		Notes:        req.Notes,
	}

	var created *models.Reservation
	err = s.repos.InTx(ctx, func(tx *repository.Repositories) error {
		if s.enforceCapacity {
			if err := checkCapacity(ctx, tx, slotOf(reservation), reservation.Pax, nil); err != nil {
				return err
			}
		}

		var err error
		created, err = tx.Reservation.Create(ctx, reservation)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.announce(ctx, websockets.TypeReservationNew, created, "")
	return created, nil
}

// GetReservation retrieves a reservation owned by userID
func (s *ReservationService) GetReservation(ctx context.Context, id, userID uuid.UUID) (*models.Reservation, error) {
	return s.repos.Reservation.GetForUser(ctx, id, userID)
}

// ListReservationsForUser lists a user's reservations, optionally filtered by
// status. An empty result is not an error.
func (s *ReservationService) ListReservationsForUser(ctx context.Context, userID uuid.UUID, status *models.ReservationStatus) ([]models.Reservation, error) {
	if status != nil && !status.Valid() {
		return nil, invalidStatus()
	}

	return s.repos.Reservation.ListByUser(ctx, userID, status)
}

// UpdateReservation merges patch into a reservation owned by userID. Status
// changes follow the reservation lifecycle.
func (s *ReservationService) UpdateReservation(ctx context.Context, id, userID uuid.UUID, patch models.ReservationPatch) (*models.Reservation, error) {
	if err := models.Validate(patch); err != nil {
		return nil, err
	}

	if patch.Time != nil {
		tod, err := models.ParseTimeOfDay(string(*patch.Time))
		if err != nil {
			return nil, apperr.Invalid("time", err.Error())
		}
		patch.Time = &tod
	}

	var updated *models.Reservation
	var previous models.ReservationStatus
	err := s.repos.InTx(ctx, func(tx *repository.Repositories) error {
		current, err := tx.Reservation.GetForUser(ctx, id, userID)
		if err != nil {
			return err
		}
		before := *current
		previous = before.Status

		if before.Status.IsTerminal() && !patchIsNoop(patch, before) {
			return apperr.Validation(apperr.CodeInvalidTransition, "status",
				fmt.Sprintf("a %s reservation can no longer be changed", before.Status))
		}

		patch.Apply(current)
		if patch.Status != nil {
			if err := checkTransition(before.Status, *patch.Status); err != nil {
				return err
			}
			current.Status = *patch.Status
		}

		if s.enforceCapacity && needsCapacityCheck(before, *current) {
			if err := checkCapacity(ctx, tx, slotOf(*current), current.Pax, &current.ID); err != nil {
				return err
			}
		}

		updated, err = tx.Reservation.Update(ctx, *current)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.announce(ctx, websockets.TypeReservationUpdate, updated, previous)
	return updated, nil
}

// SetReservationStatus moves a reservation owned by userID to status
func (s *ReservationService) SetReservationStatus(ctx context.Context, id, userID uuid.UUID, status models.ReservationStatus) (*models.Reservation, error) {
	return s.UpdateReservation(ctx, id, userID, models.ReservationPatch{Status: &status})
}

// DeleteReservation deletes a reservation owned by userID
func (s *ReservationService) DeleteReservation(ctx context.Context, id, userID uuid.UUID) error {
	reservation, err := s.repos.Reservation.GetForUser(ctx, id, userID)
	if err != nil {
		return err
	}

	if err := s.repos.Reservation.Delete(ctx, id, userID); err != nil {
		return err
	}

	s.publish(websockets.TypeReservationDelete, reservation)
	return nil
}

// CompleteElapsed marks confirmed reservations whose slot has started as
// completed and returns how many were changed
func (s *ReservationService) CompleteElapsed(ctx context.Context, now time.Time) (int, error) {
	completed, err := s.repos.Reservation.CompleteElapsed(ctx, now)
	if err != nil {
		return 0, err
	}

	for i := range completed {
		s.publish(websockets.TypeReservationUpdate, &completed[i])
	}

	return len(completed), nil
}

func slotOf(r models.Reservation) models.ReservationSlot {
	return models.ReservationSlot{
		RestaurantID: r.RestaurantID,
		Date:         r.Date,
		Time:         r.Time,
	}
}

// checkCapacity locks the restaurant row and rejects pax when the confirmed
// seats of the slot plus pax would exceed the restaurant's capacity
func checkCapacity(ctx context.Context, tx *repository.Repositories, slot models.ReservationSlot, pax int, excludeID *uuid.UUID) error {
	restaurant, err := tx.Restaurant.GetForUpdate(ctx, slot.RestaurantID)
	if apperr.Is(err, apperr.KindNotFound) {
		return apperr.Validation(apperr.CodeInvalidReference, "restaurant_id",
			"restaurant_id does not reference an existing record")
	}
	if err != nil {
		return err
	}

	booked, err := tx.Reservation.ConfirmedPax(ctx, slot, excludeID)
	if err != nil {
		return err
	}

	if booked+pax > restaurant.Capacity {
		return apperr.Validation(apperr.CodeCapacityExceeded, "pax",
			fmt.Sprintf("only %d of %d seats are free on %s at %s",
				max(restaurant.Capacity-booked, 0), restaurant.Capacity, slot.Date, slot.Time))
	}

	return nil
}

// needsCapacityCheck reports whether after takes seats that before did not
func needsCapacityCheck(before, after models.Reservation) bool {
	if after.Status != models.ReservationStatusConfirmed {
		return false
	}
	return before.Status != models.ReservationStatusConfirmed ||
		after.Pax > before.Pax ||
		!sameSlot(slotOf(before), slotOf(after))
}

func sameSlot(a, b models.ReservationSlot) bool {
	return a.RestaurantID == b.RestaurantID && a.Date.Equal(b.Date.Time) && a.Time == b.Time
}

func checkTransition(from, to models.ReservationStatus) error {
	if !to.Valid() {
		return invalidStatus()
	}
	if !from.CanTransitionTo(to) {
		return apperr.Validation(apperr.CodeInvalidTransition, "status",
			fmt.Sprintf("cannot change status from %s to %s", from, to))
	}
	return nil
}

func invalidStatus() error {
	return apperr.Invalid("status", "must be one of pending, confirmed, cancelled, completed")
}

// patchIsNoop reports whether applying patch would leave r unchanged
func patchIsNoop(patch models.ReservationPatch, r models.Reservation) bool {
	after := r
	patch.Apply(&after)
	if patch.Status != nil {
		after.Status = *patch.Status
	}
	return after.RestaurantID == r.RestaurantID &&
		uuidPtrEqual(after.EventID, r.EventID) &&
		after.Date.Equal(r.Date.Time) &&
		after.Time == r.Time &&
		after.Pax == r.Pax &&
		after.Status == r.Status &&
		stringPtrEqual(after.Notes, r.Notes)
}

func uuidPtrEqual(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func stringPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// announce publishes a reservation change and, when its status moved to
// confirmed or cancelled, notifies the guest. Failures are logged only.
func (s *ReservationService) announce(ctx context.Context, msgType websockets.MessageType, r *models.Reservation, previous models.ReservationStatus) {
	s.publish(msgType, r)

	if r.Status == previous {
		return
	}
	if r.Status != models.ReservationStatusConfirmed && r.Status != models.ReservationStatusCancelled {
		return
	}
	if s.notifier == nil {
		return
	}

	notice := ReservationNotice{Reservation: *r}
	if user, err := s.repos.User.GetByID(ctx, r.UserID); err == nil {
		notice.Phone = user.PhoneNumber
		notice.GuestName = user.Name
	}
	if restaurant, err := s.repos.Restaurant.GetByID(ctx, r.RestaurantID); err == nil {
		notice.RestaurantName = restaurant.Name
	}

	if err := s.notifier.NotifyReservation(ctx, notice); err != nil {
		logrus.WithError(err).WithField("reservation_id", r.ID).Warn("Failed to notify guest")
	}
}

func (s *ReservationService) publish(msgType websockets.MessageType, r *models.Reservation) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(r.RestaurantID, msgType, r); err != nil {
		logrus.WithError(err).WithField("reservation_id", r.ID).Warn("Failed to publish reservation change")
	}
}
