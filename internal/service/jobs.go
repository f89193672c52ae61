package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// elapsedCompleter is the part of ReservationService the scheduler drives
type elapsedCompleter interface {
	CompleteElapsed(ctx context.Context, now time.Time) (int, error)
}

// Scheduler runs periodic maintenance jobs
type Scheduler struct {
	cron         *cron.Cron
	reservations elapsedCompleter
	location     *time.Location
}

// NewScheduler creates a scheduler that interprets reservation slots in loc
func NewScheduler(reservations elapsedCompleter, loc *time.Location) *Scheduler {
	return &Scheduler{
		cron:         cron.New(cron.WithLocation(loc)),
		reservations: reservations,
		location:     loc,
	}
}

// Start registers the reservation completion sweep under spec and starts the
// cron runner
func (s *Scheduler) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.CompleteReservations); err != nil {
		return fmt.Errorf("invalid completion schedule %q: %w", spec, err)
	}

	s.cron.Start()
	logrus.WithField("schedule", spec).Info("Reservation completion job scheduled")
	return nil
}

// Stop stops the scheduler and waits for a running job to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// CompleteReservations marks confirmed reservations in the past as completed
func (s *Scheduler) CompleteReservations() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	now := time.Now().In(s.location)
	count, err := s.reservations.CompleteElapsed(ctx, now)
	if err != nil {
		logrus.WithError(err).Error("Failed to complete elapsed reservations")
		return
	}

	if count > 0 {
		logrus.WithField("count", count).Info("Completed elapsed reservations")
	}
}
