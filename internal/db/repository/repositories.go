package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/getsy/restaurant-backend/internal/apperr"
)

// DBTX is satisfied by both *sqlx.DB and *sqlx.Tx, so every repository can run
// inside or outside a transaction.
type DBTX interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error)
}

// Repositories provides access to all repository instances
type Repositories struct {
	db *sqlx.DB

	Role        *RoleRepository
	User        *UserRepository
	Restaurant  *RestaurantRepository
	Event       *EventRepository
	Schedule    *ScheduleRepository
	Reservation *ReservationRepository
	Review      *ReviewRepository
}

// NewRepositories creates a new repositories container
func NewRepositories(db *sqlx.DB) *Repositories {
	repos := newRepositories(db)
	repos.db = db
	return repos
}

func newRepositories(q DBTX) *Repositories {
	return &Repositories{
		Role:        NewRoleRepository(q),
		User:        NewUserRepository(q),
		Restaurant:  NewRestaurantRepository(q),
		Event:       NewEventRepository(q),
		Schedule:    NewScheduleRepository(q),
		Reservation: NewReservationRepository(q),
		Review:      NewReviewRepository(q),
	}
}

// InTx runs fn with repositories bound to a single transaction. The
// transaction is committed when fn returns nil and rolled back otherwise.
// Calling InTx on repositories that are already transactional reuses the
// open transaction.
func (r *Repositories) InTx(ctx context.Context, fn func(tx *Repositories) error) (err error) {
	if r.db == nil {
		return fn(r)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return apperr.Storage("failed to begin transaction", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(newRepositories(tx)); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return apperr.Storage("failed to commit transaction", err)
	}
	return nil
}
