package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/getsy/restaurant-backend/internal/apperr"
	"github.com/getsy/restaurant-backend/internal/models"
)

const scheduleEntity = "schedule"

// ScheduleRepository handles restaurant working hours
type ScheduleRepository struct {
	db DBTX
}

// NewScheduleRepository creates a new schedule repository
func NewScheduleRepository(db DBTX) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// GetCurrent retrieves the most recently updated schedule of a restaurant
func (r *ScheduleRepository) GetCurrent(ctx context.Context, restaurantID uuid.UUID) (*models.Schedule, error) {
	query := `
		SELECT id, restaurant_id, working_days, created_at, updated_at
		FROM schedules
		WHERE restaurant_id = $1
		ORDER BY updated_at DESC
		LIMIT 1
	`

	var schedule models.Schedule
	if err := r.db.GetContext(ctx, &schedule, query, restaurantID); err != nil {
		return nil, classify(err, scheduleEntity, "failed to get schedule")
	}

	return &schedule, nil
}

// ListByRestaurant retrieves every schedule row of a restaurant, newest first
func (r *ScheduleRepository) ListByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]models.Schedule, error) {
	query := `
		SELECT id, restaurant_id, working_days, created_at, updated_at
		FROM schedules
		WHERE restaurant_id = $1
		ORDER BY updated_at DESC
	`

	var schedules []models.Schedule
	if err := r.db.SelectContext(ctx, &schedules, query, restaurantID); err != nil {
		return nil, classify(err, scheduleEntity, "failed to list schedules")
	}

	return schedules, nil
}

// Create creates a new schedule
func (r *ScheduleRepository) Create(ctx context.Context, restaurantID uuid.UUID, days models.WorkingDays) (*models.Schedule, error) {
	query := `
		INSERT INTO schedules (restaurant_id, working_days)
		VALUES ($1, $2)
		RETURNING id, restaurant_id, working_days, created_at, updated_at
	`

	var created models.Schedule
	if err := r.db.GetContext(ctx, &created, query, restaurantID, days); err != nil {
		return nil, classify(err, scheduleEntity, "failed to create schedule")
	}

	return &created, nil
}

// Update replaces the working days of a schedule
func (r *ScheduleRepository) Update(ctx context.Context, id uuid.UUID, days models.WorkingDays) (*models.Schedule, error) {
	query := `
		UPDATE schedules
		SET working_days = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING id, restaurant_id, working_days, created_at, updated_at
	`

	var updated models.Schedule
	if err := r.db.GetContext(ctx, &updated, query, days, id); err != nil {
		return nil, classify(err, scheduleEntity, "failed to update schedule")
	}

	return &updated, nil
}

// SaveCurrent overwrites the current schedule of a restaurant, creating one
// when none exists
func (r *ScheduleRepository) SaveCurrent(ctx context.Context, restaurantID uuid.UUID, days models.WorkingDays) (*models.Schedule, error) {
	current, err := r.GetCurrent(ctx, restaurantID)
	if apperr.Is(err, apperr.KindNotFound) {
		return r.Create(ctx, restaurantID, days)
	}
	if err != nil {
		return nil, err
	}

	return r.Update(ctx, current.ID, days)
}
