package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/getsy/restaurant-backend/internal/models"
)

const eventEntity = "event"

// EventRepository handles events and their links to restaurants
type EventRepository struct {
	db DBTX
}

// NewEventRepository creates a new event repository
func NewEventRepository(db DBTX) *EventRepository {
	return &EventRepository{db: db}
}

// GetByID retrieves an event by ID
func (r *EventRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	query := `
		SELECT id, name, description, created_at, updated_at
		FROM events
		WHERE id = $1
	`

	var event models.Event
	if err := r.db.GetContext(ctx, &event, query, id); err != nil {
		return nil, classify(err, eventEntity, "failed to get event")
	}

	return &event, nil
}

// List retrieves all events
func (r *EventRepository) List(ctx context.Context) ([]models.Event, error) {
	query := `
		SELECT id, name, description, created_at, updated_at
		FROM events
		ORDER BY created_at DESC
	`

	var events []models.Event
	if err := r.db.SelectContext(ctx, &events, query); err != nil {
		return nil, classify(err, eventEntity, "failed to list events")
	}

	return events, nil
}

// Create creates a new event
func (r *EventRepository) Create(ctx context.Context, event models.Event) (*models.Event, error) {
	query := `
		INSERT INTO events (name, description)
		VALUES ($1, $2)
		RETURNING id, name, description, created_at, updated_at
	`

	var created models.Event
	if err := r.db.GetContext(ctx, &created, query, event.Name, event.Description); err != nil {
		return nil, classify(err, eventEntity, "failed to create event")
	}

	return &created, nil
}

// Update updates an event
func (r *EventRepository) Update(ctx context.Context, event models.Event) (*models.Event, error) {
	query := `
		UPDATE events
		SET name = $1, description = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING id, name, description, created_at, updated_at
	`

	var updated models.Event
	if err := r.db.GetContext(ctx, &updated, query, event.Name, event.Description, event.ID); err != nil {
		return nil, classify(err, eventEntity, "failed to update event")
	}

	return &updated, nil
}

// Delete deletes an event along with its restaurant links
func (r *EventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return classifyDelete(err, eventEntity, "failed to delete event")
	}

	return expectAffected(result, eventEntity)
}

// LinkRestaurant inserts one join row per event id in a single statement.
// Repeated ids produce repeated rows; each row records its position in
// eventIDs.
func (r *EventRepository) LinkRestaurant(ctx context.Context, restaurantID uuid.UUID, eventIDs []uuid.UUID) error {
	if len(eventIDs) == 0 {
		return nil
	}

	links := make([]models.RestaurantEvent, 0, len(eventIDs))
	for i, eventID := range eventIDs {
		links = append(links, models.RestaurantEvent{RestaurantID: restaurantID, EventID: eventID, Position: i})
	}

	query := `
		INSERT INTO restaurant_events (restaurant_id, event_id, position)
		VALUES (:restaurant_id, :event_id, :position)
	`

	if _, err := r.db.NamedExecContext(ctx, query, links); err != nil {
		return classify(err, eventEntity, "failed to link events to restaurant")
	}

	return nil
}

// UnlinkRestaurant removes every join row of a restaurant
func (r *EventRepository) UnlinkRestaurant(ctx context.Context, restaurantID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM restaurant_events WHERE restaurant_id = $1`, restaurantID)
	if err != nil {
		return classify(err, eventEntity, "failed to unlink restaurant events")
	}

	return nil
}

// ListForRestaurant retrieves the events a restaurant takes part in, one
// entry per join row, in the order they were linked
func (r *EventRepository) ListForRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]models.Event, error) {
	query := `
		SELECT e.id, e.name, e.description, e.created_at, e.updated_at
		FROM restaurant_events re
		JOIN events e ON e.id = re.event_id
		WHERE re.restaurant_id = $1
		ORDER BY re.position ASC
	`

	var events []models.Event
	if err := r.db.SelectContext(ctx, &events, query, restaurantID); err != nil {
		return nil, classify(err, eventEntity, "failed to list restaurant events")
	}

	return events, nil
}

// ListRestaurants retrieves the restaurants taking part in an event
func (r *EventRepository) ListRestaurants(ctx context.Context, eventID uuid.UUID) ([]models.Restaurant, error) {
	query := `
		SELECT DISTINCT r.id, r.name, r.phone_number, r.email, r.description, r.address, r.min_price,
			r.max_price, r.zip_code, r.capacity, r.category, r.logo, r.banner, r.admin_id,
			r.created_at, r.updated_at
		FROM restaurant_events re
		JOIN restaurants r ON r.id = re.restaurant_id
		WHERE re.event_id = $1
		ORDER BY r.name ASC
	`

	var restaurants []models.Restaurant
	if err := r.db.SelectContext(ctx, &restaurants, query, eventID); err != nil {
		return nil, classify(err, restaurantEntity, "failed to list event restaurants")
	}

	return restaurants, nil
}
