package models

import (
	"time"

	"github.com/google/uuid"
)

// Event is a promotional or thematic tag that restaurants take part in
type Event struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// RestaurantEvent is the join row between a restaurant and an event
type RestaurantEvent struct {
	ID           uuid.UUID `db:"id" json:"id"`
	RestaurantID uuid.UUID `db:"restaurant_id" json:"restaurant_id"`
	EventID      uuid.UUID `db:"event_id" json:"event_id"`
	Position     int       `db:"position" json:"position"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// EventRequest is used for event creation
type EventRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"required"`
}

// EventPatch is used for partial event updates
type EventPatch struct {
	Name        *string `json:"name" validate:"omitempty,max=255"`
	Description *string `json:"description"`
}

// Apply merges the fields present in the patch into event
func (p EventPatch) Apply(event *Event) {
	if p.Name != nil {
		event.Name = *p.Name
	}
	if p.Description != nil {
		event.Description = *p.Description
	}
}
