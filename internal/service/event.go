package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/getsy/restaurant-backend/internal/apperr"
	"github.com/getsy/restaurant-backend/internal/db/repository"
	"github.com/getsy/restaurant-backend/internal/models"
)

// EventService handles events and their restaurant links
type EventService struct {
	repos *repository.Repositories
}

// NewEventService creates a new event service
func NewEventService(repos *repository.Repositories) *EventService {
	return &EventService{
		repos: repos,
	}
}

// CreateEvent creates a new event
func (s *EventService) CreateEvent(ctx context.Context, req models.EventRequest) (*models.Event, error) {
	if err := models.Validate(req); err != nil {
		return nil, err
	}

	return s.repos.Event.Create(ctx, models.Event{
		Name:        req.Name,
		Description: req.Description,
	})
}

// GetEvent retrieves an event by ID
func (s *EventService) GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	return s.repos.Event.GetByID(ctx, id)
}

// ListEvents lists every event
func (s *EventService) ListEvents(ctx context.Context) ([]models.Event, error) {
	events, err := s.repos.Event.List(ctx)
	if err != nil {
		return nil, err
	}

	if len(events) == 0 {
		return nil, apperr.NoResults("event", "no events found")
	}

	return events, nil
}

// UpdateEvent merges the fields present in patch into the stored event
func (s *EventService) UpdateEvent(ctx context.Context, id uuid.UUID, patch models.EventPatch) (*models.Event, error) {
	if err := models.Validate(patch); err != nil {
		return nil, err
	}

	event, err := s.repos.Event.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	patch.Apply(event)
	return s.repos.Event.Update(ctx, *event)
}

// DeleteEvent deletes an event and its restaurant links
func (s *EventService) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	return s.repos.Event.Delete(ctx, id)
}

// ListRestaurantEvents lists the events a restaurant takes part in
func (s *EventService) ListRestaurantEvents(ctx context.Context, restaurantID uuid.UUID) ([]models.Event, error) {
	if _, err := s.repos.Restaurant.GetByID(ctx, restaurantID); err != nil {
		return nil, err
	}

	return s.repos.Event.ListForRestaurant(ctx, restaurantID)
}

// ListEventRestaurants lists the restaurants taking part in an event,
// narrowed down by filter
func (s *EventService) ListEventRestaurants(ctx context.Context, eventID uuid.UUID, filter models.RestaurantFilter) ([]models.Restaurant, error) {
	if filter.Price != nil {
		if err := filter.Price.Validate(); err != nil {
			return nil, err
		}
	}

	if _, err := s.repos.Event.GetByID(ctx, eventID); err != nil {
		return nil, err
	}

	restaurants, err := s.repos.Event.ListRestaurants(ctx, eventID)
	if err != nil || filter.IsEmpty() {
		return restaurants, err
	}

	matched := make([]models.Restaurant, 0, len(restaurants))
	for _, restaurant := range restaurants {
		if filter.Matches(restaurant) {
			matched = append(matched, restaurant)
		}
	}
	if len(matched) == 0 {
		return nil, apperr.NoResults("restaurant", "no restaurants match the given criteria")
	}

	return matched, nil
}
