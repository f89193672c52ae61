package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/getsy/restaurant-backend/internal/apperr"
	"github.com/getsy/restaurant-backend/internal/db/repository"
	"github.com/getsy/restaurant-backend/internal/models"
)

// RestaurantService handles restaurants together with their event links and
// schedules
type RestaurantService struct {
	repos *repository.Repositories
}

// NewRestaurantService creates a new restaurant service
func NewRestaurantService(repos *repository.Repositories) *RestaurantService {
	return &RestaurantService{
		repos: repos,
	}
}

// CreateRestaurant validates req and stores the restaurant, its event links
// and its schedule in one transaction
func (s *RestaurantService) CreateRestaurant(ctx context.Context, req models.RestaurantRequest) (*models.Restaurant, error) {
	if err := models.Validate(req); err != nil {
		return nil, err
	}

	restaurant := req.Restaurant()
	if err := restaurant.Validate(); err != nil {
		return nil, err
	}

	days, hasDays, err := models.ParseWorkingDays(req.WorkingDays)
	if err != nil {
		return nil, err
	}

	var created *models.Restaurant
	err = s.repos.InTx(ctx, func(tx *repository.Repositories) error {
		taken, err := tx.Restaurant.EmailTaken(ctx, restaurant.Email, nil)
		if err != nil {
			return err
		}
		if taken {
			return apperr.Conflict("restaurant", "email")
		}

		created, err = tx.Restaurant.Create(ctx, restaurant)
		if err != nil {
			return err
		}

		if err := tx.Event.LinkRestaurant(ctx, created.ID, req.EventIDs); err != nil {
			return err
		}

		if hasDays {
			if created.Schedule, err = tx.Schedule.Create(ctx, created.ID, days); err != nil {
				return err
			}
		}

		if len(req.EventIDs) > 0 {
			created.Events, err = tx.Event.ListForRestaurant(ctx, created.ID)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// GetRestaurant retrieves a restaurant with its current schedule and events
func (s *RestaurantService) GetRestaurant(ctx context.Context, id uuid.UUID) (*models.Restaurant, error) {
	restaurant, err := s.repos.Restaurant.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := loadAssociations(ctx, s.repos, restaurant); err != nil {
		return nil, err
	}

	return restaurant, nil
}

// ManagesRestaurant reports whether userID is the admin of a restaurant. An
// unknown restaurant is managed by nobody.
func (s *RestaurantService) ManagesRestaurant(ctx context.Context, userID, restaurantID uuid.UUID) (bool, error) {
	restaurant, err := s.repos.Restaurant.GetByID(ctx, restaurantID)
	if apperr.Is(err, apperr.KindNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return restaurant.AdminID == userID, nil
}

// loadAssociations fills the schedule and events of restaurant
func loadAssociations(ctx context.Context, repos *repository.Repositories, restaurant *models.Restaurant) error {
	schedule, err := repos.Schedule.GetCurrent(ctx, restaurant.ID)
	switch {
	case err == nil:
		restaurant.Schedule = schedule
	case !apperr.Is(err, apperr.KindNotFound):
		return err
	}

	events, err := repos.Event.ListForRestaurant(ctx, restaurant.ID)
	if err != nil {
		return err
	}
	restaurant.Events = events

	return nil
}

// ListRestaurants lists every restaurant
func (s *RestaurantService) ListRestaurants(ctx context.Context) ([]models.Restaurant, error) {
	restaurants, err := s.repos.Restaurant.List(ctx)
	if err != nil {
		return nil, err
	}

	if len(restaurants) == 0 {
		return nil, apperr.NoResults("restaurant", "no restaurants found")
	}

	return restaurants, nil
}

// FilterRestaurants lists the restaurants matching filter
func (s *RestaurantService) FilterRestaurants(ctx context.Context, filter models.RestaurantFilter) ([]models.Restaurant, error) {
	return s.repos.Restaurant.Filter(ctx, filter)
}

// UpdateRestaurant merges the fields present in patch into the stored
// restaurant. Event links are replaced when patch carries event ids and the
// current schedule is overwritten when it carries working days.
func (s *RestaurantService) UpdateRestaurant(ctx context.Context, id uuid.UUID, patch models.RestaurantPatch) (*models.Restaurant, error) {
	if err := models.Validate(patch); err != nil {
		return nil, err
	}

	days, hasDays, err := models.ParseWorkingDays(patch.WorkingDays)
	if err != nil {
		return nil, err
	}

	if patch.IsEmpty() {
		return s.GetRestaurant(ctx, id)
	}

	var updated *models.Restaurant
	err = s.repos.InTx(ctx, func(tx *repository.Repositories) error {
		current, err := tx.Restaurant.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}

		patch.Apply(current)
		if err := current.Validate(); err != nil {
			return err
		}

		if patch.Email != nil {
			taken, err := tx.Restaurant.EmailTaken(ctx, current.Email, &id)
			if err != nil {
				return err
			}
			if taken {
				return apperr.Conflict("restaurant", "email")
			}
		}

		if updated, err = tx.Restaurant.Update(ctx, *current); err != nil {
			return err
		}

		if patch.EventIDs != nil {
			if err := tx.Event.UnlinkRestaurant(ctx, id); err != nil {
				return err
			}
			if err := tx.Event.LinkRestaurant(ctx, id, *patch.EventIDs); err != nil {
				return err
			}
		}

		if hasDays {
			if _, err := tx.Schedule.SaveCurrent(ctx, id, days); err != nil {
				return err
			}
		}

		return loadAssociations(ctx, tx, updated)
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteRestaurant removes a restaurant. Restaurants with pending or
// confirmed reservations cannot be removed.
func (s *RestaurantService) DeleteRestaurant(ctx context.Context, id uuid.UUID) error {
	return s.repos.InTx(ctx, func(tx *repository.Repositories) error {
		if _, err := tx.Restaurant.GetForUpdate(ctx, id); err != nil {
			return err
		}

		active, err := tx.Reservation.CountActiveForRestaurant(ctx, id)
		if err != nil {
			return err
		}
		if active > 0 {
			return apperr.Conflictf("restaurant", "restaurant has %d active reservations", active)
		}

		return tx.Restaurant.Delete(ctx, id)
	})
}

// ListSchedules lists every schedule row of a restaurant, newest first
func (s *RestaurantService) ListSchedules(ctx context.Context, restaurantID uuid.UUID) ([]models.Schedule, error) {
	schedules, err := s.repos.Schedule.ListByRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, err
	}

	if len(schedules) == 0 {
		return nil, apperr.NoResults("schedule", "no schedules found for this restaurant")
	}

	return schedules, nil
}
