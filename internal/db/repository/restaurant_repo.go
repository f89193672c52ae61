package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/getsy/restaurant-backend/internal/apperr"
	"github.com/getsy/restaurant-backend/internal/models"
)

const restaurantEntity = "restaurant"

const restaurantColumns = `id, name, phone_number, email, description, address, min_price, max_price,
		zip_code, capacity, category, logo, banner, admin_id, created_at, updated_at`

// RestaurantRepository handles restaurant data access
type RestaurantRepository struct {
	db DBTX
}

// NewRestaurantRepository creates a new restaurant repository
func NewRestaurantRepository(db DBTX) *RestaurantRepository {
	return &RestaurantRepository{db: db}
}

// GetByID retrieves a restaurant by ID
func (r *RestaurantRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Restaurant, error) {
	query := `SELECT ` + restaurantColumns + ` FROM restaurants WHERE id = $1`

	var restaurant models.Restaurant
	if err := r.db.GetContext(ctx, &restaurant, query, id); err != nil {
		return nil, classify(err, restaurantEntity, "failed to get restaurant")
	}

	return &restaurant, nil
}

// GetForUpdate retrieves a restaurant and locks its row until the enclosing
// transaction ends
func (r *RestaurantRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Restaurant, error) {
	query := `SELECT ` + restaurantColumns + ` FROM restaurants WHERE id = $1 FOR UPDATE`

	var restaurant models.Restaurant
	if err := r.db.GetContext(ctx, &restaurant, query, id); err != nil {
		return nil, classify(err, restaurantEntity, "failed to lock restaurant")
	}

	return &restaurant, nil
}

// EmailTaken reports whether another restaurant already uses email.
// excludeID skips the restaurant being updated.
func (r *RestaurantRepository) EmailTaken(ctx context.Context, email string, excludeID *uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM restaurants WHERE email = $1 AND ($2::uuid IS NULL OR id <> $2))`

	var taken bool
	if err := r.db.GetContext(ctx, &taken, query, email, excludeID); err != nil {
		return false, classify(err, restaurantEntity, "failed to check restaurant email")
	}

	return taken, nil
}

// List retrieves all restaurants
func (r *RestaurantRepository) List(ctx context.Context) ([]models.Restaurant, error) {
	query := `SELECT ` + restaurantColumns + ` FROM restaurants ORDER BY name ASC`

	var restaurants []models.Restaurant
	if err := r.db.SelectContext(ctx, &restaurants, query); err != nil {
		return nil, classify(err, restaurantEntity, "failed to list restaurants")
	}

	return restaurants, nil
}

// Filter retrieves the restaurants matching every criterion set in filter
func (r *RestaurantRepository) Filter(ctx context.Context, filter models.RestaurantFilter) ([]models.Restaurant, error) {
	where, args, err := buildRestaurantFilter(filter)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + restaurantColumns + ` FROM restaurants`
	if where != "" {
		query += ` WHERE ` + where
	}
	query += ` ORDER BY name ASC`

	var restaurants []models.Restaurant
	if err := r.db.SelectContext(ctx, &restaurants, r.db.Rebind(query), args...); err != nil {
		return nil, classify(err, restaurantEntity, "failed to filter restaurants")
	}

	if len(restaurants) == 0 {
		return nil, apperr.NoResults(restaurantEntity, "no restaurants match the given criteria")
	}

	return restaurants, nil
}

// Create creates a new restaurant
func (r *RestaurantRepository) Create(ctx context.Context, restaurant models.Restaurant) (*models.Restaurant, error) {
	query := `
		INSERT INTO restaurants (name, phone_number, email, description, address, min_price, max_price,
			zip_code, capacity, category, logo, banner, admin_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + restaurantColumns

	var created models.Restaurant
	err := r.db.GetContext(
		ctx,
		&created,
		query,
		restaurant.Name,
		restaurant.PhoneNumber,
		restaurant.Email,
		restaurant.Description,
		restaurant.Address,
		restaurant.MinPrice,
		restaurant.MaxPrice,
		restaurant.ZipCode,
		restaurant.Capacity,
		restaurant.Category,
		restaurant.Logo,
		restaurant.Banner,
		restaurant.AdminID,
	)
	if err != nil {
		return nil, classify(err, restaurantEntity, "failed to create restaurant")
	}

	return &created, nil
}

// Update writes every column of restaurant
func (r *RestaurantRepository) Update(ctx context.Context, restaurant models.Restaurant) (*models.Restaurant, error) {
	query := `
		UPDATE restaurants
		SET name = $1, phone_number = $2, email = $3, description = $4, address = $5, min_price = $6,
			max_price = $7, zip_code = $8, capacity = $9, category = $10, logo = $11, banner = $12,
			admin_id = $13, updated_at = NOW()
		WHERE id = $14
		RETURNING ` + restaurantColumns

	var updated models.Restaurant
	err := r.db.GetContext(
		ctx,
		&updated,
		query,
		restaurant.Name,
		restaurant.PhoneNumber,
		restaurant.Email,
		restaurant.Description,
		restaurant.Address,
		restaurant.MinPrice,
		restaurant.MaxPrice,
		restaurant.ZipCode,
		restaurant.Capacity,
		restaurant.Category,
		restaurant.Logo,
		restaurant.Banner,
		restaurant.AdminID,
		restaurant.ID,
	)
	if err != nil {
		return nil, classify(err, restaurantEntity, "failed to update restaurant")
	}

	return &updated, nil
}

// Delete deletes a restaurant. Event links, schedules, reviews and
// reservations are removed by the schema's cascades.
func (r *RestaurantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM restaurants WHERE id = $1`, id)
	if err != nil {
		return classifyDelete(err, restaurantEntity, "failed to delete restaurant")
	}

	return expectAffected(result, restaurantEntity)
}
