package handler

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/getsy/restaurant-backend/internal/api"
	"github.com/getsy/restaurant-backend/internal/apperr"
	"github.com/getsy/restaurant-backend/internal/models"
	"github.com/getsy/restaurant-backend/internal/service"
)

// RestaurantHandler handles restaurant, discovery and schedule requests
type RestaurantHandler struct {
	restaurantService *service.RestaurantService
}

// NewRestaurantHandler creates a new restaurant handler
func NewRestaurantHandler(restaurantService *service.RestaurantService) *RestaurantHandler {
	return &RestaurantHandler{
		restaurantService: restaurantService,
	}
}

// List lists restaurants. Query parameters narrow the result down:
// category, zip_code, min_price with max_price, and admin_id.
func (h *RestaurantHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, filtered, err := parseRestaurantFilter(r.URL.Query())
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	var restaurants []models.Restaurant
	if filtered {
		restaurants, err = h.restaurantService.FilterRestaurants(r.Context(), filter)
	} else {
		restaurants, err = h.restaurantService.ListRestaurants(r.Context())
	}
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	respondJSON(w, restaurants)
}

// Search matches restaurants whose name, address or category contains any
// of the supplied terms
func (h *RestaurantHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.RestaurantFilter{
		Search: &models.RestaurantSearch{
			Name:     q.Get("name"),
			Address:  q.Get("address"),
			Category: q.Get("category"),
		},
	}

	restaurants, err := h.restaurantService.FilterRestaurants(r.Context(), filter)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	respondJSON(w, restaurants)
}

func parseRestaurantFilter(q url.Values) (models.RestaurantFilter, bool, error) {
	filter := models.RestaurantFilter{
		Category: q.Get("category"),
		ZipCode:  q.Get("zip_code"),
	}
	filtered := filter.Category != "" || filter.ZipCode != ""

	minRaw, maxRaw := q.Get("min_price"), q.Get("max_price")
	if minRaw != "" || maxRaw != "" {
		if minRaw == "" {
			return filter, false, apperr.Missing("min_price")
		}
		if maxRaw == "" {
			return filter, false, apperr.Missing("max_price")
		}
		minPrice, err := strconv.ParseFloat(minRaw, 64)
		if err != nil {
			return filter, false, apperr.Invalid("min_price", "must be a number")
		}
		maxPrice, err := strconv.ParseFloat(maxRaw, 64)
		if err != nil {
			return filter, false, apperr.Invalid("max_price", "must be a number")
		}
		filter.Price = &models.PriceRange{Min: minPrice, Max: maxPrice}
		filtered = true
	}

	if raw := q.Get("admin_id"); raw != "" {
		adminID, err := uuid.Parse(raw)
		if err != nil {
			return filter, false, apperr.Invalid("admin_id", "must be a UUID")
		}
		filter.AdminID = &adminID
		filtered = true
	}

	return filter, filtered, nil
}

// Get gets a restaurant with its schedule and events
func (h *RestaurantHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "restaurant")
	if !ok {
		return
	}

	restaurant, err := h.restaurantService.GetRestaurant(r.Context(), id)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	respondJSON(w, restaurant)
}

// Create creates a new restaurant
func (h *RestaurantHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.RestaurantRequest
	if !decode(w, r, &req) {
		return
	}

	restaurant, err := h.restaurantService.CreateRestaurant(r.Context(), req)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	respondCreated(w, restaurant)
}

// Update applies a partial update to a restaurant
func (h *RestaurantHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "restaurant")
	if !ok {
		return
	}

	var patch models.RestaurantPatch
	if !decode(w, r, &patch) {
		return
	}

	restaurant, err := h.restaurantService.UpdateRestaurant(r.Context(), id, patch)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	respondJSON(w, restaurant)
}

// Delete deletes a restaurant
func (h *RestaurantHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "restaurant")
	if !ok {
		return
	}

	if err := h.restaurantService.DeleteRestaurant(r.Context(), id); err != nil {
		api.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Schedules lists every schedule row of a restaurant
func (h *RestaurantHandler) Schedules(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "restaurant")
	if !ok {
		return
	}

	schedules, err := h.restaurantService.ListSchedules(r.Context(), id)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	respondJSON(w, schedules)
}
