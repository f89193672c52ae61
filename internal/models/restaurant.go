package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/getsy/restaurant-backend/internal/apperr"
)

// CategoryDelimiter separates tags in the persisted category column
const CategoryDelimiter = ","

// Categories is an ordered list of tags stored as one delimited string.
// Order is preserved and duplicates are kept.
type Categories []string

// Value implements driver.Valuer
func (c Categories) Value() (driver.Value, error) {
	return strings.Join(c, CategoryDelimiter), nil
}

// Scan implements sql.Scanner
func (c *Categories) Scan(value interface{}) error {
	var raw string
	switch v := value.(type) {
	case nil:
		raw = ""
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("cannot scan %T into categories", value)
	}

	if raw == "" {
		*c = Categories{}
		return nil
	}
	*c = strings.Split(raw, CategoryDelimiter)
	return nil
}

// Validate rejects tags that would not survive the delimited encoding
func (c Categories) Validate() error {
	for i, tag := range c {
		if tag == "" {
			return apperr.Invalid("category", fmt.Sprintf("tag %d is empty", i))
		}
		if strings.Contains(tag, CategoryDelimiter) {
			return apperr.Invalid("category", fmt.Sprintf("tag %q contains %q", tag, CategoryDelimiter))
		}
	}
	return nil
}

// Restaurant represents a venue
type Restaurant struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	Name        string     `db:"name" json:"name"`
	PhoneNumber string     `db:"phone_number" json:"phone_number"`
	Email       string     `db:"email" json:"email"`
	Description string     `db:"description" json:"description"`
	Address     string     `db:"address" json:"address"`
	MinPrice    float64    `db:"min_price" json:"min_price"`
	MaxPrice    float64    `db:"max_price" json:"max_price"`
	ZipCode     string     `db:"zip_code" json:"zip_code"`
	Capacity    int        `db:"capacity" json:"capacity"`
	Category    Categories `db:"category" json:"category"`
	Logo        *string    `db:"logo" json:"logo"`
	Banner      *string    `db:"banner" json:"banner"`
	AdminID     uuid.UUID  `db:"admin_id" json:"admin_id"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`

	// Not stored directly in the database
	Schedule *Schedule `db:"-" json:"schedule,omitempty"`
	Events   []Event   `db:"-" json:"events,omitempty"`
}

// Validate checks the invariants that span several fields
func (r *Restaurant) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return apperr.Missing("name")
	}
	if strings.TrimSpace(r.Email) == "" {
		return apperr.Missing("email")
	}
	if r.MinPrice < 0 {
		return apperr.Invalid("min_price", "must not be negative")
	}
	if r.MinPrice > r.MaxPrice {
		return apperr.Invalid("min_price", "must not exceed max_price")
	}
	if r.Capacity <= 0 {
		return apperr.Invalid("capacity", "must be greater than 0")
	}
	if len(r.Category) == 0 {
		return apperr.Missing("category")
	}
	return r.Category.Validate()
}

// RestaurantRequest is used for restaurant creation
type RestaurantRequest struct {
	Name        string          `json:"name" validate:"required,max=255"`
	PhoneNumber string          `json:"phone_number" validate:"required,max=20"`
	Email       string          `json:"email" validate:"required,email"`
	Description string          `json:"description"`
	Address     string          `json:"address" validate:"required"`
	MinPrice    *float64        `json:"min_price" validate:"required"`
	MaxPrice    *float64        `json:"max_price" validate:"required"`
	ZipCode     string          `json:"zip_code" validate:"required,max=20"`
	Capacity    *int            `json:"capacity" validate:"required"`
	Category    Categories      `json:"category" validate:"required"`
	Logo        *string         `json:"logo"`
	Banner      *string         `json:"banner"`
	AdminID     *uuid.UUID      `json:"admin_id" validate:"required"`
	EventIDs    []uuid.UUID     `json:"event_ids"`
	WorkingDays json.RawMessage `json:"working_days"`
}

// Restaurant builds the row described by the request. Call after Validate.
func (req RestaurantRequest) Restaurant() Restaurant {
	return Restaurant{
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
		Email:       req.Email,
		Description: req.Description,
		Address:     req.Address,
		MinPrice:    *req.MinPrice,
		MaxPrice:    *req.MaxPrice,
		ZipCode:     req.ZipCode,
		Capacity:    *req.Capacity,
		Category:    req.Category,
		Logo:        req.Logo,
		Banner:      req.Banner,
		AdminID:     *req.AdminID,
	}
}

// RestaurantPatch is used for partial restaurant updates. A nil field is left
// untouched; a non-nil field is written even when it holds a zero value.
type RestaurantPatch struct {
	Name        *string         `json:"name" validate:"omitempty,max=255"`
	PhoneNumber *string         `json:"phone_number" validate:"omitempty,max=20"`
	Email       *string         `json:"email" validate:"omitempty,email"`
	Description *string         `json:"description"`
	Address     *string         `json:"address"`
	MinPrice    *float64        `json:"min_price"`
	MaxPrice    *float64        `json:"max_price"`
	ZipCode     *string         `json:"zip_code" validate:"omitempty,max=20"`
	Capacity    *int            `json:"capacity"`
	Category    *Categories     `json:"category"`
	Logo        *string         `json:"logo"`
	Banner      *string         `json:"banner"`
	AdminID     *uuid.UUID      `json:"admin_id"`
	EventIDs    *[]uuid.UUID    `json:"event_ids"`
	WorkingDays json.RawMessage `json:"working_days"`
}

// IsEmpty reports whether the patch carries nothing to change
func (p RestaurantPatch) IsEmpty() bool {
	return p.Name == nil && p.PhoneNumber == nil && p.Email == nil &&
		p.Description == nil && p.Address == nil && p.MinPrice == nil &&
		p.MaxPrice == nil && p.ZipCode == nil && p.Capacity == nil &&
		p.Category == nil && p.Logo == nil && p.Banner == nil &&
		p.AdminID == nil && p.EventIDs == nil && len(p.WorkingDays) == 0
}

// Apply merges the scalar fields present in the patch into r
func (p RestaurantPatch) Apply(r *Restaurant) {
	if p.Name != nil {
		r.Name = *p.Name
	}
	if p.PhoneNumber != nil {
		r.PhoneNumber = *p.PhoneNumber
	}
	if p.Email != nil {
		r.Email = *p.Email
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
	if p.Address != nil {
		r.Address = *p.Address
	}
	if p.MinPrice != nil {
		r.MinPrice = *p.MinPrice
	}
	if p.MaxPrice != nil {
		r.MaxPrice = *p.MaxPrice
	}
	if p.ZipCode != nil {
		r.ZipCode = *p.ZipCode
	}
	if p.Capacity != nil {
		r.Capacity = *p.Capacity
	}
	if p.Category != nil {
		r.Category = *p.Category
	}
	if p.Logo != nil {
		r.Logo = p.Logo
	}
	if p.Banner != nil {
		r.Banner = p.Banner
	}
	if p.AdminID != nil {
		r.AdminID = *p.AdminID
	}
}

// RestaurantFilter holds discovery criteria. Set criteria are combined with
// AND; an empty filter matches every restaurant.
type RestaurantFilter struct {
	Category string
	ZipCode  string
	Price    *PriceRange
	AdminID  *uuid.UUID
	Search   *RestaurantSearch
}

// PriceRange selects restaurants whose own range lies within [Min, Max]
type PriceRange struct {
	Min float64 `json:"min_price"`
	Max float64 `json:"max_price"`
}

// Validate checks the range bounds
func (p PriceRange) Validate() error {
	if p.Min < 0 {
		return apperr.Invalid("min_price", "must not be negative")
	}
	if p.Min > p.Max {
		return apperr.Invalid("min_price", "must not exceed max_price")
	}
	return nil
}

// Contains reports whether a restaurant priced from minPrice to maxPrice lies
// within the range
func (p PriceRange) Contains(minPrice, maxPrice float64) bool {
	return minPrice >= p.Min && maxPrice <= p.Max
}

// RestaurantSearch is a free-text query. A restaurant matches when any of the
// supplied terms is a substring of its corresponding field; unset terms take
// no part in the match.
type RestaurantSearch struct {
	Name     string
	Address  string
	Category string
}

// IsEmpty reports whether no search term was supplied
func (s RestaurantSearch) IsEmpty() bool {
	return strings.TrimSpace(s.Name) == "" &&
		strings.TrimSpace(s.Address) == "" &&
		strings.TrimSpace(s.Category) == ""
}

// Matches reports whether any supplied term is a case-insensitive substring
// of the corresponding field of r
func (s RestaurantSearch) Matches(r Restaurant) bool {
	if name := strings.TrimSpace(s.Name); name != "" && containsFold(r.Name, name) {
		return true
	}
	if address := strings.TrimSpace(s.Address); address != "" && containsFold(r.Address, address) {
		return true
	}
	if category := strings.TrimSpace(s.Category); category != "" && r.Category.matches(category) {
		return true
	}
	return false
}

// Matches applies the filter to a loaded restaurant with the same semantics
// as the SQL discovery query
func (f RestaurantFilter) Matches(r Restaurant) bool {
	if category := strings.TrimSpace(f.Category); category != "" && !r.Category.matches(category) {
		return false
	}
	if zip := strings.TrimSpace(f.ZipCode); zip != "" && r.ZipCode != zip {
		return false
	}
	if f.Price != nil && !f.Price.Contains(r.MinPrice, r.MaxPrice) {
		return false
	}
	if f.AdminID != nil && r.AdminID != *f.AdminID {
		return false
	}
	if f.Search != nil && !f.Search.Matches(r) {
		return false
	}
	return true
}

// IsEmpty reports whether the filter sets no criteria
func (f RestaurantFilter) IsEmpty() bool {
	return strings.TrimSpace(f.Category) == "" && strings.TrimSpace(f.ZipCode) == "" &&
		f.Price == nil && f.AdminID == nil && f.Search == nil
}

// matches reports whether any tag contains term
func (c Categories) matches(term string) bool {
	for _, tag := range c {
		if containsFold(tag, term) {
			return true
		}
	}
	return false
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
