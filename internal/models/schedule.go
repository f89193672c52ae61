package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/getsy/restaurant-backend/internal/apperr"
)

// WorkingDays maps a day to its opening hours, e.g.
// {"monday": {"open": "09:00", "close": "22:00"}}
type WorkingDays map[string]interface{}

// Value implements driver.Valuer
func (w WorkingDays) Value() (driver.Value, error) {
	if w == nil {
		return []byte("{}"), nil
	}
	return jsonValue(w)
}

// Scan implements sql.Scanner
func (w *WorkingDays) Scan(value interface{}) error {
	*w = WorkingDays{}
	return scanJSON(value, w)
}

// ParseWorkingDays decodes a raw working_days payload. The second return is
// false when the payload is absent or null.
func ParseWorkingDays(raw json.RawMessage) (WorkingDays, bool, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, false, nil
	}

	if trimmed[0] != '{' {
		return nil, true, apperr.Invalid("working_days", "the schedule must be a JSON object")
	}

	var days WorkingDays
	if err := json.Unmarshal(trimmed, &days); err != nil {
		return nil, true, apperr.Invalid("working_days", "the schedule must be a JSON object")
	}
	return days, true, nil
}

// Schedule holds a restaurant's weekly working hours
type Schedule struct {
	ID           uuid.UUID   `db:"id" json:"id"`
	RestaurantID uuid.UUID   `db:"restaurant_id" json:"restaurant_id"`
	WorkingDays  WorkingDays `db:"working_days" json:"working_days"`
	CreatedAt    time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at" json:"updated_at"`
}
