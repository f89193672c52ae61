package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ReservationStatus represents the status of a reservation
type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "pending"
	ReservationStatusConfirmed ReservationStatus = "confirmed"
	ReservationStatusCancelled ReservationStatus = "cancelled"
	ReservationStatusCompleted ReservationStatus = "completed"
)

// reservationTransitions lists the statuses reachable from each status
var reservationTransitions = map[ReservationStatus][]ReservationStatus{
	ReservationStatusPending:   {ReservationStatusConfirmed, ReservationStatusCancelled},
	ReservationStatusConfirmed: {ReservationStatusCancelled, ReservationStatusCompleted},
	ReservationStatusCancelled: nil,
	ReservationStatusCompleted: nil,
}

// Valid reports whether s is a known status
func (s ReservationStatus) Valid() bool {
	_, ok := reservationTransitions[s]
	return ok
}

// IsTerminal reports whether no further transition is allowed from s
func (s ReservationStatus) IsTerminal() bool {
	return s.Valid() && len(reservationTransitions[s]) == 0
}

// CanTransitionTo reports whether next may follow s. Staying on the same
// status is always allowed.
func (s ReservationStatus) CanTransitionTo(next ReservationStatus) bool {
	if s == next {
		return s.Valid()
	}
	for _, allowed := range reservationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// NextStatuses returns the statuses reachable from s
func (s ReservationStatus) NextStatuses() []ReservationStatus {
	return append([]ReservationStatus(nil), reservationTransitions[s]...)
}

// DateLayout is the wire and storage format of a reservation date
const DateLayout = "2006-01-02"

// Date is a calendar day without a time component
type Date struct {
	time.Time
}

// NewDate returns the date for the given day in UTC
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("date must be formatted as YYYY-MM-DD: %w", err)
	}
	return Date{t}, nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

// MarshalJSON implements json.Marshaler
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value implements driver.Valuer
func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

// Scan implements sql.Scanner
func (d *Date) Scan(value interface{}) error {
	switch v := value.(type) {
	case time.Time:
		*d = NewDate(v.Year(), v.Month(), v.Day())
		return nil
	case string:
		return d.scanString(v)
	case []byte:
		return d.scanString(string(v))
	default:
		return fmt.Errorf("cannot scan %T into date", value)
	}
}

func (d *Date) scanString(s string) error {
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// TimeOfDay is a wall-clock time formatted as HH:MM
type TimeOfDay string

// ParseTimeOfDay accepts HH:MM or HH:MM:SS and normalizes to HH:MM
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return TimeOfDay(t.Format("15:04")), nil
		}
	}
	return "", fmt.Errorf("time must be formatted as HH:MM")
}

// Value implements driver.Valuer
func (t TimeOfDay) Value() (driver.Value, error) {
	return string(t), nil
}

// Scan implements sql.Scanner
func (t *TimeOfDay) Scan(value interface{}) error {
	var raw string
	switch v := value.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	case time.Time:
		*t = TimeOfDay(v.Format("15:04"))
		return nil
	default:
		return fmt.Errorf("cannot scan %T into time of day", value)
	}
	parsed, err := ParseTimeOfDay(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// At combines d and t into a timestamp in loc
func (t TimeOfDay) At(d Date, loc *time.Location) (time.Time, error) {
	clock, err := time.Parse("15:04", string(t))
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year(), d.Month(), d.Day(), clock.Hour(), clock.Minute(), 0, 0, loc), nil
}

// Reservation represents a table booking
type Reservation struct {
	ID           uuid.UUID         `db:"id" json:"id"`
	UserID       uuid.UUID         `db:"user_id" json:"user_id"`
	RestaurantID uuid.UUID         `db:"restaurant_id" json:"restaurant_id"`
	EventID      *uuid.UUID        `db:"event_id" json:"event_id"`
	Date         Date              `db:"date" json:"date"`
	Time         TimeOfDay         `db:"time" json:"time"`
	Pax          int               `db:"pax" json:"pax"`
	Status       ReservationStatus `db:"status" json:"status"`
	Notes        *string           `db:"notes" json:"notes"`
	CreatedAt    time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time         `db:"updated_at" json:"updated_at"`
}

// ReservationRequest is used for reservation creation. Fields are checked in
// declaration order, so the first absent one is reported.
type ReservationRequest struct {
	RestaurantID *uuid.UUID         `json:"restaurant_id" validate:"required"`
	UserID       *uuid.UUID         `json:"user_id" validate:"required"`
	EventID      *uuid.UUID         `json:"event_id"`
	Date         *Date              `json:"date" validate:"required"`
	Time         *TimeOfDay         `json:"time" validate:"required"`
	Pax          *int               `json:"pax" validate:"required,gt=0"`
	Status       *ReservationStatus `json:"status"`
	Notes        *string            `json:"notes"`
}

// ReservationPatch is used for partial reservation updates
type ReservationPatch struct {
	RestaurantID *uuid.UUID         `json:"restaurant_id"`
	EventID      *uuid.UUID         `json:"event_id"`
	Date         *Date              `json:"date"`
	Time         *TimeOfDay         `json:"time"`
	Pax          *int               `json:"pax" validate:"omitempty,gt=0"`
	Status       *ReservationStatus `json:"status"`
	Notes        *string            `json:"notes"`
}

// Apply merges the fields present in the patch into res. Status is left to
// the caller so that transitions can be checked first.
func (p ReservationPatch) Apply(res *Reservation) {
	if p.RestaurantID != nil {
		res.RestaurantID = *p.RestaurantID
	}
	if p.EventID != nil {
		res.EventID = p.EventID
	}
	if p.Date != nil {
		res.Date = *p.Date
	}
	if p.Time != nil {
		res.Time = *p.Time
	}
	if p.Pax != nil {
		res.Pax = *p.Pax
	}
	if p.Notes != nil {
		res.Notes = p.Notes
	}
}

// ReservationSlot identifies the seats a reservation occupies
type ReservationSlot struct {
	RestaurantID uuid.UUID
	Date         Date
	Time         TimeOfDay
}
