package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getsy/restaurant-backend/internal/apperr"
)

func TestCategoriesRoundTrip(t *testing.T) {
	cases := []Categories{
		{"a", "b"},
		{"b", "a"},
		{"pizza", "pizza", "italian"},
		{"single"},
	}

	for _, in := range cases {
		v, err := in.Value()
		require.NoError(t, err)

		var out Categories
		require.NoError(t, out.Scan(v))
		assert.Equal(t, in, out)

		// drivers may hand the column back as bytes
		var fromBytes Categories
		require.NoError(t, fromBytes.Scan([]byte(v.(string))))
		assert.Equal(t, in, fromBytes)
	}
}

func TestCategoriesScanEmpty(t *testing.T) {
	var c Categories
	require.NoError(t, c.Scan(""))
	assert.Empty(t, c)
	assert.NotNil(t, c)

	require.NoError(t, c.Scan(nil))
	assert.Empty(t, c)
}

func TestCategoriesValidate(t *testing.T) {
	assert.NoError(t, Categories{"fast-food", "burgers"}.Validate())

	err := Categories{"fast,food"}.Validate()
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	err = Categories{"ok", ""}.Validate()
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestRestaurantValidate(t *testing.T) {
	valid := Restaurant{
		Name:     "Pizza Palace",
		Email:    "hello@pizza.test",
		MinPrice: 10,
		MaxPrice: 50,
		Capacity: 10,
		Category: Categories{"pizza"},
	}
	require.NoError(t, valid.Validate())

	inverted := valid
	inverted.MinPrice = 60
	err := inverted.Validate()
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, "min_price", e.Field)

	noSeats := valid
	noSeats.Capacity = 0
	e, ok = apperr.As(noSeats.Validate())
	require.True(t, ok)
	assert.Equal(t, "capacity", e.Field)
}

func TestRestaurantPatchWritesZeroValues(t *testing.T) {
	logo := "logo.png"
	r := Restaurant{
		Name:        "Old",
		Description: "something",
		MinPrice:    10,
		MaxPrice:    20,
		Logo:        &logo,
	}

	empty := ""
	zero := 0.0
	patch := RestaurantPatch{Description: &empty, MinPrice: &zero}
	patch.Apply(&r)

	assert.Equal(t, "Old", r.Name)
	assert.Equal(t, "", r.Description)
	assert.Equal(t, 0.0, r.MinPrice)
	assert.Equal(t, 20.0, r.MaxPrice)
	assert.Equal(t, &logo, r.Logo)
}

func TestRestaurantPatchIsEmpty(t *testing.T) {
	assert.True(t, RestaurantPatch{}.IsEmpty())

	ids := []uuid.UUID{}
	assert.False(t, RestaurantPatch{EventIDs: &ids}.IsEmpty())
	assert.False(t, RestaurantPatch{WorkingDays: json.RawMessage(`{}`)}.IsEmpty())
}

func TestReservationTransitions(t *testing.T) {
	cases := []struct {
		from, to ReservationStatus
		allowed  bool
	}{
		{ReservationStatusPending, ReservationStatusConfirmed, true},
		{ReservationStatusPending, ReservationStatusCancelled, true},
		{ReservationStatusPending, ReservationStatusCompleted, false},
		{ReservationStatusConfirmed, ReservationStatusCompleted, true},
		{ReservationStatusConfirmed, ReservationStatusCancelled, true},
		{ReservationStatusConfirmed, ReservationStatusPending, false},
		{ReservationStatusCancelled, ReservationStatusConfirmed, false},
		{ReservationStatusCompleted, ReservationStatusCancelled, false},
		{ReservationStatusPending, ReservationStatusPending, true},
		{ReservationStatus("unknown"), ReservationStatus("unknown"), false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}

	assert.True(t, ReservationStatusCancelled.IsTerminal())
	assert.True(t, ReservationStatusCompleted.IsTerminal())
	assert.False(t, ReservationStatusPending.IsTerminal())
	assert.ElementsMatch(t,
		[]ReservationStatus{ReservationStatusCancelled, ReservationStatusCompleted},
		ReservationStatusConfirmed.NextStatuses())
}

func TestDateJSONAndScan(t *testing.T) {
	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2025-03-14"`), &d))
	assert.Equal(t, "2025-03-14", d.String())

	out, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `"2025-03-14"`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`"14/03/2025"`), &d))

	var scanned Date
	require.NoError(t, scanned.Scan(time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2025-03-14", scanned.String())

	require.NoError(t, scanned.Scan("2025-03-15T00:00:00Z"))
	assert.Equal(t, "2025-03-15", scanned.String())
}

func TestTimeOfDay(t *testing.T) {
	tod, err := ParseTimeOfDay("19:30:00")
	require.NoError(t, err)
	assert.Equal(t, TimeOfDay("19:30"), tod)

	_, err = ParseTimeOfDay("7pm")
	assert.Error(t, err)

	var scanned TimeOfDay
	require.NoError(t, scanned.Scan([]byte("08:05:00")))
	assert.Equal(t, TimeOfDay("08:05"), scanned)

	at, err := TimeOfDay("19:30").At(NewDate(2025, 3, 14), time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 14, 19, 30, 0, 0, time.UTC), at)
}

func TestValidateRating(t *testing.T) {
	for _, ok := range []float64{0, 0.5, 3.7, 5} {
		assert.NoError(t, ValidateRating(ok), "%v", ok)
	}
	for _, bad := range []float64{-0.1, 5.1, 4.25} {
		assert.Error(t, ValidateRating(bad), "%v", bad)
	}
}

func TestParseWorkingDays(t *testing.T) {
	days, present, err := ParseWorkingDays(json.RawMessage(`{"monday": {"open": "09:00", "close": "22:00"}}`))
	require.NoError(t, err)
	assert.True(t, present)
	assert.Contains(t, days, "monday")

	_, present, err = ParseWorkingDays(nil)
	require.NoError(t, err)
	assert.False(t, present)

	_, present, err = ParseWorkingDays(json.RawMessage(`null`))
	require.NoError(t, err)
	assert.False(t, present)

	_, present, err = ParseWorkingDays(json.RawMessage(`"mon-fri 9-5"`))
	assert.True(t, present)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, _, err = ParseWorkingDays(json.RawMessage(`[1,2]`))
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestWorkingDaysScan(t *testing.T) {
	var w WorkingDays
	require.NoError(t, w.Scan([]byte(`{"friday":"12:00-23:00"}`)))
	assert.Equal(t, "12:00-23:00", w["friday"])
}

func TestValidateReportsFirstMissingField(t *testing.T) {
	restaurantID := uuid.New()
	req := ReservationRequest{RestaurantID: &restaurantID}

	err := Validate(req)
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.CodeMissingField, e.Code)
	assert.Equal(t, "user_id", e.Field)
}

func TestValidateRejectsNonPositivePax(t *testing.T) {
	id := uuid.New()
	date := NewDate(2025, 1, 1)
	tod := TimeOfDay("19:00")
	pax := 0
	req := ReservationRequest{RestaurantID: &id, UserID: &id, Date: &date, Time: &tod, Pax: &pax}

	e, ok := apperr.As(Validate(req))
	require.True(t, ok)
	assert.Equal(t, "pax", e.Field)
	assert.Equal(t, apperr.CodeInvalidField, e.Code)
}

func TestPermissionsScan(t *testing.T) {
	var p Permissions
	require.NoError(t, p.Scan([]byte(`{"restaurants.write": true}`)))
	assert.Equal(t, true, p["restaurants.write"])

	v, err := Permissions(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("{}"), v)
}

func TestPriceRangeContains(t *testing.T) {
	price := PriceRange{Min: 15, Max: 40}

	assert.True(t, price.Contains(20, 35))
	assert.True(t, price.Contains(15, 40))
	assert.False(t, price.Contains(5, 45))
	assert.False(t, price.Contains(20, 45))
}

func TestRestaurantFilterMatches(t *testing.T) {
	adminID := uuid.New()
	palace := Restaurant{
		Name:     "Pizza Palace",
		Address:  "1 Main St",
		ZipCode:  "1010",
		MinPrice: 20,
		MaxPrice: 35,
		Category: Categories{"fast-food"},
		AdminID:  adminID,
	}
	diner := Restaurant{
		Name:     "Night Owl Diner",
		Address:  "9 Queen St",
		ZipCode:  "1011",
		MinPrice: 5,
		MaxPrice: 45,
		Category: Categories{"burgers", "breakfast"},
	}

	tests := []struct {
		name   string
		filter RestaurantFilter
		want   []bool
	}{
		{
			name:   "empty filter",
			filter: RestaurantFilter{},
			want:   []bool{true, true},
		},
		{
			name:   "price range containment",
			filter: RestaurantFilter{Price: &PriceRange{Min: 15, Max: 40}},
			want:   []bool{true, false},
		},
		{
			name:   "search by name",
			filter: RestaurantFilter{Search: &RestaurantSearch{Name: "pizza"}},
			want:   []bool{true, false},
		},
		{
			name:   "search ignores blank terms",
			filter: RestaurantFilter{Search: &RestaurantSearch{Name: "diner", Address: "  "}},
			want:   []bool{false, true},
		},
		{
			name:   "category tag substring",
			filter: RestaurantFilter{Category: "BREAK"},
			want:   []bool{false, true},
		},
		{
			name:   "criteria combine with and",
			filter: RestaurantFilter{ZipCode: "1010", AdminID: &adminID, Category: "burgers"},
			want:   []bool{false, false},
		},
		{
			name:   "zip and admin",
			filter: RestaurantFilter{ZipCode: "1010", AdminID: &adminID},
			want:   []bool{true, false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want[0], tt.filter.Matches(palace))
			assert.Equal(t, tt.want[1], tt.filter.Matches(diner))
		})
	}
}
