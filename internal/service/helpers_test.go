package service

import (
	"context"
	"database/sql/driver"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/getsy/restaurant-backend/internal/db/repository"
	"github.com/getsy/restaurant-backend/internal/models"
	"github.com/getsy/restaurant-backend/internal/websockets"
)

func newRepos(t *testing.T) (*repository.Repositories, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return repository.NewRepositories(sqlx.NewDb(conn, "postgres")), mock
}

var restaurantColumns = []string{
	"id", "name", "phone_number", "email", "description", "address", "min_price", "max_price",
	"zip_code", "capacity", "category", "logo", "banner", "admin_id", "created_at", "updated_at",
}

func restaurantRows(id uuid.UUID, name string, capacity int) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(restaurantColumns).AddRow(
		id.String(), name, "+64 9 555 0100", "hello@example.test", "", "1 Queen St",
		10.0, 40.0, "1010", capacity, "pizza,italian", nil, nil, uuid.New().String(), now, now)
}

var reservationColumns = []string{
	"id", "user_id", "restaurant_id", "event_id", "date", "time", "pax", "status", "notes",
	"created_at", "updated_at",
}

func reservationRows(r models.Reservation) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(reservationColumns).AddRow(
		r.ID.String(), r.UserID.String(), r.RestaurantID.String(), nil, r.Date.Time, string(r.Time)+":00",
		r.Pax, string(r.Status), nil, now, now)
}

var userColumns = []string{
	"id", "name", "email", "password_hash", "phone_number", "status", "theme", "role_id", "avatar",
	"recovery_code", "recovery_code_expires", "last_login_at", "registered_at", "created_at", "updated_at",
}

func userRows(u models.User) *sqlmock.Rows {
	var code, expires driver.Value
	if u.RecoveryCode != nil {
		code = *u.RecoveryCode
	}
	if u.RecoveryCodeExpires != nil {
		expires = *u.RecoveryCodeExpires
	}

	now := time.Now()
	return sqlmock.NewRows(userColumns).AddRow(
		u.ID.String(), u.Name, u.Email, u.PasswordHash, u.PhoneNumber, string(u.Status), "light",
		models.StandardUserRoleID.String(), nil, code, expires, nil, now, now, now)
}

type publishedMessage struct {
	restaurantID uuid.UUID
	msgType      websockets.MessageType
}

type fakePublisher struct {
	mu       sync.Mutex
	messages []publishedMessage
}

func (p *fakePublisher) Publish(restaurantID uuid.UUID, msgType websockets.MessageType, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, publishedMessage{restaurantID: restaurantID, msgType: msgType})
	return nil
}

type fakeNotifier struct {
	notices []ReservationNotice
	codes   []string
}

func (n *fakeNotifier) NotifyReservation(ctx context.Context, notice ReservationNotice) error {
	n.notices = append(n.notices, notice)
	return nil
}

func (n *fakeNotifier) NotifyRecoveryCode(ctx context.Context, phone, code string) error {
	n.codes = append(n.codes, code)
	return nil
}

func fkError(constraint string) error {
	return &pq.Error{Code: "23503", Constraint: constraint}
}

func ptr[T any](v T) *T {
	return &v
}
