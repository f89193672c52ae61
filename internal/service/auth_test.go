package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/getsy/restaurant-backend/internal/apperr"
	"github.com/getsy/restaurant-backend/internal/models"
)

func testUser(t *testing.T, password string, status models.UserStatus) models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	return models.User{
		ID:           uuid.New(),
		Name:         "Aroha",
		Email:        "aroha@example.test",
		PasswordHash: string(hash),
		PhoneNumber:  "+64211234567",
		Status:       status,
	}
}

func newAuthService(t *testing.T) (*AuthService, sqlmock.Sqlmock, *fakeNotifier) {
	repos, mock := newRepos(t)
	notifier := &fakeNotifier{}
	svc := NewAuthService(repos, JWTConfig{Secret: "test-secret", ExpiresIn: 24}, notifier)
	return svc, mock, notifier
}

func TestRegisterUserDefaultsToStandardRole(t *testing.T) {
	svc, mock, _ := newAuthService(t)

	user := models.User{
		ID:          uuid.New(),
		Name:        "Aroha",
		Email:       "aroha@example.test",
		PhoneNumber: "+64211234567",
		Status:      models.UserStatusActive,
	}

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("Aroha", "aroha@example.test", sqlmock.AnyArg(), "+64211234567", "active", "light",
			models.StandardUserRoleID, nil, sqlmock.AnyArg()).
		WillReturnRows(userRows(user))

	created, err := svc.RegisterUser(context.Background(), models.UserRequest{
		Name:        "Aroha",
		Email:       "aroha@example.test",
		Password:    "secret123",
		PhoneNumber: "+64211234567",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StandardUserRoleID, created.RoleID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterUserRequiresPassword(t *testing.T) {
	svc, mock, _ := newAuthService(t)

	_, err := svc.RegisterUser(context.Background(), models.UserRequest{
		Name:        "Aroha",
		Email:       "aroha@example.test",
		PhoneNumber: "+64211234567",
	})
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, "password", e.Field)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginIssuesValidToken(t *testing.T) {
	svc, mock, _ := newAuthService(t)
	user := testUser(t, "secret123", models.UserStatusActive)

	mock.ExpectQuery("FROM users WHERE email").WithArgs(user.Email).WillReturnRows(userRows(user))
	mock.ExpectExec("UPDATE users SET last_login_at").WillReturnResult(sqlmock.NewResult(0, 1))

	token, loggedIn, err := svc.Login(context.Background(), models.LoginRequest{Email: user.Email, Password: "secret123"})
	require.NoError(t, err)
	require.NotNil(t, loggedIn.LastLoginAt)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.UserID)
	assert.Equal(t, models.StandardUserRoleID.String(), claims.RoleID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginWrongPassword(t *testing.T) {
	svc, mock, _ := newAuthService(t)
	user := testUser(t, "secret123", models.UserStatusActive)

	mock.ExpectQuery("FROM users WHERE email").WillReturnRows(userRows(user))

	_, _, err := svc.Login(context.Background(), models.LoginRequest{Email: user.Email, Password: "nope"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, mock, _ := newAuthService(t)

	mock.ExpectQuery("FROM users WHERE email").WillReturnError(sql.ErrNoRows)

	_, _, err := svc.Login(context.Background(), models.LoginRequest{Email: "ghost@example.test", Password: "secret123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginBlockedUser(t *testing.T) {
	svc, mock, _ := newAuthService(t)
	user := testUser(t, "secret123", models.UserStatusBlocked)

	mock.ExpectQuery("FROM users WHERE email").WillReturnRows(userRows(user))

	_, _, err := svc.Login(context.Background(), models.LoginRequest{Email: user.Email, Password: "secret123"})
	assert.ErrorIs(t, err, ErrUserBlocked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidateTokenRejectsOtherSecret(t *testing.T) {
	svc, _, _ := newAuthService(t)
	other := NewAuthService(nil, JWTConfig{Secret: "another-secret", ExpiresIn: 1}, nil)

	token, err := other.generateToken(uuid.New(), models.StandardUserRoleID)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}

func TestRequestPasswordRecoverySendsCode(t *testing.T) {
	svc, mock, notifier := newAuthService(t)
	user := testUser(t, "secret123", models.UserStatusActive)

	mock.ExpectQuery("FROM users WHERE email").WillReturnRows(userRows(user))
	mock.ExpectExec("SET recovery_code").WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, svc.RequestPasswordRecovery(context.Background(), user.Email))
	require.Len(t, notifier.codes, 1)
	assert.Regexp(t, `^\d{4}$`, notifier.codes[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestPasswordRecoveryUnknownEmail(t *testing.T) {
	svc, mock, notifier := newAuthService(t)

	mock.ExpectQuery("FROM users WHERE email").WillReturnError(sql.ErrNoRows)

	require.NoError(t, svc.RequestPasswordRecovery(context.Background(), "ghost@example.test"))
	assert.Empty(t, notifier.codes)
}

func TestResetPassword(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		code    string
		expires time.Time
		wantErr bool
	}{
		{name: "valid code", code: "4821", expires: now.Add(5 * time.Minute)},
		{name: "wrong code", code: "0000", expires: now.Add(5 * time.Minute), wantErr: true},
		{name: "expired code", code: "4821", expires: now.Add(-time.Minute), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mock, _ := newAuthService(t)
			svc.now = func() time.Time { return now }

			user := testUser(t, "secret123", models.UserStatusActive)
			user.RecoveryCode = ptr("4821")
			user.RecoveryCodeExpires = &tt.expires

			mock.ExpectQuery("FROM users WHERE email").WillReturnRows(userRows(user))
			if !tt.wantErr {
				mock.ExpectExec("SET password_hash").WillReturnResult(sqlmock.NewResult(0, 1))
			}

			err := svc.ResetPassword(context.Background(), models.PasswordResetRequest{
				Email:       user.Email,
				Code:        tt.code,
				NewPassword: "brand-new-pass",
			})
			if tt.wantErr {
				assert.True(t, apperr.HasCode(err, apperr.CodeRecoveryCodeFailed))
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	svc, mock, _ := newAuthService(t)
	user := testUser(t, "secret123", models.UserStatusActive)

	mock.ExpectQuery("FROM users WHERE id").WillReturnRows(userRows(user))

	err := svc.ChangePassword(context.Background(), user.ID, "wrong", "brand-new-pass")
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, "current_password", e.Field)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignRoleRequiresRole(t *testing.T) {
	svc, mock, _ := newAuthService(t)

	_, err := svc.AssignRole(context.Background(), uuid.New(), models.RoleAssignment{})
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.CodeMissingField, e.Code)
	assert.Equal(t, "role_id", e.Field)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignRoleUnknownRole(t *testing.T) {
	svc, mock, _ := newAuthService(t)

	user := testUser(t, "secret123", models.UserStatusActive)
	roleID := uuid.New()

	mock.ExpectQuery("FROM users WHERE id").WithArgs(user.ID).WillReturnRows(userRows(user))
	mock.ExpectQuery("UPDATE users").
		WithArgs(user.Name, user.Email, user.PhoneNumber, "light", roleID, nil, user.ID).
		WillReturnError(fkError("users_role_id_fkey"))

	_, err := svc.AssignRole(context.Background(), user.ID, models.RoleAssignment{RoleID: &roleID})
	assert.True(t, apperr.HasCode(err, apperr.CodeInvalidReference))
	assert.NoError(t, mock.ExpectationsWereMet())
}
