package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/getsy/restaurant-backend/internal/apperr"
	"github.com/getsy/restaurant-backend/internal/db/repository"
	"github.com/getsy/restaurant-backend/internal/models"
)

// RecoveryCodeTTL is how long a password recovery code stays valid
const RecoveryCodeTTL = 15 * time.Minute

var (
	// ErrInvalidCredentials is returned for an unknown email or a wrong password
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserBlocked is returned when a blocked user tries to log in
	ErrUserBlocked = errors.New("user account is blocked")
)

// JWTConfig holds configuration for JWT token generation
type JWTConfig struct {
	Secret    string
	ExpiresIn int // hours
}

// AuthService handles user accounts, authentication and password recovery
type AuthService struct {
	repos     *repository.Repositories
	jwtConfig JWTConfig
	notifier  Notifier
	now       func() time.Time
}

// NewAuthService creates a new authentication service
func NewAuthService(repos *repository.Repositories, jwtConfig JWTConfig, notifier Notifier) *AuthService {
	return &AuthService{
		repos:     repos,
		jwtConfig: jwtConfig,
		notifier:  notifier,
		now:       time.Now,
	}
}

// Claims represents JWT claims
type Claims struct {
	UserID string `json:"user_id"`
	RoleID string `json:"role_id"`
	jwt.RegisteredClaims
}

// Login authenticates a user and returns a JWT token
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (string, *models.User, error) {
	if err := models.Validate(req); err != nil {
		return "", nil, err
	}

	user, err := s.repos.User.GetByEmail(ctx, req.Email)
	if apperr.Is(err, apperr.KindNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	if user.Status == models.UserStatusBlocked {
		return "", nil, ErrUserBlocked
	}

	token, err := s.generateToken(user.ID, user.RoleID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}

	now := s.now()
	if err := s.repos.User.TouchLastLogin(ctx, user.ID, now); err != nil {
		return "", nil, err
	}
	user.LastLoginAt = &now

	return token, user, nil
}

// generateToken generates a JWT token for a user
func (s *AuthService) generateToken(userID, roleID uuid.UUID) (string, error) {
	now := s.now()
	expirationTime := now.Add(time.Duration(s.jwtConfig.ExpiresIn) * time.Hour)

	claims := &Claims{
		UserID: userID.String(),
		RoleID: roleID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtConfig.Secret))
}

// ValidateToken validates a JWT token and returns the claims
func (s *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtConfig.Secret), nil
	})
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

// RegisterUser registers a new user with the standard user role
func (s *AuthService) RegisterUser(ctx context.Context, req models.UserRequest) (*models.User, error) {
	if err := models.Validate(req); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
		PhoneNumber:  req.PhoneNumber,
		Status:       models.UserStatusActive,
		Theme:        models.ThemeLight,
		RoleID:       models.StandardUserRoleID,
		Avatar:       req.Avatar,
		RegisteredAt: s.now(),
	}
	if req.Theme != "" {
		user.Theme = req.Theme
	}

	return s.repos.User.Create(ctx, user)
}

// GetUser retrieves a user with their role
func (s *AuthService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.repos.User.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	role, err := s.repos.Role.GetByID(ctx, user.RoleID)
	if err != nil && !apperr.Is(err, apperr.KindNotFound) {
		return nil, err
	}
	user.Role = role

	return user, nil
}

// ListUsers lists every user
func (s *AuthService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.repos.User.List(ctx)
}

// UpdateUser merges the fields present in patch into the stored user
func (s *AuthService) UpdateUser(ctx context.Context, id uuid.UUID, patch models.UserPatch) (*models.User, error) {
	if err := models.Validate(patch); err != nil {
		return nil, err
	}

	user, err := s.repos.User.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	patch.Apply(user)
	return s.repos.User.Update(ctx, *user)
}

// AssignRole moves a user to another role. An unknown role is reported as an
// invalid reference.
func (s *AuthService) AssignRole(ctx context.Context, id uuid.UUID, req models.RoleAssignment) (*models.User, error) {
	if err := models.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.repos.User.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.RoleID = *req.RoleID
	return s.repos.User.Update(ctx, *user)
}

// SetUserBlocked blocks or unblocks a user
func (s *AuthService) SetUserBlocked(ctx context.Context, id uuid.UUID, blocked bool) (*models.User, error) {
	status := models.UserStatusActive
	if blocked {
		status = models.UserStatusBlocked
	}
	return s.repos.User.UpdateStatus(ctx, id, status)
}

// DeleteUser deletes a user
func (s *AuthService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return s.repos.User.Delete(ctx, id)
}

// ChangePassword changes a user's password
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	if len(newPassword) < 6 {
		return apperr.Invalid("new_password", "must be at least 6")
	}

	user, err := s.repos.User.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return apperr.Invalid("current_password", "current password is incorrect")
	}

	return s.setPassword(ctx, userID, newPassword)
}

func (s *AuthService) setPassword(ctx context.Context, userID uuid.UUID, password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.repos.User.UpdatePassword(ctx, userID, string(hashedPassword))
}

// RequestPasswordRecovery issues a 4-digit recovery code to the user's phone.
// Unknown emails are ignored so callers cannot discover accounts.
func (s *AuthService) RequestPasswordRecovery(ctx context.Context, email string) error {
	user, err := s.repos.User.GetByEmail(ctx, email)
	if apperr.Is(err, apperr.KindNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	code, err := newRecoveryCode()
	if err != nil {
		return fmt.Errorf("failed to generate recovery code: %w", err)
	}

	if err := s.repos.User.SetRecoveryCode(ctx, user.ID, code, s.now().Add(RecoveryCodeTTL)); err != nil {
		return err
	}

	if s.notifier != nil {
		if err := s.notifier.NotifyRecoveryCode(ctx, user.PhoneNumber, code); err != nil {
			logrus.WithError(err).WithField("user_id", user.ID).Warn("Failed to deliver recovery code")
		}
	}

	return nil
}

// ResetPassword redeems a recovery code and sets a new password. A code can
// only be used once.
func (s *AuthService) ResetPassword(ctx context.Context, req models.PasswordResetRequest) error {
	if err := models.Validate(req); err != nil {
		return err
	}

	invalid := apperr.Validation(apperr.CodeRecoveryCodeFailed, "code", "recovery code is invalid or expired")

	user, err := s.repos.User.GetByEmail(ctx, req.Email)
	if apperr.Is(err, apperr.KindNotFound) {
		return invalid
	}
	if err != nil {
		return err
	}

	if user.RecoveryCode == nil || user.RecoveryCodeExpires == nil {
		return invalid
	}
	if subtle.ConstantTimeCompare([]byte(*user.RecoveryCode), []byte(req.Code)) != 1 {
		return invalid
	}
	if s.now().After(*user.RecoveryCodeExpires) {
		return invalid
	}

	return s.setPassword(ctx, user.ID, req.NewPassword)
}

func newRecoveryCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%04d", n.Int64()), nil
}
