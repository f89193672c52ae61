package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/getsy/restaurant-backend/internal/models"
)

const userEntity = "user"

const userColumns = `id, name, email, password_hash, phone_number, status, theme, role_id, avatar,
		recovery_code, recovery_code_expires, last_login_at, registered_at, created_at, updated_at`

// UserRepository handles user data access
type UserRepository struct {
	db DBTX
}

// NewUserRepository creates a new user repository
func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, classify(err, userEntity, "failed to get user")
	}

	return &user, nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	var user models.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		return nil, classify(err, userEntity, "failed to get user by email")
	}

	return &user, nil
}

// List retrieves all users
func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY name ASC`

	var users []models.User
	if err := r.db.SelectContext(ctx, &users, query); err != nil {
		return nil, classify(err, userEntity, "failed to list users")
	}

	return users, nil
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user models.User) (*models.User, error) {
	query := `
		INSERT INTO users (name, email, password_hash, phone_number, status, theme, role_id, avatar, registered_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + userColumns

	var created models.User
	err := r.db.GetContext(
		ctx,
		&created,
		query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.PhoneNumber,
		user.Status,
		user.Theme,
		user.RoleID,
		user.Avatar,
		user.RegisteredAt,
	)
	if err != nil {
		return nil, classify(err, userEntity, "failed to create user")
	}

	return &created, nil
}

// Update updates a user's profile fields
func (r *UserRepository) Update(ctx context.Context, user models.User) (*models.User, error) {
	query := `
		UPDATE users
		SET name = $1, email = $2, phone_number = $3, theme = $4, role_id = $5, avatar = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING ` + userColumns

	var updated models.User
	err := r.db.GetContext(
		ctx,
		&updated,
		query,
		user.Name,
		user.Email,
		user.PhoneNumber,
		user.Theme,
		user.RoleID,
		user.Avatar,
		user.ID,
	)
	if err != nil {
		return nil, classify(err, userEntity, "failed to update user")
	}

	return &updated, nil
}

// UpdateStatus blocks or unblocks a user
func (r *UserRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.UserStatus) (*models.User, error) {
	query := `
		UPDATE users
		SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING ` + userColumns

	var updated models.User
	if err := r.db.GetContext(ctx, &updated, query, status, id); err != nil {
		return nil, classify(err, userEntity, "failed to update user status")
	}

	return &updated, nil
}

// UpdatePassword updates a user's password and clears any pending recovery code
func (r *UserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	query := `
		UPDATE users
		SET password_hash = $1, recovery_code = NULL, recovery_code_expires = NULL, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.db.ExecContext(ctx, query, passwordHash, id)
	if err != nil {
		return classify(err, userEntity, "failed to update user password")
	}

	return expectAffected(result, userEntity)
}

// SetRecoveryCode stores a password recovery code and its expiry
func (r *UserRepository) SetRecoveryCode(ctx context.Context, id uuid.UUID, code string, expires time.Time) error {
	query := `
		UPDATE users
		SET recovery_code = $1, recovery_code_expires = $2, updated_at = NOW()
		WHERE id = $3
	`

	result, err := r.db.ExecContext(ctx, query, code, expires, id)
	if err != nil {
		return classify(err, userEntity, "failed to set recovery code")
	}

	return expectAffected(result, userEntity)
}

// TouchLastLogin records a successful login
func (r *UserRepository) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	result, err := r.db.ExecContext(ctx, `UPDATE users SET last_login_at = $1 WHERE id = $2`, at, id)
	if err != nil {
		return classify(err, userEntity, "failed to record login")
	}

	return expectAffected(result, userEntity)
}

// Delete deletes a user. Their reservations and reviews go with them; users
// that still administer a restaurant cannot be removed.
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return classifyDelete(err, userEntity, "failed to delete user")
	}

	return expectAffected(result, userEntity)
}
