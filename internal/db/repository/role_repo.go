package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/getsy/restaurant-backend/internal/models"
)

const roleEntity = "role"

// RoleRepository handles role data access
type RoleRepository struct {
	db DBTX
}

// NewRoleRepository creates a new role repository
func NewRoleRepository(db DBTX) *RoleRepository {
	return &RoleRepository{db: db}
}

// GetByID retrieves a role by ID
func (r *RoleRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Role, error) {
	query := `
		SELECT id, name, permissions, created_at, updated_at
		FROM roles
		WHERE id = $1
	`

	var role models.Role
	if err := r.db.GetContext(ctx, &role, query, id); err != nil {
		return nil, classify(err, roleEntity, "failed to get role")
	}

	return &role, nil
}

// List retrieves all roles
func (r *RoleRepository) List(ctx context.Context) ([]models.Role, error) {
	query := `
		SELECT id, name, permissions, created_at, updated_at
		FROM roles
		ORDER BY name ASC
	`

	var roles []models.Role
	if err := r.db.SelectContext(ctx, &roles, query); err != nil {
		return nil, classify(err, roleEntity, "failed to list roles")
	}

	return roles, nil
}

// Create creates a new role
func (r *RoleRepository) Create(ctx context.Context, role models.Role) (*models.Role, error) {
	query := `
		INSERT INTO roles (name, permissions)
		VALUES ($1, $2)
		RETURNING id, name, permissions, created_at, updated_at
	`

	var created models.Role
	if err := r.db.GetContext(ctx, &created, query, role.Name, role.Permissions); err != nil {
		return nil, classify(err, roleEntity, "failed to create role")
	}

	return &created, nil
}

// Update updates a role
func (r *RoleRepository) Update(ctx context.Context, role models.Role) (*models.Role, error) {
	query := `
		UPDATE roles
		SET name = $1, permissions = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING id, name, permissions, created_at, updated_at
	`

	var updated models.Role
	if err := r.db.GetContext(ctx, &updated, query, role.Name, role.Permissions, role.ID); err != nil {
		return nil, classify(err, roleEntity, "failed to update role")
	}

	return &updated, nil
}

// Delete deletes a role. Roles still assigned to users cannot be removed.
func (r *RoleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		return classifyDelete(err, roleEntity, "failed to delete role")
	}

	return expectAffected(result, roleEntity)
}
