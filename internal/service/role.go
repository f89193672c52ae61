package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/getsy/restaurant-backend/internal/apperr"
	"github.com/getsy/restaurant-backend/internal/db/repository"
	"github.com/getsy/restaurant-backend/internal/models"
)

// RoleService handles roles
type RoleService struct {
	repos *repository.Repositories
}

// NewRoleService creates a new role service
func NewRoleService(repos *repository.Repositories) *RoleService {
	return &RoleService{
		repos: repos,
	}
}

// CreateRole creates a new role
func (s *RoleService) CreateRole(ctx context.Context, req models.RoleRequest) (*models.Role, error) {
	if err := models.Validate(req); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, apperr.Missing("name")
	}

	return s.repos.Role.Create(ctx, models.Role{
		Name:        req.Name,
		Permissions: req.Permissions,
	})
}

// GetRole retrieves a role by ID
func (s *RoleService) GetRole(ctx context.Context, id uuid.UUID) (*models.Role, error) {
	return s.repos.Role.GetByID(ctx, id)
}

// ListRoles lists every role
func (s *RoleService) ListRoles(ctx context.Context) ([]models.Role, error) {
	return s.repos.Role.List(ctx)
}

// UpdateRole merges the fields present in patch into the stored role
func (s *RoleService) UpdateRole(ctx context.Context, id uuid.UUID, patch models.RolePatch) (*models.Role, error) {
	if err := models.Validate(patch); err != nil {
		return nil, err
	}

	role, err := s.repos.Role.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	patch.Apply(role)
	if strings.TrimSpace(role.Name) == "" {
		return nil, apperr.Missing("name")
	}

	return s.repos.Role.Update(ctx, *role)
}

// DeleteRole deletes a role that no user holds
func (s *RoleService) DeleteRole(ctx context.Context, id uuid.UUID) error {
	return s.repos.Role.Delete(ctx, id)
}
