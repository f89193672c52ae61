package models

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
)

// Fixed role ids seeded by the initial migration
var (
	AdminRoleID        = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	StandardUserRoleID = uuid.MustParse("00000000-0000-0000-0000-000000000002")
)

// Permissions maps a capability key to its setting
type Permissions map[string]interface{}

// Value implements driver.Valuer
func (p Permissions) Value() (driver.Value, error) {
	if p == nil {
		return []byte("{}"), nil
	}
	return jsonValue(p)
}

// Scan implements sql.Scanner
func (p *Permissions) Scan(value interface{}) error {
	*p = Permissions{}
	return scanJSON(value, p)
}

// Role is a named permission bundle
type Role struct {
	ID          uuid.UUID   `db:"id" json:"id"`
	Name        string      `db:"name" json:"name"`
	Permissions Permissions `db:"permissions" json:"permissions"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at" json:"updated_at"`
}

// RoleRequest is used for role creation
type RoleRequest struct {
	Name        string      `json:"name" validate:"required,max=50"`
	Permissions Permissions `json:"permissions"`
}

// RolePatch is used for partial role updates
type RolePatch struct {
	Name        *string      `json:"name" validate:"omitempty,max=50"`
	Permissions *Permissions `json:"permissions"`
}

// Apply merges the fields present in the patch into role
func (p RolePatch) Apply(role *Role) {
	if p.Name != nil {
		role.Name = *p.Name
	}
	if p.Permissions != nil {
		role.Permissions = *p.Permissions
	}
}
