package models

import (
	"time"

	"github.com/google/uuid"
)

type UserStatus string

const (
	UserStatusActive  UserStatus = "active"
	UserStatusBlocked UserStatus = "blocked"
)

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

type User struct {
	ID                  uuid.UUID  `db:"id" json:"id"`
	Name                string     `db:"name" json:"name"`
	Email               string     `db:"email" json:"email"`
	PasswordHash        string     `db:"password_hash" json:"-"` // Never expose in JSON
	PhoneNumber         string     `db:"phone_number" json:"phone_number"`
	Status              UserStatus `db:"status" json:"status"`
	Theme               Theme      `db:"theme" json:"theme"`
	RoleID              uuid.UUID  `db:"role_id" json:"role_id"`
	Avatar              *string    `db:"avatar" json:"avatar"`
	RecoveryCode        *string    `db:"recovery_code" json:"-"`
	RecoveryCodeExpires *time.Time `db:"recovery_code_expires" json:"-"`
	LastLoginAt         *time.Time `db:"last_login_at" json:"last_login_at"`
	RegisteredAt        time.Time  `db:"registered_at" json:"registered_at"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at" json:"updated_at"`

	// Not stored directly in the database
	Role *Role `db:"-" json:"role,omitempty"`
}

// UserRequest is used for user registration. Every new account gets the
// standard user role.
type UserRequest struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Email       string  `json:"email" validate:"required,email"`
	Password    string  `json:"password" validate:"required,min=6"`
	PhoneNumber string  `json:"phone_number" validate:"required,max=20"`
	Theme       Theme   `json:"theme" validate:"omitempty,oneof=light dark"`
	Avatar      *string `json:"avatar"`
}

// UserPatch is used for partial profile updates. Roles are changed
// separately with RoleAssignment.
type UserPatch struct {
	Name        *string `json:"name" validate:"omitempty,max=100"`
	Email       *string `json:"email" validate:"omitempty,email"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty,max=20"`
	Theme       *Theme  `json:"theme" validate:"omitempty,oneof=light dark"`
	Avatar      *string `json:"avatar"`
}

// RoleAssignment moves a user to another role
type RoleAssignment struct {
	RoleID *uuid.UUID `json:"role_id" validate:"required"`
}

// Apply merges the fields present in the patch into user
func (p UserPatch) Apply(user *User) {
	if p.Name != nil {
		user.Name = *p.Name
	}
	if p.Email != nil {
		user.Email = *p.Email
	}
	if p.PhoneNumber != nil {
		user.PhoneNumber = *p.PhoneNumber
	}
	if p.Theme != nil {
		user.Theme = *p.Theme
	}
	if p.Avatar != nil {
		user.Avatar = p.Avatar
	}
}

// LoginRequest carries login credentials
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// PasswordResetRequest redeems a recovery code
type PasswordResetRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Code        string `json:"code" validate:"required,len=4"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}
