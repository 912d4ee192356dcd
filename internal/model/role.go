package model

import (
	"time"

	"gorm.io/gorm"
)

// Default role names seeded into every tenant.
const (
	RoleBasic = "Basic"
	RoleAdmin = "Admin"
)

// DefaultRoles lists the roles every tenant is provisioned with.
var DefaultRoles = []string{RoleAdmin, RoleBasic}

// Role represents a role within a single tenant's store.
type Role struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Name        string         `json:"name" gorm:"type:varchar(100);uniqueIndex"`
	Description string         `json:"description" gorm:"type:text"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

// UserRole associates a user with a role within the same tenant store.
type UserRole struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index;not null;uniqueIndex:idx_user_role"`
	RoleID    uint      `json:"role_id" gorm:"index;not null;uniqueIndex:idx_user_role"`
	CreatedAt time.Time `json:"created_at"`
}
