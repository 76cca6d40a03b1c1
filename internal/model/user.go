package model

import (
	"time"

	"gorm.io/gorm"
)

// Roles a user can hold. The first super admin is created by the setup flow;
// the system counts as initialized once at least one exists.
const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
	RoleMember     = "member"
)

// User represents an authenticatable account stored in the database
type User struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Email       string         `json:"email" gorm:"type:varchar(100);uniqueIndex"`
	Password    string         `json:"-" gorm:"type:varchar(255)"`
	FirstName   string         `json:"first_name" gorm:"type:varchar(100)"`
	LastName    string         `json:"last_name" gorm:"type:varchar(100)"`
	Role        string         `json:"role" gorm:"type:varchar(50);not null;default:'member';index"`
	Active      bool           `json:"active" gorm:"default:true"`
	ChurchID    *uint          `json:"church_id,omitempty" gorm:"index"`
	LastLoginAt *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}
