package model

import (
	"time"

	"gorm.io/gorm"
)

// Member statuses
const (
	MemberStatusActive   = "active"
	MemberStatusInactive = "inactive"
	MemberStatusVisitor  = "visitor"
)

// Member represents a person profile within a church, distinct from the login
// account. A user has zero or one linked member profile.
type Member struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	ChurchID  uint           `json:"church_id" gorm:"index;not null"`
	UserID    *uint          `json:"user_id,omitempty" gorm:"index"`
	FirstName string         `json:"first_name" gorm:"type:varchar(100);not null"`
	LastName  string         `json:"last_name" gorm:"type:varchar(100)"`
	Status    string         `json:"status" gorm:"type:varchar(50);not null;default:'active'"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}
