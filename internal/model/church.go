package model

import (
	"time"

	"gorm.io/gorm"
)

// Church represents the tenant model stored in the database.
// Every user and member belongs to exactly one church.
type Church struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Name      string         `json:"name" gorm:"type:varchar(100);not null"`
	Slug      string         `json:"slug" gorm:"type:varchar(100);index"`
	Email     string         `json:"email" gorm:"type:varchar(100)"`
	Active    bool           `json:"active" gorm:"default:true"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}
