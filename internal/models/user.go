package models

import (
	"time"

	"gorm.io/gorm"
)

// User is the engine's read view of the profile store. Authentication and
// registration live in the account service; the engine reads business
// contact details for defaulting and contact matching.
type User struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	Role         string         `gorm:"index;not null" json:"role"`
	BusinessName string         `gorm:"type:varchar(200)" json:"business_name"`
	Email        string         `gorm:"index" json:"email"`
	Phone        string         `gorm:"index" json:"phone"`
	Address      string         `gorm:"type:text" json:"address,omitempty"`
	PasswordHash string         `gorm:"type:varchar(200)" json:"-"`
	IsActive     bool           `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName sets the table name.
func (User) TableName() string {
	return "users"
}
