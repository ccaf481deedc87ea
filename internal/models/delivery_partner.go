package models

import (
	"time"

	"gorm.io/gorm"
)

// DeliveryPartner is the person or entity that physically delivers orders.
// UserID is nullable: a partner row created by an admin before the partner
// registers is an orphan until the link resolver attaches an account. At most
// one partner row should be the link target for a given user id; duplicates
// are a repair target, not a valid steady state.
type DeliveryPartner struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	UserID        *uint          `gorm:"index" json:"user_id,omitempty"`
	Name          string         `gorm:"type:varchar(200);not null" json:"name"`
	Email         string         `gorm:"index" json:"email"`
	Phone         string         `gorm:"index" json:"phone"`
	VehicleType   string         `gorm:"type:varchar(50)" json:"vehicle_type"`
	VehicleNumber string         `gorm:"type:varchar(50)" json:"vehicle_number"`
	IsActive      bool           `gorm:"default:true" json:"is_active"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName sets the table name.
func (DeliveryPartner) TableName() string {
	return "delivery_partners"
}

// Linked reports whether the partner has a user account attached. Unlinked
// partners can still be assigned to orders but cannot receive notifications.
func (p *DeliveryPartner) Linked() bool {
	return p != nil && p.UserID != nil && *p.UserID != 0
}
