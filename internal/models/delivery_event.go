package models

import "time"

// DeliveryStatusUpdate is one entry in the append-only delivery event log.
// One row per transition, ordered by creation time. Rows are never updated
// or deleted.
type DeliveryStatusUpdate struct {
	ID                uint      `gorm:"primarykey" json:"id"`
	OrderID           uint      `gorm:"index;not null" json:"order_id"`
	DeliveryPartnerID uint      `gorm:"index" json:"delivery_partner_id"`
	Status            string    `gorm:"index;not null" json:"status"`
	Latitude          *float64  `json:"latitude,omitempty"`
	Longitude         *float64  `json:"longitude,omitempty"`
	Notes             string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt         time.Time `gorm:"index" json:"created_at"`
}

// TableName sets the table name.
func (DeliveryStatusUpdate) TableName() string {
	return "delivery_status_updates"
}
