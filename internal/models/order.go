package models

import (
	"time"

	"gorm.io/gorm"
)

// Order is the delivery-relevant projection of an order. Orders are created
// by the placement flow, never deleted, and only ever advanced through the
// status graph. The Status column is the authoritative current state; the
// delivery event log is the audit history.
type Order struct {
	ID                uint           `gorm:"primarykey" json:"id"`
	OrderNo           string         `gorm:"uniqueIndex;not null" json:"order_no"`
	RetailerID        uint           `gorm:"index;not null" json:"retailer_id"`
	WholesalerID      uint           `gorm:"index;not null" json:"wholesaler_id"`
	Status            string         `gorm:"index;not null" json:"status"`
	PaymentMethod     string         `gorm:"not null" json:"payment_method"`
	PaymentStatus     string         `gorm:"index;not null;default:pending" json:"payment_status"`
	TotalAmount       Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"`
	DeliveryPartnerID *uint          `gorm:"index" json:"delivery_partner_id,omitempty"`
	DeliveredAt       *time.Time     `gorm:"index" json:"delivered_at,omitempty"`
	CreatedAt         time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`

	StatusUpdates []DeliveryStatusUpdate `gorm:"foreignKey:OrderID" json:"status_updates,omitempty"`
	Proof         *DeliveryProof         `gorm:"foreignKey:OrderID" json:"proof,omitempty"`
}

// TableName sets the table name.
func (Order) TableName() string {
	return "orders"
}
