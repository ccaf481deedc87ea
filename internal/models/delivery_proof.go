package models

import "time"

// DeliveryProof records the evidence captured when an order is handed over.
// Exactly one proof may exist per delivered order; a second write attempt is
// treated as an idempotent no-op.
type DeliveryProof struct {
	ID                uint      `gorm:"primarykey" json:"id"`
	OrderID           uint      `gorm:"uniqueIndex;not null" json:"order_id"`
	DeliveryPartnerID uint      `gorm:"index;not null" json:"delivery_partner_id"`
	PhotoURL          string    `gorm:"type:text" json:"photo_url,omitempty"`
	SignatureURL      string    `gorm:"type:text" json:"signature_url,omitempty"`
	ReceiverName      string    `gorm:"type:varchar(200)" json:"receiver_name"`
	Notes             string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// TableName sets the table name.
func (DeliveryProof) TableName() string {
	return "delivery_proofs"
}
