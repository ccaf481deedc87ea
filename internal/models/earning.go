package models

import "time"

// DeliveryPartnerEarning is one ledger row: money owed to a partner for one
// completed delivery. An order produces at most one earning row. The sum of
// paid rows for a partner equals that partner's lifetime payout total.
type DeliveryPartnerEarning struct {
	ID                uint       `gorm:"primarykey" json:"id"`
	DeliveryPartnerID uint       `gorm:"index;not null" json:"delivery_partner_id"`
	OrderID           *uint      `gorm:"uniqueIndex" json:"order_id,omitempty"`
	Amount            Money      `gorm:"type:decimal(20,2);not null;default:0" json:"amount"`
	Status            string     `gorm:"index;not null;default:pending" json:"status"`
	PayoutID          string     `gorm:"index" json:"payout_id,omitempty"`
	PaidAt            *time.Time `gorm:"index" json:"paid_at,omitempty"`
	CreatedAt         time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// TableName sets the table name.
func (DeliveryPartnerEarning) TableName() string {
	return "delivery_partner_earnings"
}
