package models

import "time"

// Transaction records a settled payment for an order. One per paid order;
// a duplicate insert attempt for the same order is discarded, not appended.
// Metadata carries reconciliation detail such as a cash discrepancy flag.
type Transaction struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	Reference      string    `gorm:"uniqueIndex;not null" json:"reference"`
	OrderID        uint      `gorm:"uniqueIndex;not null" json:"order_id"`
	Amount         Money     `gorm:"type:decimal(20,2);not null" json:"amount"`
	PaymentMethod  string    `gorm:"not null" json:"payment_method"`
	Status         string    `gorm:"index;not null" json:"status"`
	TransactionFee Money     `gorm:"type:decimal(20,2);not null;default:0" json:"transaction_fee"`
	Metadata       JSON      `gorm:"type:json" json:"metadata,omitempty"`
	CreatedAt      time.Time `gorm:"index" json:"created_at"`
}

// TableName sets the table name.
func (Transaction) TableName() string {
	return "transactions"
}
