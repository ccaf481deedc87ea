package models

import "time"

// Notification is one durable inbox row for one recipient. Rows are created
// by the fan-out component and mutated only to flip IsRead. The row is the
// delivery guarantee; the real-time push is an optimization layered on top.
type Notification struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	UserID     uint      `gorm:"index;not null" json:"user_id"`
	Title      string    `gorm:"type:varchar(200);not null" json:"title"`
	Message    string    `gorm:"type:text;not null" json:"message"`
	Type       string    `gorm:"index;not null" json:"type"`
	EntityType string    `gorm:"index" json:"entity_type,omitempty"`
	EntityID   uint      `gorm:"index" json:"entity_id,omitempty"`
	ActionURL  string    `gorm:"type:text" json:"action_url,omitempty"`
	IsRead     bool      `gorm:"index;default:false" json:"is_read"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

// TableName sets the table name.
func (Notification) TableName() string {
	return "notifications"
}
