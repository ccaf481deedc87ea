package repository

import "time"

// OrderListFilter narrows order listings.
type OrderListFilter struct {
	Page              int
	PageSize          int
	RetailerID        uint
	WholesalerID      uint
	DeliveryPartnerID uint
	Status            string
	PaymentStatus     string
	CreatedFrom       *time.Time
	CreatedTo         *time.Time
}

// EarningListFilter narrows earning listings.
type EarningListFilter struct {
	Page              int
	PageSize          int
	DeliveryPartnerID uint
	Status            string
	From              *time.Time
	To                *time.Time
}

// NotificationListFilter narrows notification listings.
type NotificationListFilter struct {
	Page       int
	PageSize   int
	UserID     uint
	OnlyUnread bool
}
