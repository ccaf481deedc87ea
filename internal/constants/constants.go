package constants

// Order delivery lifecycle statuses.
const (
	OrderStatusPlaced         = "placed"
	OrderStatusConfirmed      = "confirmed"
	OrderStatusDispatched     = "dispatched"
	OrderStatusInTransit      = "in_transit"
	OrderStatusOutForDelivery = "out_for_delivery"
	OrderStatusDelivered      = "delivered"
	OrderStatusRejected       = "rejected"
	OrderStatusCancelled      = "cancelled"
	OrderStatusFailed         = "failed"
)

// Payment methods and statuses.
const (
	PaymentMethodCOD = "cod"
	PaymentMethodUPI = "upi"

	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
)

// Delivery event statuses recorded in the append-only event log.
const (
	DeliveryEventAssigned  = "assigned"
	DeliveryEventPickedUp  = "picked_up"
	DeliveryEventInTransit = "in_transit"
	DeliveryEventDelivered = "delivered"
	DeliveryEventFailed    = "failed"
)

// Earning statuses.
const (
	EarningStatusPending   = "pending"
	EarningStatusPaid      = "paid"
	EarningStatusCancelled = "cancelled"
)

// Transaction statuses.
const (
	TransactionStatusPending   = "pending"
	TransactionStatusCompleted = "completed"
	TransactionStatusFailed    = "failed"
)

// Notification types.
const (
	NotificationTypeOrder     = "order"
	NotificationTypeDelivery  = "delivery"
	NotificationTypePayment   = "payment"
	NotificationTypeInventory = "inventory"
	NotificationTypeSystem    = "system"
)

// Notification entity types (tagged payload discriminators).
const (
	NotificationEntityOrder    = "order"
	NotificationEntityDelivery = "delivery"
	NotificationEntityPayment  = "payment"
)

// User roles.
const (
	RoleRetailer        = "retailer"
	RoleWholesaler      = "wholesaler"
	RoleDeliveryPartner = "delivery_partner"
	RoleAdmin           = "admin"
)

// Queue names and task types.
const (
	QueueDefault  = "default"
	QueueCritical = "critical"

	TaskNotificationPush = "notification:push"
	TaskOrderReconcile   = "order:reconcile"
)
