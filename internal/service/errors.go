package service

import "errors"

// Business-rule violations are terminal for the current call and are never
// retried; only ErrTransientStore is safe for a caller to retry, and only on
// operations documented as idempotent.
var (
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrNotAuthorized        = errors.New("actor not authorized for this operation")
	ErrOrderNotFound        = errors.New("order not found")
	ErrPartnerNotFound      = errors.New("delivery partner not found")
	ErrEarningNotFound      = errors.New("earning record not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrAlreadyPaid          = errors.New("order already paid")
	ErrNotDelivered         = errors.New("order not delivered yet")
	ErrWrongPaymentMethod   = errors.New("operation not valid for this payment method")
	ErrCashMismatch         = errors.New("collected cash does not match order total")
	ErrDuplicateWrite       = errors.New("duplicate write detected and discarded")
	ErrLinkUnresolved       = errors.New("delivery partner has no matching user account")
	ErrTransientStore       = errors.New("transient store error")
)
