package repositories

import "errors"

var (
	ErrOrderNotFound             = errors.New("order not found")
	ErrIntentNotFound            = errors.New("payment intent not found")
	ErrMenuItemNotFound          = errors.New("menu item not found")
	ErrUserNotFound              = errors.New("user not found")
	ErrDuplicatePaymentIntentRef = errors.New("an order already references this payment intent")
	ErrInvalidTransition         = errors.New("invalid status transition")
	// ErrStaleStatus means a conditional update found the row no longer in the expected status.
	ErrStaleStatus = errors.New("status changed concurrently")
)
