package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PaymentStatus string

const (
	PaymentCreated  PaymentStatus = "CREATED"
	PaymentCaptured PaymentStatus = "CAPTURED"
	PaymentFailed   PaymentStatus = "FAILED"
)

const (
	ProviderPayPal   = "paypal"
	ProviderRazorpay = "razorpay"
)

// Failure reasons recorded on FAILED intents.
const (
	ReasonSignatureMismatch = "SignatureMismatch"
	ReasonOrderMismatch     = "OrderMismatch"
	ReasonDeclined          = "Declined"
	ReasonProviderError     = "ProviderError"
	ReasonExpired           = "Expired"
)

// PaymentIntent is a provider-side payable order tracked through
// CREATED -> CAPTURED | FAILED. It funds at most one Order.
type PaymentIntent struct {
	gorm.Model
	UserID          uint                                  `json:"userId" gorm:"index"`
	Provider        string                                `json:"provider" gorm:"size:16;not null"`
	ProviderOrderID string                                `json:"providerOrderId" gorm:"size:64;uniqueIndex;not null"`
	Amount          Money                                 `json:"amount" gorm:"not null"`
	Currency        string                                `json:"currency" gorm:"size:8;not null"`
	Receipt         string                                `json:"receipt,omitempty" gorm:"size:64"`
	ApproveURL      string                                `json:"approveUrl,omitempty" gorm:"-"`
	Status          PaymentStatus                         `json:"status" gorm:"size:16;index;not null"`
	TransactionID   string                                `json:"transactionId,omitempty" gorm:"size:64"`
	FailureReason   string                                `json:"failureReason,omitempty" gorm:"size:32"`
	Metadata        datatypes.JSONMap                     `json:"metadata,omitempty"`
	Checkout        datatypes.JSONType[CheckoutSnapshot] `json:"-"`
}

func (p *PaymentIntent) Terminal() bool {
	return p.Status == PaymentCaptured || p.Status == PaymentFailed
}

// CheckoutSnapshot is what was verified and priced before the provider order
// was opened. The Order is materialized from it after capture.
type CheckoutSnapshot struct {
	Lines                []OrderItem `json:"lines"`
	Subtotal             Money       `json:"subtotal"`
	DeliveryFee          Money       `json:"deliveryFee"`
	Tax                  Money       `json:"tax"`
	Total                Money       `json:"total"`
	DeliveryAddress      Address     `json:"deliveryAddress"`
	DeliveryInstructions string      `json:"deliveryInstructions"`
}
