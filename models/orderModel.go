package models

import "gorm.io/gorm"

type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderConfirmed OrderStatus = "CONFIRMED"
	OrderPreparing OrderStatus = "PREPARING"
	OrderOnWay     OrderStatus = "ON_WAY"
	OrderDelivered OrderStatus = "DELIVERED"
	OrderCancelled OrderStatus = "CANCELLED"
)

var orderProgress = map[OrderStatus]int{
	OrderPending:   0,
	OrderConfirmed: 1,
	OrderPreparing: 2,
	OrderOnWay:     3,
	OrderDelivered: 4,
}

func (s OrderStatus) Valid() bool {
	_, ok := orderProgress[s]
	return ok || s == OrderCancelled
}

func (s OrderStatus) Terminal() bool {
	return s == OrderDelivered || s == OrderCancelled
}

// CanTransition reports whether an order may move from s to next. Progress
// only moves forward; CANCELLED is reachable from any non-terminal state.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	if s.Terminal() || !next.Valid() {
		return false
	}
	if next == OrderCancelled {
		return true
	}
	return orderProgress[next] > orderProgress[s]
}

type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
}

type Order struct {
	gorm.Model
	UserID               uint        `json:"userId" gorm:"index;not null"`
	LineItems            []OrderItem `json:"lineItems" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Subtotal             Money       `json:"subtotal"`
	DeliveryFee          Money       `json:"deliveryFee"`
	Tax                  Money       `json:"tax"`
	TotalAmount          Money       `json:"totalAmount"`
	Currency             string      `json:"currency" gorm:"size:8"`
	DeliveryAddress      Address     `json:"deliveryAddress" gorm:"embedded;embeddedPrefix:delivery_"`
	DeliveryInstructions string      `json:"deliveryInstructions"`
	PaymentIntentRef     uint        `json:"paymentIntentRef" gorm:"uniqueIndex;not null"`
	Status               OrderStatus `json:"status" gorm:"size:16;index;not null"`
}

type OrderItem struct {
	gorm.Model
	OrderID              uint   `json:"orderId" gorm:"index"`
	MenuItemID           uint   `json:"menuItemId"`
	Name                 string `json:"name"`
	Quantity             int    `json:"quantity"`
	UnitPriceAtOrderTime Money  `json:"unitPriceAtOrderTime"`
}
