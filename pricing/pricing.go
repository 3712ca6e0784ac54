// Package pricing derives checkout totals from cart lines and authoritative
// catalog prices.
package pricing

import (
	"errors"
	"fmt"
	"math"

	"github.com/Kariqs/myfood-api/models"
)

const (
	DeliveryFee  models.Money = 399
	TaxPercent                = 8
	// MaxQuantity is the most units of one item a single order may carry.
	MaxQuantity = 99
)

var (
	ErrInvalidLineItem = errors.New("invalid line item")
	ErrInvalidQuantity = fmt.Errorf("quantity must be between 1 and %d", MaxQuantity)
)

type Breakdown struct {
	Subtotal    models.Money `json:"subtotal"`
	DeliveryFee models.Money `json:"deliveryFee"`
	Tax         models.Money `json:"tax"`
	Total       models.Money `json:"total"`
}

// PricedLine is a requested line with the catalog price applied.
type PricedLine struct {
	MenuItemID uint
	Name       string
	Quantity   int
	UnitPrice  models.Money
}

// Price resolves every line against catalog, ignoring any cached unit price.
func Price(lines []models.CartLine, catalog map[uint]models.MenuItem) ([]PricedLine, error) {
	priced := make([]PricedLine, 0, len(lines))
	for _, l := range lines {
		if l.Quantity < 1 || l.Quantity > MaxQuantity {
			return nil, fmt.Errorf("%w: item %d quantity %d", ErrInvalidQuantity, l.MenuItemID, l.Quantity)
		}
		item, ok := catalog[l.MenuItemID]
		if !ok || !item.IsAvailable || item.Price < 0 {
			return nil, fmt.Errorf("%w: menu item %d not available", ErrInvalidLineItem, l.MenuItemID)
		}
		priced = append(priced, PricedLine{
			MenuItemID: l.MenuItemID,
			Name:       item.Name,
			Quantity:   l.Quantity,
			UnitPrice:  item.Price,
		})
	}
	return priced, nil
}

// ComputeBreakdown is a pure function of lines and catalog.
func ComputeBreakdown(lines []models.CartLine, catalog map[uint]models.MenuItem) (Breakdown, error) {
	priced, err := Price(lines, catalog)
	if err != nil {
		return Breakdown{}, err
	}
	return Total(priced)
}

// Total sums priced lines. Amounts that do not fit in int64 are rejected
// rather than wrapped.
func Total(lines []PricedLine) (Breakdown, error) {
	var b Breakdown
	for _, l := range lines {
		amount, ok := mul(l.UnitPrice, int64(l.Quantity))
		if ok {
			b.Subtotal, ok = add(b.Subtotal, amount)
		}
		if !ok {
			return Breakdown{}, fmt.Errorf("%w: menu item %d amount out of range", ErrInvalidLineItem, l.MenuItemID)
		}
	}
	if len(lines) > 0 {
		b.DeliveryFee = DeliveryFee
	}

	tax, ok := percentOf(b.Subtotal, TaxPercent)
	if !ok {
		return Breakdown{}, fmt.Errorf("%w: order amount out of range", ErrInvalidLineItem)
	}
	b.Tax = tax

	total, ok := add(b.Subtotal, b.DeliveryFee)
	if ok {
		total, ok = add(total, b.Tax)
	}
	if !ok {
		return Breakdown{}, fmt.Errorf("%w: order amount out of range", ErrInvalidLineItem)
	}
	b.Total = total
	return b, nil
}

// Amounts here are never negative.

func mul(amount models.Money, n int64) (models.Money, bool) {
	if amount < 0 || n < 0 {
		return 0, false
	}
	if n != 0 && int64(amount) > math.MaxInt64/n {
		return 0, false
	}
	return amount * models.Money(n), true
}

func add(a, b models.Money) (models.Money, bool) {
	if a < 0 || b < 0 || int64(a) > math.MaxInt64-int64(b) {
		return 0, false
	}
	return a + b, true
}

// percentOf rounds half up to the minor unit.
func percentOf(amount models.Money, percent int64) (models.Money, bool) {
	if amount < 0 || int64(amount) > (math.MaxInt64-50)/percent {
		return 0, false
	}
	return models.Money((int64(amount)*percent + 50) / 100), true
}
