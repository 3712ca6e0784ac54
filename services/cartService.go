package services

import (
	"context"
	"fmt"

	"github.com/Kariqs/myfood-api/cart"
	"github.com/Kariqs/myfood-api/pricing"
)

// CartService applies cart mutations and writes the full snapshot back after each one.
type CartService struct {
	store   cart.Store
	catalog Catalog
}

func NewCartService(store cart.Store, catalog Catalog) *CartService {
	return &CartService{store: store, catalog: catalog}
}

func (s *CartService) Get(ctx context.Context, userID uint) (*cart.Cart, error) {
	return s.store.Load(ctx, userID)
}

// AddItem adds quantity units of a menu item, snapshotting its current price.
func (s *CartService) AddItem(ctx context.Context, userID, menuItemID uint, quantity int) (*cart.Cart, error) {
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 || quantity > pricing.MaxQuantity {
		return nil, ErrInvalidQuantity
	}

	items, err := s.catalog.Lookup(ctx, []uint{menuItemID})
	if err != nil {
		return nil, err
	}
	item, ok := items[menuItemID]
	if !ok {
		return nil, fmt.Errorf("%w: menu item %d", ErrNotFound, menuItemID)
	}
	if !item.IsAvailable {
		return nil, fmt.Errorf("%w: menu item %d is not available", ErrValidation, menuItemID)
	}

	return s.mutate(ctx, userID, func(c *cart.Cart) error {
		if c.Quantity(menuItemID)+quantity > pricing.MaxQuantity {
			return ErrInvalidQuantity
		}
		c.AddItem(item)
		if quantity > 1 {
			c.SetQuantity(menuItemID, c.Quantity(menuItemID)+quantity-1)
		}
		return nil
	})
}

// SetQuantity sets a line's quantity; zero or less removes it.
func (s *CartService) SetQuantity(ctx context.Context, userID, menuItemID uint, quantity int) (*cart.Cart, error) {
	if quantity > pricing.MaxQuantity {
		return nil, ErrInvalidQuantity
	}
	return s.mutate(ctx, userID, func(c *cart.Cart) error {
		if !c.SetQuantity(menuItemID, quantity) {
			return fmt.Errorf("%w: menu item %d is not in the cart", ErrNotFound, menuItemID)
		}
		return nil
	})
}

func (s *CartService) RemoveItem(ctx context.Context, userID, menuItemID uint) (*cart.Cart, error) {
	return s.mutate(ctx, userID, func(c *cart.Cart) error {
		if !c.RemoveItem(menuItemID) {
			return fmt.Errorf("%w: menu item %d is not in the cart", ErrNotFound, menuItemID)
		}
		return nil
	})
}

func (s *CartService) Clear(ctx context.Context, userID uint) error {
	return s.store.Delete(ctx, userID)
}

// Total prices the stored cart against the catalog, not the snapshotted prices.
func (s *CartService) Total(ctx context.Context, userID uint) (pricing.Breakdown, error) {
	c, err := s.store.Load(ctx, userID)
	if err != nil {
		return pricing.Breakdown{}, err
	}
	_, breakdown, err := priceLines(ctx, s.catalog, c.Lines())
	return breakdown, err
}

// mutate runs fn against the stored cart under an optimistic Redis transaction,
// so concurrent mutations from one user are never lost.
func (s *CartService) mutate(ctx context.Context, userID uint, fn func(*cart.Cart) error) (*cart.Cart, error) {
	return s.store.Update(ctx, userID, fn)
}
