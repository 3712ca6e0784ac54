package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Kariqs/myfood-api/models"
	"github.com/Kariqs/myfood-api/repositories"
)

type OrderService struct {
	orders *repositories.OrderRepository
}

func NewOrderService(orders *repositories.OrderRepository) *OrderService {
	return &OrderService{orders: orders}
}

// MyOrders returns the user's orders, newest first.
func (s *OrderService) MyOrders(ctx context.Context, userID uint) ([]models.Order, error) {
	return s.orders.FindByUser(ctx, userID)
}

func (s *OrderService) All(ctx context.Context) ([]models.Order, error) {
	return s.orders.FindAll(ctx)
}

// Get returns the order if the requester owns it or is an admin.
func (s *OrderService) Get(ctx context.Context, id, requesterID uint, isAdmin bool) (*models.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrOrderNotFound) {
		return nil, fmt.Errorf("%w: order %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	if order.UserID != requesterID && !isAdmin {
		return nil, ErrForbidden
	}
	return order, nil
}

func (s *OrderService) UpdateStatus(ctx context.Context, id uint, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown order status %q", ErrValidation, status)
	}

	order, err := s.orders.UpdateStatus(ctx, id, status)
	switch {
	case errors.Is(err, repositories.ErrOrderNotFound):
		return nil, fmt.Errorf("%w: order %d", ErrNotFound, id)
	case errors.Is(err, repositories.ErrStaleStatus):
		return nil, fmt.Errorf("%w: order %d changed concurrently", ErrInvalidTransition, id)
	case err != nil:
		return nil, err
	}
	return order, nil
}
