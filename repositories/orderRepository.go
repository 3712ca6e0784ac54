package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Kariqs/myfood-api/models"
	"gorm.io/gorm"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// WithTx returns a repository bound to an open transaction.
func (r *OrderRepository) WithTx(tx *gorm.DB) *OrderRepository {
	return &OrderRepository{db: tx}
}

// Create saves the order with its line items. At most one order may reference
// a given payment intent.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("payment_intent_ref = ?", order.PaymentIntentRef).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check payment intent reference: %w", err)
	}
	if count > 0 {
		return nil, ErrDuplicatePaymentIntentRef
	}

	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicatePaymentIntentRef
		}
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	return order, nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Preload("LineItems").First(&order, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch order: %w", err)
	}
	return &order, nil
}

func (r *OrderRepository) FindByPaymentIntent(ctx context.Context, intentID uint) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Preload("LineItems").
		Where("payment_intent_ref = ?", intentID).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch order: %w", err)
	}
	return &order, nil
}

// FindByUser returns the user's orders, newest first.
func (r *OrderRepository) FindByUser(ctx context.Context, userID uint) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.WithContext(ctx).Preload("LineItems").
		Where("user_id = ?", userID).
		Order("created_at desc").Order("id desc").
		Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch orders: %w", err)
	}
	return orders, nil
}

// FindAll returns every order, newest first.
func (r *OrderRepository) FindAll(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.WithContext(ctx).Preload("LineItems").
		Order("created_at desc").Order("id desc").
		Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus moves an order forward along its delivery progress, or to
// CANCELLED from any non-terminal state. The update only applies if the order
// is still in the status it was read in.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id uint, next models.OrderStatus) (*models.Order, error) {
	order, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransition(next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, next)
	}

	result := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", id, order.Status).
		Update("status", next)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update order status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrStaleStatus
	}

	order.Status = next
	return order, nil
}
