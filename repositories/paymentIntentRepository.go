package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Kariqs/myfood-api/models"
	"gorm.io/gorm"
)

type PaymentIntentRepository struct {
	db *gorm.DB
}

func NewPaymentIntentRepository(db *gorm.DB) *PaymentIntentRepository {
	return &PaymentIntentRepository{db: db}
}

func (r *PaymentIntentRepository) WithTx(tx *gorm.DB) *PaymentIntentRepository {
	return &PaymentIntentRepository{db: tx}
}

func (r *PaymentIntentRepository) Create(ctx context.Context, intent *models.PaymentIntent) error {
	if err := r.db.WithContext(ctx).Create(intent).Error; err != nil {
		return fmt.Errorf("failed to create payment intent: %w", err)
	}
	return nil
}

func (r *PaymentIntentRepository) FindByProviderOrderID(ctx context.Context, providerOrderID string) (*models.PaymentIntent, error) {
	var intent models.PaymentIntent
	err := r.db.WithContext(ctx).Where("provider_order_id = ?", providerOrderID).First(&intent).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrIntentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch payment intent: %w", err)
	}
	return &intent, nil
}

// Transition moves an intent from one status to another, applying updates in
// the same statement. It returns ErrStaleStatus when the intent is no longer in from.
func (r *PaymentIntentRepository) Transition(ctx context.Context, id uint, from, to models.PaymentStatus, updates map[string]any) error {
	values := map[string]any{"status": to}
	for k, v := range updates {
		values[k] = v
	}

	result := r.db.WithContext(ctx).Model(&models.PaymentIntent{}).
		Where("id = ? AND status = ?", id, from).
		Updates(values)
	if result.Error != nil {
		return fmt.Errorf("failed to update payment intent: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrStaleStatus
	}
	return nil
}

// ReclaimExpired marks an intent CAPTURED that the sweeper expired while its
// capture was still in flight. Intents failed for any other reason stay FAILED.
func (r *PaymentIntentRepository) ReclaimExpired(ctx context.Context, id uint, updates map[string]any) error {
	values := map[string]any{
		"status":         models.PaymentCaptured,
		"failure_reason": "",
	}
	for k, v := range updates {
		values[k] = v
	}

	result := r.db.WithContext(ctx).Model(&models.PaymentIntent{}).
		Where("id = ? AND status = ? AND failure_reason = ?", id, models.PaymentFailed, models.ReasonExpired).
		Updates(values)
	if result.Error != nil {
		return fmt.Errorf("failed to reclaim payment intent: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrStaleStatus
	}
	return nil
}

// ExpireCreatedBefore fails every intent still CREATED before cutoff and
// returns how many were expired.
func (r *PaymentIntentRepository) ExpireCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.PaymentIntent{}).
		Where("status = ? AND created_at < ?", models.PaymentCreated, cutoff).
		Updates(map[string]any{
			"status":         models.PaymentFailed,
			"failure_reason": models.ReasonExpired,
		})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to expire payment intents: %w", result.Error)
	}
	return result.RowsAffected, nil
}
