package services

import (
	"context"
	"log"
	"time"

	"github.com/Kariqs/myfood-api/repositories"
)

// IntentSweeper fails payment intents abandoned in CREATED for longer than ttl.
type IntentSweeper struct {
	intents  *repositories.PaymentIntentRepository
	ttl      time.Duration
	interval time.Duration
	now      func() time.Time
}

const (
	defaultIntentTTL     = 30 * time.Minute
	defaultSweepInterval = time.Minute
)

// NewIntentSweeper falls back to the defaults for non-positive durations.
func NewIntentSweeper(intents *repositories.PaymentIntentRepository, ttl, interval time.Duration) *IntentSweeper {
	if ttl <= 0 {
		ttl = defaultIntentTTL
	}
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	return &IntentSweeper{
		intents:  intents,
		ttl:      ttl,
		interval: interval,
		now:      time.Now,
	}
}

func (w *IntentSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	log.Println("Payment intent sweeper started")

	for {
		select {
		case <-ctx.Done():
			log.Println("Payment intent sweeper stopped")
			return
		case <-ticker.C:
			if _, err := w.ExpireStale(ctx); err != nil {
				log.Printf("Payment intent sweep failed: %v", err)
			}
		}
	}
}

// ExpireStale runs one sweep and returns how many intents it expired.
func (w *IntentSweeper) ExpireStale(ctx context.Context) (int64, error) {
	n, err := w.intents.ExpireCreatedBefore(ctx, w.now().Add(-w.ttl))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.Printf("Expired %d abandoned payment intents", n)
	}
	return n, nil
}
