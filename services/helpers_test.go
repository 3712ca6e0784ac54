package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Kariqs/myfood-api/cart"
	"github.com/Kariqs/myfood-api/initializers"
	"github.com/Kariqs/myfood-api/models"
	"github.com/Kariqs/myfood-api/payments"
	"github.com/Kariqs/myfood-api/repositories"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testAddress = models.Address{
	Street:  "12 MG Road",
	City:    "Pune",
	State:   "Maharashtra",
	ZipCode: "411001",
}

// fakeGateway stands in for a provider. Capture succeeds unless told otherwise.
type fakeGateway struct {
	mu         sync.Mutex
	provider   string
	createErr  error
	captureErr error
	verdict    *payments.Capture
	block      bool
	onCapture  func()
	creates    int
	captures   int
}

func newFakeGateway(provider string) *fakeGateway {
	return &fakeGateway{provider: provider}
}

func (f *fakeGateway) Provider() string        { return f.provider }
func (f *fakeGateway) DefaultCurrency() string { return "USD" }

func (f *fakeGateway) CreateProviderOrder(_ context.Context, amount models.Money, currency string, metadata map[string]string) (*models.PaymentIntent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &models.PaymentIntent{
		Provider:        f.provider,
		ProviderOrderID: fmt.Sprintf("%s-order-%d", f.provider, f.creates),
		Amount:          amount,
		Currency:        currency,
		Receipt:         metadata["receipt"],
		Status:          models.PaymentCreated,
	}, nil
}

func (f *fakeGateway) CaptureProviderOrder(ctx context.Context, intent *models.PaymentIntent, proof payments.Proof) (*payments.Capture, error) {
	f.mu.Lock()
	f.captures++
	block, captureErr, verdict, onCapture := f.block, f.captureErr, f.verdict, f.onCapture
	f.mu.Unlock()

	if onCapture != nil {
		onCapture()
	}
	if block {
		<-ctx.Done()
		return nil, fmt.Errorf("%w: %v", payments.ErrProvider, ctx.Err())
	}
	if captureErr != nil {
		return nil, captureErr
	}
	if verdict != nil {
		return verdict, nil
	}
	if proof.OrderID != intent.ProviderOrderID {
		return &payments.Capture{Status: models.PaymentFailed, FailureReason: models.ReasonOrderMismatch}, nil
	}
	return &payments.Capture{Status: models.PaymentCaptured, TransactionID: "TX-" + intent.ProviderOrderID, Amount: intent.Amount}, nil
}

func (f *fakeGateway) counts() (creates, captures int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.creates, f.captures
}

type recordingObserver struct {
	mu     sync.Mutex
	orders []uint
	err    error
}

func (r *recordingObserver) OrderConfirmed(_ context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders = append(r.orders, order.ID)
	return r.err
}

func (r *recordingObserver) seen() []uint {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]uint(nil), r.orders...)
}

type fixture struct {
	db       *gorm.DB
	intents  *repositories.PaymentIntentRepository
	orders   *repositories.OrderRepository
	menu     *repositories.MenuRepository
	carts    *cart.RedisStore
	observer *recordingObserver
	checkout *CheckoutService

	pizza models.MenuItem
	salad models.MenuItem
}

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := initializers.OpenDatabase("sqlite::memory:")
	require.NoError(t, err)
	require.NoError(t, initializers.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func setupCartStore(t *testing.T) *cart.RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cart.NewRedisStore(client, time.Hour)
}

func newFixture(t *testing.T, gateways ...payments.Gateway) *fixture {
	t.Helper()
	db := setupDB(t)
	f := &fixture{
		db:       db,
		intents:  repositories.NewPaymentIntentRepository(db),
		orders:   repositories.NewOrderRepository(db),
		menu:     repositories.NewMenuRepository(db),
		carts:    setupCartStore(t),
		observer: &recordingObserver{},
	}

	ctx := context.Background()
	f.pizza = models.MenuItem{Name: "Margherita", Description: "tomato, mozzarella", Price: 1000, IsAvailable: true}
	f.salad = models.MenuItem{Name: "Caesar Salad", Description: "romaine, parmesan", Price: 500, IsAvailable: true}
	require.NoError(t, f.menu.Create(ctx, &f.pizza))
	require.NoError(t, f.menu.Create(ctx, &f.salad))

	f.checkout = NewCheckoutService(CheckoutDeps{
		DB:        db,
		Intents:   f.intents,
		Orders:    f.orders,
		Catalog:   f.menu,
		Carts:     f.carts,
		Gateways:  payments.NewRegistry(gateways...),
		Observers: []OrderObserver{f.observer},
		Timeout:   200 * time.Millisecond,
	})
	return f
}

// fillCart stores pizza x2 and salad x1, which totals 30.99.
func (f *fixture) fillCart(t *testing.T, userID uint) {
	t.Helper()
	c := cart.New()
	c.AddItem(f.pizza)
	c.AddItem(f.pizza)
	c.AddItem(f.salad)
	require.NoError(t, f.carts.Save(context.Background(), userID, c))
}

func (f *fixture) countOrders(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&models.Order{}).Count(&n).Error)
	return n
}

func (f *fixture) countIntents(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&models.PaymentIntent{}).Count(&n).Error)
	return n
}
