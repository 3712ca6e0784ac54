package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Kariqs/myfood-api/cart"
	"github.com/Kariqs/myfood-api/models"
	"github.com/Kariqs/myfood-api/payments"
	"github.com/Kariqs/myfood-api/pricing"
	"github.com/Kariqs/myfood-api/repositories"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var zipCodePattern = regexp.MustCompile(`^\d{6}$`)

// Catalog resolves authoritative menu item prices and availability.
type Catalog interface {
	Lookup(ctx context.Context, ids []uint) (map[uint]models.MenuItem, error)
}

// ValidateAddress requires street, city and state plus a 6-digit postal code.
func ValidateAddress(a models.Address) error {
	var missing []string
	if strings.TrimSpace(a.Street) == "" {
		missing = append(missing, "street")
	}
	if strings.TrimSpace(a.City) == "" {
		missing = append(missing, "city")
	}
	if strings.TrimSpace(a.State) == "" {
		missing = append(missing, "state")
	}
	if !zipCodePattern.MatchString(strings.TrimSpace(a.ZipCode)) {
		missing = append(missing, "zipCode")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrIncompleteAddress, strings.Join(missing, ", "))
	}
	return nil
}

type CreatePaymentOrderInput struct {
	UserID   uint
	Provider string
	// Amount is what the client displayed; it must equal the recomputed total.
	Amount   models.Money
	Currency string
	// Items overrides the stored cart when non-empty.
	Items                []models.LineRequest
	DeliveryAddress      models.Address
	DeliveryInstructions string
}

type PaymentOrder struct {
	Intent    *models.PaymentIntent
	Breakdown pricing.Breakdown
}

// CaptureResult is the outcome of a capture attempt. Order is set once the
// intent is CAPTURED.
type CaptureResult struct {
	Intent           *models.PaymentIntent
	Order            *models.Order
	AlreadyFinalized bool
}

// CheckoutService drives a checkout from cart review through payment capture
// to a confirmed order.
type CheckoutService struct {
	db        *gorm.DB
	intents   *repositories.PaymentIntentRepository
	orders    *repositories.OrderRepository
	catalog   Catalog
	carts     cart.Store
	gateways  *payments.Registry
	observers []OrderObserver
	timeout   time.Duration
	locks     *keyedMutex
}

type CheckoutDeps struct {
	DB        *gorm.DB
	Intents   *repositories.PaymentIntentRepository
	Orders    *repositories.OrderRepository
	Catalog   Catalog
	Carts     cart.Store
	Gateways  *payments.Registry
	Observers []OrderObserver
	// Timeout bounds every provider call.
	Timeout time.Duration
}

func NewCheckoutService(deps CheckoutDeps) *CheckoutService {
	timeout := deps.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &CheckoutService{
		db:        deps.DB,
		intents:   deps.Intents,
		orders:    deps.Orders,
		catalog:   deps.Catalog,
		carts:     deps.Carts,
		gateways:  deps.Gateways,
		observers: deps.Observers,
		timeout:   timeout,
		locks:     newKeyedMutex(),
	}
}

// Providers lists the payment providers a checkout may choose from.
func (s *CheckoutService) Providers() []string {
	return s.gateways.Providers()
}

// Quote prices lines against the catalog.
func (s *CheckoutService) Quote(ctx context.Context, lines []models.CartLine) (pricing.Breakdown, error) {
	_, breakdown, err := priceLines(ctx, s.catalog, lines)
	return breakdown, err
}

// CreatePaymentOrder validates the checkout, recomputes the total from the
// catalog and opens a provider order for it. Nothing reaches the provider
// unless the declared amount matches.
func (s *CheckoutService) CreatePaymentOrder(ctx context.Context, in CreatePaymentOrderInput) (*PaymentOrder, error) {
	run := newCheckoutRun("user "+strconv.FormatUint(uint64(in.UserID), 10), StateCartReview)

	if err := ValidateAddress(in.DeliveryAddress); err != nil {
		return nil, err
	}
	gateway, err := s.gateways.Get(in.Provider)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, in.Provider)
	}
	lines, err := s.requestedLines(ctx, in.UserID, in.Items)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	run.mustAdvance(StateAwaitingPayment)

	priced, breakdown, err := priceLines(ctx, s.catalog, lines)
	if err != nil {
		return nil, err
	}
	if in.Amount != breakdown.Total {
		log.Printf("Price integrity check failed for user %d: declared %s, computed %s", in.UserID, in.Amount, breakdown.Total)
		return nil, fmt.Errorf("%w: declared %s, expected %s", ErrPriceIntegrity, in.Amount, breakdown.Total)
	}

	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = gateway.DefaultCurrency()
	}
	metadata := map[string]string{
		"receipt":   "rcpt_" + strings.ReplaceAll(uuid.NewString(), "-", ""),
		"requestId": uuid.NewString(),
		"userId":    strconv.FormatUint(uint64(in.UserID), 10),
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	intent, err := gateway.CreateProviderOrder(callCtx, breakdown.Total, currency, metadata)
	if err != nil {
		log.Printf("Failed to create %s order for user %d: %v", gateway.Provider(), in.UserID, err)
		run.mustAdvance(StateFailed)
		return nil, wrapProviderError(err)
	}

	intent.UserID = in.UserID
	intent.Metadata = toJSONMap(metadata)
	intent.Checkout = datatypes.NewJSONType(models.CheckoutSnapshot{
		Lines:                orderItems(priced),
		Subtotal:             breakdown.Subtotal,
		DeliveryFee:          breakdown.DeliveryFee,
		Tax:                  breakdown.Tax,
		Total:                breakdown.Total,
		DeliveryAddress:      in.DeliveryAddress,
		DeliveryInstructions: strings.TrimSpace(in.DeliveryInstructions),
	})
	if err := s.intents.Create(ctx, intent); err != nil {
		return nil, err
	}

	run.ref = intent.ProviderOrderID
	run.mustAdvance(StateCapturing)
	return &PaymentOrder{Intent: intent, Breakdown: breakdown}, nil
}

// CapturePayment finalizes the intent behind providerOrderID. Only the first
// caller to find it CREATED talks to the provider; everyone else gets
// ErrAlreadyFinalized together with the recorded outcome.
func (s *CheckoutService) CapturePayment(ctx context.Context, userID uint, providerOrderID string, proof payments.Proof) (*CaptureResult, error) {
	providerOrderID = strings.TrimSpace(providerOrderID)
	if providerOrderID == "" {
		return nil, fmt.Errorf("%w: payment order id is required", ErrValidation)
	}

	unlock := s.locks.Lock(providerOrderID)
	defer unlock()

	intent, err := s.intents.FindByProviderOrderID(ctx, providerOrderID)
	if errors.Is(err, repositories.ErrIntentNotFound) {
		return nil, fmt.Errorf("%w: payment order %s", ErrNotFound, providerOrderID)
	}
	if err != nil {
		return nil, err
	}
	if intent.UserID != userID {
		return nil, ErrForbidden
	}
	if intent.Terminal() {
		return s.finalized(ctx, intent)
	}

	run := newCheckoutRun(providerOrderID, stateOf(intent))

	gateway, err := s.gateways.Get(intent.Provider)
	if err != nil {
		s.fail(ctx, run, intent, models.ReasonProviderError)
		return &CaptureResult{Intent: intent}, wrapProviderError(err)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	capture, err := gateway.CaptureProviderOrder(callCtx, intent, proof)
	if err != nil {
		log.Printf("Capture of %s order %s failed: %v", intent.Provider, providerOrderID, err)
		s.fail(ctx, run, intent, models.ReasonProviderError)
		return &CaptureResult{Intent: intent}, wrapProviderError(err)
	}

	if capture.Status == models.PaymentCaptured && capture.Amount != 0 && capture.Amount != intent.Amount {
		log.Printf("SECURITY: %s order %s captured %s, expected %s", intent.Provider, providerOrderID, capture.Amount, intent.Amount)
		capture = &payments.Capture{Status: models.PaymentFailed, FailureReason: models.ReasonOrderMismatch}
	}

	if capture.Status != models.PaymentCaptured {
		s.fail(ctx, run, intent, capture.FailureReason)
		if capture.FailureReason == models.ReasonSignatureMismatch {
			log.Printf("SECURITY: signature mismatch on %s order %s (user %d)", intent.Provider, providerOrderID, userID)
			return &CaptureResult{Intent: intent}, ErrSignatureMismatch
		}
		return &CaptureResult{Intent: intent}, fmt.Errorf("%w: %s", ErrPaymentDeclined, capture.FailureReason)
	}

	order, err := s.confirm(ctx, intent, capture)
	if errors.Is(err, repositories.ErrStaleStatus) || errors.Is(err, repositories.ErrDuplicatePaymentIntentRef) {
		current, ferr := s.intents.FindByProviderOrderID(ctx, providerOrderID)
		if ferr != nil {
			return nil, ferr
		}
		return s.finalized(ctx, current)
	}
	if err != nil {
		return nil, err
	}
	run.mustAdvance(StateConfirmed)

	s.clearCart(ctx, userID)
	s.notify(ctx, order)
	return &CaptureResult{Intent: intent, Order: order}, nil
}

// ConfirmedOrder returns the order funded by the user's captured payment.
func (s *CheckoutService) ConfirmedOrder(ctx context.Context, userID uint, providerOrderID string) (*models.Order, error) {
	intent, err := s.intents.FindByProviderOrderID(ctx, strings.TrimSpace(providerOrderID))
	if errors.Is(err, repositories.ErrIntentNotFound) {
		return nil, ErrPaymentRequired
	}
	if err != nil {
		return nil, err
	}
	if intent.UserID != userID {
		return nil, ErrForbidden
	}
	if intent.Status != models.PaymentCaptured {
		return nil, fmt.Errorf("%w: payment is %s", ErrPaymentRequired, intent.Status)
	}

	order, err := s.orders.FindByPaymentIntent(ctx, intent.ID)
	if errors.Is(err, repositories.ErrOrderNotFound) {
		return nil, ErrPaymentRequired
	}
	return order, err
}

// confirm marks the intent CAPTURED and creates its order in one transaction.
func (s *CheckoutService) confirm(ctx context.Context, intent *models.PaymentIntent, capture *payments.Capture) (*models.Order, error) {
	snapshot := intent.Checkout.Data()
	order := &models.Order{
		UserID:               intent.UserID,
		LineItems:            append([]models.OrderItem(nil), snapshot.Lines...),
		Subtotal:             snapshot.Subtotal,
		DeliveryFee:          snapshot.DeliveryFee,
		Tax:                  snapshot.Tax,
		TotalAmount:          snapshot.Total,
		Currency:             intent.Currency,
		DeliveryAddress:      snapshot.DeliveryAddress,
		DeliveryInstructions: snapshot.DeliveryInstructions,
		PaymentIntentRef:     intent.ID,
		Status:               models.OrderConfirmed,
	}

	updates := map[string]any{"transaction_id": capture.TransactionID}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		intents := s.intents.WithTx(tx)
		err := intents.Transition(ctx, intent.ID, models.PaymentCreated, models.PaymentCaptured, updates)
		if errors.Is(err, repositories.ErrStaleStatus) {
			// The provider has taken the money; an expiry that raced the capture must not lose it.
			if err = intents.ReclaimExpired(ctx, intent.ID, updates); err == nil {
				log.Printf("checkout %s: reclaimed intent expired during capture", intent.ProviderOrderID)
			}
		}
		if err != nil {
			return err
		}
		_, err = s.orders.WithTx(tx).Create(ctx, order)
		return err
	})
	if err != nil {
		return nil, err
	}

	intent.Status = models.PaymentCaptured
	intent.FailureReason = ""
	intent.TransactionID = capture.TransactionID
	return order, nil
}

func (s *CheckoutService) fail(ctx context.Context, run *checkoutRun, intent *models.PaymentIntent, reason string) {
	err := s.intents.Transition(ctx, intent.ID, models.PaymentCreated, models.PaymentFailed, map[string]any{
		"failure_reason": reason,
	})
	if err != nil {
		log.Printf("Failed to mark payment %s as failed: %v", intent.ProviderOrderID, err)
		return
	}
	intent.Status = models.PaymentFailed
	intent.FailureReason = reason
	run.mustAdvance(StateFailed)
}

func (s *CheckoutService) finalized(ctx context.Context, intent *models.PaymentIntent) (*CaptureResult, error) {
	result := &CaptureResult{Intent: intent, AlreadyFinalized: true}
	if intent.Status == models.PaymentCaptured {
		order, err := s.orders.FindByPaymentIntent(ctx, intent.ID)
		if err != nil && !errors.Is(err, repositories.ErrOrderNotFound) {
			return nil, err
		}
		result.Order = order
	}
	return result, ErrAlreadyFinalized
}

// requestedLines takes the explicit items if given, otherwise the stored cart.
func (s *CheckoutService) requestedLines(ctx context.Context, userID uint, items []models.LineRequest) ([]models.CartLine, error) {
	if len(items) > 0 {
		lines := make([]models.CartLine, 0, len(items))
		for _, item := range items {
			if item.Quantity < 1 || item.Quantity > pricing.MaxQuantity {
				return nil, fmt.Errorf("%w: menu item %d", ErrInvalidQuantity, item.MenuItemID)
			}
			lines = append(lines, models.CartLine{MenuItemID: item.MenuItemID, Quantity: item.Quantity})
		}
		return cart.New(lines...).Lines(), nil
	}

	c, err := s.carts.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return c.Lines(), nil
}

func (s *CheckoutService) clearCart(ctx context.Context, userID uint) {
	if err := s.carts.Delete(ctx, userID); err != nil {
		log.Printf("Failed to clear cart for user %d: %v", userID, err)
	}
}

func (s *CheckoutService) notify(ctx context.Context, order *models.Order) {
	for _, o := range s.observers {
		if err := o.OrderConfirmed(ctx, order); err != nil {
			log.Printf("Order %d observer failed: %v", order.ID, err)
		}
	}
}

// priceLines resolves lines against the catalog and totals them.
func priceLines(ctx context.Context, catalog Catalog, lines []models.CartLine) ([]pricing.PricedLine, pricing.Breakdown, error) {
	ids := make([]uint, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.MenuItemID)
	}
	items, err := catalog.Lookup(ctx, ids)
	if err != nil {
		return nil, pricing.Breakdown{}, err
	}

	priced, err := pricing.Price(lines, items)
	switch {
	case errors.Is(err, pricing.ErrInvalidQuantity):
		return nil, pricing.Breakdown{}, fmt.Errorf("%w: %w", ErrInvalidQuantity, err)
	case err != nil:
		return nil, pricing.Breakdown{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	breakdown, err := pricing.Total(priced)
	if err != nil {
		return nil, pricing.Breakdown{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return priced, breakdown, nil
}

func orderItems(priced []pricing.PricedLine) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(priced))
	for _, p := range priced {
		items = append(items, models.OrderItem{
			MenuItemID:           p.MenuItemID,
			Name:                 p.Name,
			Quantity:             p.Quantity,
			UnitPriceAtOrderTime: p.UnitPrice,
		})
	}
	return items
}

func toJSONMap(m map[string]string) datatypes.JSONMap {
	out := make(datatypes.JSONMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func wrapProviderError(err error) error {
	if errors.Is(err, ErrProvider) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrProvider, err)
}
