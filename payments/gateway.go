// Package payments adapts external payment providers to a single capability:
// open a payable provider order, then capture or verify it.
package payments

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/Kariqs/myfood-api/models"
)

var (
	ErrProvider        = errors.New("payment provider error")
	ErrUnknownProvider = errors.New("unsupported payment provider")
)

// Proof is what the client brings back from the provider's approval step.
// PayPal uses OrderID only; Razorpay sends all three fields.
type Proof struct {
	OrderID   string
	PaymentID string
	Signature string
}

// Capture is the provider's verdict on a payment. Status is CAPTURED or FAILED.
type Capture struct {
	Status        models.PaymentStatus
	TransactionID string
	Amount        models.Money
	FailureReason string
}

func captured(txnID string, amount models.Money) *Capture {
	return &Capture{Status: models.PaymentCaptured, TransactionID: txnID, Amount: amount}
}

func failed(reason string) *Capture {
	return &Capture{Status: models.PaymentFailed, FailureReason: reason}
}

// Gateway is implemented once per provider. Transport failures, non-2xx
// responses and timeouts are returned wrapped in ErrProvider; a payment the
// provider refuses, or whose proof does not verify, is a FAILED Capture with a nil error.
type Gateway interface {
	Provider() string
	DefaultCurrency() string
	// CreateProviderOrder opens a new provider order on every call; the returned
	// intent has status CREATED.
	CreateProviderOrder(ctx context.Context, amount models.Money, currency string, metadata map[string]string) (*models.PaymentIntent, error)
	CaptureProviderOrder(ctx context.Context, intent *models.PaymentIntent, proof Proof) (*Capture, error)
}

type Registry struct {
	gateways map[string]Gateway
}

func NewRegistry(gateways ...Gateway) *Registry {
	r := &Registry{gateways: make(map[string]Gateway, len(gateways))}
	for _, g := range gateways {
		r.gateways[g.Provider()] = g
	}
	return r
}

func (r *Registry) Get(provider string) (Gateway, error) {
	g, ok := r.gateways[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
	}
	return g, nil
}

// Providers lists the registered provider names in sorted order.
func (r *Registry) Providers() []string {
	names := make([]string, 0, len(r.gateways))
	for name := range r.gateways {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
