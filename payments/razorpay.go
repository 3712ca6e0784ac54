package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Kariqs/myfood-api/models"
	"github.com/go-resty/resty/v2"
)

const RazorpayURL = "https://api.razorpay.com"

type RazorpayConfig struct {
	KeyID     string
	KeySecret string
	BaseURL   string
	Timeout   time.Duration
}

type Razorpay struct {
	cfg     RazorpayConfig
	client  *resty.Client
	breaker *breaker
}

func NewRazorpay(cfg RazorpayConfig) *Razorpay {
	if cfg.BaseURL == "" {
		cfg.BaseURL = RazorpayURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Razorpay{
		cfg: cfg,
		client: resty.New().
			SetBaseURL(cfg.BaseURL).
			SetTimeout(cfg.Timeout).
			SetBasicAuth(cfg.KeyID, cfg.KeySecret).
			SetHeader("Accept", "application/json"),
		breaker: newBreaker(models.ProviderRazorpay),
	}
}

func (r *Razorpay) Provider() string        { return models.ProviderRazorpay }
func (r *Razorpay) DefaultCurrency() string { return "INR" }

func (r *Razorpay) CreateProviderOrder(ctx context.Context, amount models.Money, currency string, metadata map[string]string) (*models.PaymentIntent, error) {
	receipt := metadata["receipt"]
	orderData := map[string]any{
		// Money is already in paise
		"amount":   int64(amount),
		"currency": currency,
		"receipt":  receipt,
		"notes":    metadata,
	}

	resp, err := r.breaker.do(func() (*resty.Response, error) {
		return r.client.R().
			SetContext(ctx).
			SetHeader("Content-Type", "application/json").
			SetBody(orderData).
			Post("/v1/orders")
	})
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, unexpectedStatus("razorpay create order", resp)
	}

	var order struct {
		ID       string `json:"id"`
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
		Receipt  string `json:"receipt"`
		Status   string `json:"status"`
	}
	if err := json.Unmarshal(resp.Body(), &order); err != nil {
		return nil, fmt.Errorf("%w: invalid response from razorpay: %v", ErrProvider, err)
	}
	if order.ID == "" {
		return nil, fmt.Errorf("%w: razorpay order id missing from response", ErrProvider)
	}
	if order.Amount != int64(amount) {
		return nil, fmt.Errorf("%w: razorpay opened order %s for %d, requested %d", ErrProvider, order.ID, order.Amount, int64(amount))
	}

	return &models.PaymentIntent{
		Provider:        models.ProviderRazorpay,
		ProviderOrderID: order.ID,
		Amount:          amount,
		Currency:        currency,
		Receipt:         order.Receipt,
		Status:          models.PaymentCreated,
	}, nil
}

// CaptureProviderOrder accepts the payment only if the checkout signature
// verifies against the key secret. No network call is made.
func (r *Razorpay) CaptureProviderOrder(_ context.Context, intent *models.PaymentIntent, proof Proof) (*Capture, error) {
	if proof.OrderID != intent.ProviderOrderID {
		return failed(models.ReasonOrderMismatch), nil
	}
	if proof.PaymentID == "" || !VerifyRazorpaySignature(r.cfg.KeySecret, proof.OrderID, proof.PaymentID, proof.Signature) {
		return failed(models.ReasonSignatureMismatch), nil
	}
	return captured(proof.PaymentID, intent.Amount), nil
}

// SignRazorpay returns the hex HMAC-SHA256 of "orderID|paymentID".
func SignRazorpay(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func VerifyRazorpaySignature(secret, orderID, paymentID, signature string) bool {
	expected := SignRazorpay(secret, orderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}
