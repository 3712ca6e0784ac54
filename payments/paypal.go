package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/Kariqs/myfood-api/models"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

const (
	PayPalSandboxURL    = "https://api-m.sandbox.paypal.com"
	PayPalProductionURL = "https://api-m.paypal.com"
)

type PayPalConfig struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
	Timeout      time.Duration
}

type PayPal struct {
	cfg     PayPalConfig
	client  *resty.Client
	breaker *breaker

	tokens      singleflight.Group
	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

func NewPayPal(cfg PayPalConfig) *PayPal {
	if cfg.BaseURL == "" {
		cfg.BaseURL = PayPalSandboxURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &PayPal{
		cfg: cfg,
		client: resty.New().
			SetBaseURL(cfg.BaseURL).
			SetTimeout(cfg.Timeout).
			SetHeader("Accept", "application/json"),
		breaker: newBreaker(models.ProviderPayPal),
	}
}

func (p *PayPal) Provider() string        { return models.ProviderPayPal }
func (p *PayPal) DefaultCurrency() string { return "USD" }

type paypalLink struct {
	Href   string `json:"href"`
	Rel    string `json:"rel"`
	Method string `json:"method"`
}

type paypalAmount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type paypalOrderResponse struct {
	ID            string       `json:"id"`
	Status        string       `json:"status"`
	Links         []paypalLink `json:"links"`
	PurchaseUnits []struct {
		Payments struct {
			Captures []struct {
				ID     string       `json:"id"`
				Status string       `json:"status"`
				Amount paypalAmount `json:"amount"`
			} `json:"captures"`
		} `json:"payments"`
	} `json:"purchase_units"`
}

func (p *PayPal) accessToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	if p.token != "" && time.Now().Before(p.tokenExpiry) {
		token := p.token
		p.mu.Unlock()
		return token, nil
	}
	p.mu.Unlock()

	v, err, _ := p.tokens.Do("token", func() (any, error) {
		resp, err := p.breaker.do(func() (*resty.Response, error) {
			return p.client.R().
				SetContext(ctx).
				SetBasicAuth(p.cfg.ClientID, p.cfg.ClientSecret).
				SetFormData(map[string]string{"grant_type": "client_credentials"}).
				Post("/v1/oauth2/token")
		})
		if err != nil {
			return "", err
		}
		if !resp.IsSuccess() {
			return "", unexpectedStatus("paypal token", resp)
		}

		var out struct {
			AccessToken string `json:"access_token"`
			ExpiresIn   int    `json:"expires_in"`
		}
		if err := json.Unmarshal(resp.Body(), &out); err != nil {
			return "", fmt.Errorf("%w: failed to parse paypal token response: %v", ErrProvider, err)
		}
		if out.AccessToken == "" {
			return "", fmt.Errorf("%w: paypal token missing from response", ErrProvider)
		}

		// refresh a minute early so a token never expires mid-request
		ttl := time.Duration(out.ExpiresIn)*time.Second - time.Minute
		p.mu.Lock()
		p.token = out.AccessToken
		p.tokenExpiry = time.Now().Add(ttl)
		p.mu.Unlock()
		return out.AccessToken, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (p *PayPal) CreateProviderOrder(ctx context.Context, amount models.Money, currency string, metadata map[string]string) (*models.PaymentIntent, error) {
	token, err := p.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	receipt := metadata["receipt"]
	orderData := map[string]any{
		"intent": "CAPTURE",
		"purchase_units": []map[string]any{
			{
				"reference_id": receipt,
				"description":  "Food delivery order",
				"amount": paypalAmount{
					CurrencyCode: currency,
					Value:        amount.String(),
				},
			},
		},
	}

	requestID := metadata["requestId"]
	if requestID == "" {
		requestID = uuid.NewString()
	}

	resp, err := p.breaker.do(func() (*resty.Response, error) {
		return p.client.R().
			SetContext(ctx).
			SetAuthToken(token).
			SetHeader("Content-Type", "application/json").
			SetHeader("PayPal-Request-Id", requestID).
			SetBody(orderData).
			Post("/v2/checkout/orders")
	})
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, unexpectedStatus("paypal create order", resp)
	}

	var order paypalOrderResponse
	if err := json.Unmarshal(resp.Body(), &order); err != nil {
		return nil, fmt.Errorf("%w: invalid response from paypal: %v", ErrProvider, err)
	}
	if order.ID == "" {
		return nil, fmt.Errorf("%w: paypal order id missing from response", ErrProvider)
	}

	intent := &models.PaymentIntent{
		Provider:        models.ProviderPayPal,
		ProviderOrderID: order.ID,
		Amount:          amount,
		Currency:        currency,
		Receipt:         receipt,
		Status:          models.PaymentCreated,
	}
	for _, link := range order.Links {
		if link.Rel == "approve" || link.Rel == "payer-action" {
			intent.ApproveURL = link.Href
		}
	}
	return intent, nil
}

// CaptureProviderOrder expects proof.OrderID to be the order id returned by
// the buyer's approval step.
func (p *PayPal) CaptureProviderOrder(ctx context.Context, intent *models.PaymentIntent, proof Proof) (*Capture, error) {
	if proof.OrderID != intent.ProviderOrderID {
		return failed(models.ReasonOrderMismatch), nil
	}

	token, err := p.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := p.breaker.do(func() (*resty.Response, error) {
		return p.client.R().
			SetContext(ctx).
			SetAuthToken(token).
			SetHeader("Content-Type", "application/json").
			SetHeader("PayPal-Request-Id", "capture-"+intent.ProviderOrderID).
			SetBody(map[string]any{}).
			Post("/v2/checkout/orders/" + intent.ProviderOrderID + "/capture")
	})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() == http.StatusUnprocessableEntity {
		// e.g. INSTRUMENT_DECLINED, ORDER_NOT_APPROVED
		return failed(models.ReasonDeclined), nil
	}
	if !resp.IsSuccess() {
		return nil, unexpectedStatus("paypal capture", resp)
	}

	var order paypalOrderResponse
	if err := json.Unmarshal(resp.Body(), &order); err != nil {
		return nil, fmt.Errorf("%w: invalid response from paypal: %v", ErrProvider, err)
	}
	if order.Status != "COMPLETED" || len(order.PurchaseUnits) == 0 || len(order.PurchaseUnits[0].Payments.Captures) == 0 {
		return failed(models.ReasonDeclined), nil
	}

	capture := order.PurchaseUnits[0].Payments.Captures[0]
	amount := intent.Amount
	if v, err := models.ParseMoney(capture.Amount.Value); err == nil {
		amount = v
	}
	return captured(capture.ID, amount), nil
}
