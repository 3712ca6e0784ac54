package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/Kariqs/myfood-api/cart"
	"github.com/Kariqs/myfood-api/controllers"
	"github.com/Kariqs/myfood-api/initializers"
	"github.com/Kariqs/myfood-api/middlewares"
	"github.com/Kariqs/myfood-api/models"
	"github.com/Kariqs/myfood-api/payments"
	"github.com/Kariqs/myfood-api/repositories"
	"github.com/Kariqs/myfood-api/routes"
	"github.com/Kariqs/myfood-api/services"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	jwtSecret      = "controller-test-secret"
	razorpaySecret = "rzp_secret"
)

// approvingGateway captures every order whose proof names it.
type approvingGateway struct {
	mu  sync.Mutex
	seq int
}

func (g *approvingGateway) Provider() string        { return models.ProviderPayPal }
func (g *approvingGateway) DefaultCurrency() string { return "USD" }

func (g *approvingGateway) CreateProviderOrder(_ context.Context, amount models.Money, currency string, metadata map[string]string) (*models.PaymentIntent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return &models.PaymentIntent{
		Provider:        models.ProviderPayPal,
		ProviderOrderID: fmt.Sprintf("PP-%d", g.seq),
		Amount:          amount,
		Currency:        currency,
		ApproveURL:      fmt.Sprintf("https://paypal.example/approve/PP-%d", g.seq),
		Status:          models.PaymentCreated,
	}, nil
}

func (g *approvingGateway) CaptureProviderOrder(_ context.Context, intent *models.PaymentIntent, proof payments.Proof) (*payments.Capture, error) {
	if proof.OrderID != intent.ProviderOrderID {
		return &payments.Capture{Status: models.PaymentFailed, FailureReason: models.ReasonOrderMismatch}, nil
	}
	return &payments.Capture{Status: models.PaymentCaptured, TransactionID: "CAP-" + intent.ProviderOrderID, Amount: intent.Amount}, nil
}

type testApp struct {
	router *gin.Engine
	users  *repositories.UserRepository
	pizza  models.MenuItem
	salad  models.MenuItem
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := initializers.OpenDatabase("sqlite::memory:")
	require.NoError(t, err)
	require.NoError(t, initializers.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	rzpServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Amount   int64  `json:"amount"`
			Currency string `json:"currency"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "order_abc", "amount": body.Amount, "currency": body.Currency})
	}))
	t.Cleanup(rzpServer.Close)

	users := repositories.NewUserRepository(db)
	menu := repositories.NewMenuRepository(db)
	orders := repositories.NewOrderRepository(db)
	intents := repositories.NewPaymentIntentRepository(db)
	carts := cart.NewRedisStore(client, time.Hour)

	app := &testApp{users: users}
	app.pizza = models.MenuItem{Name: "Margherita", Description: "classic", Price: 1000, IsAvailable: true}
	app.salad = models.MenuItem{Name: "Caesar Salad", Description: "fresh", Price: 500, IsAvailable: true}
	require.NoError(t, menu.Create(context.Background(), &app.pizza))
	require.NoError(t, menu.Create(context.Background(), &app.salad))

	registry := payments.NewRegistry(
		&approvingGateway{},
		payments.NewRazorpay(payments.RazorpayConfig{KeyID: "rzp_key", KeySecret: razorpaySecret, BaseURL: rzpServer.URL}),
	)
	checkout := services.NewCheckoutService(services.CheckoutDeps{
		DB:       db,
		Intents:  intents,
		Orders:   orders,
		Catalog:  menu,
		Carts:    carts,
		Gateways: registry,
		Timeout:  time.Second,
	})

	router := gin.New()
	requireAuth := middlewares.RequireAuth(jwtSecret)
	routes.DefaultRoutes(router)
	routes.AuthRoutes(router, controllers.NewAuthController(users, jwtSecret))
	routes.MenuRoutes(router, controllers.NewMenuController(menu), requireAuth)
	routes.CartRoutes(router, controllers.NewCartController(services.NewCartService(carts, menu)), requireAuth)
	routes.PaymentRoutes(router, controllers.NewPaymentController(checkout), requireAuth)
	routes.OrderRoutes(router, controllers.NewOrderController(services.NewOrderService(orders), checkout), requireAuth)
	app.router = router
	return app
}

func token(t *testing.T, userID uint, role string) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(jwtSecret))
	require.NoError(t, err)
	return signed
}

func (a *testApp) do(t *testing.T, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

var deliveryAddress = map[string]string{
	"street":  "12 MG Road",
	"city":    "Pune",
	"state":   "Maharashtra",
	"zipCode": "411001",
}

func (a *testApp) fillCart(t *testing.T, bearer string) {
	t.Helper()
	w := a.do(t, http.MethodPost, "/cart/items", bearer, map[string]any{"menuItemId": a.pizza.ID, "quantity": 2})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = a.do(t, http.MethodPost, "/cart/items", bearer, map[string]any{"menuItemId": a.salad.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestSignupAndLogin(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, http.MethodPost, "/auth/signup", "", map[string]string{
		"name": "Asha", "email": "Asha@Example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "secret123")

	w = app.do(t, http.MethodPost, "/auth/signup", "", map[string]string{
		"name": "Asha", "email": "asha@example.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code, "duplicate email")

	w = app.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "asha@example.com", "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = app.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "asha@example.com", "password": "secret123"})
	require.Equal(t, http.StatusOK, w.Code)
	bearer, _ := decode(t, w)["token"].(string)
	require.NotEmpty(t, bearer)

	w = app.do(t, http.MethodGet, "/cart", bearer, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCartEndpoints(t *testing.T) {
	app := newTestApp(t)
	bearer := token(t, 1, models.RoleUser)

	w := app.do(t, http.MethodGet, "/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	app.fillCart(t, bearer)

	w = app.do(t, http.MethodGet, "/cart/total", bearer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"subtotal":25,"deliveryFee":3.99,"tax":2,"total":30.99}`, w.Body.String())

	w = app.do(t, http.MethodPut, fmt.Sprintf("/cart/items/%d", app.pizza.ID), bearer, map[string]int{"quantity": 0})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["totalCount"])

	w = app.do(t, http.MethodDelete, fmt.Sprintf("/cart/items/%d", app.pizza.ID), bearer, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = app.do(t, http.MethodPost, "/cart/items", bearer, map[string]any{"menuItemId": 999})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = app.do(t, http.MethodDelete, "/cart", bearer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), decode(t, w)["totalCount"])
}

func TestCheckoutOverHTTP(t *testing.T) {
	app := newTestApp(t)
	bearer := token(t, 1, models.RoleUser)
	app.fillCart(t, bearer)

	w := app.do(t, http.MethodPost, "/payments/create-order", bearer, map[string]any{
		"provider": "paypal", "amount": 30.98, "deliveryAddress": deliveryAddress,
	})
	assert.Equal(t, http.StatusConflict, w.Code, "declared amount must match")

	w = app.do(t, http.MethodPost, "/payments/create-order", bearer, map[string]any{
		"provider": "paypal", "amount": 30.99, "deliveryAddress": map[string]string{"street": "12 MG Road", "city": "Pune", "state": "MH"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code, "postal code required")

	w = app.do(t, http.MethodPost, "/payments/create-order", bearer, map[string]any{
		"provider": "paypal", "amount": 30.99, "deliveryAddress": deliveryAddress, "deliveryInstructions": "ring twice",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)
	order := created["order"].(map[string]any)
	assert.Equal(t, 30.99, order["amount"])
	assert.Equal(t, "USD", order["currency"])
	assert.NotEmpty(t, order["approveUrl"])
	paymentOrderID := order["id"].(string)

	w = app.do(t, http.MethodPost, "/orders", bearer, map[string]any{"paymentOrderId": paymentOrderID})
	assert.Equal(t, http.StatusPaymentRequired, w.Code, "no order before capture")

	w = app.do(t, http.MethodPost, "/payments/capture", bearer, map[string]string{"orderID": paymentOrderID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	captured := decode(t, w)
	payment := captured["payment"].(map[string]any)
	assert.Equal(t, "CAPTURED", payment["status"])
	assert.Equal(t, "CAP-"+paymentOrderID, payment["transactionId"])
	assert.Equal(t, false, captured["alreadyFinalized"])
	confirmed := captured["order"].(map[string]any)
	assert.Equal(t, "CONFIRMED", confirmed["status"])
	assert.Equal(t, "ring twice", confirmed["deliveryInstructions"])

	w = app.do(t, http.MethodPost, "/payments/capture", bearer, map[string]string{"orderId": paymentOrderID})
	require.Equal(t, http.StatusOK, w.Code)
	again := decode(t, w)
	assert.Equal(t, true, again["alreadyFinalized"])
	assert.Equal(t, confirmed["ID"], again["order"].(map[string]any)["ID"])

	w = app.do(t, http.MethodGet, "/cart", bearer, nil)
	assert.Equal(t, float64(0), decode(t, w)["totalCount"], "cart cleared")

	w = app.do(t, http.MethodPost, "/orders", bearer, map[string]any{"paymentOrderId": paymentOrderID})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, confirmed["ID"], decode(t, w)["ID"])

	var mine []map[string]any
	w = app.do(t, http.MethodGet, "/orders/my-orders", bearer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &mine))
	require.Len(t, mine, 1)

	orderPath := fmt.Sprintf("/orders/%v", confirmed["ID"])
	w = app.do(t, http.MethodGet, orderPath, token(t, 2, models.RoleUser), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = app.do(t, http.MethodGet, orderPath, token(t, 99, models.RoleAdmin), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = app.do(t, http.MethodPut, orderPath+"/status", bearer, map[string]string{"status": "DELIVERED"})
	assert.Equal(t, http.StatusForbidden, w.Code, "admin only")

	admin := token(t, 99, models.RoleAdmin)
	w = app.do(t, http.MethodPut, orderPath+"/status", admin, map[string]string{"status": "ON_WAY"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ON_WAY", decode(t, w)["status"])

	w = app.do(t, http.MethodPut, orderPath+"/status", admin, map[string]string{"status": "PREPARING"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = app.do(t, http.MethodGet, "/orders", admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRazorpayCaptureOverHTTP(t *testing.T) {
	app := newTestApp(t)
	bearer := token(t, 1, models.RoleUser)
	app.fillCart(t, bearer)

	w := app.do(t, http.MethodPost, "/payments/create-order", bearer, map[string]any{
		"provider": "razorpay", "amount": 30.99, "deliveryAddress": deliveryAddress,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	order := decode(t, w)["order"].(map[string]any)
	assert.Equal(t, "order_abc", order["id"])
	assert.Equal(t, "INR", order["currency"])

	w = app.do(t, http.MethodPost, "/payments/capture", bearer, map[string]string{
		"razorpay_order_id":   "order_abc",
		"razorpay_payment_id": "pay_123",
		"razorpay_signature":  payments.SignRazorpay(razorpaySecret, "order_abc", "pay_124"),
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.do(t, http.MethodGet, "/cart", bearer, nil)
	assert.Equal(t, float64(3), decode(t, w)["totalCount"], "cart kept for retry")

	var mine []map[string]any
	w = app.do(t, http.MethodGet, "/orders/my-orders", bearer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &mine))
	assert.Empty(t, mine)
}

func TestRazorpayValidSignatureOverHTTP(t *testing.T) {
	app := newTestApp(t)
	bearer := token(t, 1, models.RoleUser)
	app.fillCart(t, bearer)

	w := app.do(t, http.MethodPost, "/payments/create-order", bearer, map[string]any{
		"provider": "razorpay", "amount": 30.99, "deliveryAddress": deliveryAddress,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = app.do(t, http.MethodPost, "/payments/capture", bearer, map[string]string{
		"orderId":   "order_abc",
		"paymentId": "pay_123",
		"signature": payments.SignRazorpay(razorpaySecret, "order_abc", "pay_123"),
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	payment := decode(t, w)["payment"].(map[string]any)
	assert.Equal(t, "CAPTURED", payment["status"])
	assert.Equal(t, "pay_123", payment["transactionId"])
}

func TestMenuEndpoints(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, http.MethodGet, "/menu", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Len(t, body["items"], 2)

	w = app.do(t, http.MethodGet, fmt.Sprintf("/menu/%d", app.pizza.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 10.0, decode(t, w)["price"])

	w = app.do(t, http.MethodGet, "/menu/999", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	item := map[string]any{"name": "Dal Fry", "description": "yellow lentils", "price": 4.5}
	w = app.do(t, http.MethodPost, "/menu", token(t, 1, models.RoleUser), item)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = app.do(t, http.MethodPost, "/menu", token(t, 99, models.RoleAdmin), item)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)
	assert.Equal(t, true, created["isAvailable"])
	assert.Equal(t, 4.5, created["price"])

	w = app.do(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
