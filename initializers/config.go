package initializers

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/Kariqs/myfood-api/payments"
)

type Config struct {
	Port  string
	DBURL string

	RedisAddr     string
	RedisPassword string
	CartTTL       time.Duration

	JWTSecret string

	PayPalClientID     string
	PayPalClientSecret string
	PayPalBaseURL      string

	RazorpayKeyID     string
	RazorpayKeySecret string
	RazorpayBaseURL   string

	PaymentTimeout time.Duration
	IntentTTL      time.Duration
	SweepInterval  time.Duration

	ReceiptsBucket string
	SMTPAddress    string
	FrontendURL    string
	CORSOrigins    []string
}

func LoadConfig() Config {
	paypalURL := payments.PayPalSandboxURL
	if os.Getenv("APP_ENV") == "production" {
		paypalURL = payments.PayPalProductionURL
	}

	return Config{
		Port:               getEnv("PORT", "8080"),
		DBURL:              getEnv("DB_URL", "sqlite:myfood.db"),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		CartTTL:            getDuration("CART_TTL", 720*time.Hour),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		PayPalClientID:     os.Getenv("PAYPAL_CLIENT_ID"),
		PayPalClientSecret: os.Getenv("PAYPAL_CLIENT_SECRET"),
		PayPalBaseURL:      getEnv("PAYPAL_BASE_URL", paypalURL),
		RazorpayKeyID:      os.Getenv("RAZORPAY_KEY_ID"),
		RazorpayKeySecret:  os.Getenv("RAZORPAY_KEY_SECRET"),
		RazorpayBaseURL:    getEnv("RAZORPAY_BASE_URL", payments.RazorpayURL),
		PaymentTimeout:     getDuration("PAYMENT_TIMEOUT", 15*time.Second),
		IntentTTL:          getDuration("INTENT_TTL", 30*time.Minute),
		SweepInterval:      getDuration("SWEEP_INTERVAL", time.Minute),
		ReceiptsBucket:     os.Getenv("RECEIPTS_BUCKET"),
		SMTPAddress:        os.Getenv("SMTP_ADDRESS"),
		FrontendURL:        getEnv("FRONTEND_URL", "http://localhost:3000"),
		CORSOrigins:        splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
	}
}

// Gateways builds a gateway for every provider with credentials configured.
func (c Config) Gateways() []payments.Gateway {
	var gateways []payments.Gateway
	if c.PayPalClientID != "" && c.PayPalClientSecret != "" {
		gateways = append(gateways, payments.NewPayPal(payments.PayPalConfig{
			ClientID:     c.PayPalClientID,
			ClientSecret: c.PayPalClientSecret,
			BaseURL:      c.PayPalBaseURL,
			Timeout:      c.PaymentTimeout,
		}))
	} else {
		log.Println("PayPal credentials not configured, provider disabled")
	}
	if c.RazorpayKeyID != "" && c.RazorpayKeySecret != "" {
		gateways = append(gateways, payments.NewRazorpay(payments.RazorpayConfig{
			KeyID:     c.RazorpayKeyID,
			KeySecret: c.RazorpayKeySecret,
			BaseURL:   c.RazorpayBaseURL,
			Timeout:   c.PaymentTimeout,
		}))
	} else {
		log.Println("Razorpay credentials not configured, provider disabled")
	}
	return gateways
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("Invalid %s %q, using %s", key, v, fallback)
		return fallback
	}
	return d
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
