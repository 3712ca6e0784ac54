package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Kariqs/myfood-api/cart"
	"github.com/Kariqs/myfood-api/controllers"
	"github.com/Kariqs/myfood-api/initializers"
	"github.com/Kariqs/myfood-api/middlewares"
	"github.com/Kariqs/myfood-api/payments"
	"github.com/Kariqs/myfood-api/repositories"
	"github.com/Kariqs/myfood-api/routes"
	"github.com/Kariqs/myfood-api/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func init() {
	initializers.LoadEnv()
}

func main() {
	cfg := initializers.LoadConfig()
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	initializers.ConnectToDB(cfg.DBURL)
	initializers.SyncDatabase()
	initializers.ConnectToRedis(cfg.RedisAddr, cfg.RedisPassword)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	users := repositories.NewUserRepository(initializers.DB)
	menu := repositories.NewMenuRepository(initializers.DB)
	orders := repositories.NewOrderRepository(initializers.DB)
	intents := repositories.NewPaymentIntentRepository(initializers.DB)
	carts := cart.NewRedisStore(initializers.Redis, cfg.CartTTL)

	var observers []services.OrderObserver
	if cfg.SMTPAddress != "" {
		observers = append(observers, services.NewEmailNotifier(users, cfg.FrontendURL))
	}
	if cfg.ReceiptsBucket != "" {
		uploader, err := initializers.NewS3Uploader(ctx)
		if err != nil {
			log.Println("Receipt archiving disabled:", err)
		} else {
			observers = append(observers, services.NewS3ReceiptArchiver(uploader, cfg.ReceiptsBucket))
		}
	}

	registry := payments.NewRegistry(cfg.Gateways()...)
	if len(registry.Providers()) == 0 {
		log.Println("No payment provider configured, checkout is unavailable")
	}

	checkout := services.NewCheckoutService(services.CheckoutDeps{
		DB:        initializers.DB,
		Intents:   intents,
		Orders:    orders,
		Catalog:   menu,
		Carts:     carts,
		Gateways:  registry,
		Observers: observers,
		Timeout:   cfg.PaymentTimeout,
	})

	sweeper := services.NewIntentSweeper(intents, cfg.IntentTTL, cfg.SweepInterval)
	go sweeper.Run(ctx)

	server := gin.Default()
	server.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	requireAuth := middlewares.RequireAuth(cfg.JWTSecret)
	routes.DefaultRoutes(server)
	routes.AuthRoutes(server, controllers.NewAuthController(users, cfg.JWTSecret))
	routes.MenuRoutes(server, controllers.NewMenuController(menu), requireAuth)
	routes.CartRoutes(server, controllers.NewCartController(services.NewCartService(carts, menu)), requireAuth)
	routes.PaymentRoutes(server, controllers.NewPaymentController(checkout), requireAuth)
	routes.OrderRoutes(server, controllers.NewOrderController(services.NewOrderService(orders), checkout), requireAuth)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: server,
	}
	go func() {
		log.Printf("Server listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server error: ", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Println("Server shutdown error:", err)
	}
}
