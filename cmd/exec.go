package cmd

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"rental-system/config"
	"rental-system/internal/handlers"
	"rental-system/internal/services"
	"rental-system/internal/services/payment"
	"rental-system/models"
	"rental-system/monitoring"
	"rental-system/security"
	"rental-system/utils"

	_ "rental-system/migrations"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/plugins/migratecmd"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	pubnub "github.com/pubnub/go"
)

func Start() error {
	app := pocketbase.New()

	// Load configuration
	cfg := config.LoadConfig()

	// Initialize Redis
	redisClient := utils.NewRedisClient(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB)
	defer redisClient.Close()

	// Initialize PubNub
	pnConfig := pubnub.NewConfig()
	pnConfig.PublishKey = cfg.PubNubPublishKey
	pnConfig.SubscribeKey = cfg.PubNubSubscribeKey
	pnConfig.SecretKey = cfg.PubNubSecretKey

	pn := pubnub.NewPubNub(pnConfig)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize services
	notifier := services.NewNotifier(pn)
	vehicleLock := utils.NewVehicleLock(redisClient)
	reservationService := services.NewReservationService(app, vehicleLock, notifier, cfg)
	cleanupService := services.NewCleanupService(reservationService, cfg)

	var paymentService *services.PaymentService
	if cfg.StripeSecretKey != "" {
		gateway, err := payment.NewFactory().CreateGateway(ctx, payment.ProviderStripe, &payment.StripeConfig{
			SecretKey:     cfg.StripeSecretKey,
			WebhookSecret: cfg.StripeWebhookSecret,
		})
		if err != nil {
			return err
		}
		defer gateway.Close(ctx)
		paymentService = services.NewPaymentService(gateway, reservationService, cfg)
	} else {
		slog.Warn("STRIPE_SECRET_KEY not set, payment routes disabled")
	}

	// Initialize handlers
	reservationHandler := handlers.NewReservationHandler(app, reservationService)
	vehicleHandler := handlers.NewVehicleHandler(app)
	adminHandler := handlers.NewAdminHandler(app, notifier)

	rateLimiter := security.NewRateLimiter(redisClient)

	// Enable migrations
	migratecmd.MustRegister(app, app.RootCmd, migratecmd.Config{
		Automigrate: true,
	})

	// Start background tasks
	go cleanupService.Run(ctx)

	// Setup graceful shutdown
	go handleShutdown(cancel)

	if cfg.EnableMetrics {
		go serveMetrics(cfg.MetricsPort)
	}

	// Every signup starts as a regular user; admins are promoted by hand.
	app.OnRecordCreateRequest("users").BindFunc(func(e *core.RecordRequestEvent) error {
		if e.Record.GetString("role") == "" {
			e.Record.Set("role", string(models.RoleUser))
		}
		return e.Next()
	})

	// Register routes
	app.OnServe().BindFunc(func(e *core.ServeEvent) error {
		monitoring.NewMonitor(app)

		// Reservation endpoints
		e.Router.POST("/api/reservations", reservationHandler.Create).BindFunc(
			rateLimiter.AntiBot(),
			rateLimiter.Limit("booking", cfg.BookingRateLimit, cfg.BookingRateWindow),
		)
		e.Router.GET("/api/reservations", reservationHandler.List)
		e.Router.GET("/api/reservations/{id}", reservationHandler.Get)
		e.Router.PATCH("/api/reservations/{id}/cancel", reservationHandler.Cancel)
		e.Router.PATCH("/api/reservations/{id}/confirm", reservationHandler.Confirm)
		e.Router.PATCH("/api/reservations/{id}/start", reservationHandler.Start)
		e.Router.PATCH("/api/reservations/{id}/complete", reservationHandler.Complete)

		// Vehicle endpoints
		e.Router.GET("/api/vehicles", vehicleHandler.List)
		e.Router.GET("/api/vehicles/{id}", vehicleHandler.Get)
		e.Router.POST("/api/vehicles", vehicleHandler.Create)
		e.Router.PATCH("/api/vehicles/{id}/availability", vehicleHandler.SetAvailability)

		// Payment endpoints
		if paymentService != nil {
			paymentHandler := handlers.NewPaymentHandler(app, paymentService)
			e.Router.POST("/api/stripe/checkout", paymentHandler.CreateCheckout).BindFunc(
				rateLimiter.Limit("checkout", cfg.BookingRateLimit, cfg.BookingRateWindow),
			)
			e.Router.POST("/webhook/stripe", paymentHandler.Webhook)
		}

		// Admin endpoints
		e.Router.GET("/api/admin/dashboard", adminHandler.GetDashboard)
		e.Router.GET("/api/admin/reservations", adminHandler.ListReservations)
		e.Router.PATCH("/api/admin/vehicles/{id}/approve", adminHandler.ApproveVehicle)
		e.Router.PATCH("/api/admin/vehicles/{id}/reject", adminHandler.RejectVehicle)

		// Health check
		e.Router.GET("/health", func(e *core.RequestEvent) error {
			if err := utils.RedisHealthCheck(redisClient); err != nil {
				return e.JSON(503, map[string]string{
					"status": "unhealthy",
					"error":  err.Error(),
				})
			}
			return e.JSON(200, map[string]string{"status": "healthy"})
		})

		log.Println("Server routes registered")

		return e.Next()
	})

	// Start server
	if err := app.Start(); err != nil {
		return err
	}
	return nil
}

func serveMetrics(port string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	if err := http.ListenAndServe(":"+port, mux); err != nil {
		slog.Error("metrics server stopped", "error", err)
	}
}

// handleShutdown handles graceful shutdown
func handleShutdown(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Println("Shutdown signal received, cleaning up...")
	cancel()
}
