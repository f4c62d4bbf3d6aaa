package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/smarttransit/bus-booking/internal/config"
	"github.com/smarttransit/bus-booking/internal/database"
	"github.com/smarttransit/bus-booking/internal/handlers"
	"github.com/smarttransit/bus-booking/internal/metrics"
	"github.com/smarttransit/bus-booking/internal/middleware"
	"github.com/smarttransit/bus-booking/internal/services"
	"github.com/smarttransit/bus-booking/internal/web"
	"github.com/smarttransit/bus-booking/pkg/events"
	"github.com/smarttransit/bus-booking/pkg/jwt"
	"github.com/smarttransit/bus-booking/pkg/payment"
	"github.com/smarttransit/bus-booking/pkg/validator"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting bus booking service")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Set log level
	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	location, err := cfg.Server.Location()
	if err != nil {
		logger.Fatalf("Failed to load timezone: %v", err)
	}

	fares, err := config.LoadFareTable(cfg.Fares.Path)
	if err != nil {
		logger.Fatalf("Failed to load fare table: %v", err)
	}
	logger.WithFields(logrus.Fields{
		"currency":   fares.Currency,
		"seat_price": fares.SeatPrice,
		"stops":      fares.Stops,
	}).Info("Fare table loaded")

	// Initialize booking store
	logger.WithField("driver", cfg.Database.Driver).Info("Connecting to booking store...")
	store, closeStore, err := openStore(cfg.Database, logger)
	if err != nil {
		logger.Fatalf("Failed to open booking store: %v", err)
	}
	defer closeStore()
	logger.Info("Booking store ready")

	// Initialize payment gateway
	gateway, err := newGateway(cfg.Payment)
	if err != nil {
		logger.Fatalf("Failed to initialize payment gateway: %v", err)
	}
	logger.WithField("gateway", gateway.GetName()).Info("Payment gateway initialized")

	publisher, err := newPublisher(cfg.Kafka, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize event publisher: %v", err)
	}
	defer publisher.Close()

	metrics.Register()

	// Initialize services
	logger.Info("Initializing services...")
	bookingValidator := validator.NewBookingValidator(fares)
	bookingService := services.NewBookingService(store, gateway, bookingValidator, publisher, services.BookingServiceConfig{
		Location:         location,
		RequireSignature: cfg.Payment.RequireSignature,
	}, logger)
	orderService := services.NewOrderService(gateway, fares, logger)
	importService := services.NewImportService(store, bookingValidator, publisher, location, logger)
	ticketPDFService := services.NewTicketPDFService(bookingService, fares)

	var jwtService *jwt.Service
	if cfg.Admin.JWTSecret != "" {
		jwtService = jwt.NewService(cfg.Admin.JWTSecret, cfg.Admin.TokenExpiry)
		logger.Info("Admin authentication enabled for /get and /upload-data")
	} else {
		logger.Warn("ADMIN_JWT_SECRET not set, /get and /upload-data are open")
	}
	adminAuthService := services.NewAdminAuthService(cfg.Admin.Username, cfg.Admin.PasswordHash, jwtService, logger)

	// Setup Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))

	// CORS configuration
	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: !slices.Contains(cfg.CORS.AllowedOrigins, "*"),
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	templates, err := web.Templates()
	if err != nil {
		logger.Fatalf("Failed to load templates: %v", err)
	}
	router.SetHTMLTemplate(templates)
	router.StaticFS("/static", web.Static())

	// Health check and metrics
	router.GET("/health", handlers.HealthCheck(store, version))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handlers.RegisterRoutes(router, &handlers.Handlers{
		Pages:     handlers.NewPageHandler(fares, gateway),
		Orders:    handlers.NewOrderHandler(orderService, logger),
		Bookings:  handlers.NewBookingHandler(bookingService, logger),
		Imports:   handlers.NewImportHandler(importService, cfg.Upload.MaxBytes, logger),
		Tickets:   handlers.NewTicketHandler(ticketPDFService, logger),
		AdminAuth: handlers.NewAdminAuthHandler(adminAuthService, logger),
	}, middleware.AdminAuth(jwtService, logger))

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

// openStore connects the configured booking store and returns a func that releases it
func openStore(cfg config.DatabaseConfig, logger *logrus.Logger) (database.BookingStore, func(), error) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	switch cfg.Driver {
	case "postgres":
		db, err := database.NewConnection(cfg)
		if err != nil {
			return nil, nil, err
		}
		if err := db.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return database.NewBookingRepository(db.DB, logger), func() { db.Close() }, nil

	case "mongo":
		repo, err := database.NewMongoBookingRepository(ctx, cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() {
			closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer closeCancel()
			if err := repo.Close(closeCtx); err != nil {
				logger.WithError(err).Warn("Failed to disconnect from MongoDB")
			}
		}, nil

	case "memory":
		logger.Warn("Using in-memory booking store, bookings are lost on restart")
		return database.NewMemoryBookingRepository(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func newGateway(cfg config.PaymentConfig) (payment.Gateway, error) {
	switch cfg.Provider {
	case "razorpay":
		return payment.NewRazorpayGateway(payment.RazorpayConfig{
			KeyID:     cfg.RazorpayKeyID,
			KeySecret: cfg.RazorpayKeySecret,
		})
	case "stripe":
		return payment.NewStripeGateway(&payment.StripeGatewayConfig{
			SecretKey:      cfg.StripeSecretKey,
			PublishableKey: cfg.StripePublishableKey,
		})
	case "mock":
		return payment.NewMockGateway(nil), nil
	default:
		return nil, fmt.Errorf("unsupported payment provider %q", cfg.Provider)
	}
}

func newPublisher(cfg config.KafkaConfig, logger *logrus.Logger) (events.Publisher, error) {
	if len(cfg.Brokers) == 0 {
		logger.Info("KAFKA_BROKERS not set, booking events are not published")
		return events.NoopPublisher{}, nil
	}
	publisher, err := events.NewKafkaPublisher(cfg.Brokers, cfg.Topic, logger)
	if err != nil {
		return nil, err
	}
	logger.WithFields(logrus.Fields{
		"brokers": cfg.Brokers,
		"topic":   cfg.Topic,
	}).Info("Publishing booking events to Kafka")
	return publisher, nil
}
