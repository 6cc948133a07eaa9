package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"police_flow_app_go/config"
	"police_flow_app_go/db"
	"police_flow_app_go/handlers"
	"police_flow_app_go/models"
	"police_flow_app_go/services"
	"police_flow_app_go/services/jobs"
	"police_flow_app_go/services/payment"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()
	logger := config.InitLogger(cfg.Environment)
	defer logger.Sync()

	// Initialize database
	if err := db.Initialize(cfg.DBPath, cfg.Environment); err != nil {
		zap.S().Fatalw("Failed to initialize database", "error", err)
	}
	defer db.Close()

	// Run migrations
	if err := db.AutoMigrate(models.All()...); err != nil {
		zap.S().Fatalw("Failed to run migrations", "error", err)
	}

	gateway, err := payment.GetProvider(cfg.PaymentProvider, payment.Options{
		ZibalMerchant:   cfg.ZibalMerchant,
		ZibalBaseURL:    cfg.ZibalBaseURL,
		StripeSecretKey: cfg.StripeSecretKey,
		Timeout:         cfg.PaymentTimeout,
	})
	if err != nil {
		zap.S().Fatalw("Failed to configure payment gateway", "provider", cfg.PaymentProvider, "error", err)
	}

	services.InitSecurityMonitor()
	notifier := services.NewNotificationService(db.DB, cfg)
	wf := services.NewWorkflow(db.DB, services.SystemClock{}, notifier).
		WithGateway(gateway, cfg.PaymentCallbackURL)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(echomiddleware.RequestLogger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())

	handlers.RegisterRoutes(e, wf, cfg)

	if cfg.SchedulerEnabled {
		scheduler := jobs.NewScheduler(wf, cfg.SchedulerTimezone)
		if err := scheduler.Start(); err != nil {
			zap.S().Fatalw("Failed to start scheduler", "error", err)
		}
		defer scheduler.Stop()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		zap.S().Infow("Server starting", "port", cfg.ServerPort, "payment_provider", gateway.Name())
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.S().Fatalw("Failed to start server", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		zap.S().Errorw("Server shutdown failed", "error", err)
	}
}
