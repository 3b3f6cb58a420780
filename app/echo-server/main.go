package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	httpmetrics "techshop/app/echo-server/metrics"
	"techshop/app/echo-server/router"
	"techshop/business/cart"
	"techshop/business/category"
	"techshop/business/checkout"
	"techshop/business/dashboard"
	"techshop/business/invoice"
	"techshop/business/orders"
	"techshop/business/payments"
	"techshop/business/product"
	"techshop/business/settings"
	"techshop/business/staff"
	userService "techshop/business/user"
	"techshop/internal/middleware"
	"techshop/internal/repository/notification"
	psqlRepo "techshop/internal/repository/postgres"
	redisRepo "techshop/internal/repository/redis"
	"techshop/internal/repository/xendit"
	"techshop/internal/rest"
	"techshop/pkg/config"
	"techshop/pkg/database"
	redisClient "techshop/pkg/database/redis"
	"techshop/pkg/logger"
	"techshop/pkg/metrics"
	"techshop/pkg/telemetry"
	"techshop/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting TechShop", "version", cfg.App.Version)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry.Endpoint, cfg.Telemetry.ServiceName, cfg.App.Version)
	if err != nil {
		logger.Fatal("Failed to set up tracing", "error", err)
	}

	metrics.Init()
	httpmetrics.Init()
	utils.ConfigureJWT(cfg.JWT.SecretKey, cfg.JWT.TTL)

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	if err := database.Migrate(db); err != nil {
		logger.Fatal("Failed to migrate database", "error", err)
	}

	logger.Info("Database connected successfully")

	rdb, err := redisClient.NewRedisClient(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to redis", "error", err)
	}

	// Init notification from mailjet
	mailer := notification.NewMailer(notification.MailjetConfig{
		BaseURL:     cfg.Mailjet.BaseURL,
		APIKey:      cfg.Mailjet.APIKey,
		APISecret:   cfg.Mailjet.APISecret,
		SenderEmail: cfg.Mailjet.SenderEmail,
		SenderName:  cfg.Mailjet.SenderName,
		Timeout:     cfg.Mailjet.Timeout,
	})

	xenditRepo := xendit.NewXenditRepository(
		xendit.XenditConfig{
			XenditApi:          cfg.Xendit.XenditSecretKey,
			XenditUrl:          cfg.Xendit.XenditUrl,
			SuccessRedirectUrl: cfg.Xendit.RedirectUrl,
			FailureRedirectUrl: cfg.Xendit.RedirectUrl,
		},
	)

	// Init validate
	validate := validator.New()

	// Init repo
	userRepo := psqlRepo.NewUserRepository(db)
	ordersRepo := psqlRepo.NewOrdersRepository(db)
	productsRepo := psqlRepo.NewProductRepository(db)
	paymentsRepo := psqlRepo.NewPaymentsRepository(db)
	categoryRepo := psqlRepo.NewCategoryRepository(db)
	cartRepo := psqlRepo.NewCartRepository(db)
	staffRepo := psqlRepo.NewStaffRepository(db)
	activityRepo := psqlRepo.NewActivityRepository(db)
	settingsRepo := psqlRepo.NewSettingsRepository(db)
	dashboardRepo := psqlRepo.NewDashboardRepository(db)

	var velocity checkout.VelocityTracker
	if rdb != nil {
		velocity = redisRepo.NewVelocityRepository(rdb)
		logger.Info("Redis connected, IP velocity tracked in redis")
	}

	// Init service
	settingsService := settings.NewSettingsService(settingsRepo, activityRepo)
	userService := userService.NewUserService(userRepo, validate, mailer, cfg.App.AppEmailVerificationKey, cfg.App.AppDeploymentUrl)
	categoryService := category.NewCategoryService(categoryRepo, activityRepo)
	productService := product.NewProductService(productsRepo, activityRepo)
	cartService := cart.NewCartService(cartRepo, productsRepo, settingsService)
	staffService := staff.NewStaffService(staffRepo, userRepo, activityRepo)
	dashboardService := dashboard.NewDashboardService(dashboardRepo, settingsService)
	paymentsService := payments.NewPaymentsService(paymentsRepo, xenditRepo, cfg.Xendit.XenditWebhookVerificationToken)
	invoiceService := invoice.NewInvoiceService(cfg.Invoice.Dir, cfg.App.AppDeploymentUrl, cfg.App.TrackingKey, settingsService)

	fraud := checkout.NewFraudDetector(checkout.FraudRules{
		HighValueAmount:     decimal.NewFromFloat(cfg.Fraud.HighValueAmount),
		CustomerOrderLimit:  cfg.Fraud.CustomerOrderLimit,
		CustomerOrderWindow: cfg.Fraud.CustomerOrderWindow,
		IPOrderLimit:        cfg.Fraud.IPOrderLimit,
		IPOrderWindow:       cfg.Fraud.IPOrderWindow,
		AbnormalQuantity:    cfg.Fraud.AbnormalQuantity,
	}, ordersRepo, velocity)

	checkoutService := checkout.NewCheckoutService(checkout.Dependencies{
		Orders:   ordersRepo,
		Carts:    cartRepo,
		Products: productsRepo,
		Settings: settingsService,
		Users:    userRepo,
		Fraud:    fraud,
		Payments: paymentsService,
		Invoices: invoiceService,
		Notifier: mailer,
	}, cfg.Checkout.SideEffectTimeout)

	ordersService := orders.NewOrdersService(orders.Dependencies{
		Orders:      ordersRepo,
		Invoices:    invoiceService,
		Users:       userRepo,
		Settings:    settingsService,
		Notifier:    mailer,
		Activity:    activityRepo,
		TrackingKey: cfg.App.TrackingKey,
	})

	// Init handler
	timeout := cfg.Server.Timeout
	userHandler := rest.NewUserHandler(userService, cartService, timeout)
	categoryHandler := rest.NewCategoryHandler(categoryService, timeout)
	productHandler := rest.NewProductHandler(productService, timeout)
	cartHandler := rest.NewCartHandler(cartService, timeout)
	checkoutHandler := rest.NewCheckoutHandler(checkoutService, timeout)
	ordersHandler := rest.NewOrdersHandler(ordersService, timeout)
	webhookHandler := rest.NewWebhookHandler(paymentsService, timeout)
	dashboardHandler := rest.NewDashboardHandler(dashboardService, timeout)
	adminOrdersHandler := rest.NewAdminOrdersHandler(ordersService, timeout)
	staffHandler := rest.NewStaffHandler(staffService, settingsService, timeout)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	ipExtractor, err := middleware.IPExtractor(cfg.Server.TrustedProxies)
	if err != nil {
		logger.Fatal("Invalid trusted proxy configuration", "error", err)
	}
	e.IPExtractor = ipExtractor

	// Global middleware
	e.Pre(echomiddleware.RemoveTrailingSlash())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger())
	e.Use(httpmetrics.Middleware())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:  cfg.Server.AllowOrigins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, rest.CartSessionHeader},
		ExposeHeaders: []string{rest.CartSessionHeader, echo.HeaderContentDisposition},
	}))

	e.GET("/healthz", func(c echo.Context) error {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request().Context())
		}
		if err != nil {
			logger.Error("Health check failed", err)
			return c.JSON(http.StatusServiceUnavailable, map[string]interface{}{"status": "unavailable"})
		}
		return c.JSON(http.StatusOK, map[string]interface{}{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	mw := router.Middlewares{
		AuthRequired: middleware.AuthMiddleware(),
		OptionalAuth: middleware.OptionalAuth(),
		StaffOnly:    middleware.StaffOnly(staffRepo),
		Loader:       staffRepo,
	}

	// Setup routes
	api := e.Group("/api/v1")
	router.SetupUserRoutes(api, userHandler, mw)
	router.SetupCategoryRoutes(api, categoryHandler, mw)
	router.SetupProductRoutes(api, productHandler, mw)
	router.SetupCartRoutes(api, cartHandler, mw)
	router.SetupCheckoutRoutes(api, checkoutHandler, mw)
	router.SetOrdersRoutes(api, ordersHandler, mw)
	router.SetWebhookHandler(api, webhookHandler)
	router.SetupAdminRoutes(e, mw, dashboardHandler, adminOrdersHandler, staffHandler, productHandler)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		var errs []error
		if err := e.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("server shutdown: %w", err))
		}
		if err := redisClient.CloseRedisClient(rdb); err != nil {
			errs = append(errs, fmt.Errorf("redis close: %w", err))
		}
		if sqlDB, err := db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				errs = append(errs, fmt.Errorf("database close: %w", err))
			}
		}
		if err := shutdownTracing(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("tracing shutdown: %w", err))
		}
		return errors.Join(errs...)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", "error", err)
		return
	}

	logger.Info("Server stopped")
}
