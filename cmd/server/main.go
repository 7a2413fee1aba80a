package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	backupapp "github.com/epharmacy/backend/internal/application/backup"
	billingapp "github.com/epharmacy/backend/internal/application/billing"
	cartapp "github.com/epharmacy/backend/internal/application/cart"
	catalogapp "github.com/epharmacy/backend/internal/application/catalog"
	identityapp "github.com/epharmacy/backend/internal/application/identity"
	inventoryapp "github.com/epharmacy/backend/internal/application/inventory"
	invoiceapp "github.com/epharmacy/backend/internal/application/invoice"
	notificationapp "github.com/epharmacy/backend/internal/application/notification"
	orderapp "github.com/epharmacy/backend/internal/application/order"
	prescriptionapp "github.com/epharmacy/backend/internal/application/prescription"
	reportapp "github.com/epharmacy/backend/internal/application/report"
	"github.com/epharmacy/backend/internal/domain/billing"
	"github.com/epharmacy/backend/internal/infrastructure/auth"
	"github.com/epharmacy/backend/internal/infrastructure/cache"
	"github.com/epharmacy/backend/internal/infrastructure/config"
	"github.com/epharmacy/backend/internal/infrastructure/event"
	"github.com/epharmacy/backend/internal/infrastructure/gateway"
	"github.com/epharmacy/backend/internal/infrastructure/invoice"
	"github.com/epharmacy/backend/internal/infrastructure/logger"
	"github.com/epharmacy/backend/internal/infrastructure/persistence"
	"github.com/epharmacy/backend/internal/infrastructure/scheduler"
	"github.com/epharmacy/backend/internal/infrastructure/storage"
	"github.com/epharmacy/backend/internal/interfaces/http/handler"
	"github.com/epharmacy/backend/internal/interfaces/http/middleware"
	"github.com/epharmacy/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting pharmacy backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Redis is optional; token revocation and rate limiting fall back to
	// in-process implementations when no host is configured
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient, err = cache.NewRedisClient(&cfg.Redis)
		if err != nil {
			log.Warn("Redis unavailable, using in-memory fallbacks", zap.Error(err))
			redisClient = nil
		} else {
			log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
		}
	}

	// Initialize repositories
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	addressRepo := persistence.NewGormAddressRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	batchRepo := persistence.NewGormStockBatchRepository(db.DB)
	cartRepo := persistence.NewGormCartRepository(db.DB)
	prescriptionRepo := persistence.NewGormPrescriptionRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	refundRepo := persistence.NewGormRefundRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	notificationRepo := persistence.NewGormNotificationRepository(db.DB)
	reportRepo := persistence.NewGormReportRepository(db.DB)
	backupRepo := persistence.NewGormBackupRepository(db.DB)
	restoreRepo := persistence.NewGormRestoreRepository(db.DB)
	exporter := persistence.NewGormExporter(db.DB)
	txManager := persistence.NewGormTransactionManager(db.DB)

	// JWT service and token blacklist
	jwtService := auth.NewJWTService(cfg.JWT)
	var tokenBlacklist auth.TokenBlacklist
	if redisClient != nil {
		tokenBlacklist = auth.NewRedisTokenBlacklistWithClient(redisClient)
	} else {
		tokenBlacklist = auth.NewInMemoryTokenBlacklist()
	}

	// Object storage for prescription scans, invoices and backups
	var objectStorage storage.ObjectStorage
	switch cfg.Storage.Driver {
	case "s3":
		objectStorage, err = storage.NewS3ObjectStorage(&cfg.Storage)
		if err != nil {
			log.Fatal("Failed to initialize S3 storage", zap.Error(err))
		}
		log.Info("S3 object storage initialized",
			zap.String("bucket", cfg.Storage.Bucket),
			zap.String("region", cfg.Storage.Region),
		)
	default:
		objectStorage, err = storage.NewLocalObjectStorage(cfg.Storage.LocalDir, log)
		if err != nil {
			log.Fatal("Failed to initialize local storage", zap.Error(err))
		}
		log.Info("Local object storage initialized", zap.String("dir", cfg.Storage.LocalDir))
	}

	// Payment gateway (sandbox approves a configurable fraction of charges)
	paymentGateway := gateway.NewSandboxGateway(cfg.Payment.SuccessRate, cfg.Payment.Timeout, log)

	// Invoice PDF renderer backed by headless Chrome
	invoiceRenderer := invoice.NewChromeRenderer(invoice.RendererConfig{
		Timeout:   cfg.Invoice.RenderTimeout,
		NoSandbox: true,
		Seller: invoice.Seller{
			Name:    cfg.Invoice.SellerName,
			Address: cfg.Invoice.SellerAddress,
			GSTIN:   cfg.Invoice.SellerGSTIN,
		},
	}, log)

	// Event bus wires cross-context reactions: notifications and COD settlement
	eventBus := event.NewInMemoryEventBus(log)

	// Initialize application services
	authService := identityapp.NewAuthService(customerRepo, jwtService, tokenBlacklist, eventBus, log)
	customerService := identityapp.NewCustomerService(customerRepo, addressRepo, eventBus, log)
	categoryService := catalogapp.NewCategoryService(categoryRepo, productRepo, log)
	productService := catalogapp.NewProductService(productRepo, categoryRepo, eventBus, log)
	stockService := inventoryapp.NewStockService(batchRepo, productRepo, eventBus, log)
	cartService := cartapp.NewCartService(cartRepo, productRepo, batchRepo, log)
	prescriptionService := prescriptionapp.NewService(prescriptionRepo, objectStorage, eventBus, cfg.Storage.URLTTL, log)
	orderService := orderapp.NewService(orderRepo, cartRepo, productRepo, batchRepo, prescriptionRepo, customerRepo, addressRepo, txManager, eventBus, log)
	paymentService := billingapp.NewPaymentService(paymentRepo, orderRepo, paymentGateway, eventBus, log)
	refundService := billingapp.NewRefundService(refundRepo, paymentRepo, orderRepo, billing.DefaultCancellationFeePercent, eventBus, log)
	notificationService := notificationapp.NewService(notificationRepo, customerRepo, log)
	reportService := reportapp.NewService(reportRepo, log)
	invoiceService := invoiceapp.NewService(invoiceRepo, orderRepo, invoiceRenderer, objectStorage, log)
	backupService := backupapp.NewService(backupRepo, restoreRepo, exporter, objectStorage, log)

	// Register event handlers for cross-context integration
	// Order lifecycle -> customer notifications
	orderEventsHandler := notificationapp.NewOrderEventsHandler(notificationRepo, log)
	eventBus.Subscribe(orderEventsHandler, orderEventsHandler.EventTypes()...)

	// Payment and refund outcomes -> customer notifications
	billingEventsHandler := notificationapp.NewBillingEventsHandler(notificationRepo, log)
	eventBus.Subscribe(billingEventsHandler, billingEventsHandler.EventTypes()...)

	// Prescription review outcomes -> customer notifications
	prescriptionEventsHandler := notificationapp.NewPrescriptionEventsHandler(notificationRepo, log)
	eventBus.Subscribe(prescriptionEventsHandler, prescriptionEventsHandler.EventTypes()...)

	// Order delivery -> settle pending cash-on-delivery payments
	codSettlementHandler := billingapp.NewCODSettlementHandler(paymentService, log)
	eventBus.Subscribe(codSettlementHandler, codSettlementHandler.EventTypes()...)

	log.Info("Event handlers registered",
		zap.Strings("order_events", orderEventsHandler.EventTypes()),
		zap.Strings("billing_events", billingEventsHandler.EventTypes()),
		zap.Strings("prescription_events", prescriptionEventsHandler.EventTypes()),
		zap.Strings("cod_settlement_events", codSettlementHandler.EventTypes()),
	)

	// Start event bus
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Background jobs: near-expiry batch sweep and automatic backups
	if cfg.Scheduler.Enabled {
		jobs := []scheduler.Job{
			scheduler.NewExpiryJob(
				batchRepo,
				notificationRepo,
				customerRepo,
				stockService,
				cfg.Scheduler.ExpiryCheckInterval,
				cfg.Scheduler.ExpiryAlertDays,
				log,
			),
		}
		if cfg.Backup.Enabled {
			jobs = append(jobs, scheduler.NewBackupJob(backupService, cfg.Backup.Interval, log))
		}
		jobScheduler := scheduler.NewScheduler(scheduler.Config{JobTimeout: cfg.Scheduler.JobTimeout}, log, jobs...)
		if err := jobScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start scheduler", zap.Error(err))
		}
		defer func() {
			if err := jobScheduler.Stop(context.Background()); err != nil {
				log.Error("Error stopping scheduler", zap.Error(err))
			}
		}()
		log.Info("Scheduler started",
			zap.Duration("expiry_check_interval", cfg.Scheduler.ExpiryCheckInterval),
			zap.Int("expiry_alert_days", cfg.Scheduler.ExpiryAlertDays),
			zap.Bool("backup_enabled", cfg.Backup.Enabled),
		)
	}

	// Initialize HTTP handlers
	authHandler := handler.NewAuthHandler(authService)
	customerHandler := handler.NewCustomerHandler(customerService)
	categoryHandler := handler.NewCategoryHandler(categoryService)
	productHandler := handler.NewProductHandler(productService)
	inventoryHandler := handler.NewInventoryHandler(stockService)
	cartHandler := handler.NewCartHandler(cartService)
	prescriptionHandler := handler.NewPrescriptionHandler(prescriptionService)
	orderHandler := handler.NewOrderHandler(orderService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	refundHandler := handler.NewRefundHandler(refundService)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	reportHandler := handler.NewReportHandler(reportService)
	backupHandler := handler.NewBackupHandler(backupService)
	systemHandler := handler.NewSystemHandler(db, cfg.App.Name)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	// 7. RateLimit - Apply rate limiting (if enabled)
	// 8. JWT - Authenticate API requests
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Rate limiting (if enabled)
	if cfg.HTTP.RateLimitEnabled {
		var limiter cache.RateLimiter
		if redisClient != nil {
			limiter = cache.NewRedisRateLimiter(redisClient, cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow, log)
		} else {
			limiter = cache.NewInMemoryRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		}
		engine.Use(middleware.RateLimit(limiter, cfg.HTTP.RateLimitRequests, log))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// JWT authentication for API routes
	// Public endpoints: registration, login, token refresh, storefront catalog
	engine.Use(middleware.JWTAuthWithConfig(middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: tokenBlacklist,
		SkipPaths: []string{
			"/health",
			"/api/v1/auth/register",
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
		},
		SkipPathPrefixes: []string{
			"/api/v1/catalog",
		},
		Logger: log,
	}))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", systemHandler.Health)

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Authentication and session routes
	authRoutes := router.NewGroup("/auth")
	authRoutes.POST("/register", authHandler.Register)
	authRoutes.POST("/login", authHandler.Login)
	authRoutes.POST("/refresh", authHandler.Refresh)
	authRoutes.POST("/logout", authHandler.Logout)
	authRoutes.POST("/change-password", authHandler.ChangePassword)
	authRoutes.GET("/me", authHandler.Me)

	// Customer profile and address book
	profileRoutes := router.NewGroup("/profile")
	profileRoutes.GET("", customerHandler.GetProfile)
	profileRoutes.PUT("", customerHandler.UpdateProfile)
	profileRoutes.GET("/addresses", customerHandler.ListAddresses)
	profileRoutes.POST("/addresses", customerHandler.AddAddress)
	profileRoutes.PUT("/addresses/:id", customerHandler.UpdateAddress)
	profileRoutes.POST("/addresses/:id/default", customerHandler.SetDefaultAddress)
	profileRoutes.DELETE("/addresses/:id", customerHandler.DeleteAddress)

	// Public storefront catalog (read-only, no authentication)
	catalogRoutes := router.NewGroup("/catalog")
	catalogRoutes.GET("/categories", categoryHandler.List)
	catalogRoutes.GET("/categories/:id", categoryHandler.Get)
	catalogRoutes.GET("/products", productHandler.List)
	catalogRoutes.GET("/products/:id", productHandler.Get)

	// Shopping cart
	cartRoutes := router.NewGroup("/cart")
	cartRoutes.GET("", cartHandler.Get)
	cartRoutes.DELETE("", cartHandler.Clear)
	cartRoutes.POST("/items", cartHandler.AddItem)
	cartRoutes.PUT("/items/:id", cartHandler.UpdateItem)
	cartRoutes.DELETE("/items/:id", cartHandler.RemoveItem)

	// Prescription upload and retrieval
	prescriptionRoutes := router.NewGroup("/prescriptions")
	prescriptionRoutes.POST("", prescriptionHandler.Upload)
	prescriptionRoutes.GET("", prescriptionHandler.ListOwn)
	prescriptionRoutes.GET("/:id", prescriptionHandler.Get)
	prescriptionRoutes.GET("/:id/scan", prescriptionHandler.DownloadScan)

	// Orders, per-order payments and invoices
	orderRoutes := router.NewGroup("/orders")
	orderRoutes.POST("", orderHandler.Place)
	orderRoutes.GET("", orderHandler.ListOwn)
	orderRoutes.GET("/:id", orderHandler.Get)
	orderRoutes.POST("/:id/cancel", orderHandler.Cancel)
	orderRoutes.GET("/:id/payments", paymentHandler.ListForOrder)
	orderRoutes.POST("/:id/invoice", invoiceHandler.Generate)
	orderRoutes.GET("/:id/invoice", invoiceHandler.Get)
	orderRoutes.GET("/:id/invoice/download", invoiceHandler.Download)

	// Payments
	paymentRoutes := router.NewGroup("/payments")
	paymentRoutes.POST("", paymentHandler.Pay)
	paymentRoutes.GET("", paymentHandler.ListOwn)

	// Refunds
	refundRoutes := router.NewGroup("/refunds")
	refundRoutes.POST("", refundHandler.Request)
	refundRoutes.GET("", refundHandler.ListOwn)
	refundRoutes.GET("/:id", refundHandler.Get)

	// Notifications
	notificationRoutes := router.NewGroup("/notifications")
	notificationRoutes.GET("", notificationHandler.ListOwn)
	notificationRoutes.GET("/unread-count", notificationHandler.UnreadCount)
	notificationRoutes.POST("/:id/read", notificationHandler.MarkRead)
	notificationRoutes.POST("/read-all", notificationHandler.MarkAllRead)

	// Administrative routes, all behind the admin role check
	adminRoutes := router.NewGroup("/admin")
	adminRoutes.Use(middleware.RequireAdmin())

	adminCustomers := adminRoutes.Group("/customers")
	adminCustomers.GET("", customerHandler.List)
	adminCustomers.POST("/:id/activate", customerHandler.Activate)
	adminCustomers.POST("/:id/deactivate", customerHandler.Deactivate)

	adminCatalog := adminRoutes.Group("/catalog")
	adminCatalog.GET("/categories", categoryHandler.ListAll)
	adminCatalog.POST("/categories", categoryHandler.Create)
	adminCatalog.PUT("/categories/:id", categoryHandler.Update)
	adminCatalog.POST("/categories/:id/activate", categoryHandler.Activate)
	adminCatalog.POST("/categories/:id/deactivate", categoryHandler.Deactivate)
	adminCatalog.GET("/products", productHandler.ListAll)
	adminCatalog.POST("/products", productHandler.Create)
	adminCatalog.PUT("/products/:id", productHandler.Update)
	adminCatalog.POST("/products/:id/activate", productHandler.Activate)
	adminCatalog.POST("/products/:id/deactivate", productHandler.Deactivate)

	adminInventory := adminRoutes.Group("/inventory")
	adminInventory.POST("/batches", inventoryHandler.AddBatch)
	adminInventory.GET("/batches", inventoryHandler.ListBatches)
	adminInventory.GET("/batches/:id", inventoryHandler.GetBatch)
	adminInventory.PUT("/batches/:id", inventoryHandler.UpdateBatch)
	adminInventory.POST("/batches/:id/adjust", inventoryHandler.AdjustQuantity)
	adminInventory.POST("/batches/:id/deactivate", inventoryHandler.DeactivateBatch)
	adminInventory.GET("/products/:id/stock", inventoryHandler.GetProductStock)
	adminInventory.GET("/low-stock", inventoryHandler.ListLowStock)
	adminInventory.GET("/expiring", inventoryHandler.ListExpiring)

	adminPrescriptions := adminRoutes.Group("/prescriptions")
	adminPrescriptions.GET("", prescriptionHandler.ListAll)
	adminPrescriptions.POST("/:id/approve", prescriptionHandler.Approve)
	adminPrescriptions.POST("/:id/reject", prescriptionHandler.Reject)

	adminOrders := adminRoutes.Group("/orders")
	adminOrders.GET("", orderHandler.ListAll)
	adminOrders.GET("/stats", orderHandler.Stats)
	adminOrders.PUT("/:id/status", orderHandler.UpdateStatus)

	adminRefunds := adminRoutes.Group("/refunds")
	adminRefunds.GET("", refundHandler.ListAll)
	adminRefunds.POST("/:id/process", refundHandler.Process)
	adminRefunds.POST("/:id/reject", refundHandler.Reject)

	adminRoutes.POST("/notifications/broadcast", notificationHandler.Broadcast)

	adminReports := adminRoutes.Group("/reports")
	adminReports.GET("/sales", reportHandler.Sales)
	adminReports.GET("/inventory", reportHandler.Inventory)
	adminReports.GET("/customers", reportHandler.Customers)
	adminReports.GET("/prescriptions", reportHandler.Prescriptions)

	adminBackups := adminRoutes.Group("/backups")
	adminBackups.POST("", backupHandler.Run)
	adminBackups.GET("", backupHandler.List)
	adminBackups.GET("/:id", backupHandler.Get)
	adminBackups.GET("/:id/download", backupHandler.Download)
	adminBackups.POST("/:id/restore", backupHandler.Restore)

	adminRoutes.GET("/system/db-stats", systemHandler.DBStats)

	// Register all route groups
	r.Register(authRoutes).
		Register(profileRoutes).
		Register(catalogRoutes).
		Register(cartRoutes).
		Register(prescriptionRoutes).
		Register(orderRoutes).
		Register(paymentRoutes).
		Register(refundRoutes).
		Register(notificationRoutes).
		Register(adminRoutes)

	// Setup routes
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
