package main

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/shopbill/shopbill-api/internal/application/service"
	"github.com/shopbill/shopbill-api/internal/config"
	"github.com/shopbill/shopbill-api/internal/infrastructure/cache"
	"github.com/shopbill/shopbill-api/internal/infrastructure/database"
	"github.com/shopbill/shopbill-api/internal/infrastructure/repository"
	"github.com/shopbill/shopbill-api/internal/presentation/http/handler"
	"github.com/shopbill/shopbill-api/internal/presentation/http/routes"
	"github.com/shopbill/shopbill-api/pkg/email"
	"github.com/shopbill/shopbill-api/pkg/printer"
	"github.com/shopbill/shopbill-api/pkg/utils"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Configure the logger
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	if cfg.App.Debug {
		log.SetLevel(logrus.DebugLevel)
	}

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.WithError(err).Fatal("failed to run migrations")
	}

	// Seed default data
	if err := database.SeedDefaultData(db); err != nil {
		log.WithError(err).Warn("failed to seed default data")
	}

	// Initialize cache (Redis when enabled, otherwise a no-op cache)
	appCache := cache.NewNoopCache()
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.WithError(err).Warn("redis unreachable, falling back to no-op cache")
		} else {
			appCache = cache.NewRedisCache(redisClient)
			log.Info("connected to Redis")
		}
	}

	// Initialize JWT manager
	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.ExpiryHours,
		cfg.JWT.RefreshExpiryHours,
	)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	passwordResetRepo := repository.NewPasswordResetTokenRepository(db)
	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)
	backupRepo := repository.NewBackupRepository(db)

	// Initialize email service
	emailService := email.NewEmailService(email.EmailConfig{
		SMTPHost:     cfg.Email.SMTPHost,
		SMTPPort:     cfg.Email.SMTPPort,
		SMTPUsername: cfg.Email.SMTPUser,
		SMTPPassword: cfg.Email.SMTPPass,
		FromName:     cfg.Email.FromName,
		FromEmail:    cfg.Email.FromAddress,
		FrontendURL:  cfg.Email.FrontendURL,
	})

	// Initialize thermal printer
	thermalPrinter, err := printer.NewPrinterFromConfig(
		cfg.Printer.Type,
		cfg.Printer.Device,
		cfg.Printer.Address,
	)
	if err != nil {
		log.WithError(err).Warn("failed to initialize printer, using null printer")
		thermalPrinter = printer.NewNullPrinter()
	}

	// Initialize services
	authService := service.NewAuthService(userRepo, passwordResetRepo, jwtManager, emailService)
	productService := service.NewProductService(productRepo, categoryRepo)
	categoryService := service.NewCategoryService(categoryRepo)
	saleService := service.NewSaleService(saleRepo, productRepo, customerRepo)
	customerService := service.NewCustomerService(customerRepo)
	reportService := service.NewReportService(saleRepo)
	dashboardService := service.NewDashboardService(analyticsRepo, productRepo, customerRepo, saleRepo, appCache)
	settingsService := service.NewSettingsService(settingsRepo)
	userService := service.NewUserService(userRepo)
	printerService := service.NewPrinterService(thermalPrinter, saleRepo, settingsRepo, cfg.Printer.Type, cfg.Printer.Width)
	backupService := service.NewBackupService(backupRepo, productRepo, saleRepo, customerRepo)

	// Background jobs
	scheduler := cron.New()

	// Purge expired idempotency keys and reset tokens every hour.
	scheduler.AddFunc("@hourly", func() {
		ctx := context.Background()
		if purged, err := idempotencyRepo.DeleteExpired(ctx); err != nil {
			log.WithError(err).Warn("failed to purge expired idempotency keys")
		} else if purged > 0 {
			log.WithField("purged", purged).Info("removed expired idempotency keys")
		}
		if err := passwordResetRepo.DeleteExpired(ctx); err != nil {
			log.WithError(err).Warn("failed to purge expired password reset tokens")
		}
	})

	// Log a low stock summary every morning at 08:00.
	scheduler.AddFunc("0 8 * * *", func() {
		products, err := productRepo.GetLowStock(context.Background())
		if err != nil {
			log.WithError(err).Warn("failed to check low stock")
			return
		}
		if len(products) > 0 {
			log.WithField("count", len(products)).Warn("products at or below low stock threshold")
		}
	})

	scheduler.Start()
	defer scheduler.Stop()

	// Initialize handlers
	handlers := &routes.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		Product:   handler.NewProductHandler(productService),
		Category:  handler.NewCategoryHandler(categoryService),
		Sale:      handler.NewSaleHandler(saleService),
		Customer:  handler.NewCustomerHandler(customerService),
		Report:    handler.NewReportHandler(reportService),
		Dashboard: handler.NewDashboardHandler(dashboardService),
		Settings:  handler.NewSettingsHandler(settingsService),
		User:      handler.NewUserHandler(userService),
		Printer:   handler.NewPrinterHandler(printerService),
		Backup:    handler.NewBackupHandler(backupService),
	}

	// Setup routes
	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		Logger:          log,
		IdempotencyRepo: idempotencyRepo,
	})

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}

	log.WithFields(logrus.Fields{
		"service": cfg.App.Name,
		"port":    port,
		"env":     cfg.App.Env,
	}).Info("starting server")

	if err := router.Run(":" + port); err != nil {
		log.WithError(err).Fatal("failed to start server")
	}
}
