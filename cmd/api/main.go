package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/straye-as/quotation-api/docs"
	"github.com/straye-as/quotation-api/internal/auth"
	"github.com/straye-as/quotation-api/internal/config"
	"github.com/straye-as/quotation-api/internal/database"
	"github.com/straye-as/quotation-api/internal/domain"
	"github.com/straye-as/quotation-api/internal/http/handler"
	"github.com/straye-as/quotation-api/internal/http/middleware"
	"github.com/straye-as/quotation-api/internal/http/router"
	"github.com/straye-as/quotation-api/internal/jobs"
	"github.com/straye-as/quotation-api/internal/logger"
	"github.com/straye-as/quotation-api/internal/render"
	"github.com/straye-as/quotation-api/internal/repository"
	"github.com/straye-as/quotation-api/internal/service"
	"github.com/straye-as/quotation-api/internal/storage"
	"github.com/straye-as/quotation-api/internal/workbook"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// @title Straye Quotation API
// @version 1.0
// @description Sales quotation records kept in a per-scope workbook, with document rendering
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@straye.io

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description HS256 token whose subject names the workbook scope
// @Security BearerAuth

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	switch basicCfg.App.Environment {
	case "staging", "production":
		if host := os.Getenv("SWAGGER_HOST"); host != "" {
			docs.SwaggerInfo.Host = host
		}
	default:
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	}

	// In development: uses environment variables
	// In staging/production: fetches from Azure Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	// Database is only needed when workbooks are kept in SQL
	var db *gorm.DB
	if cfg.Storage.Mode == "database" {
		db, err = database.NewDatabase(&cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := database.Migrate(db, cfg.Database.Driver); err != nil {
			return err
		}
		log.Info("Database connected", zap.String("driver", cfg.Database.Driver))
	}

	values, err := storage.NewValueStore(&cfg.Storage, db, log)
	if err != nil {
		return fmt.Errorf("failed to initialize workbook storage: %w", err)
	}
	assets, err := storage.NewStorage(&cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize asset storage: %w", err)
	}

	log.Info("Storage initialized",
		zap.String("mode", cfg.Storage.Mode),
		zap.Bool("optimistic_locking", cfg.Storage.OptimisticLocking),
	)

	store := workbook.NewStore(values, cfg.Storage.OptimisticLocking, log)

	// Initialize repositories
	companyRepo := repository.NewCompanyRepository(store)
	productRepo := repository.NewProductRepository(store)
	customerRepo := repository.NewCustomerRepository(store)
	templateRepo := repository.NewTemplateRepository(store)
	quotationRepo := repository.NewQuotationRepository(store)
	quotationItemRepo := repository.NewQuotationItemRepository(store)

	renderer, err := render.NewRenderer(&cfg.Render, render.NewStorageImages(assets), log)
	if err != nil {
		return fmt.Errorf("failed to initialize renderer: %w", err)
	}

	// Initialize services
	companyService := service.NewCompanyService(companyRepo, log)
	productService := service.NewProductService(productRepo, log)
	customerService := service.NewCustomerService(customerRepo, log)
	templateService := service.NewTemplateService(templateRepo, log)
	quotationService := service.NewQuotationService(quotationRepo, quotationItemRepo, productRepo, domain.QuotationOptions{
		Currencies: cfg.Quotation.Currencies,
		Incoterms:  cfg.Quotation.Incoterms,
	}, log)
	documentService := service.NewDocumentService(quotationRepo, companyRepo, customerRepo, productRepo, renderer, log)
	workbookService := service.NewWorkbookService(store, cfg.Storage.MaxUploadSizeMB<<20, log)
	assetService := service.NewAssetService(assets, log)
	expiryService := service.NewExpiryService(store, quotationRepo, log)

	// Initialize middleware
	scopeMiddleware := auth.NewMiddleware(&cfg.Auth, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Initialize handlers
	companyHandler := handler.NewCompanyHandler(companyService, log)
	productHandler := handler.NewProductHandler(productService, log)
	customerHandler := handler.NewCustomerHandler(customerService, log)
	templateHandler := handler.NewTemplateHandler(templateService, log)
	quotationHandler := handler.NewQuotationHandler(quotationService, documentService, log)
	documentHandler := handler.NewDocumentHandler(documentService, log)
	workbookHandler := handler.NewWorkbookHandler(workbookService, log)
	assetHandler := handler.NewAssetHandler(assetService, cfg.Storage.MaxUploadSizeMB, log)

	checks := map[string]router.ReadinessCheck{
		"storage": func(ctx context.Context) error {
			_, err := values.Scopes(ctx)
			return err
		},
	}
	if db != nil {
		checks["database"] = func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
	}

	rt := router.NewRouter(
		cfg,
		log,
		checks,
		scopeMiddleware,
		rateLimiter,
		companyHandler,
		productHandler,
		customerHandler,
		templateHandler,
		quotationHandler,
		documentHandler,
		workbookHandler,
		assetHandler,
	)

	// Initialize and start scheduler for background jobs
	var scheduler *jobs.Scheduler
	if cfg.Jobs.ExpirySweepEnabled {
		scheduler = jobs.NewScheduler(log)

		if err := jobs.RegisterExpirySweepJob(
			scheduler,
			expiryService,
			log,
			cfg.Jobs.ExpirySweepCron,
			cfg.Jobs.ExpirySweepTimeoutDuration(),
			cfg.Jobs.ExpirySweepOnStartup,
		); err != nil {
			log.Error("Failed to register expiry sweep job", zap.Error(err))
			scheduler = nil
		} else {
			scheduler.Start()
			next, _ := scheduler.NextRun(jobs.ExpirySweepJobName)
			log.Info("Scheduler started with expiry sweep job",
				zap.String("cron_expr", cfg.Jobs.ExpirySweepCron),
				zap.Duration("timeout", cfg.Jobs.ExpirySweepTimeoutDuration()),
				zap.Time("next_run", next),
			)
		}
	} else {
		log.Info("Quotation expiry sweep disabled")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		if scheduler != nil {
			ctx := scheduler.Stop()
			<-ctx.Done()
			log.Info("Scheduler stopped")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		if db != nil {
			if sqlDB, err := db.DB(); err == nil {
				if err := sqlDB.Close(); err != nil {
					log.Warn("Error closing database connection", zap.Error(err))
				}
			}
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
