package router

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/straye-as/quotation-api/internal/auth"
	"github.com/straye-as/quotation-api/internal/config"
	"github.com/straye-as/quotation-api/internal/http/handler"
	"github.com/straye-as/quotation-api/internal/http/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	_ "github.com/straye-as/quotation-api/docs" // Import generated swagger docs
)

// ReadinessCheck reports whether a dependency can serve requests
type ReadinessCheck func(ctx context.Context) error

type Router struct {
	cfg              *config.Config
	logger           *zap.Logger
	checks           map[string]ReadinessCheck
	scopeMiddleware  *auth.Middleware
	rateLimiter      *middleware.RateLimiter
	companyHandler   *handler.CompanyHandler
	productHandler   *handler.ProductHandler
	customerHandler  *handler.CustomerHandler
	templateHandler  *handler.TemplateHandler
	quotationHandler *handler.QuotationHandler
	documentHandler  *handler.DocumentHandler
	workbookHandler  *handler.WorkbookHandler
	assetHandler     *handler.AssetHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	checks map[string]ReadinessCheck,
	scopeMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	companyHandler *handler.CompanyHandler,
	productHandler *handler.ProductHandler,
	customerHandler *handler.CustomerHandler,
	templateHandler *handler.TemplateHandler,
	quotationHandler *handler.QuotationHandler,
	documentHandler *handler.DocumentHandler,
	workbookHandler *handler.WorkbookHandler,
	assetHandler *handler.AssetHandler,
) *Router {
	return &Router{
		cfg:              cfg,
		logger:           logger,
		checks:           checks,
		scopeMiddleware:  scopeMiddleware,
		rateLimiter:      rateLimiter,
		companyHandler:   companyHandler,
		productHandler:   productHandler,
		customerHandler:  customerHandler,
		templateHandler:  templateHandler,
		quotationHandler: quotationHandler,
		documentHandler:  documentHandler,
		workbookHandler:  workbookHandler,
		assetHandler:     assetHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	if rt.cfg.Server.EnableMetrics {
		r.Use(middleware.Metrics)
	}
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP) // Apply IP-based rate limiting globally

	// Health check (liveness)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Combined readiness check (checks all dependencies)
	r.Get("/health/ready", rt.ready)

	if rt.cfg.Server.EnableMetrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rt.scopeMiddleware.Scope)
		r.Use(rt.rateLimiter.Limit)
		if rt.cfg.Server.RequestTimeout > 0 {
			r.Use(chimiddleware.Timeout(time.Duration(rt.cfg.Server.RequestTimeout) * time.Second))
		}

		r.Route("/companies", func(r chi.Router) {
			r.Get("/", rt.companyHandler.List)
			r.Post("/", rt.companyHandler.Save)
			r.Get("/{id}", rt.companyHandler.GetByID)
			r.Delete("/{id}", rt.companyHandler.Delete)
			r.Post("/{id}/default", rt.companyHandler.SetDefault)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", rt.productHandler.List)
			r.Post("/", rt.productHandler.Save)
			r.Get("/{id}", rt.productHandler.GetByID)
			r.Delete("/{id}", rt.productHandler.Delete)
		})

		r.Route("/customers", func(r chi.Router) {
			r.Get("/", rt.customerHandler.List)
			r.Post("/", rt.customerHandler.Save)
			r.Get("/{id}", rt.customerHandler.GetByID)
			r.Delete("/{id}", rt.customerHandler.Delete)
		})

		r.Route("/templates", func(r chi.Router) {
			r.Get("/", rt.templateHandler.List)
			r.Post("/", rt.templateHandler.Save)
			r.Get("/{id}", rt.templateHandler.GetByID)
			r.Delete("/{id}", rt.templateHandler.Delete)
			r.Post("/{id}/default", rt.templateHandler.SetDefault)
		})

		r.Route("/quotations", func(r chi.Router) {
			r.Get("/", rt.quotationHandler.List)
			r.Post("/", rt.quotationHandler.Save)
			r.Get("/{id}", rt.quotationHandler.GetByID)
			r.Delete("/{id}", rt.quotationHandler.Delete)
			r.Get("/{id}/items", rt.quotationHandler.GetItems)
			r.Post("/{id}/document", rt.quotationHandler.Document)
		})

		r.Get("/options", rt.quotationHandler.Options)
		r.Post("/documents", rt.documentHandler.Generate)

		r.Route("/workbook", func(r chi.Router) {
			r.Get("/", rt.workbookHandler.Summary)
			r.Get("/export", rt.workbookHandler.Export)
			r.Post("/import", rt.workbookHandler.Import)
		})

		r.Route("/assets", func(r chi.Router) {
			r.Post("/", rt.assetHandler.Upload)
			r.Get("/*", rt.assetHandler.Download)
			r.Delete("/*", rt.assetHandler.Delete)
		})
	})

	return r
}

func (rt *Router) ready(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]interface{})
	allHealthy := true

	for name, check := range rt.checks {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		err := check(ctx)
		cancel()
		if err != nil {
			rt.logger.Error("Readiness check failed", zap.String("check", name), zap.Error(err))
			checks[name] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
			allHealthy = false
			continue
		}
		checks[name] = map[string]interface{}{
			"status": "healthy",
		}
	}

	w.Header().Set("Content-Type", "application/json")
	status, label := http.StatusOK, "healthy"
	if !allHealthy {
		status, label = http.StatusServiceUnavailable, "unhealthy"
	}
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status": label,
		"checks": checks,
	})
}
