package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/cors"
	"github.com/straye-as/quotation-api/internal/auth"
	"github.com/straye-as/quotation-api/internal/config"
	"go.uber.org/zap"
)

// Browser clients pick a scope with X-Scope-ID and read the download name of
// rendered documents and workbook exports from Content-Disposition, so these
// are always part of the policy whatever the configured lists say.
var (
	requiredAllowedHeaders = []string{"Authorization", "Content-Type", auth.ScopeHeader}
	requiredExposedHeaders = []string{"Content-Disposition"}
)

// CORS returns the cross-origin policy for browser clients. Without
// configured origins every origin is accepted in development and none
// elsewhere. A "*" origin accepts any origin and is flagged outside
// development.
func CORS(cfg *config.CORSConfig, environment string, logger *zap.Logger) func(http.Handler) http.Handler {
	options := cors.Options{
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   withHeaders(cfg.AllowedHeaders, requiredAllowedHeaders),
		ExposedHeaders:   withHeaders(cfg.ExposedHeaders, requiredExposedHeaders),
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}

	dev := isDevelopment(environment)
	switch {
	case slices.Contains(cfg.AllowedOrigins, "*"):
		if !dev {
			logger.Warn("CORS allows any origin outside development",
				zap.String("environment", environment))
		}
		options.AllowOriginFunc = anyOrigin
	case len(cfg.AllowedOrigins) > 0:
		options.AllowedOrigins = cfg.AllowedOrigins
		logger.Info("CORS configured with explicit origins",
			zap.Strings("origins", cfg.AllowedOrigins))
	case dev:
		options.AllowOriginFunc = anyOrigin
		logger.Info("CORS allows any origin in development")
	default:
		// an empty AllowedOrigins means "*" to go-chi/cors
		options.AllowOriginFunc = func(*http.Request, string) bool { return false }
		logger.Warn("CORS has no allowed origins, cross-origin requests are denied",
			zap.String("environment", environment))
	}

	return cors.Handler(options)
}

func anyOrigin(_ *http.Request, origin string) bool {
	return origin != ""
}

func isDevelopment(environment string) bool {
	return environment == "" || environment == "development" || environment == "local"
}

// withHeaders appends the required headers missing from configured,
// comparing case-insensitively.
func withHeaders(configured, required []string) []string {
	out := slices.Clone(configured)
	for _, h := range required {
		if !slices.ContainsFunc(out, func(c string) bool { return strings.EqualFold(c, h) }) {
			out = append(out, h)
		}
	}
	return out
}
