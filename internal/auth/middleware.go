package auth

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/straye-as/quotation-api/internal/config"
	"github.com/straye-as/quotation-api/internal/domain"
	"github.com/straye-as/quotation-api/internal/storage"
	"go.uber.org/zap"
)

// ScopeHeader names the scope when no token is presented
const ScopeHeader = "X-Scope-ID"

// Middleware resolves the workbook scope of each request
type Middleware struct {
	validator        *TokenValidator
	allowHeaderScope bool
	defaultScope     string
	logger           *zap.Logger
}

// NewMiddleware creates a new scope middleware
func NewMiddleware(cfg *config.AuthConfig, logger *zap.Logger) *Middleware {
	defaultScope := cfg.DefaultScope
	if defaultScope == "" {
		defaultScope = "default"
	}
	return &Middleware{
		validator:        NewTokenValidator(cfg.JWTSecret),
		allowHeaderScope: cfg.AllowHeaderScope,
		defaultScope:     defaultScope,
		logger:           logger,
	}
}

// Scope resolves the scope from a bearer token, then the scope header, then
// the configured default, and stores it in the request context
func (m *Middleware) Scope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scope := &RequestScope{ID: m.defaultScope, Source: ScopeFromDefault}

		authHeader := r.Header.Get("Authorization")
		switch {
		case authHeader != "":
			tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok {
				m.reject(w, http.StatusUnauthorized, "Authorization header must use the Bearer scheme")
				return
			}
			sub, err := m.validator.ValidateToken(strings.TrimSpace(tokenString))
			if err != nil {
				m.logger.Warn("token validation failed",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Error(err))
				m.reject(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}
			scope = &RequestScope{ID: sub, Source: ScopeFromToken}
		case m.allowHeaderScope && r.Header.Get(ScopeHeader) != "":
			scope = &RequestScope{ID: r.Header.Get(ScopeHeader), Source: ScopeFromHeader}
		}

		if !storage.ValidScope(scope.ID) {
			m.reject(w, http.StatusBadRequest, "Invalid scope identifier")
			return
		}

		// an outer middleware may have reserved a scope for its own use
		if reserved, ok := FromContext(r.Context()); ok {
			*reserved = *scope
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithScope(r.Context(), scope)))
	})
}

func (m *Middleware) reject(w http.ResponseWriter, status int, detail string) {
	errorType := domain.ErrorTypeBadRequest
	if status == http.StatusUnauthorized {
		errorType = domain.ErrorTypeUnauthorized
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(domain.APIError{
		Type:   errorType,
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	})
}
