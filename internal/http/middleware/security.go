package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/straye-as/quotation-api/internal/config"
)

// SecurityHeaders adds the configured security headers to every response.
// Responses under /api/ carry scope data and prices and are marked no-store.
// The Swagger UI needs inline scripts, so /swagger/ is served without the
// Content-Security-Policy. HSTS is only sent over HTTPS, directly or behind a
// proxy that sets X-Forwarded-Proto.
func SecurityHeaders(cfg *config.SecurityConfig) func(http.Handler) http.Handler {
	static := map[string]string{}
	if cfg.ContentTypeNosniff {
		static["X-Content-Type-Options"] = "nosniff"
	}
	for name, value := range map[string]string{
		"X-Frame-Options":    cfg.FrameOptions,
		"X-XSS-Protection":   cfg.XSSProtection,
		"Referrer-Policy":    cfg.ReferrerPolicy,
		"Permissions-Policy": cfg.PermissionsPolicy,
	} {
		if value != "" {
			static[name] = value
		}
	}
	hsts := hstsValue(cfg)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			for name, value := range static {
				h.Set(name, value)
			}
			if cfg.ContentSecurityPolicy != "" && !strings.HasPrefix(r.URL.Path, "/swagger/") {
				h.Set("Content-Security-Policy", cfg.ContentSecurityPolicy)
			}
			if strings.HasPrefix(r.URL.Path, "/api/") {
				h.Set("Cache-Control", "no-store")
			}
			if hsts != "" && isHTTPS(r) {
				h.Set("Strict-Transport-Security", hsts)
			}
			h.Del("X-Powered-By")
			h.Del("Server")

			next.ServeHTTP(w, r)
		})
	}
}

func hstsValue(cfg *config.SecurityConfig) string {
	if !cfg.EnableHSTS {
		return ""
	}
	v := fmt.Sprintf("max-age=%d", cfg.HSTSMaxAge)
	if cfg.HSTSIncludeSubdomains {
		v += "; includeSubDomains"
	}
	if cfg.HSTSPreload {
		v += "; preload"
	}
	return v
}

func isHTTPS(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
