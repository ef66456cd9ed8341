package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/straye-as/quotation-api/internal/secrets"
	"go.uber.org/zap"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Storage   StorageConfig
	Secrets   SecretsConfig
	Logging   LoggingConfig
	Server    ServerConfig
	CORS      CORSConfig
	Security  SecurityConfig
	RateLimit RateLimitConfig
	Auth      AuthConfig
	Render    RenderConfig
	Quotation QuotationConfig
	Jobs      JobsConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Port        int
}

// DatabaseConfig is only used when the workbook store runs in "database" mode
type DatabaseConfig struct {
	// Driver is "postgres" or "sqlite"
	Driver          string
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	SSLMode         string
	SQLitePath      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
}

// StorageConfig selects the backing store for workbooks and for uploaded assets
type StorageConfig struct {
	// Mode is "local", "azure" (alias "cloud") or "database"
	Mode                  string
	LocalBasePath         string
	CloudConnectionString string
	CloudContainer        string
	// AssetContainer holds uploaded logos and product images
	AssetContainer    string
	MaxUploadSizeMB   int64
	OptimisticLocking bool
}

type SecretsConfig struct {
	// Source determines where secrets are loaded from: "environment", "vault", or "auto"
	Source       string
	KeyVaultName string
	CacheEnabled bool
	CacheTTL     int // seconds
}

type LoggingConfig struct {
	Level  string
	Format string
}

type ServerConfig struct {
	ReadTimeout    int
	WriteTimeout   int
	RequestTimeout int
	EnableSwagger  bool
	EnableMetrics  bool
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// SecurityConfig holds security header configuration
type SecurityConfig struct {
	EnableHSTS            bool
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool
	HSTSPreload           bool
	ContentSecurityPolicy string
	FrameOptions          string
	ContentTypeNosniff    bool
	XSSProtection         string
	ReferrerPolicy        string
	PermissionsPolicy     string
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled bool
	// RequestsPerMinute is the limit applied per scope, or per IP before a scope is known
	RequestsPerMinute int
	WhitelistIPs      []string
	WhitelistPaths    []string
}

// AuthConfig controls how the workbook scope is resolved for a request.
// The API does not authenticate users; a verified token only names the scope.
type AuthConfig struct {
	JWTSecret        string
	AllowHeaderScope bool
	DefaultScope     string
}

// RenderConfig controls the document rasterization pipeline
type RenderConfig struct {
	// DevicePixelRatio is the native density of the rendering environment.
	// The supersampling factor is capped at 2 regardless of this value.
	DevicePixelRatio float64
	Orientation      string
	Format           string
	MarginTop        float64
	MarginRight      float64
	MarginBottom     float64
	MarginLeft       float64
	FontPath         string
	BoldFontPath     string
}

// QuotationConfig restricts the currency and trade terms a quotation may use.
// An empty list disables the check.
type QuotationConfig struct {
	Currencies []string
	Incoterms  []string
}

type JobsConfig struct {
	ExpirySweepEnabled bool
	ExpirySweepCron    string
	// ExpirySweepTimeout bounds one sweep across all scopes, in seconds
	ExpirySweepTimeout int
	// ExpirySweepOnStartup runs one sweep in the background when the API starts
	ExpirySweepOnStartup bool
}

// ConnectionString builds the PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// ConnMaxLifetimeDuration returns connection max lifetime as duration
func (d *DatabaseConfig) ConnMaxLifetimeDuration() time.Duration {
	return time.Duration(d.ConnMaxLifetime) * time.Second
}

// ExpirySweepTimeoutDuration returns the sweep timeout as duration
func (j *JobsConfig) ExpirySweepTimeoutDuration() time.Duration {
	return time.Duration(j.ExpirySweepTimeout) * time.Second
}

// ReadTimeoutDuration returns read timeout as duration
func (s *ServerConfig) ReadTimeoutDuration() time.Duration {
	return time.Duration(s.ReadTimeout) * time.Second
}

// WriteTimeoutDuration returns write timeout as duration
func (s *ServerConfig) WriteTimeoutDuration() time.Duration {
	return time.Duration(s.WriteTimeout) * time.Second
}

// RequestTimeoutDuration returns request timeout as duration
func (s *ServerConfig) RequestTimeoutDuration() time.Duration {
	return time.Duration(s.RequestTimeout) * time.Second
}

// Load loads configuration from file and environment variables.
// Secrets from Azure Key Vault are resolved by LoadWithSecrets.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables override config file
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = v.GetString("SCOPE_JWT_SECRET")
	}
	if cfg.Secrets.KeyVaultName == "" {
		cfg.Secrets.KeyVaultName = v.GetString("AZURE_KEY_VAULT_NAME")
	}

	return &cfg, nil
}

// LoadWithSecrets loads configuration and resolves secrets from the configured source.
//
// Key Vault is used when BOTH conditions are met:
// 1. USE_AZURE_KEY_VAULT environment variable is set to "true"
// 2. Environment is "staging" or "production"
func LoadWithSecrets(ctx context.Context, logger *zap.Logger) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	useKeyVault := strings.ToLower(os.Getenv("USE_AZURE_KEY_VAULT")) == "true"
	isValidEnv := cfg.App.Environment == "staging" || cfg.App.Environment == "production"

	if !useKeyVault {
		logger.Info("USE_AZURE_KEY_VAULT not enabled, using environment variables for secrets",
			zap.String("environment", cfg.App.Environment),
		)
		return cfg, nil
	}

	if !isValidEnv {
		logger.Warn("USE_AZURE_KEY_VAULT is enabled but environment is not staging or production, using environment variables for secrets",
			zap.String("environment", cfg.App.Environment),
		)
		return cfg, nil
	}

	if cfg.Secrets.KeyVaultName == "" {
		return nil, fmt.Errorf("AZURE_KEY_VAULT_NAME is required when USE_AZURE_KEY_VAULT=true")
	}

	provider, err := secrets.NewProvider(&secrets.ProviderConfig{
		Source:       secrets.SourceVault,
		VaultName:    cfg.Secrets.KeyVaultName,
		Environment:  cfg.App.Environment,
		CacheEnabled: cfg.Secrets.CacheEnabled,
		CacheTTL:     time.Duration(cfg.Secrets.CacheTTL) * time.Second,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize secrets provider (USE_AZURE_KEY_VAULT=true requires valid vault): %w", err)
	}

	logger.Info("Loading secrets from Azure Key Vault",
		zap.String("key_vault_name", cfg.Secrets.KeyVaultName),
	)
	applySecrets(ctx, cfg, provider)

	logger.Info("Secrets loaded from vault successfully")
	return cfg, nil
}

// secretSource is the subset of secrets.Provider used while resolving config
type secretSource interface {
	GetSecretOrEnv(ctx context.Context, secretName, envName string) (string, error)
}

func applySecrets(ctx context.Context, cfg *Config, provider secretSource) {
	if connStr, err := provider.GetSecretOrEnv(ctx, "storage-connection-string", "STORAGE_CLOUDCONNECTIONSTRING"); err == nil && connStr != "" {
		cfg.Storage.CloudConnectionString = connStr
	}
	if password, err := provider.GetSecretOrEnv(ctx, "POSTGRES-MAIN-PASSWORD", "DATABASE_PASSWORD"); err == nil && password != "" {
		cfg.Database.Password = password
	}
	if host, err := provider.GetSecretOrEnv(ctx, "POSTGRES-MAIN-HOST", "DATABASE_HOST"); err == nil && host != "" {
		cfg.Database.Host = host
	}
	if secret, err := provider.GetSecretOrEnv(ctx, "scope-jwt-secret", "SCOPE_JWT_SECRET"); err == nil && secret != "" {
		cfg.Auth.JWTSecret = secret
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "Quotation API")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.port", 8080)

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "quotations")
	v.SetDefault("database.user", "quotation_user")
	v.SetDefault("database.password", "quotation_password")
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.sqlitePath", "./storage/workbooks.db")
	v.SetDefault("database.maxOpenConns", 10)
	v.SetDefault("database.maxIdleConns", 2)
	v.SetDefault("database.connMaxLifetime", 300)

	v.SetDefault("secrets.source", "auto")
	v.SetDefault("secrets.cacheEnabled", true)
	v.SetDefault("secrets.cacheTTL", 300)

	v.SetDefault("storage.mode", "local")
	v.SetDefault("storage.localBasePath", "./storage")
	v.SetDefault("storage.cloudContainer", "workbooks")
	v.SetDefault("storage.assetContainer", "assets")
	v.SetDefault("storage.maxUploadSizeMB", 20)
	v.SetDefault("storage.optimisticLocking", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 60)
	v.SetDefault("server.requestTimeout", 60)
	v.SetDefault("server.enableSwagger", true)
	v.SetDefault("server.enableMetrics", true)

	v.SetDefault("cors.allowedOrigins", []string{})
	v.SetDefault("cors.allowedMethods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowedHeaders", []string{"Accept", "Authorization", "Content-Type", "X-Scope-ID", "X-Request-ID"})
	v.SetDefault("cors.exposedHeaders", []string{"Content-Disposition", "X-Request-ID"})
	v.SetDefault("cors.allowCredentials", true)
	v.SetDefault("cors.maxAge", 300)

	v.SetDefault("security.enableHSTS", false)
	v.SetDefault("security.hstsMaxAge", 31536000)
	v.SetDefault("security.contentSecurityPolicy", "default-src 'self'")
	v.SetDefault("security.frameOptions", "DENY")
	v.SetDefault("security.contentTypeNosniff", true)
	v.SetDefault("security.referrerPolicy", "strict-origin-when-cross-origin")
	v.SetDefault("security.hstsIncludeSubdomains", true)
	v.SetDefault("security.hstsPreload", false)
	v.SetDefault("security.xssProtection", "1; mode=block")
	v.SetDefault("security.permissionsPolicy", "geolocation=(), microphone=(), camera=()")

	v.SetDefault("rateLimit.enabled", true)
	v.SetDefault("rateLimit.requestsPerMinute", 120)
	v.SetDefault("rateLimit.whitelistIPs", []string{"127.0.0.1", "::1"})
	v.SetDefault("rateLimit.whitelistPaths", []string{"/health", "/health/ready", "/metrics"})

	v.SetDefault("auth.allowHeaderScope", true)
	v.SetDefault("auth.defaultScope", "default")

	v.SetDefault("render.devicePixelRatio", 2.0)
	v.SetDefault("render.orientation", "portrait")
	v.SetDefault("render.format", "pdf")
	v.SetDefault("render.marginTop", 10.0)
	v.SetDefault("render.marginRight", 10.0)
	v.SetDefault("render.marginBottom", 10.0)
	v.SetDefault("render.marginLeft", 10.0)

	v.SetDefault("quotation.currencies", []string{"USD", "CNY", "EUR", "GBP"})
	v.SetDefault("quotation.incoterms", []string{"FOB", "CIF", "EXW", "DAP"})

	v.SetDefault("jobs.expirySweepEnabled", true)
	v.SetDefault("jobs.expirySweepCron", "0 5 0 * * *") // 00:05:00 daily
	v.SetDefault("jobs.expirySweepTimeout", 300)
	v.SetDefault("jobs.expirySweepOnStartup", true)
}
