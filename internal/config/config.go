package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Checkout cardinality modes: "single" pays the first cart member only,
// "all" iterates every member sequentially.
const (
	CheckoutModeSingle = "single"
	CheckoutModeAll    = "all"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	Supplier  SupplierConfig
	CryptoPay CryptoPayConfig
	Telegram  TelegramConfig
	JWT       JWTConfig
	Checkout  CheckoutConfig
	OTEL      OTELConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port string
}

// MongoDBConfig holds MongoDB connection configuration
type MongoDBConfig struct {
	URI      string
	Database string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
}

// SupplierConfig holds the wholesale eSIM catalog API configuration
type SupplierConfig struct {
	BaseURL         string
	AccessCode      string
	CacheTTL        time.Duration
	RefreshInterval time.Duration
}

// CryptoPayConfig holds the crypto payment provider configuration.
// An empty token switches the service to a mock provider for development.
type CryptoPayConfig struct {
	Token   string
	BaseURL string
}

// TelegramConfig holds the Mini App host configuration
type TelegramConfig struct {
	BotToken string
}

// JWTConfig holds access token signing configuration
type JWTConfig struct {
	Secret            string
	AccessTokenExpiry time.Duration
}

// CheckoutConfig selects the checkout cardinality policy
type CheckoutConfig struct {
	Mode           string // "single" or "all"
	IdempotencyTTL time.Duration
}

// OTELConfig holds OpenTelemetry export configuration
type OTELConfig struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string
	Environment    string
	Endpoint       string
	InstanceID     string
	Token          string
}

// Load reads configuration from environment variables
// It attempts to load from .env file first, then falls back to system env vars
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		MongoDB: MongoDBConfig{
			URI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGODB_DATABASE", "storefront"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		Supplier: SupplierConfig{
			BaseURL:         getEnv("SUPPLIER_BASE_URL", "https://api.esimaccess.com"),
			AccessCode:      getEnv("SUPPLIER_ACCESS_CODE", ""),
			CacheTTL:        getEnvAsDuration("SUPPLIER_CACHE_TTL", 15*time.Minute),
			RefreshInterval: getEnvAsDuration("SUPPLIER_REFRESH_INTERVAL", 6*time.Hour),
		},
		CryptoPay: CryptoPayConfig{
			Token:   getEnv("CRYPTOPAY_TOKEN", ""),
			BaseURL: getEnv("CRYPTOPAY_BASE_URL", "https://pay.crypt.bot"),
		},
		Telegram: TelegramConfig{
			BotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		},
		JWT: JWTConfig{
			Secret:            getEnv("JWT_SECRET", ""),
			AccessTokenExpiry: getEnvAsDuration("JWT_ACCESS_EXPIRY", 24*time.Hour),
		},
		Checkout: CheckoutConfig{
			Mode:           getEnv("CHECKOUT_MODE", CheckoutModeSingle),
			IdempotencyTTL: getEnvAsDuration("CHECKOUT_IDEMPOTENCY_TTL", 10*time.Minute),
		},
		OTEL: OTELConfig{
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "esim-storefront"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
			Environment:    getEnv("OTEL_ENVIRONMENT", "development"),
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			InstanceID:     getEnv("OTEL_INSTANCE_ID", ""),
			Token:          getEnv("OTEL_TOKEN", ""),
		},
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration is present
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Checkout.Mode != CheckoutModeSingle && c.Checkout.Mode != CheckoutModeAll {
		return fmt.Errorf("CHECKOUT_MODE must be %q or %q", CheckoutModeSingle, CheckoutModeAll)
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as bool or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration retrieves an environment variable as time.Duration or returns a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
