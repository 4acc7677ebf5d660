package internal

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Config carries everything the storefront core needs. It is constructed
// once and passed into the components that use it; nothing reads the
// environment after startup.
type Config struct {
	Env      string
	LogLevel string
	Backend  BackendConfig
	Store    StoreConfig
	Storage  StorageConfig
	Shipping ShippingConfig
	Address  AddressConfig
}

// AddressConfig points at the public postal code lookup service.
type AddressConfig struct {
	LookupURL      string
	TimeoutSeconds int
}

// BackendConfig points at the remote data service (record reads/writes).
type BackendConfig struct {
	URL            string
	APIKey         string
	TimeoutSeconds int
}

// StoreConfig configures the local key-value persistence that stands in for
// the browser's local storage.
type StoreConfig struct {
	Path string // Directory for the file-backed store (one JSON file per key)
}

type StorageConfig struct {
	Provider      string // "local" or "s3"
	LocalPath     string
	LocalURL      string
	S3AccountID   string
	S3AccessKeyID string
	S3SecretKey   string
	AdImageBucket string
	AvatarBucket  string
	PublicURL     string
}

// ShippingConfig selects the canonical estimate formula. The storefront
// historically shipped two: "percent" (5% of item price) on the product page
// and "percent-floor" (1% with a 15.00 floor) in the checkout calculator.
// "percent" is the canonical default.
type ShippingConfig struct {
	Formula string
}

func NewConfig() (*Config, error) {
	// Try to load .env from current directory, then walk up to find it (max 2 levels)
	err := godotenv.Load()
	if err != nil {
		dir, _ := os.Getwd()
		found := false
		for i := 0; i < 2; i++ {
			dir = filepath.Join(dir, "..")
			if err := godotenv.Load(filepath.Join(dir, ".env")); err == nil {
				found = true
				break
			}
		}
		if !found {
			slog.Default().Warn("Warning: .env file not found, using environment variables and defaults")
		}
	}

	cfg := &Config{
		Env:      getEnv("ENV", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Backend: BackendConfig{
			URL:            getEnv("BACKEND_URL", "http://localhost:54321"),
			APIKey:         getEnv("BACKEND_API_KEY", ""),
			TimeoutSeconds: int(getEnvInt("BACKEND_TIMEOUT_SECONDS", 30)),
		},
		Store: StoreConfig{
			Path: getEnv("STORE_PATH", "./.lanternfox"),
		},
		Storage: StorageConfig{
			Provider:      getEnv("STORAGE_PROVIDER", "local"),
			LocalPath:     getEnv("LOCAL_STORAGE_PATH", "./uploads"),
			LocalURL:      getEnv("LOCAL_STORAGE_URL", "/uploads"),
			S3AccountID:   getEnv("S3_ACCOUNT_ID", ""),
			S3AccessKeyID: getEnv("S3_ACCESS_KEY_ID", ""),
			S3SecretKey:   getEnv("S3_SECRET_ACCESS_KEY", ""),
			AdImageBucket: getEnv("AD_IMAGE_BUCKET", "ad-images"),
			AvatarBucket:  getEnv("AVATAR_BUCKET", "avatars"),
			PublicURL:     getEnv("STORAGE_PUBLIC_URL", ""),
		},
		Shipping: ShippingConfig{
			Formula: getEnv("SHIPPING_FORMULA", "percent"),
		},
		Address: AddressConfig{
			LookupURL:      getEnv("ADDRESS_LOOKUP_URL", "https://viacep.com.br/ws"),
			TimeoutSeconds: int(getEnvInt("ADDRESS_LOOKUP_TIMEOUT_SECONDS", 10)),
		},
	}

	// Validate env
	validEnv := cfg.Env == "dev" || cfg.Env == "prod"
	if !validEnv {
		slog.Default().Warn("Invalid environment. Using default: prod", slog.String("env", cfg.Env))
		cfg.Env = "prod"
	}

	// Validate log level
	validLevel := cfg.LogLevel == "info" || cfg.LogLevel == "debug" || cfg.LogLevel == "warn" || cfg.LogLevel == "error"
	if !validLevel {
		slog.Default().Warn("Invalid log level. Using default: info", slog.String("value", cfg.LogLevel))
		cfg.LogLevel = "info"
	}

	// Validate shipping formula
	if cfg.Shipping.Formula != "percent" && cfg.Shipping.Formula != "percent-floor" {
		return nil, fmt.Errorf("SHIPPING_FORMULA must be \"percent\" or \"percent-floor\", got %q", cfg.Shipping.Formula)
	}

	// Validate backend credentials in production
	if cfg.Env == "prod" && cfg.Backend.APIKey == "" {
		return nil, fmt.Errorf("BACKEND_API_KEY must be set in production environment")
	}

	// Validate S3 configuration in production
	if cfg.Env == "prod" && cfg.Storage.Provider == "s3" {
		if cfg.Storage.S3AccountID == "" {
			return nil, fmt.Errorf("S3_ACCOUNT_ID required when using S3 storage in production")
		}
		if cfg.Storage.S3AccessKeyID == "" || cfg.Storage.S3SecretKey == "" {
			return nil, fmt.Errorf("S3 credentials required when using S3 storage in production")
		}
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue uint16) uint16 {
	if value := os.Getenv(key); value != "" {
		var intValue uint16
		if _, err := fmt.Sscanf(value, "%d", &intValue); err == nil {
			return intValue
		}
	}
	return defaultValue
}
