package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config chứa toàn bộ application configuration
// Struct này được populate từ environment variables
type Config struct {
	App     AppConfig
	Redis   RedisConfig
	JWT     JWTConfig
	MinIO   MinIOConfig
	Worker  WorkerConfig
	Catalog CatalogConfig
	Auth    AuthConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
	LogLevel    string
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret            string
	AccessTokenExpiry int // minutes
}

type MinIOConfig struct {
	Enabled   bool
	Endpoint  string // localhost:9000
	AccessKey string
	SecretKey string
	Bucket    string // covers
	UseSSL    bool
}

// WorkerConfig - asynq server của cmd/worker
type WorkerConfig struct {
	Concurrency int
	HealthPort  string
}

// =====================================================
// CATALOG / EXTERNAL METADATA
// =====================================================

type CatalogConfig struct {
	// Timeout cho toàn bộ phần external của một lần search
	ExternalTimeout time.Duration
	// Timeout cho mỗi HTTP request tới provider
	ProviderTimeout time.Duration
	InternalLimit   int
	ResultLimit     int
	CollationLocale string

	GoogleBooksURL    string
	GoogleBooksAPIKey string
	GoogleBooksRPS    float64
	OpenBDURL         string
	OpenBDRPS         float64
	OpenLibraryURL    string
	OpenLibraryRPS    float64

	CacheTTL         time.Duration
	NegativeCacheTTL time.Duration

	// Lịch chạy sweep enrich các book thiếu metadata (cron spec của asynq scheduler)
	EnrichSweepCron  string
	EnrichSweepBatch int
}

type AuthConfig struct {
	InviteRequired bool
	BcryptCost     int
}

// Load đọc config từ environment variables
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Books Commons API"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:            getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			AccessTokenExpiry: getEnvInt("JWT_ACCESS_EXPIRY", 60*24),
		},
		MinIO: MinIOConfig{
			Enabled:   getEnvBool("MINIO_ENABLED", false),
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
			Bucket:    getEnv("MINIO_BUCKET", "covers"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Worker: WorkerConfig{
			Concurrency: getEnvInt("WORKER_CONCURRENCY", 10),
			HealthPort:  getEnv("WORKER_HEALTH_PORT", "9999"),
		},
		Catalog: CatalogConfig{
			ExternalTimeout:   getEnvDuration("CATALOG_EXTERNAL_TIMEOUT", 3*time.Second),
			ProviderTimeout:   getEnvDuration("CATALOG_PROVIDER_TIMEOUT", 10*time.Second),
			InternalLimit:     getEnvInt("CATALOG_INTERNAL_LIMIT", 30),
			ResultLimit:       getEnvInt("CATALOG_RESULT_LIMIT", 50),
			CollationLocale:   getEnv("CATALOG_COLLATION_LOCALE", "ja"),
			GoogleBooksURL:    getEnv("GOOGLE_BOOKS_URL", "https://www.googleapis.com/books/v1"),
			GoogleBooksAPIKey: getEnv("GOOGLE_BOOKS_API_KEY", ""),
			GoogleBooksRPS:    getEnvFloat("GOOGLE_BOOKS_RPS", 5),
			OpenBDURL:         getEnv("OPENBD_URL", "https://api.openbd.jp/v1"),
			OpenBDRPS:         getEnvFloat("OPENBD_RPS", 5),
			OpenLibraryURL:    getEnv("OPENLIBRARY_URL", "https://openlibrary.org"),
			OpenLibraryRPS:    getEnvFloat("OPENLIBRARY_RPS", 1),
			CacheTTL:          getEnvDuration("CATALOG_CACHE_TTL", 24*time.Hour),
			NegativeCacheTTL:  getEnvDuration("CATALOG_NEGATIVE_CACHE_TTL", time.Hour),
			EnrichSweepCron:   getEnv("CATALOG_ENRICH_SWEEP_CRON", "0 3 * * *"),
			EnrichSweepBatch:  getEnvInt("CATALOG_ENRICH_SWEEP_BATCH", 100),
		},
		Auth: AuthConfig{
			InviteRequired: getEnvBool("AUTH_INVITE_REQUIRED", true),
			BcryptCost:     getEnvInt("AUTH_BCRYPT_COST", 12),
		},
	}

	// Validate critical config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate kiểm tra config có hợp lệ không
func (c *Config) Validate() error {
	if c.Catalog.ResultLimit <= 0 || c.Catalog.InternalLimit <= 0 {
		return fmt.Errorf("CATALOG_RESULT_LIMIT and CATALOG_INTERNAL_LIMIT must be positive")
	}
	if c.Catalog.ExternalTimeout <= 0 {
		return fmt.Errorf("CATALOG_EXTERNAL_TIMEOUT must be positive")
	}

	// Production environment phải có JWT secret
	if c.App.Environment == "production" {
		if c.JWT.Secret == "your-secret-key-change-in-production" {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		if c.Catalog.GoogleBooksAPIKey == "" {
			fmt.Println("WARNING: GOOGLE_BOOKS_API_KEY not set - Google Books lookups are heavily rate limited")
		}
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	valueStr := strings.ToLower(os.Getenv(key))
	switch valueStr {
	case "1", "true", "yes":
		return true
	case "0", "false", "no":
		return false
	default:
		return defaultValue
	}
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
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
