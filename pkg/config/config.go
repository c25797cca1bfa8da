package config

import (
	"fmt"
	"strings"

	"github.com/ardanlabs/conf/v3"
	"github.com/docker/go-units"
	"github.com/joho/godotenv"
)

// Environment name constants used in ENVIRONMENT config field.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTesting     = "testing"
)

// Backend name constants used in STORE_BACKEND and BLOB_BACKEND.
const (
	BackendDynamo = "dynamo"
	BackendS3     = "s3"
	BackendMemory = "memory"
)

// Config holds all configuration for the application
type Config struct {
	// HTTP
	HTTPAddr string `conf:"default::8080,env:HTTP_ADDR"`
	// WorkerAddr serves the worker's /health and /metrics
	WorkerAddr string `conf:"default::8081,env:WORKER_ADDR"`

	// Item store
	StoreBackend     string `conf:"default:dynamo,enum:dynamo|memory,env:STORE_BACKEND"`
	DynamoTable      string `conf:"default:lostfound-items,env:DYNAMO_TABLE"`
	DynamoEndpoint   string `conf:"env:DYNAMO_ENDPOINT"`
	DynamoAutoCreate bool   `conf:"default:false,env:DYNAMO_AUTO_CREATE"`
	AWSRegion        string `conf:"default:ap-southeast-1,env:AWS_REGION"`

	// Image blobs (S3 or MinIO)
	BlobBackend       string `conf:"default:s3,enum:s3|memory,env:BLOB_BACKEND"`
	S3Bucket          string `conf:"default:lostfound-images,env:S3_BUCKET"`
	S3Endpoint        string `conf:"env:S3_ENDPOINT"`
	S3PublicBaseURL   string `conf:"env:S3_PUBLIC_BASE_URL"`
	S3AccessKey       string `conf:"env:S3_ACCESS_KEY"`
	S3SecretKey       string `conf:"env:S3_SECRET_KEY,noprint"`
	MaxImageSize      string `conf:"default:5MB,env:MAX_IMAGE_SIZE"`
	MaxImageDimension int    `conf:"default:1600,env:MAX_IMAGE_DIMENSION"`
	MaxImagePixels    int64  `conf:"default:50000000,env:MAX_IMAGE_PIXELS"`

	// Redis
	RedisURL string `conf:"default:redis://localhost:6379,env:REDIS_URL"`

	// Events: empty selects the in-process transport
	EventsDatabaseURL string `conf:"env:EVENTS_DATABASE_URL,noprint"`

	// Application
	LogLevel    string `conf:"default:info,env:LOG_LEVEL"`
	Environment string `conf:"default:development,enum:development|testing|production,env:ENVIRONMENT"`

	// Session
	SessionAuthKey       string `conf:"default:dev-auth-key-32-bytes-long!!!,env:SESSION_AUTH_KEY"`
	SessionEncryptionKey string `conf:"default:dev-encryption-key-32-bytes!!,env:SESSION_ENCRYPTION_KEY"`
	AdminPassword        string `conf:"default:admin,env:ADMIN_PASSWORD,noprint"`

	// CORS: comma-separated allowed origins, * allows all (dev only)
	CORSAllowedOrigins string `conf:"default:*,env:CORS_ALLOWED_ORIGINS"`

	// Observability
	ServiceName    string `conf:"default:lostfound,env:SERVICE_NAME"`
	ServiceVersion string `conf:"default:dev,env:SERVICE_VERSION"`
	OtelEndpoint   string `conf:"default:http://localhost,env:OTEL_ENDPOINT"`
	SentryDSN      string `conf:"default:http://localhost,env:SENTRY_DSN,noprint"`
}

// Load reads configuration from environment variables with sensible defaults
func Load() (*Config, error) {
	var cfg Config
	_ = godotenv.Load()
	if _, err := conf.Parse("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if _, err := cfg.MaxImageBytes(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// MaxImageBytes parses MAX_IMAGE_SIZE ("5MB", "512kB", ...) into a byte count.
func (c *Config) MaxImageBytes() (int64, error) {
	size, err := units.FromHumanSize(c.MaxImageSize)
	if err != nil {
		return 0, fmt.Errorf("invalid MAX_IMAGE_SIZE: %w", err)
	}
	if size <= 0 {
		return 0, fmt.Errorf("MAX_IMAGE_SIZE must be positive")
	}
	return size, nil
}

// ValidateForProduction enforces security requirements when ENVIRONMENT=production.
// Returns an error if any critical settings are missing or unsafe.
// No-ops for non-production environments.
func ValidateForProduction(cfg *Config) error {
	if cfg.Environment != EnvProduction {
		return nil
	}

	var errs []string

	if len(cfg.SessionAuthKey) < 32 {
		errs = append(errs, fmt.Sprintf(
			"SESSION_AUTH_KEY must be at least 32 bytes (got %d); generate with: openssl rand -base64 32",
			len(cfg.SessionAuthKey),
		))
	}

	if len(cfg.SessionEncryptionKey) < 16 {
		errs = append(errs, fmt.Sprintf(
			"SESSION_ENCRYPTION_KEY must be at least 16 bytes (got %d); generate with: openssl rand -base64 16",
			len(cfg.SessionEncryptionKey),
		))
	}

	if len(cfg.AdminPassword) < 12 {
		errs = append(errs, "ADMIN_PASSWORD must be at least 12 characters")
	}

	if cfg.StoreBackend == BackendMemory || cfg.BlobBackend == BackendMemory {
		errs = append(errs, "STORE_BACKEND and BLOB_BACKEND must not be 'memory' in production")
	}

	if cfg.LogLevel == "debug" {
		errs = append(errs, "LOG_LEVEL must not be 'debug' in production (may leak sensitive data)")
	}

	if len(errs) == 0 {
		return nil
	}

	return fmt.Errorf("production config validation failed: %s", strings.Join(errs, "; "))
}
