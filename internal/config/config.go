package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Meshy API
	MeshyAPIKey     string
	MeshyAPIBaseURL string

	// Supabase
	SupabaseURL            string
	SupabaseServiceRoleKey string
	UploadsBucket          string
	OutputsBucket          string

	// Blob backend: "supabase" or "s3"
	BlobBackend string
	AWSRegion   string
	S3Bucket    string

	// Stripe
	StripeSecretKey     string
	StripeWebhookSecret string

	// Admin
	AdminPassword      string
	AdminSessionSecret string

	// Optional infrastructure
	RedisURL       string
	RabbitMQURL    string
	EventsExchange string

	// Database
	DatabaseURL string

	// Server
	Port               string
	Environment        string
	BaseURL            string
	SiteURL            string
	CORSAllowedOrigins []string

	// Lifecycle thresholds
	MinPreviewBytes     int
	ModelMaxAttempts    int
	FreePreviewAttempts int
	SignedURLTTL        time.Duration
}

func Load() (*Config, error) {
	// .env is optional; real deployments inject the environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		MeshyAPIKey:     getEnv("MESHY_API_KEY", ""),
		MeshyAPIBaseURL: getEnv("MESHY_API_BASE_URL", "https://api.meshy.ai"),

		SupabaseURL:            getEnv("SUPABASE_URL", ""),
		SupabaseServiceRoleKey: getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),
		UploadsBucket:          getEnv("UPLOADS_BUCKET", "Uploads"),
		OutputsBucket:          getEnv("OUTPUTS_BUCKET", "Outputs"),

		BlobBackend: strings.ToLower(getEnv("BLOB_BACKEND", "supabase")),
		AWSRegion:   getEnv("AWS_REGION", "eu-central-1"),
		S3Bucket:    getEnv("S3_BUCKET", ""),

		StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),

		AdminPassword:      getEnv("ADMIN_PASSWORD", ""),
		AdminSessionSecret: getEnv("ADMIN_SESSION_SECRET", ""),

		RedisURL:       getEnv("REDIS_URL", ""),
		RabbitMQURL:    getEnv("RABBITMQ_URL", ""),
		EventsExchange: getEnv("EVENTS_EXCHANGE", "bust_orders"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		Port:               getEnv("PORT", "8080"),
		Environment:        getEnv("ENVIRONMENT", "development"),
		BaseURL:            getEnv("BASE_URL", "http://localhost:8080"),
		SiteURL:            getEnv("SITE_URL", "http://localhost:3000"),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "")),

		MinPreviewBytes:     getEnvInt("MIN_PREVIEW_BYTES", 50000),
		ModelMaxAttempts:    getEnvInt("MODEL_MAX_ATTEMPTS", 8),
		FreePreviewAttempts: getEnvInt("FREE_PREVIEW_ATTEMPTS", 2),
		SignedURLTTL:        getEnvDuration("SIGNED_URL_TTL", 30*time.Minute),
	}

	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = []string{cfg.SiteURL}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.MeshyAPIKey == "" {
		return fmt.Errorf("MESHY_API_KEY is required")
	}
	switch c.BlobBackend {
	case "supabase":
		if c.SupabaseURL == "" {
			return fmt.Errorf("SUPABASE_URL is required")
		}
		if c.SupabaseServiceRoleKey == "" {
			return fmt.Errorf("SUPABASE_SERVICE_ROLE_KEY is required")
		}
	case "s3":
		if c.AWSRegion == "" {
			return fmt.Errorf("AWS_REGION is required when BLOB_BACKEND=s3")
		}
		if c.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required when BLOB_BACKEND=s3")
		}
	default:
		return fmt.Errorf("BLOB_BACKEND must be 'supabase' or 's3', got %q", c.BlobBackend)
	}
	if c.MinPreviewBytes <= 0 {
		return fmt.Errorf("MIN_PREVIEW_BYTES must be positive")
	}
	if c.ModelMaxAttempts <= 0 {
		return fmt.Errorf("MODEL_MAX_ATTEMPTS must be positive")
	}
	if c.FreePreviewAttempts < 0 {
		return fmt.Errorf("FREE_PREVIEW_ATTEMPTS must not be negative")
	}
	if c.SignedURLTTL < time.Minute {
		return fmt.Errorf("SIGNED_URL_TTL must be at least one minute")
	}
	return nil
}

// SessionSecret is the key used to sign admin session cookies. It falls back
// to the admin password so a single secret is enough for small deployments.
func (c *Config) SessionSecret() string {
	if c.AdminSessionSecret != "" {
		return c.AdminSessionSecret
	}
	return c.AdminPassword
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
