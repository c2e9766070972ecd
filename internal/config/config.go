package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppName string
	AppEnv  string
	Port    string

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Security
	JWTSecret  string
	JWTExpiry  time.Duration // 0 disables token expiry
	BcryptCost int

	// Rate limiting for register/login, per client IP
	AuthRateLimit  int
	AuthRateWindow time.Duration

	// Email (RESEND_API_KEY optional in development, required in production)
	EmailFrom    string
	ResendAPIKey string

	// Observability (optional)
	SentryDSN string

	// Avatar storage: "db" keeps the encoded image on the user row,
	// "s3" stores it in an S3-compatible bucket (MinIO, R2, Spaces, ...)
	StorageDriver string
	S3Region      string
	S3Bucket      string
	S3AccessKey   string
	S3SecretKey   string
	S3Endpoint    string
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		AppName: envString("APP_NAME", "Task Manager"),
		AppEnv:  envString("APP_ENV", "development"),
		Port:    envString("PORT", "3000"),

		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/task-manager.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"),

		JWTSecret:  envRequired("JWT_SECRET"),
		JWTExpiry:  envDuration("JWT_EXPIRY", 168*time.Hour), // 7 days
		BcryptCost: envInt("BCRYPT_COST", 8),

		AuthRateLimit:  envInt("AUTH_RATE_LIMIT", 20),
		AuthRateWindow: envDuration("AUTH_RATE_WINDOW", 15*time.Minute),

		EmailFrom:    envString("EMAIL_FROM", "noreply@example.com"),
		ResendAPIKey: envString("RESEND_API_KEY", ""),

		SentryDSN: envString("SENTRY_DSN", ""),

		StorageDriver: envString("STORAGE_DRIVER", "db"),
		S3Region:      envString("S3_REGION", ""),
		S3Bucket:      envString("S3_BUCKET", ""),
		S3AccessKey:   envString("S3_ACCESS_KEY", ""),
		S3SecretKey:   envString("S3_SECRET_KEY", ""),
		S3Endpoint:    envString("S3_ENDPOINT", ""),
	}

	if cfg.StorageDriver == "s3" && (cfg.S3Region == "" || cfg.S3Bucket == "") {
		slog.Error("STORAGE_DRIVER=s3 requires S3_REGION and S3_BUCKET")
		os.Exit(1)
	}

	if cfg.IsProduction() {
		validateProduction(cfg)
	}

	return cfg
}

// validateProduction ensures all required services are configured for production
// deployments. Development allows email to fall back to log mode.
func validateProduction(cfg *Config) {
	if cfg.ResendAPIKey == "" {
		slog.Error("production deployment requires RESEND_API_KEY",
			"hint", "set APP_ENV=development for local testing with email log mode")
		os.Exit(1)
	}
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}
