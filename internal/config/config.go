package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
	LogSQL             bool
}

// MinIOConfig holds S3-compatible object storage settings. PublicURL, when set, is the
// public base of the bucket and media links are built from it instead of presigned.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	PublicURL string
	UseSSL    bool
}

// RedisConfig holds the Redis connection shared by the cache and the task queue.
// An empty Addr disables Redis: caches fall back to memory and tasks run inline.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// AuthConfig holds token settings.
type AuthConfig struct {
	JWTSecret            string        `validate:"required,min=32"`
	TokenTTL             time.Duration `validate:"gt=0"`
	VerificationTokenTTL time.Duration `validate:"gt=0"`
}

// LogConfig selects the log level and sink. When File is set logs are written to a
// rotating file instead of stdout.
type LogConfig struct {
	Level      string `validate:"oneof=debug info warn warning error"`
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	Currency      string
}

type NotchPayConfig struct {
	BaseURL     string
	PublicKey   string
	HashKey     string
	CallbackURL string
	Currency    string
}

type VimeoConfig struct {
	BaseURL     string
	AccessToken string
}

type OVHConfig struct {
	AuthURL   string
	Username  string
	Password  string
	ProjectID string
	Domain    string
}

type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// OAuthConfig holds an OAuth2 application registration.
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	// Key is the StackExchange application key; unused by GitHub.
	Key string
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost           string
	Port              string
	BaseURL           string
	Timezone          string `validate:"required"`
	Database          DatabaseConfig
	MinIO             MinIOConfig
	Redis             RedisConfig
	Auth              AuthConfig
	Log               LogConfig
	Stripe            StripeConfig
	NotchPay          NotchPayConfig
	Vimeo             VimeoConfig
	OVH               OVHConfig
	OpenAI            OpenAIConfig
	GitHub            OAuthConfig
	StackOverflow     OAuthConfig
	SMTP              SMTPConfig
	SearchCacheTTL    time.Duration
	TipRefreshCron    string
	MaxUploadBytes    int64
	// WorkerConcurrency is the number of tasks the worker processes in parallel.
	WorkerConcurrency int
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:  getEnv("APP_HOST", "localhost:8080"),
		Port:     getEnv("PORT", "8080"),
		BaseURL:  getEnv("APP_BASE_URL", "http://localhost:8080"),
		Timezone: getEnv("APP_TIMEZONE", "UTC"),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
			LogSQL:             getEnvBool("DB_LOG_SQL", false),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			Region:    getEnv("MINIO_REGION", ""),
			PublicURL: getEnv("MINIO_PUBLIC_URL", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Auth: AuthConfig{
			JWTSecret:            getEnv("JWT_SECRET", ""),
			TokenTTL:             getEnvDuration("JWT_TTL", 24*time.Hour),
			VerificationTokenTTL: getEnvDuration("VERIFICATION_TOKEN_TTL", 24*time.Hour),
		},
		Log: LogConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			File:       getEnv("LOG_FILE", ""),
			MaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 50),
			MaxBackups: getEnvInt("LOG_MAX_BACKUPS", 5),
			MaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 30),
		},
		Stripe: StripeConfig{
			SecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
			WebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
			Currency:      getEnv("STRIPE_CURRENCY", "eur"),
		},
		NotchPay: NotchPayConfig{
			BaseURL:     getEnv("NOTCHPAY_BASE_URL", "https://api.notchpay.co"),
			PublicKey:   getEnv("NOTCHPAY_PUBLIC_KEY", ""),
			HashKey:     getEnv("NOTCHPAY_HASH_KEY", ""),
			CallbackURL: getEnv("NOTCHPAY_CALLBACK_URL", ""),
			Currency:    getEnv("NOTCHPAY_CURRENCY", "XAF"),
		},
		Vimeo: VimeoConfig{
			BaseURL:     getEnv("VIMEO_BASE_URL", "https://api.vimeo.com"),
			AccessToken: getEnv("VIMEO_ACCESS_TOKEN", ""),
		},
		OVH: OVHConfig{
			AuthURL:   getEnv("OVH_AUTH_URL", "https://auth.cloud.ovh.net/v3"),
			Username:  getEnv("OVH_USERNAME", ""),
			Password:  getEnv("OVH_PASSWORD", ""),
			ProjectID: getEnv("OVH_PROJECT_ID", ""),
			Domain:    getEnv("OVH_DOMAIN", "Default"),
		},
		OpenAI: OpenAIConfig{
			APIKey:  getEnv("OPENAI_API_KEY", ""),
			BaseURL: getEnv("OPENAI_BASE_URL", ""),
			Model:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		},
		GitHub: OAuthConfig{
			ClientID:     getEnv("GITHUB_CLIENT_ID", ""),
			ClientSecret: getEnv("GITHUB_CLIENT_SECRET", ""),
			RedirectURL:  getEnv("GITHUB_REDIRECT_URL", ""),
		},
		StackOverflow: OAuthConfig{
			ClientID:     getEnv("STACKOVERFLOW_CLIENT_ID", ""),
			ClientSecret: getEnv("STACKOVERFLOW_CLIENT_SECRET", ""),
			RedirectURL:  getEnv("STACKOVERFLOW_REDIRECT_URL", ""),
			Key:          getEnv("STACKOVERFLOW_KEY", ""),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnvInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", "no-reply@zerofiltre.tech"),
		},
		SearchCacheTTL:    getEnvDuration("SEARCH_CACHE_TTL", 5*time.Minute),
		TipRefreshCron:    getEnv("TIP_REFRESH_CRON", "0 6 * * *"),
		MaxUploadBytes:    int64(getEnvInt("MAX_UPLOAD_BYTES", 10<<20)),
		WorkerConcurrency: getEnvInt("WORKER_CONCURRENCY", 10),
	}
}

// Validate checks the settings every binary needs before it can start.
func (c *AppConfig) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE %q: %w", c.Timezone, err)
	}
	return nil
}

// Location returns the configured time zone, UTC when it cannot be loaded.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}
