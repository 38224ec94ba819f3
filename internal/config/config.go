package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
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
	JWTSecret               string
	JWTExpiry               time.Duration
	VerificationCodeExpiry  time.Duration
	PasswordResetCodeExpiry time.Duration

	// Email
	MailProvider string // "resend", "smtp" or "log"
	EmailFrom    string
	ResendAPIKey string
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string

	// Image hosting
	ImageHost           string // "s3", "imgur" or "freeimagehost"
	ImgurClientID       string
	FreeImageHostAPIKey string

	// Image hosting - S3-compatible (MinIO, AWS S3, Cloudflare R2, etc.)
	S3Region        string
	S3Bucket        string
	S3AccessKey     string
	S3SecretKey     string
	S3Endpoint      string        // Optional: for S3-compatible services
	S3PresignExpiry time.Duration // Lifetime of the URL handed to the vision model and stored in history

	// Vision AI (OpenAI-compatible chat completions)
	VisionAPIKey          string
	VisionBaseURL         string
	VisionModel           string
	VisionFallbackAPIKey  string // Empty disables the inline-image fallback
	VisionFallbackBaseURL string
	VisionFallbackModel   string

	// HTTP
	UpstreamTimeout    time.Duration
	MaxBodyBytes       int64
	CORSAllowedOrigins []string
	TrustedProxies     []string // Peers allowed to set X-Forwarded-For; empty trusts none

	// Observability (optional)
	SentryDSN string
}

const (
	defaultDBDriver     = "sqlite"
	defaultDBConnection = "./data/ecosnap.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_txlock=immediate"
)

// LoadDatabase reads only the database settings. The admin CLI uses it so
// maintenance commands work without the server's secrets.
func LoadDatabase() (driver, connection string) {
	_ = godotenv.Load()
	return envString("DB_DRIVER", defaultDBDriver), envString("DB_CONNECTION", defaultDBConnection)
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		// Application
		AppName: envString("APP_NAME", "EcoSnap"),
		AppEnv:  envRequired("APP_ENV"), // Required: 'development' or 'production'
		Port:    envString("PORT", "4000"),

		// Database
		DBDriver:     envString("DB_DRIVER", defaultDBDriver),
		DBConnection: envString("DB_CONNECTION", defaultDBConnection),

		// Security
		JWTSecret:               envRequired("JWT_SECRET"),
		JWTExpiry:               envDuration("JWT_EXPIRY", 168*time.Hour),                // 7 days
		VerificationCodeExpiry:  envDuration("VERIFICATION_CODE_EXPIRY", 24*time.Hour),   // 24 hours
		PasswordResetCodeExpiry: envDuration("PASSWORD_RESET_CODE_EXPIRY", 1*time.Hour), // 1 hour

		// Email
		MailProvider: envString("MAIL_PROVIDER", "log"),
		EmailFrom:    envString("EMAIL_FROM", "noreply@example.com"),
		ResendAPIKey: envString("RESEND_API_KEY", ""),
		SMTPHost:     envString("SMTP_HOST", ""),
		SMTPPort:     envInt("SMTP_PORT", 465),
		SMTPUsername: envString("SMTP_USERNAME", ""),
		SMTPPassword: envString("SMTP_PASSWORD", ""),

		// Image hosting
		ImageHost:           envString("IMAGE_HOST", "freeimagehost"),
		ImgurClientID:       envString("IMGUR_CLIENT_ID", ""),
		FreeImageHostAPIKey: envString("FREEIMAGEHOST_API_KEY", ""),
		S3Region:            envString("S3_REGION", "us-east-1"),
		S3Bucket:            envString("S3_BUCKET", ""),
		S3AccessKey:         envString("S3_ACCESS_KEY", ""),
		S3SecretKey:         envString("S3_SECRET_KEY", ""),
		S3Endpoint:          envString("S3_ENDPOINT", ""),
		S3PresignExpiry:     envDuration("S3_PRESIGN_EXPIRY", 168*time.Hour), // 7 days, the S3 presign maximum

		// Vision AI
		VisionAPIKey:          envRequired("VISION_API_KEY"),
		VisionBaseURL:         envString("VISION_BASE_URL", "https://openrouter.ai/api/v1"),
		VisionModel:           envString("VISION_MODEL", "meta-llama/llama-3.2-90b-vision-instruct"),
		VisionFallbackAPIKey:  envString("VISION_FALLBACK_API_KEY", ""),
		VisionFallbackBaseURL: envString("VISION_FALLBACK_BASE_URL", "https://integrate.api.nvidia.com/v1"),
		VisionFallbackModel:   envString("VISION_FALLBACK_MODEL", "meta/llama-3.2-90b-vision-instruct"),

		// HTTP
		UpstreamTimeout:    envDuration("UPSTREAM_TIMEOUT", 60*time.Second),
		MaxBodyBytes:       int64(envInt("MAX_BODY_BYTES", 50<<20)), // 50MB, base64 photos are large
		CORSAllowedOrigins: envList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		TrustedProxies:     envList("TRUSTED_PROXIES", nil),

		// Observability
		SentryDSN: envString("SENTRY_DSN", ""),
	}

	// Production: validate required services
	if cfg.IsProduction() {
		validateProduction(cfg)
	}

	return cfg
}

// validateProduction ensures outbound mail is really delivered in production.
// Development may use the log mailer, which prints codes instead of sending them.
func validateProduction(cfg *Config) {
	switch cfg.MailProvider {
	case "resend":
		if cfg.ResendAPIKey == "" {
			slog.Error("production deployment requires RESEND_API_KEY when MAIL_PROVIDER=resend")
			os.Exit(1)
		}
	case "smtp":
		if cfg.SMTPHost == "" || cfg.SMTPUsername == "" || cfg.SMTPPassword == "" {
			slog.Error("production deployment requires SMTP_HOST, SMTP_USERNAME and SMTP_PASSWORD when MAIL_PROVIDER=smtp")
			os.Exit(1)
		}
	default:
		slog.Error("production deployment requires MAIL_PROVIDER=resend or MAIL_PROVIDER=smtp",
			"mail_provider", cfg.MailProvider,
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

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return i
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

func envList(key string, def []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return def
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
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

// SentryEnabled reports whether error events should be forwarded to Sentry.
func (c *Config) SentryEnabled() bool {
	return c.SentryDSN != "" && envBool("SENTRY_ENABLED", true)
}
