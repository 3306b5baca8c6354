package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultGeminiModel = "gemini-2.5-flash"
	placeholderAPIKey  = "dummy_key"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins string

	DatabaseURL string
	RedisURL    string

	JWTSecret       string
	SessionTokenTTL time.Duration
	SessionIdleTTL  time.Duration

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	GeminiAPIKey  string
	GeminiModel   string
	ChatRateLimit time.Duration

	MockDelay     time.Duration
	ChatMockDelay time.Duration

	MeiliSearchHost string
	MeiliMasterKey  string

	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string

	DigestSchedule string
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:5173"),

		DatabaseURL: databaseURL(),
		RedisURL:    os.Getenv("REDIS_URL"),

		JWTSecret: getEnv("JWT_SECRET", "campussync-dev-secret"),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", "http://localhost:5173/auth/callback"),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", os.Getenv("API_KEY")),
		GeminiModel:  getEnv("GEMINI_MODEL", DefaultGeminiModel),

		MeiliSearchHost: normalizeMeiliHost(os.Getenv("MEILISEARCH_HOST")),
		MeiliMasterKey:  os.Getenv("MEILI_MASTER_KEY"),

		CloudinaryCloudName:    os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:       os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret:    os.Getenv("CLOUDINARY_API_SECRET"),
		CloudinaryUploadFolder: getEnv("CLOUDINARY_UPLOAD_FOLDER", "campussync"),

		DigestSchedule: getEnv("DIGEST_SCHEDULE", "0 7 * * *"),
	}

	durations := []struct {
		key      string
		fallback string
		dst      *time.Duration
	}{
		{"SESSION_TOKEN_TTL", "168h", &cfg.SessionTokenTTL},
		{"SESSION_IDLE_TTL", "30m", &cfg.SessionIdleTTL},
		{"CHAT_RATE_LIMIT", "2s", &cfg.ChatRateLimit},
		{"MOCK_DELAY", "500ms", &cfg.MockDelay},
		{"CHAT_MOCK_DELAY", "800ms", &cfg.ChatMockDelay},
	}
	for _, d := range durations {
		raw := os.Getenv(d.key)
		if raw == "" {
			raw = d.fallback
		}
		v, err := parseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", d.key, err)
		}
		*d.dst = v
	}

	return cfg, nil
}

// BackendConfigured reports whether the remote credential database and document store are both
// reachable by configuration. When false every session runs against fixture data.
func (c *Config) BackendConfigured() bool {
	return c.DatabaseURL != "" && c.RedisURL != ""
}

// ChatConfigured reports whether the Gemini key looks usable.
func (c *Config) ChatConfigured() bool {
	return ValidAPIKey(c.GeminiAPIKey)
}

func (c *Config) GoogleConfigured() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

func (c *Config) CloudinaryConfigured() bool {
	return c.CloudinaryCloudName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

func (c *Config) SearchConfigured() bool {
	return c.MeiliSearchHost != ""
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func ValidAPIKey(key string) bool {
	return len(key) > 10 && key != placeholderAPIKey
}

func databaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	host := os.Getenv("DB_HOST")
	if host == "" {
		return ""
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		host,
		getEnv("DB_USER", "postgres"),
		os.Getenv("DB_PASSWORD"),
		getEnv("DB_NAME", "campussync"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_SSLMODE", "disable"),
	)
}

func normalizeMeiliHost(host string) string {
	if host == "" {
		return ""
	}
	if !strings.HasPrefix(host, "http") {
		host = "http://" + host + ":7700"
	}
	return host
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func parseDuration(s string) (time.Duration, error) {
	// Bare integers are milliseconds.
	if ms, err := strconv.Atoi(s); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	return time.ParseDuration(s)
}
