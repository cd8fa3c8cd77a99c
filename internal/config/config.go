package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Gemini (slide text generation)
	GeminiAPIKey string
	GeminiModel  string

	// Image generation provider
	ImageAPIKey     string
	ImageAPIBaseURL string
	ImageSize       string
	ImageQuality    string

	// Supabase
	SupabaseURL            string
	SupabasePublishableKey string
	SupabaseJWTSecret      string
	SupabaseStorageBucket  string

	// Database
	DatabaseURL string

	// Server
	Port        string
	Environment string
	BaseURL     string

	// Generation pipeline tuning
	StreamDeadline    time.Duration // overall per-job deadline
	HeartbeatInterval time.Duration
	TextTimeout       time.Duration // single text-generation call
	ImageTimeout      time.Duration // single image-provider call
	DownloadTimeout   time.Duration // single image download
	RetryMaxAttempts  int
	RetryBaseDelay    time.Duration

	// Gate policy
	StreamRatePerMinute int // fresh generation starts per user+endpoint
	ProjectActiveQuota  int // concurrent generating presentations per project
}

func Load() (*Config, error) {
	// Local development reads a .env file; absence is fine in production.
	_ = godotenv.Load()

	cfg := &Config{
		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),

		ImageAPIKey:     getEnv("IMAGE_API_KEY", ""),
		ImageAPIBaseURL: getEnv("IMAGE_API_BASE_URL", "https://api.openai.com/v1/"),
		ImageSize:       getEnv("IMAGE_SIZE", "1024x1024"),
		ImageQuality:    getEnv("IMAGE_QUALITY", "standard"),

		SupabaseURL:            getEnv("SUPABASE_URL", ""),
		SupabasePublishableKey: getEnv("SUPABASE_PUBLISHABLE_KEY", ""),
		SupabaseJWTSecret:      getEnv("SUPABASE_JWT_SECRET", ""),
		SupabaseStorageBucket:  getEnv("SUPABASE_STORAGE_BUCKET", "slide-images"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:8080"),

		StreamDeadline:    getEnvDuration("STREAM_DEADLINE", 5*time.Minute),
		HeartbeatInterval: getEnvDuration("HEARTBEAT_INTERVAL", 15*time.Second),
		TextTimeout:       getEnvDuration("TEXT_TIMEOUT", 45*time.Second),
		ImageTimeout:      getEnvDuration("IMAGE_TIMEOUT", 60*time.Second),
		DownloadTimeout:   getEnvDuration("DOWNLOAD_TIMEOUT", 30*time.Second),
		RetryMaxAttempts:  getEnvInt("RETRY_MAX_ATTEMPTS", 3),
		RetryBaseDelay:    getEnvDuration("RETRY_BASE_DELAY", time.Second),

		StreamRatePerMinute: getEnvInt("STREAM_RATE_PER_MINUTE", 5),
		ProjectActiveQuota:  getEnvInt("PROJECT_ACTIVE_QUOTA", 3),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}
	if c.ImageAPIKey == "" {
		return fmt.Errorf("IMAGE_API_KEY is required")
	}
	if c.SupabaseURL == "" {
		return fmt.Errorf("SUPABASE_URL is required")
	}
	if c.SupabasePublishableKey == "" {
		return fmt.Errorf("SUPABASE_PUBLISHABLE_KEY is required")
	}
	if c.SupabaseJWTSecret == "" {
		return fmt.Errorf("SUPABASE_JWT_SECRET is required")
	}
	if c.HeartbeatInterval >= c.StreamDeadline {
		return fmt.Errorf("HEARTBEAT_INTERVAL must be shorter than STREAM_DEADLINE")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
