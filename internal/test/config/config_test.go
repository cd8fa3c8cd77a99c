package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"funneldeck-backend/internal/config"
)

func validConfig() *config.Config {
	return &config.Config{
		GeminiAPIKey:           "gemini-key",
		ImageAPIKey:            "image-key",
		SupabaseURL:            "https://proj.supabase.co",
		SupabasePublishableKey: "publishable-key",
		SupabaseJWTSecret:      "jwt-secret",
		StreamDeadline:         5 * time.Minute,
		HeartbeatInterval:      15 * time.Second,
	}
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestConfig_Validate_MissingKeys(t *testing.T) {
	cfg := validConfig()
	cfg.GeminiAPIKey = ""
	assert.ErrorContains(t, cfg.Validate(), "GEMINI_API_KEY")

	cfg = validConfig()
	cfg.SupabaseJWTSecret = ""
	assert.ErrorContains(t, cfg.Validate(), "SUPABASE_JWT_SECRET")
}

// A heartbeat slower than the deadline would never fire before the job is
// cut off.
func TestConfig_Validate_HeartbeatSlowerThanDeadline(t *testing.T) {
	cfg := validConfig()
	cfg.HeartbeatInterval = 10 * time.Minute
	assert.ErrorContains(t, cfg.Validate(), "HEARTBEAT_INTERVAL")
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "gemini-key")
	t.Setenv("IMAGE_API_KEY", "image-key")
	t.Setenv("SUPABASE_URL", "https://proj.supabase.co")
	t.Setenv("SUPABASE_PUBLISHABLE_KEY", "publishable-key")
	t.Setenv("SUPABASE_JWT_SECRET", "jwt-secret")

	cfg, err := config.Load()
	assert.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 5*time.Minute, cfg.StreamDeadline)
	assert.Equal(t, 15*time.Second, cfg.HeartbeatInterval)
	assert.Equal(t, 3, cfg.RetryMaxAttempts)
	assert.Equal(t, "slide-images", cfg.SupabaseStorageBucket)
}
