package middleware_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"funneldeck-backend/internal/middleware"
)

func TestRateLimiter_AllowsBurstThenDenies(t *testing.T) {
	limiter := middleware.NewRateLimiter(3)

	assert.True(t, limiter.Allow("user-1", "presentations/generate"))
	assert.True(t, limiter.Allow("user-1", "presentations/generate"))
	assert.True(t, limiter.Allow("user-1", "presentations/generate"))
	assert.False(t, limiter.Allow("user-1", "presentations/generate"))
}

func TestRateLimiter_KeysAreIndependent(t *testing.T) {
	limiter := middleware.NewRateLimiter(1)

	assert.True(t, limiter.Allow("user-1", "presentations/generate"))
	assert.False(t, limiter.Allow("user-1", "presentations/generate"))

	// A different user, and a different endpoint for the same user, each
	// get their own budget.
	assert.True(t, limiter.Allow("user-2", "presentations/generate"))
	assert.True(t, limiter.Allow("user-1", "other/endpoint"))
}

func TestRateLimiter_MinimumOnePerMinute(t *testing.T) {
	limiter := middleware.NewRateLimiter(0)
	assert.True(t, limiter.Allow("user-1", "presentations/generate"))
	assert.False(t, limiter.Allow("user-1", "presentations/generate"))
}
