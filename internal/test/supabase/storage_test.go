package supabase_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"funneldeck-backend/internal/supabase"
)

func TestSlideImagePath(t *testing.T) {
	presentationID := uuid.New()
	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

	path := supabase.SlideImagePath(presentationID, 7, now)

	expected := fmt.Sprintf("presentations/%s/slides/slide_7_%d.png", presentationID, now.UnixNano())
	assert.Equal(t, expected, path)
}

// Retried uploads must never overwrite an earlier attempt's object, so the
// path has to differ between calls.
func TestSlideImagePath_UniquePerAttempt(t *testing.T) {
	presentationID := uuid.New()

	first := supabase.SlideImagePath(presentationID, 1, time.Now())
	second := supabase.SlideImagePath(presentationID, 1, time.Now().Add(time.Nanosecond))

	assert.NotEqual(t, first, second)
}

func TestStorageClient_GetPublicURL(t *testing.T) {
	client, err := supabase.NewStorageClient("https://proj.supabase.co/", "test-key", "slide-images")
	require.NoError(t, err)

	url := client.GetPublicURL("presentations/abc/slides/slide_1_123.png")
	assert.Equal(t,
		"https://proj.supabase.co/storage/v1/object/public/slide-images/presentations/abc/slides/slide_1_123.png",
		url)
}
