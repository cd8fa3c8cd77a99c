package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"funneldeck-backend/internal/config"
	"funneldeck-backend/internal/imagegen"
	"funneldeck-backend/internal/services"
)

type fakeProvider struct {
	generateCalls int
	downloadCalls int
	generateFn    func(attempt int) (string, error)
	downloadErr   error
	lastPrompt    string
}

func (f *fakeProvider) Generate(ctx context.Context, req imagegen.GenerateRequest) (string, error) {
	f.generateCalls++
	f.lastPrompt = req.Prompt
	return f.generateFn(f.generateCalls)
}

func (f *fakeProvider) Download(ctx context.Context, url string) ([]byte, error) {
	f.downloadCalls++
	if f.downloadErr != nil {
		return nil, f.downloadErr
	}
	return []byte("png-bytes"), nil
}

type fakeUploader struct {
	uploadCalls int
	uploadErr   error
}

func (f *fakeUploader) UploadSlideImage(presentationID uuid.UUID, slideNumber int, data []byte) (string, string, error) {
	f.uploadCalls++
	if f.uploadErr != nil {
		return "", "", f.uploadErr
	}
	return "path.png", "https://cdn.test/path.png", nil
}

func imageTestConfig() *config.Config {
	return &config.Config{
		ImageSize:        "1024x1024",
		ImageQuality:     "standard",
		ImageTimeout:     time.Second,
		DownloadTimeout:  time.Second,
		RetryMaxAttempts: 3,
		RetryBaseDelay:   time.Millisecond,
	}
}

func TestImageService_Success(t *testing.T) {
	provider := &fakeProvider{generateFn: func(int) (string, error) {
		return "https://temp.test/img.png", nil
	}}
	uploader := &fakeUploader{}
	svc := services.NewImageService(provider, uploader, imageTestConfig())

	url, ok := svc.GenerateSlideImage(context.Background(), uuid.New(), 1, "a rocket launch", "photo", "#FF5733")

	assert.True(t, ok)
	assert.Equal(t, "https://cdn.test/path.png", url)
	assert.Equal(t, 1, provider.generateCalls)
	assert.Equal(t, 1, uploader.uploadCalls)
}

func TestImageService_PromptComposition(t *testing.T) {
	provider := &fakeProvider{generateFn: func(int) (string, error) {
		return "https://temp.test/img.png", nil
	}}
	svc := services.NewImageService(provider, &fakeUploader{}, imageTestConfig())

	svc.GenerateSlideImage(context.Background(), uuid.New(), 1, "a rocket launch", "illustration", "#FF5733")

	assert.Contains(t, provider.lastPrompt, "illustration")
	assert.Contains(t, provider.lastPrompt, "a rocket launch")
	assert.Contains(t, provider.lastPrompt, "#FF5733")
}

// An empty provider result is terminal: the same prompt would be rejected
// again, so exactly one call is made.
func TestImageService_EmptyResultNotRetried(t *testing.T) {
	provider := &fakeProvider{generateFn: func(int) (string, error) {
		return "", imagegen.ErrEmptyResult
	}}
	uploader := &fakeUploader{}
	svc := services.NewImageService(provider, uploader, imageTestConfig())

	url, ok := svc.GenerateSlideImage(context.Background(), uuid.New(), 1, "rejected prompt", "photo", "")

	assert.False(t, ok)
	assert.Empty(t, url)
	assert.Equal(t, 1, provider.generateCalls)
	assert.Equal(t, 0, uploader.uploadCalls)
}

func TestImageService_TransientFailureRetried(t *testing.T) {
	provider := &fakeProvider{generateFn: func(attempt int) (string, error) {
		if attempt == 1 {
			return "", errors.New("connection reset")
		}
		return "https://temp.test/img.png", nil
	}}
	svc := services.NewImageService(provider, &fakeUploader{}, imageTestConfig())

	url, ok := svc.GenerateSlideImage(context.Background(), uuid.New(), 2, "a chart", "photo", "")

	assert.True(t, ok)
	assert.Equal(t, "https://cdn.test/path.png", url)
	assert.Equal(t, 2, provider.generateCalls)
}

// Storage trouble degrades to "no image" instead of failing the slide.
func TestImageService_UploadExhaustionDegrades(t *testing.T) {
	provider := &fakeProvider{generateFn: func(int) (string, error) {
		return "https://temp.test/img.png", nil
	}}
	uploader := &fakeUploader{uploadErr: errors.New("bucket unavailable")}
	svc := services.NewImageService(provider, uploader, imageTestConfig())

	url, ok := svc.GenerateSlideImage(context.Background(), uuid.New(), 3, "a graph", "photo", "")

	assert.False(t, ok)
	assert.Empty(t, url)
	assert.Equal(t, 1, provider.generateCalls)
	assert.Equal(t, 3, uploader.uploadCalls)
	// download+upload retry as one cycle
	assert.Equal(t, 3, provider.downloadCalls)
}
