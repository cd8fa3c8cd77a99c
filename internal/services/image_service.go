package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"funneldeck-backend/internal/config"
	"funneldeck-backend/internal/imagegen"
	"funneldeck-backend/internal/retry"
)

// ImageProvider generates a temporary image URL and downloads it.
type ImageProvider interface {
	Generate(ctx context.Context, req imagegen.GenerateRequest) (string, error)
	Download(ctx context.Context, url string) ([]byte, error)
}

// ImageUploader stores image bytes durably and returns (path, publicURL).
type ImageUploader interface {
	UploadSlideImage(presentationID uuid.UUID, slideNumber int, data []byte) (string, string, error)
}

// ImageService turns a slide's image prompt into a durably hosted image
// URL. It is strictly best-effort: every expected failure mode degrades to
// "no image" so a slide can ship without one.
type ImageService struct {
	provider ImageProvider
	uploader ImageUploader

	size            string
	quality         string
	imageTimeout    time.Duration
	downloadTimeout time.Duration
	maxAttempts     int
	baseDelay       time.Duration
}

func NewImageService(provider ImageProvider, uploader ImageUploader, cfg *config.Config) *ImageService {
	return &ImageService{
		provider:        provider,
		uploader:        uploader,
		size:            cfg.ImageSize,
		quality:         cfg.ImageQuality,
		imageTimeout:    cfg.ImageTimeout,
		downloadTimeout: cfg.DownloadTimeout,
		maxAttempts:     cfg.RetryMaxAttempts,
		baseDelay:       cfg.RetryBaseDelay,
	}
}

// GenerateSlideImage produces a public URL for the slide's image, or
// ("", false) when no image could be produced. It never fails the caller.
func (s *ImageService) GenerateSlideImage(ctx context.Context, presentationID uuid.UUID, slideNumber int, imagePrompt, imageStyle, accentColor string) (string, bool) {
	prompt := composeImagePrompt(imagePrompt, imageStyle, accentColor)

	// Provider call under its own timeout per attempt. An empty result is
	// terminal; a timeout or transient error is worth another attempt.
	var tempURL string
	err := retry.Do(ctx, "image_generate", retry.Policy{
		MaxAttempts: s.maxAttempts,
		BaseDelay:   s.baseDelay,
		Classify: func(err error) retry.Class {
			if errors.Is(err, imagegen.ErrEmptyResult) {
				return retry.Terminal
			}
			return retry.Retryable
		},
	}, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, s.imageTimeout)
		defer cancel()

		url, err := s.provider.Generate(callCtx, imagegen.GenerateRequest{
			Prompt:  prompt,
			Size:    s.size,
			Quality: s.quality,
		})
		if err != nil {
			return err
		}
		tempURL = url
		return nil
	})
	if err != nil {
		slog.Warn("slide image generation failed, continuing without image",
			"presentation_id", presentationID, "slide", slideNumber, "error", err)
		return "", false
	}

	// Download and re-host under the same attempt budget. A failed upload
	// retries the whole cycle; the timestamped storage path means an
	// earlier cycle's object is orphaned rather than overwritten.
	var publicURL string
	err = retry.Do(ctx, "image_store", retry.Policy{
		MaxAttempts: s.maxAttempts,
		BaseDelay:   s.baseDelay,
	}, func(ctx context.Context) error {
		dlCtx, cancel := context.WithTimeout(ctx, s.downloadTimeout)
		defer cancel()

		data, err := s.provider.Download(dlCtx, tempURL)
		if err != nil {
			return fmt.Errorf("download: %w", err)
		}

		_, url, err := s.uploader.UploadSlideImage(presentationID, slideNumber, data)
		if err != nil {
			return fmt.Errorf("upload: %w", err)
		}
		publicURL = url
		return nil
	})
	if err != nil {
		slog.Warn("slide image storage failed, continuing without image",
			"presentation_id", presentationID, "slide", slideNumber, "error", err)
		return "", false
	}

	return publicURL, true
}

func composeImagePrompt(imagePrompt, imageStyle, accentColor string) string {
	prefix := stylePrefix(imageStyle)
	prompt := prefix + imagePrompt
	if accentColor != "" {
		prompt += fmt.Sprintf(" Use %s as the accent color.", accentColor)
	}
	return prompt
}

func stylePrefix(imageStyle string) string {
	switch imageStyle {
	case "illustration":
		return "A modern flat illustration, clean vector shapes: "
	case "abstract":
		return "An abstract composition with soft gradients and geometric forms: "
	default:
		return "A professional photograph, natural lighting, shallow depth of field: "
	}
}
