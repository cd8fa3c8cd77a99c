package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"funneldeck-backend/internal/config"
	"funneldeck-backend/internal/llm"
	"funneldeck-backend/internal/models"
	"funneldeck-backend/internal/retry"
)

// TextGenerator expands one slide spec into full slide content. A failure
// here, after retries, is fatal to the job: a slide without text is not a
// valid output.
type TextGenerator interface {
	GenerateSlide(ctx context.Context, spec models.SlideSpec, custom models.CustomizationOptions, brand models.BrandContext) (*models.SlideContent, error)
}

// SlideImageGenerator is the best-effort image leg of the pipeline.
type SlideImageGenerator interface {
	GenerateSlideImage(ctx context.Context, presentationID uuid.UUID, slideNumber int, imagePrompt, imageStyle, accentColor string) (string, bool)
}

// Job is the in-memory unit of work for one stream connection: the
// pending slide specs (already cut down to the resume offset), the
// generation options, and the carry-over state from a prior run.
type Job struct {
	PresentationID uuid.UUID
	Specs          []models.SlideSpec
	// CompletedBefore is how many slides an interrupted prior run already
	// produced; those slides are immutable carry-over and are never
	// re-generated or re-numbered.
	CompletedBefore int
	// TotalExpected is the cardinality hint from the presentation record.
	// Zero means unknown; progress then derives from the spec count.
	TotalExpected int
	Customization models.CustomizationOptions
	Brand         models.BrandContext
}

// SlideCallback receives each finished slide with the running progress
// percentage. It is the orchestrator's only channel to the outside world
// and is awaited before the next slide starts, so events and persistence
// stay in slide order. A callback error aborts the job.
type SlideCallback func(slide models.Slide, progress int) error

// GenerationError carries how many slides completed before a mandatory
// step failed, so the caller can classify the job as draft or failed.
type GenerationError struct {
	SlidesCompleted int
	Err             error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation stopped after %d slides: %v", e.SlidesCompleted, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Orchestrator produces slides strictly one at a time, in spec order.
type Orchestrator struct {
	text        TextGenerator
	images      SlideImageGenerator
	textTimeout time.Duration
	maxAttempts int
	baseDelay   time.Duration
}

func NewOrchestrator(text TextGenerator, images SlideImageGenerator, cfg *config.Config) *Orchestrator {
	return &Orchestrator{
		text:        text,
		images:      images,
		textTimeout: cfg.TextTimeout,
		maxAttempts: cfg.RetryMaxAttempts,
		baseDelay:   cfg.RetryBaseDelay,
	}
}

// Generate runs the job to completion or first fatal error. Ordering is a
// correctness requirement: slide numbering and resume offsets depend on
// specs being processed in sequence.
func (o *Orchestrator) Generate(ctx context.Context, job Job, onSlide SlideCallback) error {
	total := job.TotalExpected
	if total <= 0 {
		total = job.CompletedBefore + len(job.Specs)
	}

	for i, spec := range job.Specs {
		if err := ctx.Err(); err != nil {
			return &GenerationError{SlidesCompleted: i, Err: err}
		}

		content, err := o.generateContent(ctx, spec, job.Customization, job.Brand)
		if err != nil {
			return &GenerationError{SlidesCompleted: i, Err: err}
		}

		slide := models.Slide{
			SlideNumber:  spec.SlideNumber,
			Title:        content.Title,
			Section:      spec.Section,
			Body:         content.Body,
			SpeakerNotes: content.SpeakerNotes,
			Layout:       content.Layout,
			ImagePrompt:  content.ImagePrompt,
		}

		if slide.ImagePrompt != "" && slide.ImageURL == "" &&
			job.Customization.ImageStyle != models.ImageStyleNone {
			url, ok := o.images.GenerateSlideImage(ctx, job.PresentationID, slide.SlideNumber,
				slide.ImagePrompt, job.Customization.ImageStyle, job.Brand.AccentColor)
			if ok {
				now := time.Now().UTC()
				slide.ImageURL = url
				slide.ImageGeneratedAt = &now
			}
		}

		completed := job.CompletedBefore + i + 1
		progress := progressPercent(completed, total)

		if err := onSlide(slide, progress); err != nil {
			return &GenerationError{SlidesCompleted: i, Err: fmt.Errorf("slide callback: %w", err)}
		}

		slog.Info("slide generated",
			"presentation_id", job.PresentationID,
			"slide", slide.SlideNumber,
			"progress", progress,
			"has_image", slide.ImageURL != "")
	}

	return nil
}

func (o *Orchestrator) generateContent(ctx context.Context, spec models.SlideSpec, custom models.CustomizationOptions, brand models.BrandContext) (*models.SlideContent, error) {
	var content *models.SlideContent
	err := retry.Do(ctx, "slide_text", retry.Policy{
		MaxAttempts: o.maxAttempts,
		BaseDelay:   o.baseDelay,
		Classify: func(err error) retry.Class {
			if errors.Is(err, llm.ErrEmptyCompletion) {
				return retry.Terminal
			}
			return retry.Retryable
		},
	}, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, o.textTimeout)
		defer cancel()

		c, err := o.text.GenerateSlide(callCtx, spec, custom, brand)
		if err != nil {
			return err
		}
		content = c
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("slide %d text generation: %w", spec.SlideNumber, err)
	}
	return content, nil
}

// progressPercent clamps to [0,100]; with an unknown or inconsistent
// total it never reports 100 early.
func progressPercent(completed, total int) int {
	if total <= 0 {
		return 0
	}
	pct := completed * 100 / total
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
