package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"funneldeck-backend/internal/config"
	"funneldeck-backend/internal/models"
	"funneldeck-backend/internal/services"
	"funneldeck-backend/internal/stream"
	"funneldeck-backend/internal/supabase"
)

// GenerationStore is the persistence surface the stream session needs.
type GenerationStore interface {
	CreatePresentation(ctx context.Context, userID, projectID, structureID uuid.UUID, totalExpected int, customization, brand json.RawMessage) (*models.Presentation, error)
	GetPresentation(ctx context.Context, presentationID, userID uuid.UUID) (*models.Presentation, error)
	GetStructure(ctx context.Context, structureID, userID uuid.UUID) (*models.DeckStructure, error)
	ResetForResume(ctx context.Context, presentationID, userID uuid.UUID) error
	AppendSlide(ctx context.Context, presentationID uuid.UUID, slide models.Slide, progress int) error
	CountSlides(ctx context.Context, presentationID uuid.UUID) (int, error)
	FinalizeCompleted(ctx context.Context, presentationID uuid.UUID) error
	FinalizeInterrupted(ctx context.Context, presentationID uuid.UUID, status models.Status, errorMsg string) error
	CountGeneratingForProject(ctx context.Context, projectID, userID uuid.UUID) (int, error)
}

// SlideGenerator runs one generation job, reporting each slide through
// the callback.
type SlideGenerator interface {
	Generate(ctx context.Context, job services.Job, onSlide services.SlideCallback) error
}

// RateGate admits or rejects fresh generation starts.
type RateGate interface {
	Allow(userID, endpoint string) bool
}

const streamEndpoint = "presentations/generate"

type StreamHandler struct {
	db        GenerationStore
	generator SlideGenerator
	limiter   RateGate
	realtime  *supabase.RealtimeClient

	deadline     time.Duration
	heartbeat    time.Duration
	projectQuota int
}

func NewStreamHandler(db GenerationStore, generator SlideGenerator, limiter RateGate, realtimeClient *supabase.RealtimeClient, cfg *config.Config) *StreamHandler {
	return &StreamHandler{
		db:           db,
		generator:    generator,
		limiter:      limiter,
		realtime:     realtimeClient,
		deadline:     cfg.StreamDeadline,
		heartbeat:    cfg.HeartbeatInterval,
		projectQuota: cfg.ProjectActiveQuota,
	}
}

// session is the state of one live connection.
type session struct {
	presentation *models.Presentation
	specs        []models.SlideSpec // full deck outline
	pending      []models.SlideSpec // what this run still has to generate
	startSlide   int                // 1-indexed first slide of this run
	resuming     bool
	custom       models.CustomizationOptions
	brand        models.BrandContext
}

// Generate godoc
// @Summary     Stream slide generation
// @Description Generates slides for a deck structure and streams each one as a server-sent event. Supports resuming an interrupted run via presentation_id and start_slide.
// @Tags        stream
// @Produce     text/event-stream
// @Security    Bearer
// @Param       project_id query string true "Project ID (UUID)"
// @Param       structure_id query string true "Deck structure ID (UUID), required for fresh jobs"
// @Param       customization query string false "JSON-encoded customization options"
// @Param       brand query string false "JSON-encoded brand context"
// @Param       presentation_id query string false "Presentation to resume"
// @Param       start_slide query int false "1-indexed slide to resume from; 0 means a fresh job"
// @Router      /stream/presentations/generate [get]
func (h *StreamHandler) Generate(c *gin.Context) {
	if h.db == nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "database not available"})
		return
	}

	userID, ok := requestUser(c)
	if !ok {
		return
	}

	req, err := parseStreamRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request", Message: err.Error()})
		return
	}

	// Resume requests bypass rate limiting and quota: a dropped connection
	// must never lock a user out of their own half-finished deck.
	if !req.Resuming() {
		if h.limiter != nil && !h.limiter.Allow(userID.String(), streamEndpoint) {
			c.JSON(http.StatusTooManyRequests, models.ErrorResponse{Error: "rate limit exceeded"})
			return
		}
	}

	sess, status, err := h.initSession(c.Request.Context(), userID, req)
	if err != nil {
		c.JSON(status, models.ErrorResponse{Error: "cannot start generation", Message: err.Error()})
		return
	}

	// Validation is done; from here on errors surface as stream events.
	h.run(c, userID, sess)
}

func parseStreamRequest(c *gin.Context) (*models.StreamRequest, error) {
	req := &models.StreamRequest{
		ProjectID:      c.Query("project_id"),
		StructureID:    c.Query("structure_id"),
		PresentationID: c.Query("presentation_id"),
	}

	if raw := c.Query("start_slide"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("start_slide must be a non-negative integer")
		}
		req.StartSlide = n
	}

	if raw := c.Query("customization"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Customization); err != nil {
			return nil, fmt.Errorf("customization is not valid JSON: %w", err)
		}
	}
	if err := req.Customization.Validate(); err != nil {
		return nil, err
	}

	if raw := c.Query("brand"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Brand); err != nil {
			return nil, fmt.Errorf("brand is not valid JSON: %w", err)
		}
	}

	if !req.Resuming() && req.ProjectID == "" {
		return nil, fmt.Errorf("project_id is required")
	}
	if !req.Resuming() && req.StructureID == "" {
		return nil, fmt.Errorf("structure_id is required")
	}

	return req, nil
}

// initSession validates ownership and loads or creates the presentation
// record. No partial state is created before this succeeds.
func (h *StreamHandler) initSession(ctx context.Context, userID uuid.UUID, req *models.StreamRequest) (*session, int, error) {
	if req.Resuming() {
		return h.initResume(ctx, userID, req)
	}
	return h.initFresh(ctx, userID, req)
}

func (h *StreamHandler) initFresh(ctx context.Context, userID uuid.UUID, req *models.StreamRequest) (*session, int, error) {
	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		return nil, http.StatusBadRequest, fmt.Errorf("invalid project id")
	}
	structureID, err := uuid.Parse(req.StructureID)
	if err != nil {
		return nil, http.StatusBadRequest, fmt.Errorf("invalid structure id")
	}

	if h.projectQuota > 0 {
		active, err := h.db.CountGeneratingForProject(ctx, projectID, userID)
		if err != nil {
			return nil, http.StatusInternalServerError, err
		}
		if active >= h.projectQuota {
			return nil, http.StatusTooManyRequests, fmt.Errorf("project has %d generations in flight", active)
		}
	}

	structure, err := h.db.GetStructure(ctx, structureID, userID)
	if err != nil {
		return nil, http.StatusNotFound, fmt.Errorf("structure not found: %w", err)
	}
	specs, err := structure.DecodeSpecs()
	if err != nil {
		return nil, http.StatusInternalServerError, fmt.Errorf("corrupt slide specs: %w", err)
	}
	if len(specs) == 0 {
		return nil, http.StatusBadRequest, fmt.Errorf("structure has no slides")
	}
	normalizeSpecNumbers(specs)

	custom := req.Customization
	custom.ApplyDefaults()
	customJSON, _ := json.Marshal(custom)
	brandJSON, _ := json.Marshal(req.Brand)

	p, err := h.db.CreatePresentation(ctx, userID, projectID, structureID, len(specs), customJSON, brandJSON)
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}

	return &session{
		presentation: p,
		specs:        specs,
		pending:      specs,
		startSlide:   1,
		custom:       custom,
		brand:        req.Brand,
	}, http.StatusOK, nil
}

func (h *StreamHandler) initResume(ctx context.Context, userID uuid.UUID, req *models.StreamRequest) (*session, int, error) {
	presentationID, err := uuid.Parse(req.PresentationID)
	if err != nil {
		return nil, http.StatusBadRequest, fmt.Errorf("invalid presentation id")
	}

	p, err := h.db.GetPresentation(ctx, presentationID, userID)
	if err != nil {
		return nil, http.StatusNotFound, fmt.Errorf("presentation not found: %w", err)
	}
	if p.Status == models.StatusCompleted {
		return nil, http.StatusBadRequest, fmt.Errorf("presentation is already completed")
	}

	persisted, err := h.db.CountSlides(ctx, p.ID)
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}
	if persisted < req.StartSlide-1 {
		return nil, http.StatusBadRequest,
			fmt.Errorf("cannot resume from slide %d: only %d slides generated", req.StartSlide, persisted)
	}

	structure, err := h.db.GetStructure(ctx, p.StructureID, userID)
	if err != nil {
		return nil, http.StatusNotFound, fmt.Errorf("structure not found: %w", err)
	}
	specs, err := structure.DecodeSpecs()
	if err != nil {
		return nil, http.StatusInternalServerError, fmt.Errorf("corrupt slide specs: %w", err)
	}
	normalizeSpecNumbers(specs)

	if req.StartSlide > len(specs)+1 {
		return nil, http.StatusBadRequest,
			fmt.Errorf("start_slide %d exceeds deck size %d", req.StartSlide, len(specs))
	}

	// A resumed run uses the options the job was started with, even when
	// the client omits them on reconnect.
	var custom models.CustomizationOptions
	if len(p.Customization) > 0 {
		_ = json.Unmarshal(p.Customization, &custom)
	}
	custom.ApplyDefaults()
	var brand models.BrandContext
	if len(p.BrandContext) > 0 {
		_ = json.Unmarshal(p.BrandContext, &brand)
	}

	if err := h.db.ResetForResume(ctx, p.ID, userID); err != nil {
		return nil, http.StatusConflict, err
	}

	return &session{
		presentation: p,
		specs:        specs,
		pending:      specs[req.StartSlide-1:],
		startSlide:   req.StartSlide,
		resuming:     true,
		custom:       custom,
		brand:        brand,
	}, http.StatusOK, nil
}

// run drives the connection through Connected -> Generating -> terminal.
func (h *StreamHandler) run(c *gin.Context, userID uuid.UUID, sess *session) {
	emitter, err := stream.NewEmitter(c.Writer)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
		return
	}

	p := sess.presentation
	totalExpected := len(sess.specs)
	if p.TotalExpectedSlides.Valid {
		totalExpected = int(p.TotalExpectedSlides.Int64)
	}

	// connected always precedes any slide or progress event.
	if err := emitter.Event(models.EventConnected, models.ConnectedEvent{
		PresentationID: p.ID.String(),
		TotalSlides:    len(sess.specs),
		Resuming:       sess.resuming,
		StartSlide:     sess.startSlide,
	}); err != nil {
		slog.Warn("client gone before connected event", "presentation_id", p.ID, "error", err)
		h.finalizeInterrupted(c, sess, false, "connection closed before generation started")
		return
	}

	if h.realtime != nil {
		_ = h.realtime.PublishPresentationEvent(p.ID, "generation_started",
			supabase.GenerationStartedPayload(p.ID, len(sess.specs), sess.resuming))
	}

	stopHeartbeat := h.startHeartbeat(emitter, p.ID)
	defer stopHeartbeat()

	// Persistence runs on its own goroutine so a slow or failing database
	// write never blocks delivery, while the single queue keeps writes in
	// slide order. Failures are logged, not fatal.
	persistCtx := context.WithoutCancel(c.Request.Context())
	appendCh := make(chan models.SlideGeneratedEvent, len(sess.pending)+1)
	persistDone := make(chan struct{})
	go func() {
		defer close(persistDone)
		for item := range appendCh {
			if err := h.db.AppendSlide(persistCtx, p.ID, item.Slide, item.Progress); err != nil {
				slog.Error("failed to persist slide",
					"presentation_id", p.ID, "slide", item.Slide.SlideNumber, "error", err)
			}
		}
	}()

	genCtx, cancel := context.WithTimeout(c.Request.Context(), h.deadline)
	defer cancel()

	var terminated atomic.Bool
	onSlide := func(slide models.Slide, progress int) error {
		if terminated.Load() {
			return fmt.Errorf("stream terminated")
		}
		item := models.SlideGeneratedEvent{Slide: slide, Progress: progress}
		if err := emitter.Event(models.EventSlideGenerated, item); err != nil {
			return err
		}
		appendCh <- item
		return emitter.Event(models.EventProgress, models.ProgressEvent{
			Progress:        progress,
			SlidesGenerated: slide.SlideNumber,
		})
	}

	job := services.Job{
		PresentationID:  p.ID,
		Specs:           sess.pending,
		CompletedBefore: sess.startSlide - 1,
		TotalExpected:   totalExpected,
		Customization:   sess.custom,
		Brand:           sess.brand,
	}

	resultCh := make(chan error, 1)
	go func() {
		resultCh <- h.generator.Generate(genCtx, job, onSlide)
	}()

	var genErr error
	timedOut := false
	select {
	case genErr = <-resultCh:
	case <-genCtx.Done():
		// The race cancels the wait; in-flight provider calls are bounded
		// by their own sub-operation timeouts, so the orchestrator returns
		// shortly after.
		terminated.Store(true)
		cancel()
		timedOut = errors.Is(genCtx.Err(), context.DeadlineExceeded)
		genErr = <-resultCh
	}

	stopHeartbeat()
	close(appendCh)
	<-persistDone

	if genErr == nil && !timedOut {
		h.finalizeCompleted(c, emitter, sess)
		return
	}

	var message string
	switch {
	case timedOut:
		message = fmt.Sprintf("generation timed out after %s", h.deadline)
	case genErr != nil:
		message = genErr.Error()
	default:
		message = "connection closed"
	}
	h.finalizeInterruptedWithEmitter(c, emitter, sess, timedOut, message)
}

// startHeartbeat emits protocol comments at a fixed interval. The
// returned stop function is idempotent, and a failed write only logs:
// heartbeat trouble must never leak into the generation flow.
func (h *StreamHandler) startHeartbeat(emitter *stream.Emitter, presentationID uuid.UUID) func() {
	stopCh := make(chan struct{})
	done := make(chan struct{})
	var once sync.Once

	go func() {
		defer close(done)
		ticker := time.NewTicker(h.heartbeat)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := emitter.Comment("heartbeat"); err != nil {
					slog.Debug("heartbeat write failed", "presentation_id", presentationID, "error", err)
				}
			case <-stopCh:
				return
			}
		}
	}()

	// Waits for the goroutine so no heartbeat write can trail the terminal
	// event.
	return func() {
		once.Do(func() { close(stopCh) })
		<-done
	}
}

func (h *StreamHandler) finalizeCompleted(c *gin.Context, emitter *stream.Emitter, sess *session) {
	ctx := context.WithoutCancel(c.Request.Context())
	p := sess.presentation

	if err := h.db.FinalizeCompleted(ctx, p.ID); err != nil {
		slog.Error("failed to finalize completed presentation", "presentation_id", p.ID, "error", err)
	}

	_ = emitter.Event(models.EventCompleted, models.CompletedEvent{
		PresentationID: p.ID.String(),
		TotalSlides:    len(sess.specs),
		Progress:       100,
	})

	if h.realtime != nil {
		_ = h.realtime.PublishPresentationEvent(p.ID, "generation_completed",
			supabase.GenerationCompletedPayload(p.ID, len(sess.specs)))
	}

	slog.Info("generation completed", "presentation_id", p.ID, "slides", len(sess.specs))
}

// finalizeInterrupted classifies a stopped job from the persisted slide
// count: at least one slide means a resumable draft, zero means failed.
func (h *StreamHandler) finalizeInterrupted(c *gin.Context, sess *session, timedOut bool, message string) {
	h.finalizeInterruptedWithEmitter(c, nil, sess, timedOut, message)
}

func (h *StreamHandler) finalizeInterruptedWithEmitter(c *gin.Context, emitter *stream.Emitter, sess *session, timedOut bool, message string) {
	ctx := context.WithoutCancel(c.Request.Context())
	p := sess.presentation

	persisted, err := h.db.CountSlides(ctx, p.ID)
	if err != nil {
		slog.Error("failed to count persisted slides", "presentation_id", p.ID, "error", err)
		persisted = 0
	}

	status := models.StatusFailed
	resumable := false
	if persisted >= 1 {
		status = models.StatusDraft
		resumable = true
		message = fmt.Sprintf("%s (stopped after slide %d)", message, persisted)
	}

	if err := h.db.FinalizeInterrupted(ctx, p.ID, status, message); err != nil {
		slog.Error("failed to finalize interrupted presentation",
			"presentation_id", p.ID, "status", status, "error", err)
	}

	reason := models.ReasonGenerationFailed
	if timedOut {
		reason = models.ReasonDeadlineExceeded
	}

	if emitter != nil {
		_ = emitter.Event(models.EventError, models.ErrorEvent{
			Reason:          reason,
			Message:         message,
			SlidesGenerated: persisted,
			Resumable:       resumable,
		})
	}

	if h.realtime != nil {
		_ = h.realtime.PublishPresentationEvent(p.ID, "generation_interrupted",
			supabase.GenerationInterruptedPayload(p.ID, string(status), persisted, message))
	}

	slog.Warn("generation interrupted",
		"presentation_id", p.ID, "status", status, "slides", persisted, "reason", reason)
}

// normalizeSpecNumbers assigns 1-based positions to specs that carry none,
// preserving explicit numbering from the structure.
func normalizeSpecNumbers(specs []models.SlideSpec) {
	for i := range specs {
		if specs[i].SlideNumber == 0 {
			specs[i].SlideNumber = i + 1
		}
	}
}
