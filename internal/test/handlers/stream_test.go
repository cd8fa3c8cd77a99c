package handlers_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"funneldeck-backend/internal/config"
	"funneldeck-backend/internal/handlers"
	"funneldeck-backend/internal/middleware"
	"funneldeck-backend/internal/models"
	"funneldeck-backend/internal/services"
)

type fakeStore struct {
	mu            sync.Mutex
	presentations map[uuid.UUID]*models.Presentation
	structures    map[uuid.UUID]*models.DeckStructure
	appended      []models.Slide

	persistedBefore int // slides persisted by a prior run
	generatingCount int

	createCalled    bool
	resetCalled     bool
	completedCalled bool
	finalizedStatus models.Status
	finalizedMsg    string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		presentations: make(map[uuid.UUID]*models.Presentation),
		structures:    make(map[uuid.UUID]*models.DeckStructure),
	}
}

func (s *fakeStore) addStructure(userID uuid.UUID, specs []models.SlideSpec) *models.DeckStructure {
	specsJSON, _ := json.Marshal(specs)
	structure := &models.DeckStructure{
		ID:         uuid.New(),
		UserID:     userID,
		ProjectID:  uuid.New(),
		Title:      "Launch deck",
		SlideSpecs: specsJSON,
	}
	s.structures[structure.ID] = structure
	return structure
}

func (s *fakeStore) addPresentation(userID uuid.UUID, structureID uuid.UUID, status models.Status) *models.Presentation {
	p := &models.Presentation{
		ID:          uuid.New(),
		UserID:      userID,
		ProjectID:   uuid.New(),
		StructureID: structureID,
		Status:      status,
		Slides:      json.RawMessage(`[]`),
	}
	s.presentations[p.ID] = p
	return p
}

func (s *fakeStore) CreatePresentation(ctx context.Context, userID, projectID, structureID uuid.UUID, totalExpected int, customization, brand json.RawMessage) (*models.Presentation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createCalled = true
	p := &models.Presentation{
		ID:                  uuid.New(),
		UserID:              userID,
		ProjectID:           projectID,
		StructureID:         structureID,
		Status:              models.StatusGenerating,
		Slides:              json.RawMessage(`[]`),
		TotalExpectedSlides: sql.NullInt64{Int64: int64(totalExpected), Valid: true},
		Customization:       customization,
		BrandContext:        brand,
	}
	s.presentations[p.ID] = p
	return p, nil
}

func (s *fakeStore) GetPresentation(ctx context.Context, presentationID, userID uuid.UUID) (*models.Presentation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.presentations[presentationID]
	if !ok || p.UserID != userID {
		return nil, sql.ErrNoRows
	}
	return p, nil
}

func (s *fakeStore) GetStructure(ctx context.Context, structureID, userID uuid.UUID) (*models.DeckStructure, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	structure, ok := s.structures[structureID]
	if !ok || structure.UserID != userID {
		return nil, sql.ErrNoRows
	}
	return structure, nil
}

func (s *fakeStore) ResetForResume(ctx context.Context, presentationID, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetCalled = true
	p, ok := s.presentations[presentationID]
	if !ok {
		return errors.New("presentation is not resumable")
	}
	p.Status = models.StatusGenerating
	return nil
}

func (s *fakeStore) AppendSlide(ctx context.Context, presentationID uuid.UUID, slide models.Slide, progress int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appended = append(s.appended, slide)
	return nil
}

func (s *fakeStore) CountSlides(ctx context.Context, presentationID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistedBefore + len(s.appended), nil
}

func (s *fakeStore) FinalizeCompleted(ctx context.Context, presentationID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completedCalled = true
	return nil
}

func (s *fakeStore) FinalizeInterrupted(ctx context.Context, presentationID uuid.UUID, status models.Status, errorMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finalizedStatus = status
	s.finalizedMsg = errorMsg
	return nil
}

func (s *fakeStore) CountGeneratingForProject(ctx context.Context, projectID, userID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generatingCount, nil
}

// fakeGenerator emits one slide per spec, optionally failing partway.
type fakeGenerator struct {
	mu        sync.Mutex
	job       services.Job
	failAfter int // fail after this many slides; -1 never fails
	block     bool
}

func (g *fakeGenerator) Generate(ctx context.Context, job services.Job, onSlide services.SlideCallback) error {
	g.mu.Lock()
	g.job = job
	g.mu.Unlock()

	if g.block {
		<-ctx.Done()
		return &services.GenerationError{Err: ctx.Err()}
	}

	total := job.TotalExpected
	if total <= 0 {
		total = job.CompletedBefore + len(job.Specs)
	}
	for i, spec := range job.Specs {
		if g.failAfter >= 0 && i >= g.failAfter {
			return &services.GenerationError{
				SlidesCompleted: i,
				Err:             errors.New("text generation exhausted"),
			}
		}
		slide := models.Slide{
			SlideNumber: spec.SlideNumber,
			Title:       spec.Title,
			Body:        []string{"content"},
		}
		progress := (job.CompletedBefore + i + 1) * 100 / total
		if err := onSlide(slide, progress); err != nil {
			return &services.GenerationError{SlidesCompleted: i, Err: err}
		}
	}
	return nil
}

func (g *fakeGenerator) receivedJob() services.Job {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.job
}

type fakeGate struct{ allow bool }

func (f *fakeGate) Allow(userID, endpoint string) bool { return f.allow }

func streamTestConfig() *config.Config {
	return &config.Config{
		StreamDeadline:     5 * time.Second,
		HeartbeatInterval:  time.Minute,
		ProjectActiveQuota: 3,
	}
}

func streamRouter(userID uuid.UUID, h *handlers.StreamHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID.String())
	})
	router.GET("/stream", h.Generate)
	return router
}

func doStream(router *gin.Engine, query string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("GET", "/stream?"+query, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// eventOrder returns the byte offset of each named event, requiring all to
// be present.
func eventOrder(t *testing.T, body string, events ...string) []int {
	t.Helper()
	offsets := make([]int, len(events))
	for i, name := range events {
		idx := strings.Index(body, "event: "+name)
		require.GreaterOrEqual(t, idx, 0, "event %q not found in stream", name)
		offsets[i] = idx
	}
	return offsets
}

func TestStreamHandler_FreshJob(t *testing.T) {
	userID := uuid.New()
	store := newFakeStore()
	structure := store.addStructure(userID, []models.SlideSpec{
		{SlideNumber: 1, Title: "Problem"},
		{SlideNumber: 2, Title: "Solution"},
	})
	generator := &fakeGenerator{failAfter: -1}
	h := handlers.NewStreamHandler(store, generator, &fakeGate{allow: true}, nil, streamTestConfig())

	w := doStream(streamRouter(userID, h), fmt.Sprintf(
		"project_id=%s&structure_id=%s", structure.ProjectID, structure.ID))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))

	body := w.Body.String()
	offsets := eventOrder(t, body, "connected", "slide_generated", "progress", "completed")
	assert.IsIncreasing(t, offsets)
	assert.Contains(t, body, `"resuming":false`)
	assert.Contains(t, body, `"total_slides":2`)
	assert.NotContains(t, body, "event: error")

	assert.True(t, store.createCalled)
	assert.True(t, store.completedCalled)
	require.Len(t, store.appended, 2)
	assert.Equal(t, 1, store.appended[0].SlideNumber)
	assert.Equal(t, 2, store.appended[1].SlideNumber)
}

// A presentation_id with start_slide=0 is not a resume; the request falls
// back to a fresh job against the structure.
func TestStreamHandler_StartSlideZeroIsFresh(t *testing.T) {
	userID := uuid.New()
	store := newFakeStore()
	structure := store.addStructure(userID, []models.SlideSpec{{SlideNumber: 1, Title: "Only"}})
	old := store.addPresentation(userID, structure.ID, models.StatusDraft)
	generator := &fakeGenerator{failAfter: -1}
	h := handlers.NewStreamHandler(store, generator, &fakeGate{allow: true}, nil, streamTestConfig())

	w := doStream(streamRouter(userID, h), fmt.Sprintf(
		"project_id=%s&structure_id=%s&presentation_id=%s&start_slide=0",
		structure.ProjectID, structure.ID, old.ID))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"resuming":false`)
	assert.True(t, store.createCalled)
	assert.False(t, store.resetCalled)
}

func TestStreamHandler_Resume(t *testing.T) {
	userID := uuid.New()
	store := newFakeStore()
	structure := store.addStructure(userID, []models.SlideSpec{
		{SlideNumber: 1, Title: "One"},
		{SlideNumber: 2, Title: "Two"},
		{SlideNumber: 3, Title: "Three"},
		{SlideNumber: 4, Title: "Four"},
	})
	p := store.addPresentation(userID, structure.ID, models.StatusDraft)
	store.persistedBefore = 2
	generator := &fakeGenerator{failAfter: -1}
	// The gate denies everything; a resume must never consult it.
	h := handlers.NewStreamHandler(store, generator, &fakeGate{allow: false}, nil, streamTestConfig())

	w := doStream(streamRouter(userID, h), fmt.Sprintf(
		"presentation_id=%s&start_slide=3", p.ID))

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `"resuming":true`)
	assert.Contains(t, body, `"start_slide":3`)
	assert.Contains(t, body, "event: completed")
	assert.True(t, store.resetCalled)
	assert.False(t, store.createCalled)

	job := generator.receivedJob()
	assert.Equal(t, 2, job.CompletedBefore)
	require.Len(t, job.Specs, 2)
	assert.Equal(t, 3, job.Specs[0].SlideNumber)
	assert.Equal(t, 4, job.Specs[1].SlideNumber)
}

func TestStreamHandler_ResumeCompletedRejected(t *testing.T) {
	userID := uuid.New()
	store := newFakeStore()
	structure := store.addStructure(userID, []models.SlideSpec{{SlideNumber: 1, Title: "One"}})
	p := store.addPresentation(userID, structure.ID, models.StatusCompleted)
	h := handlers.NewStreamHandler(store, &fakeGenerator{failAfter: -1}, &fakeGate{allow: true}, nil, streamTestConfig())

	w := doStream(streamRouter(userID, h), fmt.Sprintf("presentation_id=%s&start_slide=1", p.ID))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "already completed")
	assert.False(t, store.resetCalled)
}

func TestStreamHandler_ResumeBeyondPersistedRejected(t *testing.T) {
	userID := uuid.New()
	store := newFakeStore()
	structure := store.addStructure(userID, []models.SlideSpec{
		{SlideNumber: 1, Title: "One"},
		{SlideNumber: 2, Title: "Two"},
		{SlideNumber: 3, Title: "Three"},
	})
	p := store.addPresentation(userID, structure.ID, models.StatusDraft)
	store.persistedBefore = 1
	h := handlers.NewStreamHandler(store, &fakeGenerator{failAfter: -1}, &fakeGate{allow: true}, nil, streamTestConfig())

	w := doStream(streamRouter(userID, h), fmt.Sprintf("presentation_id=%s&start_slide=3", p.ID))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "cannot resume")
}

func TestStreamHandler_RateLimited(t *testing.T) {
	userID := uuid.New()
	store := newFakeStore()
	structure := store.addStructure(userID, []models.SlideSpec{{SlideNumber: 1, Title: "One"}})
	h := handlers.NewStreamHandler(store, &fakeGenerator{failAfter: -1}, &fakeGate{allow: false}, nil, streamTestConfig())

	w := doStream(streamRouter(userID, h), fmt.Sprintf(
		"project_id=%s&structure_id=%s", structure.ProjectID, structure.ID))

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.False(t, store.createCalled)
}

func TestStreamHandler_ProjectQuotaExceeded(t *testing.T) {
	userID := uuid.New()
	store := newFakeStore()
	structure := store.addStructure(userID, []models.SlideSpec{{SlideNumber: 1, Title: "One"}})
	store.generatingCount = 3
	h := handlers.NewStreamHandler(store, &fakeGenerator{failAfter: -1}, &fakeGate{allow: true}, nil, streamTestConfig())

	w := doStream(streamRouter(userID, h), fmt.Sprintf(
		"project_id=%s&structure_id=%s", structure.ProjectID, structure.ID))

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.False(t, store.createCalled)
}

func TestStreamHandler_InvalidCustomization(t *testing.T) {
	userID := uuid.New()
	store := newFakeStore()
	structure := store.addStructure(userID, []models.SlideSpec{{SlideNumber: 1, Title: "One"}})
	h := handlers.NewStreamHandler(store, &fakeGenerator{failAfter: -1}, &fakeGate{allow: true}, nil, streamTestConfig())

	custom := `{"text_density":"verbose"}`
	w := doStream(streamRouter(userID, h), fmt.Sprintf(
		"project_id=%s&structure_id=%s&customization=%s", structure.ProjectID, structure.ID, custom))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, store.createCalled)
}

func TestStreamHandler_PartialFailureBecomesDraft(t *testing.T) {
	userID := uuid.New()
	store := newFakeStore()
	structure := store.addStructure(userID, []models.SlideSpec{
		{SlideNumber: 1, Title: "One"},
		{SlideNumber: 2, Title: "Two"},
		{SlideNumber: 3, Title: "Three"},
	})
	generator := &fakeGenerator{failAfter: 1}
	h := handlers.NewStreamHandler(store, generator, &fakeGate{allow: true}, nil, streamTestConfig())

	w := doStream(streamRouter(userID, h), fmt.Sprintf(
		"project_id=%s&structure_id=%s", structure.ProjectID, structure.ID))

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	offsets := eventOrder(t, body, "connected", "slide_generated", "error")
	assert.IsIncreasing(t, offsets)
	assert.Contains(t, body, `"reason":"generation_failed"`)
	assert.Contains(t, body, `"resumable":true`)
	assert.Contains(t, body, `"slides_generated":1`)
	assert.NotContains(t, body, "event: completed")

	assert.Equal(t, models.StatusDraft, store.finalizedStatus)
	assert.False(t, store.completedCalled)
}

func TestStreamHandler_TotalFailureBecomesFailed(t *testing.T) {
	userID := uuid.New()
	store := newFakeStore()
	structure := store.addStructure(userID, []models.SlideSpec{
		{SlideNumber: 1, Title: "One"},
		{SlideNumber: 2, Title: "Two"},
	})
	generator := &fakeGenerator{failAfter: 0}
	h := handlers.NewStreamHandler(store, generator, &fakeGate{allow: true}, nil, streamTestConfig())

	w := doStream(streamRouter(userID, h), fmt.Sprintf(
		"project_id=%s&structure_id=%s", structure.ProjectID, structure.ID))

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `"resumable":false`)
	assert.Contains(t, body, `"slides_generated":0`)
	assert.Equal(t, models.StatusFailed, store.finalizedStatus)
}

func TestStreamHandler_DeadlineExceeded(t *testing.T) {
	userID := uuid.New()
	store := newFakeStore()
	structure := store.addStructure(userID, []models.SlideSpec{{SlideNumber: 1, Title: "One"}})
	generator := &fakeGenerator{block: true}
	cfg := streamTestConfig()
	cfg.StreamDeadline = 80 * time.Millisecond
	cfg.HeartbeatInterval = 10 * time.Millisecond
	h := handlers.NewStreamHandler(store, generator, &fakeGate{allow: true}, nil, cfg)

	w := doStream(streamRouter(userID, h), fmt.Sprintf(
		"project_id=%s&structure_id=%s", structure.ProjectID, structure.ID))

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, ": heartbeat")
	assert.Contains(t, body, `"reason":"deadline_exceeded"`)
	assert.Contains(t, body, `"resumable":false`)
	assert.Equal(t, models.StatusFailed, store.finalizedStatus)
}

func TestStreamHandler_StartSlideMustBeNonNegative(t *testing.T) {
	userID := uuid.New()
	store := newFakeStore()
	h := handlers.NewStreamHandler(store, &fakeGenerator{failAfter: -1}, &fakeGate{allow: true}, nil, streamTestConfig())

	w := doStream(streamRouter(userID, h), "project_id=x&structure_id=y&start_slide=-1")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
