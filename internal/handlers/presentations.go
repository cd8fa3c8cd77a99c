package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"funneldeck-backend/internal/middleware"
	"funneldeck-backend/internal/models"
	"funneldeck-backend/internal/supabase"
)

type PresentationsHandler struct {
	dbClient      *supabase.DatabaseClient
	storageClient *supabase.StorageClient
}

func NewPresentationsHandler(dbClient *supabase.DatabaseClient, storageClient *supabase.StorageClient) *PresentationsHandler {
	return &PresentationsHandler{
		dbClient:      dbClient,
		storageClient: storageClient,
	}
}

// requestUser extracts and validates the authenticated user's id.
func requestUser(c *gin.Context) (uuid.UUID, bool) {
	userIDStr, exists := c.Get(middleware.UserIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "user id not found"})
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(userIDStr.(string))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid user id"})
		return uuid.Nil, false
	}
	return userID, true
}

// ListPresentations godoc
// @Summary     List presentations
// @Description Returns all presentations owned by the authenticated user, newest first.
// @Tags        presentations
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.PresentationListResponse
// @Router      /presentations [get]
func (h *PresentationsHandler) ListPresentations(c *gin.Context) {
	if h.dbClient == nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "database not available"})
		return
	}
	userID, ok := requestUser(c)
	if !ok {
		return
	}

	presentations, err := h.dbClient.ListPresentations(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list presentations",
			Message: err.Error(),
		})
		return
	}

	summaries := make([]models.PresentationSummary, 0, len(presentations))
	for _, p := range presentations {
		slides, err := p.DecodeSlides()
		if err != nil {
			slog.Warn("skipping presentation with corrupt slides", "presentation_id", p.ID, "error", err)
			continue
		}
		summaries = append(summaries, models.PresentationSummary{
			ID:                 p.ID.String(),
			ProjectID:          p.ProjectID.String(),
			Status:             string(p.Status),
			GenerationProgress: p.GenerationProgress,
			SlideCount:         len(slides),
			CreatedAt:          p.CreatedAt,
			UpdatedAt:          p.UpdatedAt,
		})
	}

	c.JSON(http.StatusOK, models.PresentationListResponse{Presentations: summaries})
}

// GetPresentation godoc
// @Summary     Get presentation details
// @Description Returns one presentation with its full slide list.
// @Tags        presentations
// @Produce     json
// @Security    Bearer
// @Param       presentation_id path string true "Presentation ID"
// @Success     200 {object} models.PresentationResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /presentations/{presentation_id} [get]
func (h *PresentationsHandler) GetPresentation(c *gin.Context) {
	if h.dbClient == nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "database not available"})
		return
	}
	userID, ok := requestUser(c)
	if !ok {
		return
	}

	presentationID, err := uuid.Parse(c.Param("presentation_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid presentation id"})
		return
	}

	p, err := h.dbClient.GetPresentation(c.Request.Context(), presentationID, userID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, sql.ErrNoRows) {
			status = http.StatusNotFound
		}
		c.JSON(status, models.ErrorResponse{Error: "presentation not found", Message: err.Error()})
		return
	}

	slides, err := p.DecodeSlides()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "corrupt slide data",
			Message: err.Error(),
		})
		return
	}

	resp := models.PresentationResponse{
		ID:                 p.ID.String(),
		ProjectID:          p.ProjectID.String(),
		StructureID:        p.StructureID.String(),
		Status:             string(p.Status),
		GenerationProgress: p.GenerationProgress,
		Slides:             slides,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
	if p.TotalExpectedSlides.Valid {
		resp.TotalExpectedSlides = int(p.TotalExpectedSlides.Int64)
	}
	if p.ErrorMessage.Valid {
		resp.ErrorMessage = p.ErrorMessage.String
	}
	if len(p.Customization) > 0 {
		var custom models.CustomizationOptions
		if err := json.Unmarshal(p.Customization, &custom); err == nil {
			resp.Customization = &custom
		}
	}

	c.JSON(http.StatusOK, resp)
}

// GetStatus godoc
// @Summary     Poll generation status
// @Description Lightweight status endpoint for clients that cannot hold an SSE connection.
// @Tags        presentations
// @Produce     json
// @Security    Bearer
// @Param       presentation_id path string true "Presentation ID"
// @Success     200 {object} models.StatusResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /presentations/{presentation_id}/status [get]
func (h *PresentationsHandler) GetStatus(c *gin.Context) {
	if h.dbClient == nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "database not available"})
		return
	}
	userID, ok := requestUser(c)
	if !ok {
		return
	}

	presentationID, err := uuid.Parse(c.Param("presentation_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid presentation id"})
		return
	}

	p, err := h.dbClient.GetPresentation(c.Request.Context(), presentationID, userID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, sql.ErrNoRows) {
			status = http.StatusNotFound
		}
		c.JSON(status, models.ErrorResponse{Error: "presentation not found", Message: err.Error()})
		return
	}

	slideCount, err := h.dbClient.CountSlides(c.Request.Context(), p.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to count slides",
			Message: err.Error(),
		})
		return
	}

	resp := models.StatusResponse{
		PresentationID:     p.ID.String(),
		Status:             string(p.Status),
		GenerationProgress: p.GenerationProgress,
		SlideCount:         slideCount,
		UpdatedAt:          p.UpdatedAt,
	}
	if p.ErrorMessage.Valid {
		resp.ErrorMessage = p.ErrorMessage.String
	}

	c.JSON(http.StatusOK, resp)
}

// DeletePresentation godoc
// @Summary     Delete a presentation
// @Description Removes the presentation record and its stored slide images.
// @Tags        presentations
// @Security    Bearer
// @Param       presentation_id path string true "Presentation ID"
// @Success     200 {object} map[string]string
// @Router      /presentations/{presentation_id} [delete]
func (h *PresentationsHandler) DeletePresentation(c *gin.Context) {
	if h.dbClient == nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "database not available"})
		return
	}
	userID, ok := requestUser(c)
	if !ok {
		return
	}

	presentationID, err := uuid.Parse(c.Param("presentation_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid presentation id"})
		return
	}

	// Ownership check before touching anything.
	if _, err := h.dbClient.GetPresentation(c.Request.Context(), presentationID, userID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, sql.ErrNoRows) {
			status = http.StatusNotFound
		}
		c.JSON(status, models.ErrorResponse{Error: "presentation not found", Message: err.Error()})
		return
	}

	// Storage cleanup is best-effort; the record delete is what matters.
	if h.storageClient != nil {
		if err := h.storageClient.DeletePresentationFiles(presentationID); err != nil {
			slog.Warn("failed to delete presentation files", "presentation_id", presentationID, "error", err)
		}
	}

	if err := h.dbClient.DeletePresentation(c.Request.Context(), presentationID, userID); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to delete presentation",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "presentation deleted"})
}
