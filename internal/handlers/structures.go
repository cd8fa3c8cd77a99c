package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"funneldeck-backend/internal/models"
	"funneldeck-backend/internal/supabase"
)

type StructuresHandler struct {
	dbClient *supabase.DatabaseClient
}

func NewStructuresHandler(dbClient *supabase.DatabaseClient) *StructuresHandler {
	return &StructuresHandler{dbClient: dbClient}
}

// CreateStructure godoc
// @Summary     Create a deck structure
// @Description Stores the slide outline a generation run will expand. Slide numbers are assigned from position when omitted.
// @Tags        structures
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.CreateStructureRequest true "Deck outline"
// @Success     200 {object} models.StructureResponse
// @Failure     400 {object} models.ErrorResponse
// @Router      /structures [post]
func (h *StructuresHandler) CreateStructure(c *gin.Context) {
	if h.dbClient == nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "database not available"})
		return
	}
	userID, ok := requestUser(c)
	if !ok {
		return
	}

	var req models.CreateStructureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request", Message: err.Error()})
		return
	}
	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid project id"})
		return
	}
	if len(req.Slides) == 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "structure needs at least one slide"})
		return
	}
	normalizeSpecNumbers(req.Slides)

	specsJSON, err := json.Marshal(req.Slides)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid slide specs", Message: err.Error()})
		return
	}

	structure, err := h.dbClient.CreateStructure(c.Request.Context(), userID, projectID, req.Title, specsJSON)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to create structure",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.StructureResponse{
		ID:        structure.ID.String(),
		ProjectID: structure.ProjectID.String(),
		Title:     structure.Title,
		Slides:    req.Slides,
		CreatedAt: structure.CreatedAt,
		UpdatedAt: structure.UpdatedAt,
	})
}

// GetStructure godoc
// @Summary     Get a deck structure
// @Tags        structures
// @Produce     json
// @Security    Bearer
// @Param       structure_id path string true "Structure ID"
// @Success     200 {object} models.StructureResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /structures/{structure_id} [get]
func (h *StructuresHandler) GetStructure(c *gin.Context) {
	if h.dbClient == nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "database not available"})
		return
	}
	userID, ok := requestUser(c)
	if !ok {
		return
	}

	structureID, err := uuid.Parse(c.Param("structure_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid structure id"})
		return
	}

	structure, err := h.dbClient.GetStructure(c.Request.Context(), structureID, userID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, sql.ErrNoRows) {
			status = http.StatusNotFound
		}
		c.JSON(status, models.ErrorResponse{Error: "structure not found", Message: err.Error()})
		return
	}

	specs, err := structure.DecodeSpecs()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "corrupt slide specs",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.StructureResponse{
		ID:        structure.ID.String(),
		ProjectID: structure.ProjectID.String(),
		Title:     structure.Title,
		Slides:    specs,
		CreatedAt: structure.CreatedAt,
		UpdatedAt: structure.UpdatedAt,
	})
}
