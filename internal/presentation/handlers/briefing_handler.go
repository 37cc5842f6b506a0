package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"saham-assistant/internal/application/dto"
	"saham-assistant/internal/application/services"
	"saham-assistant/internal/domain/entities"
	"saham-assistant/internal/infrastructure/logger"
)

// BriefingHandler serves the morning briefing endpoints.
type BriefingHandler struct {
	briefingService services.BriefingService
	logger          logger.Logger
}

// NewBriefingHandler creates the briefing handler.
func NewBriefingHandler(briefingService services.BriefingService, log logger.Logger) *BriefingHandler {
	return &BriefingHandler{briefingService: briefingService, logger: log}
}

// GetTodaysBriefing handles GET /api/v1/briefing.
func (h *BriefingHandler) GetTodaysBriefing(c *gin.Context) {
	briefing, err := h.briefingService.GetTodaysBriefing(c.Request.Context())
	if err != nil {
		if errors.Is(err, entities.ErrBriefingNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse("NOT_FOUND", "No briefing for today yet", nil))
			return
		}
		h.logger.WithField("error", err.Error()).Error("failed to load briefing")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse("INTERNAL_ERROR", "Failed to load briefing", nil))
		return
	}
	c.JSON(http.StatusOK, dto.SuccessResponse(briefing, "Briefing retrieved"))
}

// GetBriefingByDate handles GET /api/v1/briefing/:date.
func (h *BriefingHandler) GetBriefingByDate(c *gin.Context) {
	briefing, err := h.briefingService.GetBriefing(c.Request.Context(), c.Param("date"))
	if err != nil {
		if errors.Is(err, entities.ErrBriefingNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse("NOT_FOUND", "Briefing not found", nil))
			return
		}
		h.logger.WithField("error", err.Error()).Error("failed to load briefing")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse("INTERNAL_ERROR", "Failed to load briefing", nil))
		return
	}
	c.JSON(http.StatusOK, dto.SuccessResponse(briefing, "Briefing retrieved"))
}

// GenerateBriefing handles POST /admin/briefing/generate.
func (h *BriefingHandler) GenerateBriefing(c *gin.Context) {
	// An empty body means "generate for today".
	var req dto.GenerateBriefingRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse("INVALID_REQUEST", "Invalid request body", err.Error()))
			return
		}
	}

	briefing, err := h.briefingService.GenerateBriefing(c.Request.Context(), &req)
	if err != nil {
		h.logger.WithField("error", err.Error()).Error("briefing generation failed")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse("INTERNAL_ERROR", "Failed to generate briefing", nil))
		return
	}
	c.JSON(http.StatusOK, dto.SuccessResponse(briefing, "Briefing generated"))
}
