package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"saham-assistant/internal/application/dto"
	"saham-assistant/internal/application/services"
	"saham-assistant/internal/domain/entities"
	"saham-assistant/internal/infrastructure/logger"
)

// GlossaryHandler serves the glossary endpoints.
type GlossaryHandler struct {
	glossaryService services.GlossaryService
	logger          logger.Logger
}

// NewGlossaryHandler creates the glossary handler.
func NewGlossaryHandler(glossaryService services.GlossaryService, log logger.Logger) *GlossaryHandler {
	return &GlossaryHandler{glossaryService: glossaryService, logger: log}
}

// ListTerms handles GET /api/v1/glossary. An optional category query filters.
func (h *GlossaryHandler) ListTerms(c *gin.Context) {
	var (
		terms []*entities.GlossaryTerm
		err   error
	)
	if category := c.Query("category"); category != "" {
		terms, err = h.glossaryService.ListTermsByCategory(c.Request.Context(), category)
	} else {
		terms, err = h.glossaryService.ListTerms(c.Request.Context())
	}
	if err != nil {
		h.logger.WithField("error", err.Error()).Error("failed to list glossary terms")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse("INTERNAL_ERROR", "Failed to list terms", nil))
		return
	}
	c.JSON(http.StatusOK, dto.SuccessResponse(terms, "Terms retrieved"))
}

// DetectTerms handles POST /api/v1/glossary/detect.
func (h *GlossaryHandler) DetectTerms(c *gin.Context) {
	var req dto.DetectTermsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse("INVALID_REQUEST", "Invalid request body", err.Error()))
		return
	}

	terms := h.glossaryService.DetectTerms(c.Request.Context(), req.Text)
	c.JSON(http.StatusOK, dto.SuccessResponse(detectedTermDTOs(terms), "Terms detected"))
}

// AnnotateText handles POST /api/v1/glossary/annotate.
func (h *GlossaryHandler) AnnotateText(c *gin.Context) {
	var req dto.AnnotateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse("INVALID_REQUEST", "Invalid request body", err.Error()))
		return
	}

	segments := h.glossaryService.AnnotateText(c.Request.Context(), req.Text)
	payload := make([]dto.SegmentDTO, 0, len(segments))
	for _, segment := range segments {
		out := dto.SegmentDTO{Kind: segment.Kind, Text: segment.Text}
		if segment.Term != nil {
			out.Term = segment.Term.Term
			out.Definition = segment.Term.Definition
			out.Category = segment.Term.Category
		}
		payload = append(payload, out)
	}
	c.JSON(http.StatusOK, dto.SuccessResponse(payload, "Text annotated"))
}

// CreateTerm handles POST /admin/glossary.
func (h *GlossaryHandler) CreateTerm(c *gin.Context) {
	var req dto.CreateTermRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse("INVALID_REQUEST", "Invalid request body", err.Error()))
		return
	}

	term := &entities.GlossaryTerm{
		Term:       req.Term,
		Definition: req.Definition,
		Category:   req.Category,
	}
	if err := h.glossaryService.CreateTerm(c.Request.Context(), term); err != nil {
		h.logger.WithField("error", err.Error()).Error("failed to create glossary term")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse("INTERNAL_ERROR", "Failed to create term", nil))
		return
	}
	c.JSON(http.StatusCreated, dto.SuccessResponse(term, "Term created"))
}

// UpdateTerm handles PUT /admin/glossary/:id.
func (h *GlossaryHandler) UpdateTerm(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse("INVALID_REQUEST", "Invalid term ID", nil))
		return
	}

	var req dto.UpdateTermRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse("INVALID_REQUEST", "Invalid request body", err.Error()))
		return
	}

	term, err := h.glossaryService.GetTerm(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, entities.ErrTermNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse("NOT_FOUND", "Term not found", nil))
			return
		}
		h.logger.WithField("error", err.Error()).Error("failed to load glossary term")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse("INTERNAL_ERROR", "Failed to load term", nil))
		return
	}

	if req.Term != nil {
		term.Term = *req.Term
	}
	if req.Definition != nil {
		term.Definition = *req.Definition
	}
	if req.Category != nil {
		term.Category = *req.Category
	}

	if err := h.glossaryService.UpdateTerm(c.Request.Context(), term); err != nil {
		h.logger.WithField("error", err.Error()).Error("failed to update glossary term")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse("INTERNAL_ERROR", "Failed to update term", nil))
		return
	}
	c.JSON(http.StatusOK, dto.SuccessResponse(term, "Term updated"))
}

// DeleteTerm handles DELETE /admin/glossary/:id.
func (h *GlossaryHandler) DeleteTerm(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse("INVALID_REQUEST", "Invalid term ID", nil))
		return
	}

	if err := h.glossaryService.DeleteTerm(c.Request.Context(), id); err != nil {
		if errors.Is(err, entities.ErrTermNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse("NOT_FOUND", "Term not found", nil))
			return
		}
		h.logger.WithField("error", err.Error()).Error("failed to delete glossary term")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse("INTERNAL_ERROR", "Failed to delete term", nil))
		return
	}
	c.JSON(http.StatusOK, dto.SuccessResponse(nil, "Term deleted"))
}
