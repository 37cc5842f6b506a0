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

// ProviderHandler serves the AI provider admin endpoints.
type ProviderHandler struct {
	providerService services.ProviderService
	logger          logger.Logger
}

// NewProviderHandler creates the provider handler.
func NewProviderHandler(providerService services.ProviderService, log logger.Logger) *ProviderHandler {
	return &ProviderHandler{providerService: providerService, logger: log}
}

// ListProviders handles GET /admin/providers.
func (h *ProviderHandler) ListProviders(c *gin.Context) {
	providers, err := h.providerService.ListProviders(c.Request.Context())
	if err != nil {
		h.logger.WithField("error", err.Error()).Error("failed to list providers")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse("INTERNAL_ERROR", "Failed to list providers", nil))
		return
	}
	c.JSON(http.StatusOK, dto.SuccessResponse(providers, "Providers retrieved"))
}

// GetProvider handles GET /admin/providers/:id.
func (h *ProviderHandler) GetProvider(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	provider, err := h.providerService.GetProvider(c.Request.Context(), id)
	if err != nil {
		h.respondProviderError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SuccessResponse(provider, "Provider retrieved"))
}

// CreateProvider handles POST /admin/providers.
func (h *ProviderHandler) CreateProvider(c *gin.Context) {
	var req dto.CreateProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse("INVALID_REQUEST", "Invalid request body", err.Error()))
		return
	}

	provider, err := h.providerService.CreateProvider(c.Request.Context(), &req)
	if err != nil {
		h.respondProviderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.SuccessResponse(provider, "Provider created"))
}

// UpdateProvider handles PUT /admin/providers/:id.
func (h *ProviderHandler) UpdateProvider(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req dto.UpdateProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse("INVALID_REQUEST", "Invalid request body", err.Error()))
		return
	}

	provider, err := h.providerService.UpdateProvider(c.Request.Context(), id, &req)
	if err != nil {
		h.respondProviderError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SuccessResponse(provider, "Provider updated"))
}

// DeleteProvider handles DELETE /admin/providers/:id.
func (h *ProviderHandler) DeleteProvider(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.providerService.DeleteProvider(c.Request.Context(), id); err != nil {
		h.respondProviderError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SuccessResponse(nil, "Provider deleted"))
}

// ActivateProvider handles POST /admin/providers/:id/activate.
func (h *ProviderHandler) ActivateProvider(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	provider, err := h.providerService.ActivateProvider(c.Request.Context(), id)
	if err != nil {
		h.respondProviderError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SuccessResponse(provider, "Provider activated"))
}

// TestProvider handles POST /admin/providers/:id/test.
func (h *ProviderHandler) TestProvider(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	result := h.providerService.TestProvider(c.Request.Context(), id)
	c.JSON(http.StatusOK, dto.SuccessResponse(result, "Provider tested"))
}

func (h *ProviderHandler) parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse("INVALID_REQUEST", "Invalid provider ID", nil))
		return 0, false
	}
	return id, true
}

func (h *ProviderHandler) respondProviderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, entities.ErrProviderNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse("NOT_FOUND", "Provider not found", nil))
	case entities.IsConfigurationError(err):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse("INVALID_CONFIGURATION", err.Error(), nil))
	default:
		h.logger.WithField("error", err.Error()).Error("provider operation failed")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse("INTERNAL_ERROR", "Provider operation failed", nil))
	}
}
