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
	"saham-assistant/internal/presentation/middleware"
)

// StockHandler serves the stock and watchlist endpoints.
type StockHandler struct {
	stockService     services.StockService
	watchlistService services.WatchlistService
	logger           logger.Logger
}

// NewStockHandler creates the stock handler.
func NewStockHandler(stockService services.StockService, watchlistService services.WatchlistService, log logger.Logger) *StockHandler {
	return &StockHandler{
		stockService:     stockService,
		watchlistService: watchlistService,
		logger:           log,
	}
}

// GetStock handles GET /api/v1/stocks/:code.
func (h *StockHandler) GetStock(c *gin.Context) {
	stock, err := h.stockService.GetStock(c.Request.Context(), c.Param("code"))
	if err != nil {
		if errors.Is(err, entities.ErrStockNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse("NOT_FOUND", "Stock not found", nil))
			return
		}
		h.logger.WithField("error", err.Error()).Error("failed to get stock")
		c.JSON(http.StatusBadGateway, dto.ErrorResponse("UPSTREAM_ERROR", "Failed to fetch stock data", nil))
		return
	}
	c.JSON(http.StatusOK, dto.SuccessResponse(stock, "Stock retrieved"))
}

// SearchStocks handles GET /api/v1/stocks?q=keyword.
func (h *StockHandler) SearchStocks(c *gin.Context) {
	keyword := c.Query("q")
	if keyword == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse("INVALID_REQUEST", "Query parameter q is required", nil))
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	stocks, err := h.stockService.SearchStocks(c.Request.Context(), keyword, limit)
	if err != nil {
		h.logger.WithField("error", err.Error()).Error("stock search failed")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse("INTERNAL_ERROR", "Search failed", nil))
		return
	}
	c.JSON(http.StatusOK, dto.SuccessResponse(stocks, "Stocks retrieved"))
}

// GetWatchlist handles GET /api/v1/watchlist.
func (h *StockHandler) GetWatchlist(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)

	items, err := h.watchlistService.GetWatchlist(c.Request.Context(), userID)
	if err != nil {
		h.logger.WithField("error", err.Error()).Error("failed to load watchlist")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse("INTERNAL_ERROR", "Failed to load watchlist", nil))
		return
	}
	c.JSON(http.StatusOK, dto.SuccessResponse(items, "Watchlist retrieved"))
}

// AddToWatchlist handles POST /api/v1/watchlist.
func (h *StockHandler) AddToWatchlist(c *gin.Context) {
	var req dto.AddWatchlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse("INVALID_REQUEST", "Invalid request body", err.Error()))
		return
	}

	userID := c.GetString(middleware.UserIDKey)

	item, err := h.watchlistService.AddStock(c.Request.Context(), userID, req.StockCode)
	if err != nil {
		switch {
		case errors.Is(err, entities.ErrAlreadyInWatchlist):
			c.JSON(http.StatusConflict, dto.ErrorResponse("ALREADY_EXISTS", "Stock already in watchlist", nil))
		case errors.Is(err, entities.ErrStockNotFound):
			c.JSON(http.StatusNotFound, dto.ErrorResponse("NOT_FOUND", "Stock not found", nil))
		default:
			h.logger.WithField("error", err.Error()).Error("failed to add watchlist item")
			c.JSON(http.StatusInternalServerError, dto.ErrorResponse("INTERNAL_ERROR", "Failed to add stock", nil))
		}
		return
	}
	c.JSON(http.StatusCreated, dto.SuccessResponse(item, "Stock added to watchlist"))
}

// RemoveFromWatchlist handles DELETE /api/v1/watchlist/:code.
func (h *StockHandler) RemoveFromWatchlist(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)

	if err := h.watchlistService.RemoveStock(c.Request.Context(), userID, c.Param("code")); err != nil {
		if errors.Is(err, entities.ErrStockNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse("NOT_FOUND", "Stock not in watchlist", nil))
			return
		}
		h.logger.WithField("error", err.Error()).Error("failed to remove watchlist item")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse("INTERNAL_ERROR", "Failed to remove stock", nil))
		return
	}
	c.JSON(http.StatusOK, dto.SuccessResponse(nil, "Stock removed from watchlist"))
}
