package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"saham-assistant/internal/application/dto"
	"saham-assistant/internal/infrastructure/database"
	"saham-assistant/internal/infrastructure/logger"
	"saham-assistant/internal/infrastructure/redis"
)

// HealthHandler serves the health check endpoint.
type HealthHandler struct {
	db           *gorm.DB
	redisFactory *redis.RedisFactory
	logger       logger.Logger
}

// NewHealthHandler creates the health handler. redisFactory may be nil when
// caching is disabled.
func NewHealthHandler(db *gorm.DB, redisFactory *redis.RedisFactory, log logger.Logger) *HealthHandler {
	return &HealthHandler{db: db, redisFactory: redisFactory, logger: log}
}

// HealthCheck handles GET /health.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	components := gin.H{}
	healthy := true

	if err := database.HealthCheck(h.db); err != nil {
		components["database"] = "down"
		healthy = false
	} else {
		components["database"] = "up"
	}

	if h.redisFactory != nil {
		if err := h.redisFactory.HealthCheck(c.Request.Context()); err != nil {
			components["cache"] = "down"
			// A cache outage degrades performance, not availability.
		} else {
			components["cache"] = "up"
		}
	}

	status := http.StatusOK
	message := "healthy"
	if !healthy {
		status = http.StatusServiceUnavailable
		message = "unhealthy"
	}
	c.JSON(status, dto.SuccessResponse(components, message))
}
