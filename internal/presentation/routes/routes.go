package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"saham-assistant/internal/application/services"
	"saham-assistant/internal/infrastructure/config"
	"saham-assistant/internal/infrastructure/logger"
	"saham-assistant/internal/infrastructure/redis"
	"saham-assistant/internal/presentation/handlers"
	"saham-assistant/internal/presentation/middleware"
)

// Router wires handlers, middleware and the gin engine.
type Router struct {
	engine         *gin.Engine
	config         *config.Config
	logger         logger.Logger
	serviceFactory *services.ServiceFactory
	db             *gorm.DB
	redisFactory   *redis.RedisFactory
}

// NewRouter creates the router.
func NewRouter(cfg *config.Config, log logger.Logger, serviceFactory *services.ServiceFactory, db *gorm.DB, redisFactory *redis.RedisFactory) *Router {
	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	return &Router{
		engine:         gin.New(),
		config:         cfg,
		logger:         log,
		serviceFactory: serviceFactory,
		db:             db,
		redisFactory:   redisFactory,
	}
}

// SetupRoutes registers all middleware and endpoints.
func (r *Router) SetupRoutes() {
	authMiddleware := middleware.NewAuthMiddleware(&r.config.Auth, r.serviceFactory.GetChatService(), r.logger)
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(&r.config.RateLimit, r.logger)

	r.engine.Use(middleware.RecoveryMiddleware(r.logger))
	r.engine.Use(middleware.LoggingMiddleware(r.logger))
	r.engine.Use(middleware.CORSMiddleware())
	r.engine.Use(middleware.RequestIDMiddleware())

	chatHandler := handlers.NewChatHandler(r.serviceFactory.GetChatService(), r.serviceFactory.GetGlossaryService(), r.logger)
	glossaryHandler := handlers.NewGlossaryHandler(r.serviceFactory.GetGlossaryService(), r.logger)
	stockHandler := handlers.NewStockHandler(r.serviceFactory.GetStockService(), r.serviceFactory.GetWatchlistService(), r.logger)
	briefingHandler := handlers.NewBriefingHandler(r.serviceFactory.GetBriefingService(), r.logger)
	providerHandler := handlers.NewProviderHandler(r.serviceFactory.GetProviderService(), r.logger)
	healthHandler := handlers.NewHealthHandler(r.db, r.redisFactory, r.logger)

	r.engine.GET("/health", healthHandler.HealthCheck)

	v1 := r.engine.Group("/api/v1")
	v1.Use(rateLimitMiddleware.RateLimit())
	v1.Use(authMiddleware.Authenticate())
	{
		v1.POST("/chat", chatHandler.Chat)
		v1.POST("/chat/stream", chatHandler.ChatStream)
		v1.GET("/chat/sessions", chatHandler.ListSessions)
		v1.GET("/chat/sessions/:id/messages", chatHandler.GetSessionMessages)
		v1.GET("/profile", chatHandler.GetProfile)

		v1.GET("/glossary", glossaryHandler.ListTerms)
		v1.POST("/glossary/detect", glossaryHandler.DetectTerms)
		v1.POST("/glossary/annotate", glossaryHandler.AnnotateText)

		v1.GET("/stocks", stockHandler.SearchStocks)
		v1.GET("/stocks/:code", stockHandler.GetStock)

		v1.GET("/watchlist", stockHandler.GetWatchlist)
		v1.POST("/watchlist", stockHandler.AddToWatchlist)
		v1.DELETE("/watchlist/:code", stockHandler.RemoveFromWatchlist)

		v1.GET("/briefing", briefingHandler.GetTodaysBriefing)
		v1.GET("/briefing/:date", briefingHandler.GetBriefingByDate)
	}

	admin := r.engine.Group("/admin")
	admin.Use(rateLimitMiddleware.RateLimit())
	admin.Use(authMiddleware.Authenticate())
	admin.Use(authMiddleware.RequireAdmin())
	{
		providersGroup := admin.Group("/providers")
		{
			providersGroup.GET("/", providerHandler.ListProviders)
			providersGroup.POST("/", providerHandler.CreateProvider)
			providersGroup.GET("/:id", providerHandler.GetProvider)
			providersGroup.PUT("/:id", providerHandler.UpdateProvider)
			providersGroup.DELETE("/:id", providerHandler.DeleteProvider)
			providersGroup.POST("/:id/activate", providerHandler.ActivateProvider)
			providersGroup.POST("/:id/test", providerHandler.TestProvider)
		}

		glossaryGroup := admin.Group("/glossary")
		{
			glossaryGroup.POST("/", glossaryHandler.CreateTerm)
			glossaryGroup.PUT("/:id", glossaryHandler.UpdateTerm)
			glossaryGroup.DELETE("/:id", glossaryHandler.DeleteTerm)
		}

		admin.POST("/briefing/generate", briefingHandler.GenerateBriefing)
	}

	r.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Endpoint not found",
			},
			"timestamp": time.Now(),
		})
	})

	r.engine.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "METHOD_NOT_ALLOWED",
				"message": "Method not allowed",
			},
			"timestamp": time.Now(),
		})
	})
}

// GetEngine returns the gin engine.
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
