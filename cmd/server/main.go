package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"saham-assistant/internal/application/services"
	"saham-assistant/internal/infrastructure/clients"
	"saham-assistant/internal/infrastructure/config"
	"saham-assistant/internal/infrastructure/crypto"
	"saham-assistant/internal/infrastructure/database"
	"saham-assistant/internal/infrastructure/logger"
	"saham-assistant/internal/infrastructure/redis"
	"saham-assistant/internal/infrastructure/repositories"
	"saham-assistant/internal/presentation/routes"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.InitGlobalLogger(&cfg.Logging)
	log := logger.GetLogger()

	log.Info("Starting stock assistant API")
	log.WithField("config", configPath).Info("Configuration loaded")

	gormDB, err := database.NewGormDB(&cfg.Database)
	if err != nil {
		log.WithField("error", err.Error()).Fatal("Failed to connect to PostgreSQL")
	}

	if err := database.InitializeDatabase(gormDB); err != nil {
		log.WithField("error", err.Error()).Fatal("Database initialization failed")
	}

	if err := database.HealthCheck(gormDB); err != nil {
		log.WithField("error", err.Error()).Fatal("Database health check failed")
	}

	log.Info("PostgreSQL connection established")

	// Redis is optional: without it every lookup goes to PostgreSQL.
	var redisFactory *redis.RedisFactory
	var cacheService *redis.CacheService
	if cfg.Cache.Enabled {
		redisFactory, err = redis.NewRedisFactory(&cfg.Cache, log)
		if err != nil {
			log.WithField("error", err.Error()).Warn("Failed to initialize Redis, continuing without cache")
			redisFactory = nil
		} else {
			cacheService = redisFactory.GetCacheService()
		}
	}

	var repoFactory *repositories.RepositoryFactory
	if cacheService != nil {
		repoFactory = repositories.NewRepositoryFactoryWithCache(gormDB, cacheService)
	} else {
		repoFactory = repositories.NewRepositoryFactory(gormDB)
	}

	var cipher *crypto.SecretCipher
	if cfg.AI.SecretKey != "" {
		cipher, err = crypto.NewSecretCipher(cfg.AI.SecretKey)
		if err != nil {
			log.WithField("error", err.Error()).Fatal("Invalid AI secret key")
		}
	} else {
		log.Warn("No AI secret key configured; providers with stored API keys will fail")
	}

	httpClient := clients.NewHTTPClient(30 * time.Second)
	adapterFactory := clients.NewAdapterFactory(httpClient, cfg.AI.RequestTimeout, log)
	quoteClient := clients.NewYahooQuoteClient(httpClient, cfg.Stocks.QuoteBaseURL, log)

	var newsClient clients.NewsClient
	if cfg.Briefing.NewsURL != "" {
		newsClient = clients.NewHTMLNewsClient(httpClient, log)
	}

	serviceFactory := services.NewServiceFactory(repoFactory, adapterFactory, quoteClient, newsClient, cipher, cfg, log)

	router := routes.NewRouter(cfg, log, serviceFactory, gormDB, redisFactory)
	router.SetupRoutes()

	server := &http.Server{
		Addr:         cfg.Server.GetAddress(),
		Handler:      router.GetEngine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.WithField("address", server.Addr).Info("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithField("error", err.Error()).Fatal("Failed to start HTTP server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithField("error", err.Error()).Fatal("Server forced to shutdown")
	}

	if redisFactory != nil {
		if err := redisFactory.Close(); err != nil {
			log.WithField("error", err.Error()).Error("Failed to close Redis connection")
		}
	}

	log.Info("Server shutdown complete")
}
