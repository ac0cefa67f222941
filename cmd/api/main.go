package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/feedbackhq/feedback-api/api/swagger"
	"github.com/feedbackhq/feedback-api/internal/handler"
	"github.com/feedbackhq/feedback-api/internal/middleware"
	"github.com/feedbackhq/feedback-api/internal/repository"
	"github.com/feedbackhq/feedback-api/internal/service"
	"github.com/feedbackhq/feedback-api/internal/validation"
	"github.com/feedbackhq/feedback-api/pkg/cache"
	"github.com/feedbackhq/feedback-api/pkg/config"
	"github.com/feedbackhq/feedback-api/pkg/database"
	"github.com/feedbackhq/feedback-api/pkg/logger"
	corsmiddleware "github.com/feedbackhq/feedback-api/pkg/middleware/cors"
	reqidmiddleware "github.com/feedbackhq/feedback-api/pkg/middleware/requestid"
)

// @title Feedback Dashboard API
// @version 1.0.0
// @description Feedback collection, aggregate statistics and list exports
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	if err := database.Migrate(cfg.Database); err != nil {
		logr.Sugar().Fatalw("failed to run migrations", "error", err)
	}

	metricsSvc := service.NewMetricsService()

	cacheSvc := buildCacheService(cfg, metricsSvc, logr)

	feedbackSvc := service.NewFeedbackService(service.FeedbackServiceParams{
		Repo:      repository.NewFeedbackRepository(db),
		Validator: validation.New(),
		Cache:     cacheSvc,
		Metrics:   metricsSvc,
		ViewTTL:   cfg.View.CacheTTL,
		Logger:    logr,
	})
	feedbackHandler := handler.NewFeedbackHandler(feedbackSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	feedback := api.Group("/feedback")
	feedback.POST("", feedbackHandler.Create)
	feedback.GET("", feedbackHandler.List)
	feedback.GET("/stats", feedbackHandler.Stats)
	feedback.GET("/view", feedbackHandler.View)
	if cfg.Exports.Enabled {
		feedback.GET("/export", feedbackHandler.Export)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

// buildCacheService wires the optional Redis-backed view cache. A cache
// that cannot be reached downgrades to recomputation instead of
// blocking startup.
func buildCacheService(cfg *config.Config, metricsSvc *service.MetricsService, logr *zap.Logger) *service.CacheService {
	if !cfg.View.CacheEnabled {
		return service.NewCacheService(nil, metricsSvc, cfg.View.CacheTTL, logr, false)
	}

	client, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, view cache disabled", "error", err)
		return service.NewCacheService(nil, metricsSvc, cfg.View.CacheTTL, logr, false)
	}

	repo := repository.NewCacheRepository(client, logr)
	return service.NewCacheService(repo, metricsSvc, cfg.View.CacheTTL, logr, true)
}
