package api

import (
	"time"

	"aiharu-api/internal/api/handlers/health"
	mealHandler "aiharu-api/internal/api/handlers/meal"
	"aiharu-api/internal/api/middleware"
	"aiharu-api/internal/core/ai/queue"
	mealService "aiharu-api/internal/core/meal"
	"aiharu-api/internal/infrastructure/config"
	"aiharu-api/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Dependencies 路由需要的服務
type Dependencies struct {
	DB    *gorm.DB
	Queue *queue.Manager
	Meal  *mealService.Service
}

// SetupRouter 設置路由；回傳的函式用於停止背景清理
func SetupRouter(cfg *config.Config, deps Dependencies) (*gin.Engine, func()) {
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.Recovery())
	router.Use(requestid.New())
	router.Use(middleware.Logger())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))
	router.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	healthHandler := health.NewHandler(deps.DB, deps.Queue, cfg.App.Version)
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)

	dedup := middleware.NewDeduplicator(cfg.DedupWindow)
	analyzeMiddleware := []gin.HandlerFunc{dedup.Middleware()}
	pruners := []middleware.Pruner{dedup}
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewClientLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
		analyzeMiddleware = append([]gin.HandlerFunc{middleware.RateLimit(limiter)}, analyzeMiddleware...)
		pruners = append(pruners, limiter)
	}
	stop := middleware.StartJanitor(10*time.Minute, pruners...)

	api := router.Group("/api/v1")
	mealHandler.NewHandler(deps.Meal).Register(api, analyzeMiddleware...)

	common.LogInfo("Router setup completed",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
		zap.Duration("timeout", cfg.Server.RequestTimeout),
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
	)
	return router, stop
}
