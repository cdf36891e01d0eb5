package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aiharu-api/internal/api"
	"aiharu-api/internal/core/ai/cache"
	"aiharu-api/internal/core/ai/queue"
	aiService "aiharu-api/internal/core/ai/service"
	"aiharu-api/internal/core/image"
	mealService "aiharu-api/internal/core/meal"
	"aiharu-api/internal/core/service"
	"aiharu-api/internal/infrastructure/config"
	"aiharu-api/internal/infrastructure/database"
	"aiharu-api/internal/pkg/common"
	"aiharu-api/internal/repository"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := common.InitLogger(common.LogOptions{Level: cfg.LogLevel, Dir: cfg.LogDir, Mode: cfg.LogMode}); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("openrouter_api_key", config.MaskAPIKey(cfg.OpenRouter.APIKey)),
		zap.String("openrouter_model", cfg.OpenRouter.Model),
		zap.String("database_driver", cfg.Database.Driver),
		zap.String("cache_backend", cfg.Cache.Backend),
	)

	db, err := database.Open(cfg.Database)
	if err != nil {
		common.LogFatal("Failed to open database", zap.Error(err))
	}
	defer database.Close(db)

	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(repository.Models()...); err != nil {
			common.LogFatal("Failed to migrate database", zap.Error(err))
		}
	}

	store, err := cache.New(cfg)
	if err != nil {
		common.LogFatal("Failed to initialize cache", zap.Error(err))
	}
	if store != nil {
		defer store.Close()
	}

	aiQueue := queue.NewManager(cfg.Queue)
	defer aiQueue.Close()

	ai := aiService.NewService(
		service.NewOpenRouterService(&cfg.OpenRouter),
		store,
		aiQueue,
		image.NewService(cfg.Image),
	)
	ai.SetCallTimeout(cfg.OpenRouter.Timeout)
	meals := mealService.NewService(ai,
		repository.NewAnalysisRepository(db),
		repository.NewRecommendationRepository(db),
		cfg.Nutrition,
	)

	router, stopJanitor := api.SetupRouter(cfg, api.Dependencies{DB: db, Queue: aiQueue, Meal: meals})
	defer stopJanitor()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Int("port", cfg.Server.Port),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			common.LogFatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
	}

	common.LogInfo("Server exited")
}
