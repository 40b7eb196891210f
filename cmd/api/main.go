package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/tintin4303/uniplanner-sub000/api/swagger"
	"github.com/tintin4303/uniplanner-sub000/internal/handler"
	internalmiddleware "github.com/tintin4303/uniplanner-sub000/internal/middleware"
	"github.com/tintin4303/uniplanner-sub000/internal/repository"
	"github.com/tintin4303/uniplanner-sub000/internal/service"
	"github.com/tintin4303/uniplanner-sub000/pkg/cache"
	"github.com/tintin4303/uniplanner-sub000/pkg/config"
	"github.com/tintin4303/uniplanner-sub000/pkg/database"
	"github.com/tintin4303/uniplanner-sub000/pkg/jobs"
	"github.com/tintin4303/uniplanner-sub000/pkg/logger"
	corsmiddleware "github.com/tintin4303/uniplanner-sub000/pkg/middleware/cors"
	reqidmiddleware "github.com/tintin4303/uniplanner-sub000/pkg/middleware/requestid"
	"github.com/tintin4303/uniplanner-sub000/pkg/storage"
)

// @title UniPlanner API
// @version 1.0.0
// @description University section planner engine
// @BasePath /api/v1
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

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, running without cache", "error", err)
		redisClient = nil
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close()

	fileStore, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init export storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	sectionRepo := repository.NewSectionRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	exportJobRepo := repository.NewExportJobRepository(db)

	metricsSvc := service.NewMetricsService()

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "uniplanner",
	})
	sectionSvc := service.NewSectionService(sectionRepo, cacheRepo, validate, logr)
	plannerSvc := service.NewPlannerService(sectionRepo, scheduleRepo, cacheRepo, metricsSvc, validate, logr, service.PlannerConfig{
		ResultTTL: cfg.Planner.ResultTTL,
		CacheTTL:  cfg.Planner.CacheTTL,
	})
	compareSvc := service.NewCompareService(plannerSvc, validate, logr)

	exportSvc := service.NewExportService(scheduleRepo, fileStore, signer, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Exports.SignedURLTTL,
	}, logr, nil, nil)

	exportWorker := service.NewExportWorker(exportJobRepo, exportSvc, cfg.Exports.WorkerRetries, logr)
	exportQueue := jobs.NewQueue("exports", exportWorker.Handle, jobs.QueueConfig{
		Workers:    cfg.Exports.WorkerConcurrency,
		MaxRetries: cfg.Exports.WorkerRetries,
		Logger:     logr,
	})
	exportJobSvc := service.NewExportJobService(exportJobRepo, plannerSvc, exportQueue, exportSvc, validate, logr, service.ExportJobConfig{
		ResultTTL:       cfg.Exports.SignedURLTTL,
		CleanupInterval: cfg.Exports.CleanupInterval,
		MaxRetries:      cfg.Exports.WorkerRetries,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	exportQueue.Start(ctx)
	defer exportQueue.Stop()
	exportJobSvc.RecoverPendingJobs(ctx)
	exportJobSvc.StartCleanup(ctx)

	authHandler := handler.NewAuthHandler(authSvc)
	sectionHandler := handler.NewSectionHandler(sectionSvc)
	plannerHandler := handler.NewPlannerHandler(plannerSvc)
	compareHandler := handler.NewCompareHandler(compareSvc)
	exportHandler := handler.NewExportHandler(exportJobSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.GET("/health", metricsHandler.Health)
		api.GET("/status", metricsHandler.Status)

		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
			auth.POST("/logout", internalmiddleware.JWT(authSvc), authHandler.Logout)
			auth.GET("/me", internalmiddleware.JWT(authSvc), authHandler.Me)
		}

		// Downloads carry their own signed token, no session required.
		api.GET("/exports/download/:token", exportHandler.Download)

		protected := api.Group("")
		protected.Use(internalmiddleware.JWT(authSvc))
		{
			protected.GET("/sections", sectionHandler.List)
			protected.POST("/sections", sectionHandler.Create)
			protected.POST("/sections/mutations", sectionHandler.ApplyMutations)
			protected.GET("/sections/:id", sectionHandler.Get)
			protected.PUT("/sections/:id", sectionHandler.Update)
			protected.DELETE("/sections/:id", sectionHandler.Delete)
			protected.PATCH("/sections/:id/active", sectionHandler.SetActive)

			protected.POST("/planner/generate", plannerHandler.Generate)
			protected.POST("/planner/refilter", plannerHandler.Refilter)
			protected.POST("/planner/save", plannerHandler.Save)
			protected.GET("/planner/saved", plannerHandler.ListSaved)
			protected.GET("/planner/saved/:id", plannerHandler.GetSaved)
			protected.DELETE("/planner/saved/:id", plannerHandler.DeleteSaved)
			protected.GET("/planner/saved/:id/summary", plannerHandler.Summary)

			protected.POST("/compare", compareHandler.Compare)

			protected.GET("/exports", exportHandler.List)
			protected.POST("/exports", exportHandler.Create)
			protected.GET("/exports/:id", exportHandler.Status)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
