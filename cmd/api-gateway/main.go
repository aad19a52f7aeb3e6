package main

import (
	"context"
	"errors"
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
	"go.uber.org/zap"

	_ "github.com/noah-isme/uni-admissions-api/api/swagger"
	"github.com/noah-isme/uni-admissions-api/internal/handler"
	"github.com/noah-isme/uni-admissions-api/internal/repository"
	"github.com/noah-isme/uni-admissions-api/internal/service"
	"github.com/noah-isme/uni-admissions-api/pkg/cache"
	"github.com/noah-isme/uni-admissions-api/pkg/config"
	"github.com/noah-isme/uni-admissions-api/pkg/database"
	"github.com/noah-isme/uni-admissions-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/uni-admissions-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/uni-admissions-api/pkg/middleware/requestid"
)

// @title University Admissions API
// @version 1.0.0
// @description Workflow engine for the admissions portal: application status, officer assignment and SSC eligibility
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
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, previews and notifications degraded", "error", err)
		redisClient = nil
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	applicationRepo := repository.NewApplicationRepository(db)
	qualificationRepo := repository.NewQualificationRepository(db)
	requirementRepo := repository.NewRequirementRepository(db)
	programRepo := repository.NewProgramRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "uni-admissions-api",
	})
	notificationSvc := service.NewNotificationService(cacheRepo, logr, cfg.Notifications)
	workflowSvc := service.NewWorkflowService(applicationRepo, userRepo, userRepo, notificationSvc, metricsSvc, logr)
	assignmentSvc := service.NewAssignmentService(
		applicationRepo, userRepo, programRepo, workflowSvc,
		cacheRepo, notificationSvc, userRepo, metricsSvc,
		validate, logr,
		cfg.Admissions.MaxBatchSize, cfg.Admissions.PreviewCacheTTL)
	qualificationSvc := service.NewQualificationService(
		qualificationRepo, requirementRepo, applicationRepo, userRepo,
		validate, logr, cfg.Admissions.MaxSittings)
	exportSvc := service.NewExportService(applicationRepo, userRepo, logr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	notificationSvc.Start(ctx)
	defer notificationSvc.Stop()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.Register(r, cfg.APIPrefix, handler.Dependencies{
		Auth:           authSvc,
		Workflow:       workflowSvc,
		Assignments:    assignmentSvc,
		Qualifications: qualificationSvc,
		Exports:        exportSvc,
		Metrics:        metricsSvc,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
	if err := cacheRepo.Close(); err != nil {
		logr.Sugar().Warnw("failed to close redis", "error", err)
	}
	logr.Info("server stopped", zap.String("addr", srv.Addr))
}
