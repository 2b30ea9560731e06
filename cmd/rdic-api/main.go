package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/rdic-api/internal/handler"
	"github.com/noah-isme/rdic-api/internal/repository"
	"github.com/noah-isme/rdic-api/internal/service"
	"github.com/noah-isme/rdic-api/migrations"
	"github.com/noah-isme/rdic-api/pkg/cache"
	"github.com/noah-isme/rdic-api/pkg/config"
	"github.com/noah-isme/rdic-api/pkg/database"
	"github.com/noah-isme/rdic-api/pkg/export"
	"github.com/noah-isme/rdic-api/pkg/logger"
)

// @title RDIC Workflow API
// @version 1.0.0
// @description Review, finalization and publication of per-child RDIC reports
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db, migrations.Files, logr); err != nil {
			logr.Fatal("failed to apply migrations", zap.Error(err))
		}
	}

	metrics := service.NewMetricsService()
	deps := map[string]handler.Pinger{"postgres": db}

	var cacheRepo *repository.CacheRepository
	if cfg.Reports.CacheEnabled {
		redisClient, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, report cache disabled", zap.Error(err))
		} else {
			cacheRepo = repository.NewCacheRepository(redisClient, "rdic:", logr)
			defer cacheRepo.Close()
			if err := cacheRepo.DeleteByPattern(ctx, "report:*"); err != nil {
				logr.Warn("failed to flush report cache", zap.Error(err))
			}
			deps["redis"] = handler.PingerFunc(cache.Ping(redisClient))
		}
	}

	reports := newReportService(cfg, db, cacheRepo, metrics, logr)
	tokens := service.NewTokenService(service.TokenConfig{
		Secret:     cfg.JWT.Secret,
		Issuer:     cfg.JWT.Issuer,
		Expiration: cfg.JWT.Expiration,
	})

	router := newRouter(routerDeps{
		cfg:     cfg,
		logger:  logr,
		metrics: metrics,
		tokens:  tokens,
		reports: handler.NewReportHandler(reports),
		deps:    deps,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("server forced to shutdown", zap.Error(err))
	}
}

func newReportService(cfg *config.Config, db *sqlx.DB, cacheRepo *repository.CacheRepository, metrics *service.MetricsService, logr *zap.Logger) *service.ReportWorkflowService {
	opts := []service.ReportWorkflowOption{
		service.WithReportMetrics(metrics),
		service.WithReportListLimit(cfg.Reports.ListLimit),
	}

	if cacheRepo != nil {
		cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Reports.CacheTTL, logr, true)
		opts = append(opts, service.WithReportCache(cacheSvc, cfg.Reports.CacheTTL))
	}

	if cfg.Reports.PDFExportEnabled {
		opts = append(opts, service.WithReportExporters(export.NewPDFExporter(), export.NewCSVExporter()))
	} else {
		opts = append(opts, service.WithReportExporters(nil, export.NewCSVExporter()))
	}

	return service.NewReportWorkflowService(repository.NewReportRepository(db), validator.New(), logr, opts...)
}
