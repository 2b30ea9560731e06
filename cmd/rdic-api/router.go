package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/rdic-api/api/swagger"
	"github.com/noah-isme/rdic-api/internal/handler"
	internalmiddleware "github.com/noah-isme/rdic-api/internal/middleware"
	"github.com/noah-isme/rdic-api/internal/models"
	"github.com/noah-isme/rdic-api/internal/service"
	"github.com/noah-isme/rdic-api/pkg/config"
	"github.com/noah-isme/rdic-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/rdic-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/rdic-api/pkg/middleware/requestid"
)

type routerDeps struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *service.MetricsService
	tokens  *service.TokenService
	reports *handler.ReportHandler
	deps    map[string]handler.Pinger
}

func newRouter(d routerDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(d.logger))
	r.Use(corsmiddleware.New(d.cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(d.metrics))

	ops := handler.NewMetricsHandler(d.metrics, d.deps)
	r.GET("/health", ops.Health)
	r.GET("/ready", ops.Ready)
	r.GET("/metrics", ops.Prometheus)

	if d.cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(d.cfg.APIPrefix)
	api.Use(internalmiddleware.JWT(d.tokens))
	api.Use(internalmiddleware.RequireRoles(models.RoleCentral, models.RoleCoordinator, models.RoleTeacher))
	d.reports.Register(api)

	api.GET("/metrics/summary", internalmiddleware.RequireRoles(models.RoleCentral), ops.Summary)
	return r
}
