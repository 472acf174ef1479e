package main

import (
	"strings"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-seating-api/internal/handler"
	internalmiddleware "github.com/noah-isme/sma-seating-api/internal/middleware"
	"github.com/noah-isme/sma-seating-api/internal/service"
	"github.com/noah-isme/sma-seating-api/pkg/config"
	"github.com/noah-isme/sma-seating-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-seating-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-seating-api/pkg/middleware/requestid"
)

type routerDeps struct {
	session    *service.Session
	allocator  *service.AllocationService
	candidates *service.CandidateService
	importer   *service.RosterImportService
	exports    *service.ExportService
	metrics    *service.MetricsService
}

func newRouter(cfg *config.Config, logr *zap.Logger, deps routerDeps) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, "/health", "/metrics"))
	r.Use(corsmiddleware.New(cfg.CORS))
	r.Use(internalmiddleware.Metrics(deps.metrics))

	metricsHandler := handler.NewMetricsHandler(deps.metrics, deps.session)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	if deps.metrics != nil {
		r.GET("/metrics", metricsHandler.Prometheus)
	}

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	prefix := strings.TrimRight(cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	api := r.Group(prefix)

	seating := handler.NewSeatingHandler(deps.session, deps.allocator, deps.candidates)
	api.GET("/classrooms", seating.ListClassrooms)
	api.GET("/classrooms/:id/grid", seating.Grid)
	api.GET("/classrooms/:id/seats/:row/:col/candidates", seating.Candidates)
	api.POST("/allocations", seating.Allocate)
	api.GET("/students/:id/seat", seating.StudentSeat)
	api.GET("/metrics/summary", metricsHandler.Summary)

	roster := handler.NewRosterHandler(deps.importer)
	api.POST("/roster/import", roster.Import)

	if deps.exports != nil {
		exports := handler.NewExportHandler(deps.exports)
		api.POST("/classrooms/:id/exports", exports.Request)
		api.GET("/exports/download", exports.Download)
		api.GET("/exports/:id", exports.Status)
	}

	return r
}
