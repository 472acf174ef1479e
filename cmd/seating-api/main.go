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

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	_ "github.com/noah-isme/sma-seating-api/api/swagger"
	"github.com/noah-isme/sma-seating-api/internal/bootstrap"
	"github.com/noah-isme/sma-seating-api/internal/repository"
	"github.com/noah-isme/sma-seating-api/internal/service"
	"github.com/noah-isme/sma-seating-api/pkg/cache"
	"github.com/noah-isme/sma-seating-api/pkg/config"
	"github.com/noah-isme/sma-seating-api/pkg/jobs"
	"github.com/noah-isme/sma-seating-api/pkg/logger"
	"github.com/noah-isme/sma-seating-api/pkg/storage"
)

// @title SMA Seating API
// @version 1.0.0
// @description Classroom seat allocation with class and house placement rules
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	var metrics *service.MetricsService
	if cfg.Metrics.Enabled {
		metrics = service.NewMetricsService()
	}

	roster, err := bootstrap.OpenRoster(ctx, cfg, metrics, logr)
	if err != nil {
		return err
	}
	defer roster.Close()

	session := service.NewSession(roster.Source, service.SessionConfig{
		DefaultRows:    cfg.Seating.DefaultRows,
		DefaultColumns: cfg.Seating.DefaultColumns,
	}, logr)
	if err := session.Load(ctx); err != nil {
		// Keep serving: /ready reports 503 and allocations are refused until an import reloads the session.
		logr.Error("initial roster load failed", zap.Error(err))
	}

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, candidate cache disabled", zap.Error(err))
		redisClient = nil
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Seating.CandidateCacheTTL, logr,
		cfg.Seating.CandidateCacheEnabled && redisClient != nil)

	validate := validator.New()
	allocator := service.NewAllocationService(session, cacheSvc, metrics, validate, logr, service.AllocationConfig{
		AdjacencyRadius: cfg.Seating.AdjacencyRadius,
		PersistTimeout:  cfg.Seating.PersistTimeout,
	})
	candidates := service.NewCandidateService(session, allocator.Evaluator(), service.NewFuzzyStudentSearcher(), cacheSvc, metrics, logr)
	importer := service.NewRosterImportService(roster.Upserter, session, logr)

	var exports *service.ExportService
	if cfg.Exports.Enabled {
		exports, err = startExports(ctx, cfg, session, validate, logr)
		if err != nil {
			return err
		}
	}

	router := newRouter(cfg, logr, routerDeps{
		session:    session,
		allocator:  allocator,
		candidates: candidates,
		importer:   importer,
		exports:    exports,
		metrics:    metrics,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env), zap.String("roster_source", cfg.Seating.RosterSource))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	logr.Info("server shutting down")
	return srv.Shutdown(shutdownCtx)
}

func startExports(ctx context.Context, cfg *config.Config, session *service.Session, validate *validator.Validate, logr *zap.Logger) (*service.ExportService, error) {
	store, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		return nil, fmt.Errorf("init export storage: %w", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
	exports := service.NewExportService(session, store, signer, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Exports.SignedURLTTL,
	}, validate, logr)

	queue := jobs.NewQueue("seating-exports", exports.Process, jobs.QueueConfig{
		Workers:     cfg.Exports.WorkerConcurrency,
		MaxRetries:  cfg.Exports.WorkerRetries,
		Logger:      logr,
		OnExhausted: exports.MarkExhausted,
	})
	queue.Start(ctx)
	go func() {
		<-ctx.Done()
		queue.Stop()
	}()
	exports.SetDispatcher(queue)
	exports.StartCleanup(ctx, time.Hour)
	return exports, nil
}
