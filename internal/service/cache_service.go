package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-seating-api/internal/models"
	appErrors "github.com/noah-isme/sma-seating-api/pkg/errors"
)

const candidateKeyPrefix = "seating:candidates"

// CacheRepository abstracts persistence for cached payloads.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CacheService caches candidate lists keyed by the session epoch they were computed at.
// A commit moves the epoch, so entries written before it are never read again.
type CacheService struct {
	repo       CacheRepository
	metrics    *MetricsService
	defaultTTL time.Duration
	logger     *zap.Logger
	enabled    bool
}

// NewCacheService constructs a cache service.
func NewCacheService(repo CacheRepository, metrics *MetricsService, defaultTTL time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if defaultTTL <= 0 {
		defaultTTL = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{repo: repo, metrics: metrics, defaultTTL: defaultTTL, logger: logger, enabled: enabled}
}

// Enabled indicates whether caching is active.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.repo != nil
}

// CacheScope names the session load and commit epoch a cached value was computed at.
// Generation is unique per Load, so processes sharing one redis never read each other's lists.
type CacheScope struct {
	Generation string
	Epoch      uint64
}

func (c CacheScope) prefix() string {
	return fmt.Sprintf("%s:%s:e%d", candidateKeyPrefix, c.Generation, c.Epoch)
}

// CandidateKey builds the cache key for one seat and filter within scope.
func CandidateKey(scope CacheScope, classroomID string, row, col int, filter string) string {
	return fmt.Sprintf("%s:%s:%d:%d:%s", scope.prefix(), classroomID, row, col, strings.ToLower(strings.TrimSpace(filter)))
}

// GetCandidates returns a cached candidate list. The boolean reports a hit.
func (s *CacheService) GetCandidates(ctx context.Context, key string) ([]models.Student, bool) {
	if !s.Enabled() {
		return nil, false
	}
	var students []models.Student
	start := time.Now()
	err := s.repo.Get(ctx, key, &students)
	duration := time.Since(start)
	if err != nil {
		s.metrics.RecordCacheOperation(false, duration)
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	s.metrics.RecordCacheOperation(true, duration)
	return students, true
}

// SetCandidates stores a candidate list. Failures are logged and otherwise ignored.
func (s *CacheService) SetCandidates(ctx context.Context, key string, students []models.Student) {
	if !s.Enabled() {
		return
	}
	start := time.Now()
	err := s.repo.Set(ctx, key, students, s.defaultTTL)
	s.metrics.ObserveCacheWrite(time.Since(start))
	if err != nil {
		s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// InvalidateScope drops every candidate list computed within scope.
func (s *CacheService) InvalidateScope(ctx context.Context, scope CacheScope) {
	if !s.Enabled() {
		return
	}
	pattern := scope.prefix() + ":*"
	if err := s.repo.DeleteByPattern(ctx, pattern); err != nil {
		s.logger.Warn("cache invalidate failed", zap.String("pattern", pattern), zap.Error(err))
	}
}
