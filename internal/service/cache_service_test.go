package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/sma-seating-api/internal/models"
	appErrors "github.com/noah-isme/sma-seating-api/pkg/errors"
)

type stubCacheRepo struct {
	getErr   error
	setErr   error
	patterns []string
	sets     int
}

func (s *stubCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	if s.getErr != nil {
		return s.getErr
	}
	*dest.(*[]models.Student) = []models.Student{{ID: "s1"}}
	return nil
}

func (s *stubCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	s.sets++
	return s.setErr
}

func (s *stubCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	s.patterns = append(s.patterns, pattern)
	return nil
}

func TestCandidateKeyNormalisesFilter(t *testing.T) {
	scope := CacheScope{Generation: "g1", Epoch: 3}
	assert.Equal(t, "seating:candidates:g1:e3:room-1:1:2:asha", CandidateKey(scope, "room-1", 1, 2, "  ASHA "))
	assert.Equal(t, "seating:candidates::e0:room-1:0:0:", CandidateKey(CacheScope{}, "room-1", 0, 0, ""))
	assert.NotEqual(t, CandidateKey(scope, "room-1", 1, 2, ""), CandidateKey(CacheScope{Generation: "g2", Epoch: 3}, "room-1", 1, 2, ""))
}

func TestCacheServiceDisabledIsNoop(t *testing.T) {
	repo := &stubCacheRepo{}
	svc := NewCacheService(repo, nil, time.Minute, nil, false)
	_, ok := svc.GetCandidates(context.Background(), "k")
	assert.False(t, ok)
	svc.SetCandidates(context.Background(), "k", nil)
	svc.InvalidateScope(context.Background(), CacheScope{Generation: "g1", Epoch: 1})
	assert.Zero(t, repo.sets)
	assert.Empty(t, repo.patterns)

	var nilSvc *CacheService
	assert.False(t, nilSvc.Enabled())
	_, ok = nilSvc.GetCandidates(context.Background(), "k")
	assert.False(t, ok)
}

func TestCacheServiceRecordsHitsAndMisses(t *testing.T) {
	metrics := NewMetricsService()
	repo := &stubCacheRepo{}
	svc := NewCacheService(repo, metrics, 0, nil, true)

	got, ok := svc.GetCandidates(context.Background(), "k")
	assert.True(t, ok)
	assert.Equal(t, "s1", got[0].ID)

	repo.getErr = appErrors.ErrCacheMiss
	_, ok = svc.GetCandidates(context.Background(), "k")
	assert.False(t, ok)

	repo.getErr = errors.New("connection reset")
	_, ok = svc.GetCandidates(context.Background(), "k")
	assert.False(t, ok)

	snapshot := metrics.Snapshot()
	assert.Equal(t, uint64(1), snapshot.CacheHits)
	assert.Equal(t, uint64(2), snapshot.CacheMisses)

	repo.setErr = errors.New("read only")
	svc.SetCandidates(context.Background(), "k", nil)
	assert.Equal(t, 1, repo.sets)

	svc.InvalidateScope(context.Background(), CacheScope{Generation: "g1", Epoch: 7})
	assert.Equal(t, []string{"seating:candidates:g1:e7:*"}, repo.patterns)
}
