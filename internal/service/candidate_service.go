package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-seating-api/internal/models"
	"github.com/noah-isme/sma-seating-api/internal/seating"
	appErrors "github.com/noah-isme/sma-seating-api/pkg/errors"
)

// CandidateService lists students who could take a seat right now. Results are advisory:
// the grid may change before the caller allocates, and the coordinator re-checks.
type CandidateService struct {
	session   *Session
	evaluator seating.Evaluator
	searcher  StudentSearcher
	cache     *CacheService
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewCandidateService constructs a candidate selector sharing the coordinator's evaluator.
func NewCandidateService(session *Session, evaluator seating.Evaluator, searcher StudentSearcher, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *CandidateService {
	if searcher == nil {
		searcher = NewFuzzyStudentSearcher()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CandidateService{
		session:   session,
		evaluator: evaluator,
		searcher:  searcher,
		cache:     cache,
		metrics:   metrics,
		logger:    logger,
	}
}

// CandidatesFor returns unassigned students who pass every placement rule at (row, col),
// narrowed by filterText when it is not blank. An occupied seat has no candidates.
func (s *CandidateService) CandidatesFor(ctx context.Context, classroomID string, row, col int, filterText string) ([]models.Student, error) {
	st, err := s.session.classroom(classroomID)
	if err != nil {
		return nil, err
	}
	scope := s.session.CacheScope()
	grid := st.published().grid
	if !grid.InBounds(row, col) {
		return nil, appErrors.WithDetails(appErrors.ErrOutOfBounds, map[string]any{
			"row": row, "column": col, "rows": grid.Rows(), "columns": grid.Columns(),
		})
	}

	key := CandidateKey(scope, classroomID, row, col, filterText)
	if cached, ok := s.cache.GetCandidates(ctx, key); ok {
		return cached, nil
	}

	s.metrics.RecordCandidateLookup()
	candidates := make([]models.Student, 0)
	if free, _ := grid.IsFree(row, col); free {
		for _, student := range s.session.UnassignedStudents() {
			if s.evaluator.IsValidPlacement(occupantOf(student), row, col, grid) {
				candidates = append(candidates, student)
			}
		}
		candidates = s.searcher.Search(filterText, candidates)
	}

	s.cache.SetCandidates(ctx, key, candidates)
	s.logger.Debug("candidates computed",
		zap.String("classroom_id", classroomID),
		zap.Int("row", row),
		zap.Int("column", col),
		zap.Int("count", len(candidates)),
	)
	return candidates, nil
}
