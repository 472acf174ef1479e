package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-seating-api/internal/dto"
	"github.com/noah-isme/sma-seating-api/internal/models"
	"github.com/noah-isme/sma-seating-api/internal/repository"
	"github.com/noah-isme/sma-seating-api/internal/seating"
	appErrors "github.com/noah-isme/sma-seating-api/pkg/errors"
)

// AllocationConfig tunes the coordinator.
type AllocationConfig struct {
	AdjacencyRadius int
	PersistTimeout  time.Duration
}

// AllocationService seats students one request at a time.
//
// Occupancy and constraint checks first run against the published grid without locking
// so doomed requests fail fast. Survivors take the classroom commit lock, repeat both
// checks against the grid current at that moment, persist, and only then publish.
type AllocationService struct {
	session   *Session
	evaluator seating.Evaluator
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       AllocationConfig
	now       func() time.Time
}

// NewAllocationService constructs the allocation coordinator.
func NewAllocationService(session *Session, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg AllocationConfig) *AllocationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.PersistTimeout <= 0 {
		cfg.PersistTimeout = 5 * time.Second
	}
	return &AllocationService{
		session:   session,
		evaluator: seating.NewEvaluator(cfg.AdjacencyRadius),
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Evaluator exposes the rule set shared with the candidate selector.
func (s *AllocationService) Evaluator() seating.Evaluator {
	return s.evaluator
}

// Allocate seats a student. Rejections return both the result, carrying the terminal
// state and the trail that led there, and an error describing the rejection.
func (s *AllocationService) Allocate(ctx context.Context, req dto.AllocateRequest) (*dto.AllocationResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "studentId, classroomId, row and column are required")
	}
	if err := s.session.Available(ctx); err != nil {
		return nil, err
	}
	st, err := s.session.classroom(req.ClassroomID)
	if err != nil {
		return nil, err
	}

	row, col := *req.Row, *req.Column
	snapshot := st.published().grid
	if !snapshot.InBounds(row, col) {
		return nil, appErrors.WithDetails(appErrors.ErrOutOfBounds, map[string]any{
			"row": row, "column": col, "rows": snapshot.Rows(), "columns": snapshot.Columns(),
		})
	}

	student, ok := s.session.Student(req.StudentID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	result := &dto.AllocationResult{
		StudentID:   student.ID,
		ClassroomID: st.info.ID,
		Row:         row,
		Column:      col,
		State:       models.AllocationSeatSelected,
		Trail:       []models.AllocationState{models.AllocationSeatSelected},
	}
	log := s.logger.With(
		zap.String("student_id", student.ID),
		zap.String("classroom_id", st.info.ID),
		zap.Int("row", row),
		zap.Int("column", col),
	)

	if student.Assigned() {
		return s.reject(log, result, models.AllocationRejectedAssigned, appErrors.WithDetails(appErrors.ErrAlreadyAssigned, map[string]any{
			"classroomId": *student.AllocatedClassroomID, "row": *student.SeatRow, "column": *student.SeatColumn,
		}))
	}

	if free, _ := snapshot.IsFree(row, col); !free {
		return s.reject(log, result, models.AllocationRejectedOccupied, appErrors.WithDetails(appErrors.ErrSeatOccupied, seatDetails(row, col)))
	}
	s.advance(result, models.AllocationOccupancyChecked)

	occupant := occupantOf(student)
	if violations := s.evaluator.Violations(occupant, row, col, snapshot); len(violations) > 0 {
		result.Violations = violations
		details := seatDetails(row, col)
		details["violations"] = violations
		return s.reject(log, result, models.AllocationRejectedConstraint, appErrors.WithDetails(appErrors.ErrConstraintViolation, details))
	}
	s.advance(result, models.AllocationConstraintValidated)

	scope, err := s.commit(ctx, st, student, row, col, result)
	if err != nil {
		s.metrics.RecordAllocation(result.State)
		if result.State == models.AllocationFailedPersistence {
			log.Error("allocation persistence failed", zap.Error(err))
		} else {
			log.Info("allocation rejected", zap.String("state", string(result.State)), zap.Error(err))
		}
		return result, appErrors.WithDetails(appErrors.FromError(err), map[string]any{"state": result.State, "trail": result.Trail})
	}

	s.cache.InvalidateScope(ctx, scope)
	s.metrics.RecordAllocation(result.State)
	log.Info("allocation committed", zap.String("state", string(result.State)))
	return result, nil
}

// commit runs the locked half of an allocation. On any error result holds the
// terminal state. The returned scope is the one that was current before the commit.
func (s *AllocationService) commit(ctx context.Context, st *classroomState, student models.Student, row, col int, result *dto.AllocationResult) (CacheScope, error) {
	st.commit.Lock()
	acquired := time.Now()
	defer func() {
		st.commit.Unlock()
		s.metrics.ObserveCommitLock(time.Since(acquired))
	}()

	stale := func(reason string) (CacheScope, error) {
		s.advance(result, models.AllocationRejectedStale)
		details := seatDetails(row, col)
		details["reason"] = reason
		return CacheScope{}, appErrors.WithDetails(appErrors.ErrStaleCommit, details)
	}

	if st.retired.Load() {
		return stale("session reloaded")
	}
	current := st.published()
	if free, _ := current.grid.IsFree(row, col); !free {
		return stale("seat taken")
	}
	if violations := s.evaluator.Violations(occupantOf(student), row, col, current.grid); len(violations) > 0 {
		result.Violations = violations
		return stale("placement rules no longer satisfied")
	}
	if !s.session.reserve(student.ID, st.info.ID) {
		return stale("student seated concurrently")
	}

	next := current.grid.Snapshot()
	if err := next.Place(row, col, occupantOf(student)); err != nil {
		s.session.release(student.ID)
		return stale(err.Error())
	}

	committedAt := s.now()
	assignment := models.SeatAssignment{
		ClassroomID: st.info.ID,
		StudentID:   student.ID,
		Row:         row,
		Column:      col,
		AssignedAt:  committedAt,
	}
	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.PersistTimeout)
	defer cancel()
	if err := s.session.persist(persistCtx, assignment); err != nil {
		s.session.release(student.ID)
		if errors.Is(err, repository.ErrAssignmentConflict) {
			return stale("roster store already holds this seat or student")
		}
		s.advance(result, models.AllocationFailedPersistence)
		return CacheScope{}, appErrors.Wrap(err, appErrors.ErrPersistenceFailure.Code, appErrors.ErrPersistenceFailure.Status, appErrors.ErrPersistenceFailure.Message)
	}

	st.current.Store(&publishedGrid{grid: next, version: current.version + 1})
	s.session.confirm(student.WithSeat(st.info.ID, row, col))
	scope := CacheScope{Generation: s.session.Generation(), Epoch: s.session.epoch.Add(1) - 1}

	result.CommittedAt = &committedAt
	s.advance(result, models.AllocationCommitted)
	return scope, nil
}

func (s *AllocationService) advance(result *dto.AllocationResult, state models.AllocationState) {
	result.State = state
	result.Trail = append(result.Trail, state)
}

func (s *AllocationService) reject(log *zap.Logger, result *dto.AllocationResult, state models.AllocationState, err *appErrors.Error) (*dto.AllocationResult, error) {
	s.advance(result, state)
	s.metrics.RecordAllocation(state)
	log.Info("allocation rejected", zap.String("state", string(state)), zap.String("code", err.Code))
	return result, appErrors.WithDetails(err, map[string]any{"state": state, "trail": result.Trail})
}

func seatDetails(row, col int) map[string]any {
	return map[string]any{"row": row, "column": col}
}
