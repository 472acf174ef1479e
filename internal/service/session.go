package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/sma-seating-api/internal/dto"
	"github.com/noah-isme/sma-seating-api/internal/models"
	"github.com/noah-isme/sma-seating-api/internal/seating"
	appErrors "github.com/noah-isme/sma-seating-api/pkg/errors"
)

// RosterSource is the collaborator holding students, classrooms and committed seats.
type RosterSource interface {
	LoadStudents(ctx context.Context) ([]models.Student, error)
	LoadClassrooms(ctx context.Context) ([]models.Classroom, error)
	PersistAllocation(ctx context.Context, assignment models.SeatAssignment) error
	Ping(ctx context.Context) error
}

// SessionConfig supplies grid dimensions for classrooms stored without them.
type SessionConfig struct {
	DefaultRows    int
	DefaultColumns int
	PingTimeout    time.Duration
}

// publishedGrid pairs an immutable grid with the classroom version it was committed at.
type publishedGrid struct {
	grid    *seating.Grid
	version uint64
}

type classroomState struct {
	info models.Classroom

	// commit serialises re-check, persist and publish for this classroom.
	commit  sync.Mutex
	current atomic.Pointer[publishedGrid]
	retired atomic.Bool
}

func (c *classroomState) published() *publishedGrid {
	return c.current.Load()
}

// Session is the in-memory seating state of every classroom plus the roster it was loaded from.
// Grids are copy-on-write: readers take the published pointer without locking and
// writers publish a new grid while holding the classroom's commit lock.
type Session struct {
	roster RosterSource
	cfg    SessionConfig
	logger *zap.Logger

	mu         sync.RWMutex
	classrooms map[string]*classroomState
	order      []string
	loaded     bool

	// studentsMu is always taken after a classroom commit lock, never before.
	studentsMu sync.RWMutex
	students   map[string]models.Student
	reserved   map[string]string

	epoch      atomic.Uint64
	generation atomic.Pointer[string]
}

// NewSession constructs an unloaded session.
func NewSession(roster RosterSource, cfg SessionConfig, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultRows <= 0 {
		cfg.DefaultRows = 5
	}
	if cfg.DefaultColumns <= 0 {
		cfg.DefaultColumns = 5
	}
	if cfg.PingTimeout <= 0 {
		cfg.PingTimeout = 2 * time.Second
	}
	return &Session{
		roster:     roster,
		cfg:        cfg,
		logger:     logger,
		classrooms: make(map[string]*classroomState),
		students:   make(map[string]models.Student),
		reserved:   make(map[string]string),
	}
}

// Load replaces the session state with the roster's current contents.
// Grids are rebuilt from each student's stored seat reference; a reference that is
// out of bounds, names an unknown classroom, or collides with another student fails the load.
func (s *Session) Load(ctx context.Context) error {
	if s.roster == nil {
		return appErrors.Clone(appErrors.ErrRosterUnavailable, "no roster source configured")
	}

	var (
		students   []models.Student
		classrooms []models.Classroom
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		students, err = s.roster.LoadStudents(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		classrooms, err = s.roster.LoadClassrooms(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrRosterUnavailable.Code, appErrors.ErrRosterUnavailable.Status, "failed to load roster")
	}

	states, order, err := s.buildClassrooms(classrooms)
	if err != nil {
		return err
	}
	studentIndex := make(map[string]models.Student, len(students))
	for _, student := range students {
		if student.ID == "" {
			continue
		}
		if _, dup := studentIndex[student.ID]; dup {
			return appErrors.Clone(appErrors.ErrInternal, fmt.Sprintf("duplicate student %s in roster", student.ID))
		}
		if err := seatStudent(states, student); err != nil {
			return err
		}
		studentIndex[student.ID] = student
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, old := range s.classrooms {
		old.commit.Lock()
		old.retired.Store(true)
	}
	defer func(old map[string]*classroomState) {
		for _, st := range old {
			st.commit.Unlock()
		}
	}(s.classrooms)

	s.studentsMu.Lock()
	s.students = studentIndex
	s.reserved = make(map[string]string)
	s.studentsMu.Unlock()

	s.classrooms = states
	s.order = order
	s.loaded = true
	generation := uuid.NewString()
	s.generation.Store(&generation)
	s.epoch.Add(1)

	s.logger.Info("seating session loaded",
		zap.Int("classrooms", len(states)),
		zap.Int("students", len(studentIndex)),
	)
	return nil
}

func (s *Session) buildClassrooms(classrooms []models.Classroom) (map[string]*classroomState, []string, error) {
	states := make(map[string]*classroomState, len(classrooms))
	order := make([]string, 0, len(classrooms))
	for _, classroom := range classrooms {
		if classroom.Rows <= 0 {
			classroom.Rows = s.cfg.DefaultRows
		}
		if classroom.Columns <= 0 {
			classroom.Columns = s.cfg.DefaultColumns
		}
		grid, err := seating.NewGrid(classroom.Rows, classroom.Columns)
		if err != nil {
			return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("classroom %s has an invalid grid", classroom.ID))
		}
		if _, dup := states[classroom.ID]; dup {
			return nil, nil, appErrors.Clone(appErrors.ErrInternal, fmt.Sprintf("duplicate classroom %s in roster", classroom.ID))
		}
		st := &classroomState{info: classroom}
		st.current.Store(&publishedGrid{grid: grid})
		states[classroom.ID] = st
		order = append(order, classroom.ID)
	}
	return states, order, nil
}

func seatStudent(states map[string]*classroomState, student models.Student) error {
	if !student.Consistent() {
		return appErrors.Clone(appErrors.ErrInternal, fmt.Sprintf("student %s has a partial seat reference", student.ID))
	}
	if !student.Assigned() {
		return nil
	}
	st, ok := states[*student.AllocatedClassroomID]
	if !ok {
		return appErrors.Clone(appErrors.ErrInternal, fmt.Sprintf("student %s references unknown classroom %s", student.ID, *student.AllocatedClassroomID))
	}
	if err := st.published().grid.Place(*student.SeatRow, *student.SeatColumn, occupantOf(student)); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("student %s has an invalid seat reference", student.ID))
	}
	return nil
}

// Loaded reports whether Load has completed at least once.
func (s *Session) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Available reports whether allocations may proceed: the session is loaded and the roster answers.
func (s *Session) Available(ctx context.Context) error {
	if !s.Loaded() {
		return appErrors.Clone(appErrors.ErrRosterUnavailable, "seating session not loaded")
	}
	pingCtx, cancel := context.WithTimeout(ctx, s.cfg.PingTimeout)
	defer cancel()
	if err := s.roster.Ping(pingCtx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrRosterUnavailable.Code, appErrors.ErrRosterUnavailable.Status, appErrors.ErrRosterUnavailable.Message)
	}
	return nil
}

// Epoch increases on every commit and reload.
func (s *Session) Epoch() uint64 {
	return s.epoch.Load()
}

// Generation identifies the most recent successful Load. It is empty before the first one.
func (s *Session) Generation() string {
	if g := s.generation.Load(); g != nil {
		return *g
	}
	return ""
}

// CacheScope returns the scope cached candidate lists are keyed by.
func (s *Session) CacheScope() CacheScope {
	return CacheScope{Generation: s.Generation(), Epoch: s.epoch.Load()}
}

func (s *Session) classroom(id string) (*classroomState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return nil, appErrors.Clone(appErrors.ErrRosterUnavailable, "seating session not loaded")
	}
	st, ok := s.classrooms[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "classroom not found")
	}
	return st, nil
}

// Classrooms lists every classroom with its live occupancy.
func (s *Session) Classrooms() []models.ClassroomSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ClassroomSummary, 0, len(s.order))
	for _, id := range s.order {
		st := s.classrooms[id]
		grid := st.published().grid
		out = append(out, models.ClassroomSummary{
			Classroom: st.info,
			Capacity:  grid.Capacity(),
			Occupied:  grid.OccupiedCount(),
		})
	}
	return out
}

// Student returns the session's view of a student.
func (s *Session) Student(id string) (models.Student, bool) {
	s.studentsMu.RLock()
	defer s.studentsMu.RUnlock()
	student, ok := s.students[id]
	return student, ok
}

// UnassignedStudents returns students without a seat or pending reservation, ordered by name.
func (s *Session) UnassignedStudents() []models.Student {
	s.studentsMu.RLock()
	out := make([]models.Student, 0, len(s.students))
	for id, student := range s.students {
		if student.Assigned() {
			continue
		}
		if _, pending := s.reserved[id]; pending {
			continue
		}
		out = append(out, student)
	}
	s.studentsMu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
		if a == b {
			return out[i].ID < out[j].ID
		}
		return a < b
	})
	return out
}

// SeatGrid returns a private copy of the classroom grid with its version.
func (s *Session) SeatGrid(classroomID string) (*dto.GridResponse, error) {
	st, err := s.classroom(classroomID)
	if err != nil {
		return nil, err
	}
	pub := st.published()
	return &dto.GridResponse{
		ClassroomID: st.info.ID,
		Name:        st.info.Name,
		Rows:        pub.grid.Rows(),
		Columns:     pub.grid.Columns(),
		Occupied:    pub.grid.OccupiedCount(),
		Version:     pub.version,
		Seats:       pub.grid.Matrix(),
	}, nil
}

// StudentSeat reports where a student sits.
func (s *Session) StudentSeat(studentID string) (*dto.StudentSeatResponse, error) {
	if !s.Loaded() {
		return nil, appErrors.Clone(appErrors.ErrRosterUnavailable, "seating session not loaded")
	}
	student, ok := s.Student(studentID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	resp := &dto.StudentSeatResponse{
		StudentID:    student.ID,
		Name:         student.Name,
		ClassSection: student.ClassSection,
		House:        student.House,
		Assigned:     student.Assigned(),
	}
	if student.Assigned() {
		resp.ClassroomID = student.AllocatedClassroomID
		resp.Row = student.SeatRow
		resp.Column = student.SeatColumn
		if st, err := s.classroom(*student.AllocatedClassroomID); err == nil {
			resp.ClassroomName = st.info.Name
		}
	}
	return resp, nil
}

// reserve marks a student as being seated in classroomID. It fails if the student
// already holds a seat or another reservation. Callers hold the classroom commit lock.
func (s *Session) reserve(studentID, classroomID string) bool {
	s.studentsMu.Lock()
	defer s.studentsMu.Unlock()
	student, ok := s.students[studentID]
	if !ok || student.Assigned() {
		return false
	}
	if _, pending := s.reserved[studentID]; pending {
		return false
	}
	s.reserved[studentID] = classroomID
	return true
}

func (s *Session) release(studentID string) {
	s.studentsMu.Lock()
	delete(s.reserved, studentID)
	s.studentsMu.Unlock()
}

func (s *Session) confirm(student models.Student) {
	s.studentsMu.Lock()
	s.students[student.ID] = student
	delete(s.reserved, student.ID)
	s.studentsMu.Unlock()
}

func (s *Session) persist(ctx context.Context, assignment models.SeatAssignment) error {
	return s.roster.PersistAllocation(ctx, assignment)
}

func occupantOf(student models.Student) seating.Occupant {
	return seating.Occupant{
		StudentID:    student.ID,
		Name:         student.Name,
		ClassSection: student.ClassSection,
		House:        student.House,
	}
}
