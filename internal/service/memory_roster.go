package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/noah-isme/sma-seating-api/internal/models"
	"github.com/noah-isme/sma-seating-api/internal/repository"
)

// ErrRosterOffline is returned by MemoryRoster.Ping after SetOnline(false).
var ErrRosterOffline = errors.New("roster offline")

// MemoryRoster is a RosterSource kept entirely in process. It backs the xlsx and memory
// roster modes and enforces the same uniqueness rules as the database.
type MemoryRoster struct {
	mu          sync.Mutex
	students    map[string]models.Student
	order       []string
	classrooms  []models.Classroom
	seats       map[string]string
	online      bool
	persistHook func(models.SeatAssignment) error
}

// NewMemoryRoster seeds a roster.
func NewMemoryRoster(students []models.Student, classrooms []models.Classroom) *MemoryRoster {
	m := &MemoryRoster{
		students: make(map[string]models.Student, len(students)),
		seats:    make(map[string]string),
		online:   true,
	}
	m.classrooms = append(m.classrooms, classrooms...)
	for _, student := range students {
		m.put(student)
	}
	return m
}

func seatKey(classroomID string, row, col int) string {
	return fmt.Sprintf("%s/%d/%d", classroomID, row, col)
}

func (m *MemoryRoster) put(student models.Student) {
	if _, exists := m.students[student.ID]; !exists {
		m.order = append(m.order, student.ID)
	}
	m.students[student.ID] = student
	if student.Assigned() {
		m.seats[seatKey(*student.AllocatedClassroomID, *student.SeatRow, *student.SeatColumn)] = student.ID
	}
}

// SetOnline toggles Ping failures.
func (m *MemoryRoster) SetOnline(online bool) {
	m.mu.Lock()
	m.online = online
	m.mu.Unlock()
}

// SetPersistHook installs a function consulted before every PersistAllocation.
// A non-nil error from the hook is returned without recording the assignment.
func (m *MemoryRoster) SetPersistHook(hook func(models.SeatAssignment) error) {
	m.mu.Lock()
	m.persistHook = hook
	m.mu.Unlock()
}

// LoadStudents returns students in insertion order.
func (m *MemoryRoster) LoadStudents(ctx context.Context) ([]models.Student, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Student, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.students[id])
	}
	return out, nil
}

// LoadClassrooms returns the seeded classrooms.
func (m *MemoryRoster) LoadClassrooms(ctx context.Context) ([]models.Classroom, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Classroom, len(m.classrooms))
	copy(out, m.classrooms)
	return out, nil
}

// PersistAllocation records an assignment unless the seat or the student is taken.
func (m *MemoryRoster) PersistAllocation(ctx context.Context, assignment models.SeatAssignment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.persistHook != nil {
		if err := m.persistHook(assignment); err != nil {
			return err
		}
	}
	student, ok := m.students[assignment.StudentID]
	if !ok {
		return fmt.Errorf("persist allocation: unknown student %s", assignment.StudentID)
	}
	if student.Assigned() {
		return fmt.Errorf("student %s: %w", student.ID, repository.ErrAssignmentConflict)
	}
	key := seatKey(assignment.ClassroomID, assignment.Row, assignment.Column)
	if _, taken := m.seats[key]; taken {
		return fmt.Errorf("seat %s: %w", key, repository.ErrAssignmentConflict)
	}
	m.seats[key] = student.ID
	m.students[student.ID] = student.WithSeat(assignment.ClassroomID, assignment.Row, assignment.Column)
	return nil
}

// UpsertStudents adds or refreshes students, keeping existing seat references.
func (m *MemoryRoster) UpsertStudents(ctx context.Context, students []models.Student) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, student := range students {
		if existing, ok := m.students[student.ID]; ok {
			student.AllocatedClassroomID = existing.AllocatedClassroomID
			student.SeatRow = existing.SeatRow
			student.SeatColumn = existing.SeatColumn
		}
		m.put(student)
	}
	return len(students), nil
}

// Ping fails while the roster is offline.
func (m *MemoryRoster) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.online {
		return ErrRosterOffline
	}
	return nil
}
