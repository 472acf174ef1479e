package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/sma-seating-api/internal/models"
)

// ErrAssignmentConflict is returned when the database already holds the seat or the student.
var ErrAssignmentConflict = errors.New("seat assignment conflicts with stored roster")

const uniqueViolation = "23505"

// QueryObserver receives query timings.
type QueryObserver interface {
	ObserveDBQuery(label string, duration time.Duration)
}

// RosterRepository persists students, classrooms and seat assignments in PostgreSQL.
//
// The seat_assignments table carries unique (classroom_id, seat_row, seat_column) and
// unique (student_id) constraints so the store rejects double booking on its own.
type RosterRepository struct {
	db       *sqlx.DB
	observer QueryObserver
}

// NewRosterRepository constructs a RosterRepository. observer may be nil.
func NewRosterRepository(db *sqlx.DB, observer QueryObserver) *RosterRepository {
	return &RosterRepository{db: db, observer: observer}
}

func (r *RosterRepository) observe(label string, start time.Time) {
	if r.observer != nil {
		r.observer.ObserveDBQuery(label, time.Since(start))
	}
}

// LoadStudents returns every student with their persisted seat reference.
func (r *RosterRepository) LoadStudents(ctx context.Context) ([]models.Student, error) {
	defer r.observe("load_students", time.Now())
	const query = `SELECT id, full_name, class_section, house, allocated_classroom_id, seat_row, seat_column, created_at, updated_at
        FROM students ORDER BY full_name ASC, id ASC`
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query); err != nil {
		return nil, fmt.Errorf("load students: %w", err)
	}
	return students, nil
}

// LoadClassrooms returns every classroom with its grid dimensions.
func (r *RosterRepository) LoadClassrooms(ctx context.Context) ([]models.Classroom, error) {
	defer r.observe("load_classrooms", time.Now())
	const query = `SELECT id, name, grid_rows, grid_columns, created_at, updated_at FROM classrooms ORDER BY name ASC, id ASC`
	var classrooms []models.Classroom
	if err := r.db.SelectContext(ctx, &classrooms, query); err != nil {
		return nil, fmt.Errorf("load classrooms: %w", err)
	}
	return classrooms, nil
}

// PersistAllocation records a seat assignment and the student's seat reference atomically.
// It returns ErrAssignmentConflict when the student is already seated or the seat is taken.
func (r *RosterRepository) PersistAllocation(ctx context.Context, assignment models.SeatAssignment) (err error) {
	defer r.observe("persist_allocation", time.Now())
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	if assignment.AssignedAt.IsZero() {
		assignment.AssignedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin allocation transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const updateStudent = `UPDATE students SET allocated_classroom_id = $1, seat_row = $2, seat_column = $3, updated_at = $4
        WHERE id = $5 AND allocated_classroom_id IS NULL`
	res, err := tx.ExecContext(ctx, updateStudent, assignment.ClassroomID, assignment.Row, assignment.Column, assignment.AssignedAt, assignment.StudentID)
	if err != nil {
		if isUniqueViolation(err) {
			err = fmt.Errorf("seat (%d,%d) in %s: %w", assignment.Row, assignment.Column, assignment.ClassroomID, ErrAssignmentConflict)
			return err
		}
		return fmt.Errorf("update student seat: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update student seat: %w", err)
	}
	if affected == 0 {
		err = fmt.Errorf("student %s: %w", assignment.StudentID, ErrAssignmentConflict)
		return err
	}

	const insertAssignment = `INSERT INTO seat_assignments (id, classroom_id, student_id, seat_row, seat_column, assigned_at)
        VALUES (:id, :classroom_id, :student_id, :seat_row, :seat_column, :assigned_at)`
	if _, err = tx.NamedExecContext(ctx, insertAssignment, assignment); err != nil {
		if isUniqueViolation(err) {
			err = fmt.Errorf("seat (%d,%d) in %s: %w", assignment.Row, assignment.Column, assignment.ClassroomID, ErrAssignmentConflict)
			return err
		}
		return fmt.Errorf("insert seat assignment: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit allocation: %w", err)
	}
	return nil
}

// UpsertStudents inserts or refreshes roster rows. Seat references are left untouched.
func (r *RosterRepository) UpsertStudents(ctx context.Context, students []models.Student) (count int, err error) {
	defer r.observe("upsert_students", time.Now())
	if len(students) == 0 {
		return 0, nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin roster import: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const query = `INSERT INTO students (id, full_name, class_section, house, created_at, updated_at)
        VALUES (:id, :full_name, :class_section, :house, :created_at, :updated_at)
        ON CONFLICT (id) DO UPDATE SET full_name = EXCLUDED.full_name, class_section = EXCLUDED.class_section,
        house = EXCLUDED.house, updated_at = EXCLUDED.updated_at`
	now := time.Now().UTC()
	for i := range students {
		student := students[i]
		if student.ID == "" {
			student.ID = uuid.NewString()
		}
		if student.CreatedAt.IsZero() {
			student.CreatedAt = now
		}
		student.UpdatedAt = now
		if _, err = tx.NamedExecContext(ctx, query, student); err != nil {
			return 0, fmt.Errorf("upsert student %s: %w", student.ID, err)
		}
		count++
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit roster import: %w", err)
	}
	return count, nil
}

// Ping checks the database connection.
func (r *RosterRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping roster store: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation
}
