package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-seating-api/internal/dto"
	"github.com/noah-isme/sma-seating-api/internal/models"
)

func intPtr(v int) *int {
	return &v
}

func student(id, name, class, house string) models.Student {
	return models.Student{ID: id, Name: name, ClassSection: class, House: house}
}

func seated(s models.Student, classroomID string, row, col int) models.Student {
	return s.WithSeat(classroomID, row, col)
}

func hall(id string, rows, cols int) models.Classroom {
	return models.Classroom{ID: id, Name: "Hall " + id, Rows: rows, Columns: cols}
}

func newLoadedSession(t *testing.T, students []models.Student, classrooms ...models.Classroom) (*Session, *MemoryRoster) {
	t.Helper()
	roster := NewMemoryRoster(students, classrooms)
	session := NewSession(roster, SessionConfig{}, nil)
	require.NoError(t, session.Load(context.Background()))
	return session, roster
}

func allocateReq(studentID, classroomID string, row, col int) dto.AllocateRequest {
	return dto.AllocateRequest{StudentID: studentID, ClassroomID: classroomID, Row: intPtr(row), Column: intPtr(col)}
}
