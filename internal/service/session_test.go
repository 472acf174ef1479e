package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-seating-api/internal/models"
	appErrors "github.com/noah-isme/sma-seating-api/pkg/errors"
)

func TestSessionLoadRebuildsGrids(t *testing.T) {
	session, _ := newLoadedSession(t, []models.Student{
		seated(student("s1", "Asha", "10A", "Red"), "room-1", 0, 0),
		seated(student("s2", "Bima", "10B", "Blue"), "room-1", 2, 2),
		student("s3", "Citra", "10C", "Green"),
	}, hall("room-1", 5, 5), hall("room-2", 3, 4))

	grid, err := session.SeatGrid("room-1")
	require.NoError(t, err)
	assert.Equal(t, 5, grid.Rows)
	assert.Equal(t, 2, grid.Occupied)
	require.NotNil(t, grid.Seats[2][2].Occupant)
	assert.Equal(t, "s2", grid.Seats[2][2].Occupant.StudentID)

	summaries := session.Classrooms()
	require.Len(t, summaries, 2)
	assert.Equal(t, 25, summaries[0].Capacity)
	assert.Equal(t, 2, summaries[0].Occupied)
	assert.Equal(t, 12, summaries[1].Capacity)
	assert.Equal(t, 0, summaries[1].Occupied)
}

func TestSessionLoadAppliesDefaultDimensions(t *testing.T) {
	roster := NewMemoryRoster(nil, []models.Classroom{{ID: "room-1", Name: "Lab"}})
	session := NewSession(roster, SessionConfig{DefaultRows: 4, DefaultColumns: 6}, nil)
	require.NoError(t, session.Load(context.Background()))

	grid, err := session.SeatGrid("room-1")
	require.NoError(t, err)
	assert.Equal(t, 4, grid.Rows)
	assert.Equal(t, 6, grid.Columns)
}

func TestSessionLoadRejectsInconsistentRoster(t *testing.T) {
	cases := map[string][]models.Student{
		"seat collision": {
			seated(student("s1", "Asha", "10A", "Red"), "room-1", 1, 1),
			seated(student("s2", "Bima", "10B", "Blue"), "room-1", 1, 1),
		},
		"unknown classroom": {
			seated(student("s1", "Asha", "10A", "Red"), "room-9", 0, 0),
		},
		"out of bounds": {
			seated(student("s1", "Asha", "10A", "Red"), "room-1", 5, 0),
		},
		"partial reference": {
			{ID: "s1", Name: "Asha", ClassSection: "10A", House: "Red", SeatRow: intPtr(1)},
		},
	}
	for name, students := range cases {
		t.Run(name, func(t *testing.T) {
			session := NewSession(NewMemoryRoster(students, []models.Classroom{hall("room-1", 5, 5)}), SessionConfig{}, nil)
			require.Error(t, session.Load(context.Background()))
			assert.False(t, session.Loaded())
		})
	}
}

func TestSessionNotLoaded(t *testing.T) {
	session := NewSession(NewMemoryRoster(nil, nil), SessionConfig{}, nil)

	_, err := session.SeatGrid("room-1")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrRosterUnavailable))
	_, err = session.StudentSeat("s1")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrRosterUnavailable))
	assert.True(t, appErrors.HasCode(session.Available(context.Background()), appErrors.ErrRosterUnavailable))
}

func TestSessionAvailableFollowsRosterHealth(t *testing.T) {
	session, roster := newLoadedSession(t, nil, hall("room-1", 5, 5))
	require.NoError(t, session.Available(context.Background()))

	roster.SetOnline(false)
	err := session.Available(context.Background())
	assert.True(t, appErrors.HasCode(err, appErrors.ErrRosterUnavailable))
	assert.ErrorIs(t, err, ErrRosterOffline)
}

func TestSessionStudentSeat(t *testing.T) {
	session, _ := newLoadedSession(t, []models.Student{
		seated(student("s1", "Asha", "10A", "Red"), "room-1", 3, 4),
		student("s2", "Bima", "10B", "Blue"),
	}, hall("room-1", 5, 5))

	seat, err := session.StudentSeat("s1")
	require.NoError(t, err)
	assert.True(t, seat.Assigned)
	assert.Equal(t, "Hall room-1", seat.ClassroomName)
	assert.Equal(t, 3, *seat.Row)
	assert.Equal(t, 4, *seat.Column)

	seat, err = session.StudentSeat("s2")
	require.NoError(t, err)
	assert.False(t, seat.Assigned)
	assert.Nil(t, seat.ClassroomID)

	_, err = session.StudentSeat("missing")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
}

func TestSessionUnassignedStudentsSortedByName(t *testing.T) {
	session, _ := newLoadedSession(t, []models.Student{
		student("s3", "citra", "10C", "Green"),
		seated(student("s1", "Asha", "10A", "Red"), "room-1", 0, 0),
		student("s2", "Bima", "10B", "Blue"),
		student("s4", "Ari", "10A", "Blue"),
	}, hall("room-1", 5, 5))

	names := make([]string, 0)
	for _, s := range session.UnassignedStudents() {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"Ari", "Bima", "citra"}, names)
}

func TestSessionReserveExcludesStudent(t *testing.T) {
	session, _ := newLoadedSession(t, []models.Student{student("s1", "Asha", "10A", "Red")}, hall("room-1", 5, 5))

	require.True(t, session.reserve("s1", "room-1"))
	assert.False(t, session.reserve("s1", "room-2"))
	assert.Empty(t, session.UnassignedStudents())

	session.release("s1")
	assert.Len(t, session.UnassignedStudents(), 1)
}

func TestSessionReloadRetiresClassrooms(t *testing.T) {
	session, roster := newLoadedSession(t, []models.Student{student("s1", "Asha", "10A", "Red")}, hall("room-1", 5, 5))
	before, err := session.classroom("room-1")
	require.NoError(t, err)
	epoch := session.Epoch()

	_, err = roster.UpsertStudents(context.Background(), []models.Student{student("s2", "Bima", "10B", "Blue")})
	require.NoError(t, err)
	require.NoError(t, session.Load(context.Background()))

	after, err := session.classroom("room-1")
	require.NoError(t, err)
	assert.True(t, before.retired.Load())
	assert.False(t, after.retired.Load())
	assert.Greater(t, session.Epoch(), epoch)
	_, ok := session.Student("s2")
	assert.True(t, ok)
}
