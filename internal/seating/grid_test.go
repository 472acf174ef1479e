package seating

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGridRejectsInvalidDimensions(t *testing.T) {
	_, err := NewGrid(0, 5)
	require.ErrorIs(t, err, ErrInvalidDimensions)
	_, err = NewGrid(5, -1)
	require.ErrorIs(t, err, ErrInvalidDimensions)
}

func TestGridSeatAtOutOfBounds(t *testing.T) {
	grid, err := NewGrid(5, 5)
	require.NoError(t, err)

	_, err = grid.SeatAt(5, 0)
	require.ErrorIs(t, err, ErrOutOfBounds)
	_, err = grid.SeatAt(0, -1)
	require.ErrorIs(t, err, ErrOutOfBounds)
	_, err = grid.IsFree(-1, 2)
	require.ErrorIs(t, err, ErrOutOfBounds)

	seat, err := grid.SeatAt(4, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, seat.Row)
	assert.Equal(t, 4, seat.Column)
	assert.True(t, seat.Free())
}

func TestGridPlaceVisibleImmediately(t *testing.T) {
	grid, err := NewGrid(3, 4)
	require.NoError(t, err)

	require.NoError(t, grid.Place(1, 2, Occupant{StudentID: "s1", ClassSection: "5A", House: "Blue"}))

	free, err := grid.IsFree(1, 2)
	require.NoError(t, err)
	assert.False(t, free)

	seat, err := grid.SeatAt(1, 2)
	require.NoError(t, err)
	require.NotNil(t, seat.Occupant)
	assert.Equal(t, "s1", seat.Occupant.StudentID)
	assert.Equal(t, 1, grid.OccupiedCount())
}

func TestGridPlaceRejectsOccupiedSeat(t *testing.T) {
	grid, _ := NewGrid(5, 5)
	require.NoError(t, grid.Place(0, 0, Occupant{StudentID: "s1"}))

	err := grid.Place(0, 0, Occupant{StudentID: "s4"})
	require.ErrorIs(t, err, ErrSeatAlreadyOccupied)

	seat, _ := grid.SeatAt(0, 0)
	assert.Equal(t, "s1", seat.Occupant.StudentID)
}

func TestGridPlaceRejectsDoubleBooking(t *testing.T) {
	grid, _ := NewGrid(5, 5)
	require.NoError(t, grid.Place(0, 0, Occupant{StudentID: "s1"}))

	err := grid.Place(3, 3, Occupant{StudentID: "s1"})
	require.ErrorIs(t, err, ErrStudentAlreadySeated)
	free, _ := grid.IsFree(3, 3)
	assert.True(t, free)
}

func TestGridSnapshotIsIndependent(t *testing.T) {
	grid, _ := NewGrid(2, 2)
	require.NoError(t, grid.Place(0, 1, Occupant{StudentID: "s1", House: "Red"}))

	snap := grid.Snapshot()
	require.NoError(t, snap.Place(1, 1, Occupant{StudentID: "s2"}))

	free, _ := grid.IsFree(1, 1)
	assert.True(t, free, "mutating a snapshot must not leak into the source grid")

	seat, _ := snap.SeatAt(0, 1)
	seat.Occupant.House = "Green"
	original, _ := grid.SeatAt(0, 1)
	assert.Equal(t, "Red", original.Occupant.House)
}

func TestGridMatrixAndLocate(t *testing.T) {
	grid, _ := NewGrid(2, 3)
	require.NoError(t, grid.Place(1, 2, Occupant{StudentID: "s9"}))

	matrix := grid.Matrix()
	require.Len(t, matrix, 2)
	require.Len(t, matrix[0], 3)
	assert.Equal(t, "s9", matrix[1][2].Occupant.StudentID)
	assert.Nil(t, matrix[0][0].Occupant)

	r, c, ok := grid.Locate("s9")
	require.True(t, ok)
	assert.Equal(t, 1, r)
	assert.Equal(t, 2, c)

	_, _, ok = grid.Locate("missing")
	assert.False(t, ok)

	require.NoError(t, grid.Clear(1, 2))
	assert.Empty(t, grid.Occupied())
}
