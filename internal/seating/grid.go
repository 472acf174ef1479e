// Package seating holds the classroom seat grid and the placement rules evaluated
// against it. Nothing in this package performs I/O or locking; callers own both.
package seating

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfBounds is returned when coordinates fall outside the grid.
	ErrOutOfBounds = errors.New("seat coordinates out of bounds")
	// ErrSeatAlreadyOccupied is returned when placing into an occupied seat.
	ErrSeatAlreadyOccupied = errors.New("seat already occupied")
	// ErrStudentAlreadySeated is returned when the occupant already holds another seat in the grid.
	ErrStudentAlreadySeated = errors.New("student already seated in this classroom")
	// ErrInvalidDimensions is returned for grids with non-positive rows or columns.
	ErrInvalidDimensions = errors.New("grid dimensions must be positive")
)

// Occupant is the projection of a student the placement rules read.
type Occupant struct {
	StudentID    string `json:"student_id"`
	Name         string `json:"name"`
	ClassSection string `json:"class_section"`
	House        string `json:"house"`
}

// Seat is one cell of the grid.
type Seat struct {
	Row      int       `json:"row"`
	Column   int       `json:"column"`
	Occupant *Occupant `json:"occupant,omitempty"`
}

// Free reports whether nobody sits in the seat.
func (s Seat) Free() bool {
	return s.Occupant == nil
}

// Grid is a fixed rows x columns seat matrix stored row-major.
type Grid struct {
	rows    int
	columns int
	seats   []Seat
}

// NewGrid builds an empty grid.
func NewGrid(rows, columns int) (*Grid, error) {
	if rows <= 0 || columns <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, rows, columns)
	}
	seats := make([]Seat, rows*columns)
	for i := range seats {
		seats[i] = Seat{Row: i / columns, Column: i % columns}
	}
	return &Grid{rows: rows, columns: columns, seats: seats}, nil
}

// Rows returns the number of rows.
func (g *Grid) Rows() int { return g.rows }

// Columns returns the number of columns.
func (g *Grid) Columns() int { return g.columns }

// Capacity returns the number of seats.
func (g *Grid) Capacity() int { return g.rows * g.columns }

// InBounds reports whether (row, col) addresses a seat.
func (g *Grid) InBounds(row, col int) bool {
	return row >= 0 && row < g.rows && col >= 0 && col < g.columns
}

func (g *Grid) index(row, col int) (int, error) {
	if !g.InBounds(row, col) {
		return 0, fmt.Errorf("%w: (%d,%d) outside %dx%d", ErrOutOfBounds, row, col, g.rows, g.columns)
	}
	return row*g.columns + col, nil
}

// SeatAt returns a copy of the seat at (row, col).
func (g *Grid) SeatAt(row, col int) (Seat, error) {
	idx, err := g.index(row, col)
	if err != nil {
		return Seat{}, err
	}
	return copySeat(g.seats[idx]), nil
}

// IsFree reports whether the seat at (row, col) has no occupant.
func (g *Grid) IsFree(row, col int) (bool, error) {
	idx, err := g.index(row, col)
	if err != nil {
		return false, err
	}
	return g.seats[idx].Free(), nil
}

// Place sets the occupant of (row, col). It does not evaluate placement rules.
func (g *Grid) Place(row, col int, occupant Occupant) error {
	idx, err := g.index(row, col)
	if err != nil {
		return err
	}
	if !g.seats[idx].Free() {
		return fmt.Errorf("%w: (%d,%d) held by %s", ErrSeatAlreadyOccupied, row, col, g.seats[idx].Occupant.StudentID)
	}
	if r, c, ok := g.Locate(occupant.StudentID); ok {
		return fmt.Errorf("%w: %s at (%d,%d)", ErrStudentAlreadySeated, occupant.StudentID, r, c)
	}
	occ := occupant
	g.seats[idx].Occupant = &occ
	return nil
}

// Clear empties (row, col). Only used to undo a placement that was never published.
func (g *Grid) Clear(row, col int) error {
	idx, err := g.index(row, col)
	if err != nil {
		return err
	}
	g.seats[idx].Occupant = nil
	return nil
}

// Locate finds the seat held by studentID.
func (g *Grid) Locate(studentID string) (int, int, bool) {
	if studentID == "" {
		return 0, 0, false
	}
	for _, seat := range g.seats {
		if seat.Occupant != nil && seat.Occupant.StudentID == studentID {
			return seat.Row, seat.Column, true
		}
	}
	return 0, 0, false
}

// Occupied lists occupied seats in row-major order.
func (g *Grid) Occupied() []Seat {
	out := make([]Seat, 0)
	for _, seat := range g.seats {
		if seat.Occupant != nil {
			out = append(out, copySeat(seat))
		}
	}
	return out
}

// OccupiedCount returns the number of occupied seats.
func (g *Grid) OccupiedCount() int {
	n := 0
	for _, seat := range g.seats {
		if seat.Occupant != nil {
			n++
		}
	}
	return n
}

// Matrix returns a rows x columns copy of the seats for rendering.
func (g *Grid) Matrix() [][]Seat {
	matrix := make([][]Seat, g.rows)
	for r := 0; r < g.rows; r++ {
		row := make([]Seat, g.columns)
		for c := 0; c < g.columns; c++ {
			row[c] = copySeat(g.seats[r*g.columns+c])
		}
		matrix[r] = row
	}
	return matrix
}

// Snapshot returns a deep copy that shares no memory with g.
func (g *Grid) Snapshot() *Grid {
	seats := make([]Seat, len(g.seats))
	for i, seat := range g.seats {
		seats[i] = copySeat(seat)
	}
	return &Grid{rows: g.rows, columns: g.columns, seats: seats}
}

func copySeat(seat Seat) Seat {
	if seat.Occupant == nil {
		return seat
	}
	occ := *seat.Occupant
	seat.Occupant = &occ
	return seat
}
