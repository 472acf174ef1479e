package models

import "time"

// Student is a roster entry that can be seated in at most one classroom.
// AllocatedClassroomID, SeatRow and SeatColumn are either all nil or all set.
type Student struct {
	ID                   string    `db:"id" json:"id"`
	Name                 string    `db:"full_name" json:"name"`
	ClassSection         string    `db:"class_section" json:"class_section"`
	House                string    `db:"house" json:"house"`
	AllocatedClassroomID *string   `db:"allocated_classroom_id" json:"allocated_classroom_id,omitempty"`
	SeatRow              *int      `db:"seat_row" json:"seat_row,omitempty"`
	SeatColumn           *int      `db:"seat_column" json:"seat_column,omitempty"`
	CreatedAt            time.Time `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time `db:"updated_at" json:"updated_at"`
}

// Assigned reports whether the student holds a seat.
func (s Student) Assigned() bool {
	return s.AllocatedClassroomID != nil && s.SeatRow != nil && s.SeatColumn != nil
}

// Consistent reports whether the assignment fields are all set or all empty.
func (s Student) Consistent() bool {
	set := 0
	if s.AllocatedClassroomID != nil {
		set++
	}
	if s.SeatRow != nil {
		set++
	}
	if s.SeatColumn != nil {
		set++
	}
	return set == 0 || set == 3
}

// WithSeat returns a copy of s assigned to (classroomID, row, col).
func (s Student) WithSeat(classroomID string, row, col int) Student {
	id, r, c := classroomID, row, col
	s.AllocatedClassroomID = &id
	s.SeatRow = &r
	s.SeatColumn = &c
	return s
}
