package models

import "time"

// PlacementRequest is one attempt to seat a student. It is never stored as such.
type PlacementRequest struct {
	StudentID   string `json:"student_id"`
	ClassroomID string `json:"classroom_id"`
	Row         int    `json:"row"`
	Column      int    `json:"column"`
}

// AllocationState tracks a placement attempt through the coordinator.
type AllocationState string

const (
	AllocationSeatSelected        AllocationState = "SEAT_SELECTED"
	AllocationOccupancyChecked    AllocationState = "OCCUPANCY_CHECKED"
	AllocationConstraintValidated AllocationState = "CONSTRAINT_VALIDATED"
	AllocationCommitted           AllocationState = "COMMITTED"

	AllocationRejectedOccupied   AllocationState = "REJECTED_OCCUPIED"
	AllocationRejectedConstraint AllocationState = "REJECTED_CONSTRAINT"
	AllocationRejectedStale      AllocationState = "REJECTED_STALE"
	AllocationRejectedAssigned   AllocationState = "REJECTED_ASSIGNED"
	AllocationFailedPersistence  AllocationState = "FAILED_PERSISTENCE"
)

// Terminal reports whether no further transition follows s.
func (s AllocationState) Terminal() bool {
	switch s {
	case AllocationCommitted, AllocationRejectedOccupied, AllocationRejectedConstraint,
		AllocationRejectedStale, AllocationRejectedAssigned, AllocationFailedPersistence:
		return true
	}
	return false
}

// SeatAssignment is the persisted record of a committed placement.
type SeatAssignment struct {
	ID          string    `db:"id" json:"id"`
	ClassroomID string    `db:"classroom_id" json:"classroom_id"`
	StudentID   string    `db:"student_id" json:"student_id"`
	Row         int       `db:"seat_row" json:"row"`
	Column      int       `db:"seat_column" json:"column"`
	AssignedAt  time.Time `db:"assigned_at" json:"assigned_at"`
}
