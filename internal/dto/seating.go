package dto

import (
	"time"

	"github.com/noah-isme/sma-seating-api/internal/models"
	"github.com/noah-isme/sma-seating-api/internal/seating"
)

// AllocateRequest is the payload for POST /allocations.
type AllocateRequest struct {
	StudentID   string `json:"studentId" validate:"required"`
	ClassroomID string `json:"classroomId" validate:"required"`
	Row         *int   `json:"row" validate:"required"`
	Column      *int   `json:"column" validate:"required"`
}

// AllocationResult reports the terminal state of an allocation and the states it passed through.
type AllocationResult struct {
	StudentID   string                   `json:"studentId"`
	ClassroomID string                   `json:"classroomId"`
	Row         int                      `json:"row"`
	Column      int                      `json:"column"`
	State       models.AllocationState   `json:"state"`
	Trail       []models.AllocationState `json:"trail"`
	Violations  []seating.Violation      `json:"violations,omitempty"`
	CommittedAt *time.Time               `json:"committedAt,omitempty"`
}

// GridResponse renders a classroom's seat matrix.
type GridResponse struct {
	ClassroomID string           `json:"classroomId"`
	Name        string           `json:"name"`
	Rows        int              `json:"rows"`
	Columns     int              `json:"columns"`
	Occupied    int              `json:"occupied"`
	Version     uint64           `json:"version"`
	Seats       [][]seating.Seat `json:"seats"`
}

// StudentSeatResponse describes where a student sits, if anywhere.
type StudentSeatResponse struct {
	StudentID     string  `json:"studentId"`
	Name          string  `json:"name"`
	ClassSection  string  `json:"classSection"`
	House         string  `json:"house"`
	Assigned      bool    `json:"assigned"`
	ClassroomID   *string `json:"classroomId,omitempty"`
	ClassroomName string  `json:"classroomName,omitempty"`
	Row           *int    `json:"row,omitempty"`
	Column        *int    `json:"column,omitempty"`
}

// CandidateResponse lists students who may take a seat.
type CandidateResponse struct {
	ClassroomID string           `json:"classroomId"`
	Row         int              `json:"row"`
	Column      int              `json:"column"`
	Filter      string           `json:"filter,omitempty"`
	Candidates  []models.Student `json:"candidates"`
}

// RosterImportResult summarises an xlsx roster import.
type RosterImportResult struct {
	Imported int              `json:"imported"`
	Skipped  []SkippedRow     `json:"skipped,omitempty"`
	Students []models.Student `json:"-"`
}

// SkippedRow names a spreadsheet row that could not be imported.
type SkippedRow struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}
