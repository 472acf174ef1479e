package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-seating-api/internal/dto"
	"github.com/noah-isme/sma-seating-api/internal/models"
	appErrors "github.com/noah-isme/sma-seating-api/pkg/errors"
	"github.com/noah-isme/sma-seating-api/pkg/response"
)

type seatingReader interface {
	Classrooms() []models.ClassroomSummary
	SeatGrid(classroomID string) (*dto.GridResponse, error)
	StudentSeat(studentID string) (*dto.StudentSeatResponse, error)
}

type seatAllocator interface {
	Allocate(ctx context.Context, req dto.AllocateRequest) (*dto.AllocationResult, error)
}

type candidateFinder interface {
	CandidatesFor(ctx context.Context, classroomID string, row, col int, filterText string) ([]models.Student, error)
}

// SeatingHandler exposes classroom grids, candidate lists and allocation.
type SeatingHandler struct {
	session    seatingReader
	allocator  seatAllocator
	candidates candidateFinder
}

// NewSeatingHandler constructs the handler.
func NewSeatingHandler(session seatingReader, allocator seatAllocator, candidates candidateFinder) *SeatingHandler {
	return &SeatingHandler{session: session, allocator: allocator, candidates: candidates}
}

// ListClassrooms godoc
// @Summary List classrooms
// @Tags Seating
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /classrooms [get]
func (h *SeatingHandler) ListClassrooms(c *gin.Context) {
	classrooms := h.session.Classrooms()
	response.JSON(c, http.StatusOK, classrooms, map[string]interface{}{"total": len(classrooms)})
}

// Grid godoc
// @Summary Classroom seat matrix
// @Tags Seating
// @Produce json
// @Param id path string true "Classroom ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /classrooms/{id}/grid [get]
func (h *SeatingHandler) Grid(c *gin.Context) {
	grid, err := h.session.SeatGrid(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grid)
}

// Candidates godoc
// @Summary Students who may take a seat
// @Tags Seating
// @Produce json
// @Param id path string true "Classroom ID"
// @Param row path int true "Row (zero based)"
// @Param col path int true "Column (zero based)"
// @Param q query string false "Filter by name, class or house"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /classrooms/{id}/seats/{row}/{col}/candidates [get]
func (h *SeatingHandler) Candidates(c *gin.Context) {
	row, err := intParam(c, "row")
	if err != nil {
		response.Error(c, err)
		return
	}
	col, err := intParam(c, "col")
	if err != nil {
		response.Error(c, err)
		return
	}
	filter := strings.TrimSpace(c.Query("q"))
	students, err := h.candidates.CandidatesFor(c.Request.Context(), c.Param("id"), row, col, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.CandidateResponse{
		ClassroomID: c.Param("id"),
		Row:         row,
		Column:      col,
		Filter:      filter,
		Candidates:  students,
	}, map[string]interface{}{"total": len(students)})
}

// Allocate godoc
// @Summary Seat a student
// @Tags Seating
// @Accept json
// @Produce json
// @Param payload body dto.AllocateRequest true "Allocation"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /allocations [post]
func (h *SeatingHandler) Allocate(c *gin.Context) {
	var req dto.AllocateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid allocation payload"))
		return
	}
	result, err := h.allocator.Allocate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// StudentSeat godoc
// @Summary Where a student sits
// @Tags Seating
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/seat [get]
func (h *SeatingHandler) StudentSeat(c *gin.Context) {
	seat, err := h.session.StudentSeat(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, seat)
}
