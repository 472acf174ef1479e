package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/noah-isme/sma-seating-api/internal/dto"
	appErrors "github.com/noah-isme/sma-seating-api/pkg/errors"
)

var (
	green = color.New(color.FgGreen)
	red   = color.New(color.FgRed, color.Bold)
	faint = color.New(color.Faint)
)

func printError(w io.Writer, err error) {
	appErr := appErrors.FromError(err)
	red.Fprintf(w, "error: %s\n", appErr.Message)
	if appErr.Err != nil {
		fmt.Fprintf(w, "  cause: %v\n", appErr.Err)
	}
	if state, ok := appErr.Details["state"]; ok {
		fmt.Fprintf(w, "  state: %v\n", state)
	}
	if reason, ok := appErr.Details["reason"]; ok {
		fmt.Fprintf(w, "  reason: %v\n", reason)
	}
}

func printGrid(w io.Writer, grid *dto.GridResponse) {
	fmt.Fprintf(w, "%s (%s) %dx%d, %d occupied, version %d\n\n",
		grid.Name, grid.ClassroomID, grid.Rows, grid.Columns, grid.Occupied, grid.Version)

	width := 8
	for _, row := range grid.Seats {
		for _, seat := range row {
			if seat.Occupant != nil && len(seat.Occupant.StudentID) > width {
				width = len(seat.Occupant.StudentID)
			}
		}
	}

	fmt.Fprintf(w, "%4s", "")
	for c := 0; c < grid.Columns; c++ {
		fmt.Fprintf(w, " %-*d", width, c)
	}
	fmt.Fprintln(w)
	for r, row := range grid.Seats {
		fmt.Fprintf(w, "%4d", r)
		for _, seat := range row {
			if seat.Occupant == nil {
				faint.Fprintf(w, " %-*s", width, ".")
				continue
			}
			green.Fprintf(w, " %-*s", width, seat.Occupant.StudentID)
		}
		fmt.Fprintln(w)
	}
}

func printAllocation(w io.Writer, result *dto.AllocationResult) {
	green.Fprintf(w, "seated %s in %s at row %d, column %d\n", result.StudentID, result.ClassroomID, result.Row, result.Column)
	states := make([]string, 0, len(result.Trail))
	for _, state := range result.Trail {
		states = append(states, string(state))
	}
	fmt.Fprintf(w, "  trail: %s\n", strings.Join(states, " -> "))
}
