package seating

import "fmt"

// Rule names a placement constraint.
type Rule string

const (
	// RuleSameClassRow forbids two students of one class section in the same row.
	RuleSameClassRow Rule = "SAME_CLASS_ROW"
	// RuleSameClassColumn forbids two students of one class section in the same column.
	RuleSameClassColumn Rule = "SAME_CLASS_COLUMN"
	// RuleSameHouseAdjacent forbids students of one house in neighbouring seats.
	RuleSameHouseAdjacent Rule = "SAME_HOUSE_ADJACENT"
)

// DefaultRadius gives the 8-cell Moore neighbourhood.
const DefaultRadius = 1

// Violation describes one broken rule and the seat that caused it.
type Violation struct {
	Rule     Rule     `json:"rule"`
	Row      int      `json:"row"`
	Column   int      `json:"column"`
	Occupant Occupant `json:"occupant"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s with %s at (%d,%d)", v.Rule, v.Occupant.StudentID, v.Row, v.Column)
}

// Evaluator decides whether a candidate may sit at a seat given the grid's current occupants.
// Radius sets the Chebyshev distance of the house neighbourhood; zero means DefaultRadius.
type Evaluator struct {
	Radius int
}

// NewEvaluator returns an evaluator with the given neighbourhood radius.
func NewEvaluator(radius int) Evaluator {
	if radius <= 0 {
		radius = DefaultRadius
	}
	return Evaluator{Radius: radius}
}

func (e Evaluator) radius() int {
	if e.Radius <= 0 {
		return DefaultRadius
	}
	return e.Radius
}

// IsValidPlacement reports whether candidate may take (row, col).
// Out-of-bounds coordinates are never valid.
func (e Evaluator) IsValidPlacement(candidate Occupant, row, col int, grid *Grid) bool {
	if grid == nil || !grid.InBounds(row, col) {
		return false
	}
	return len(e.check(candidate, row, col, grid, true)) == 0
}

// Violations lists every rule candidate would break at (row, col).
func (e Evaluator) Violations(candidate Occupant, row, col int, grid *Grid) []Violation {
	if grid == nil || !grid.InBounds(row, col) {
		return nil
	}
	return e.check(candidate, row, col, grid, false)
}

func (e Evaluator) check(candidate Occupant, row, col int, grid *Grid, firstOnly bool) []Violation {
	var out []Violation
	skip := func(seat Seat) bool {
		if seat.Occupant == nil {
			return true
		}
		if seat.Row == row && seat.Column == col {
			return true
		}
		// the candidate's own seat, if any, is not yet part of the proposed layout
		return candidate.StudentID != "" && seat.Occupant.StudentID == candidate.StudentID
	}

	for _, seat := range grid.seats {
		if skip(seat) || seat.Occupant.ClassSection != candidate.ClassSection {
			continue
		}
		switch {
		case seat.Row == row:
			out = append(out, Violation{Rule: RuleSameClassRow, Row: seat.Row, Column: seat.Column, Occupant: *seat.Occupant})
		case seat.Column == col:
			out = append(out, Violation{Rule: RuleSameClassColumn, Row: seat.Row, Column: seat.Column, Occupant: *seat.Occupant})
		default:
			continue
		}
		if firstOnly {
			return out
		}
	}

	radius := e.radius()
	for dr := -radius; dr <= radius; dr++ {
		for dc := -radius; dc <= radius; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			r, c := row+dr, col+dc
			if !grid.InBounds(r, c) {
				continue
			}
			seat := grid.seats[r*grid.columns+c]
			if skip(seat) || seat.Occupant.House != candidate.House {
				continue
			}
			out = append(out, Violation{Rule: RuleSameHouseAdjacent, Row: r, Column: c, Occupant: *seat.Occupant})
			if firstOnly {
				return out
			}
		}
	}
	return out
}
