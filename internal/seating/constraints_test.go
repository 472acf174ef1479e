package seating

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func occ(id, class, house string) Occupant {
	return Occupant{StudentID: id, Name: id, ClassSection: class, House: house}
}

func TestEvaluatorSameClassRowRejected(t *testing.T) {
	grid, _ := NewGrid(5, 5)
	eval := NewEvaluator(1)
	s1 := occ("s1", "5A", "Blue")
	s2 := occ("s2", "5A", "Red")

	require.True(t, eval.IsValidPlacement(s1, 0, 0, grid))
	require.NoError(t, grid.Place(0, 0, s1))

	assert.False(t, eval.IsValidPlacement(s2, 0, 3, grid))
	violations := eval.Violations(s2, 0, 3, grid)
	require.Len(t, violations, 1)
	assert.Equal(t, RuleSameClassRow, violations[0].Rule)
	assert.Equal(t, "s1", violations[0].Occupant.StudentID)
}

func TestEvaluatorSameClassColumnRejected(t *testing.T) {
	grid, _ := NewGrid(5, 5)
	eval := NewEvaluator(1)
	require.NoError(t, grid.Place(0, 2, occ("s1", "5B", "Blue")))

	violations := eval.Violations(occ("s2", "5B", "Green"), 4, 2, grid)
	require.Len(t, violations, 1)
	assert.Equal(t, RuleSameClassColumn, violations[0].Rule)

	assert.True(t, eval.IsValidPlacement(occ("s3", "5C", "Green"), 4, 2, grid))
}

func TestEvaluatorSameHouseAdjacency(t *testing.T) {
	grid, _ := NewGrid(5, 5)
	eval := NewEvaluator(1)
	require.NoError(t, grid.Place(2, 2, occ("s1", "5A", "Blue")))

	s3 := occ("s3", "5C", "Blue")
	assert.False(t, eval.IsValidPlacement(s3, 1, 1, grid))
	violations := eval.Violations(s3, 1, 1, grid)
	require.Len(t, violations, 1)
	assert.Equal(t, RuleSameHouseAdjacent, violations[0].Rule)

	// (1,3) is a diagonal neighbour of (2,2)
	assert.False(t, eval.IsValidPlacement(s3, 1, 3, grid))
	assert.True(t, eval.IsValidPlacement(s3, 0, 3, grid))
	assert.True(t, eval.IsValidPlacement(s3, 0, 4, grid))
	assert.True(t, eval.IsValidPlacement(s3, 4, 0, grid))
}

func TestEvaluatorAllEightNeighbours(t *testing.T) {
	eval := NewEvaluator(1)
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			t.Run(fmt.Sprintf("offset_%d_%d", dr, dc), func(t *testing.T) {
				grid, _ := NewGrid(5, 5)
				require.NoError(t, grid.Place(2+dr, 2+dc, occ("n", "X", "Blue")))
				assert.False(t, eval.IsValidPlacement(occ("c", "Y", "Blue"), 2, 2, grid))
			})
		}
	}
}

func TestEvaluatorEdgeNeighboursSkipped(t *testing.T) {
	grid, _ := NewGrid(5, 5)
	eval := NewEvaluator(1)
	require.NoError(t, grid.Place(4, 4, occ("s1", "5A", "Blue")))

	// corner seat: only in-bounds neighbours count, and none of them hold Blue
	assert.True(t, eval.IsValidPlacement(occ("s2", "5B", "Blue"), 0, 0, grid))
	assert.False(t, eval.IsValidPlacement(occ("s2", "5B", "Blue"), 3, 3, grid))
}

func TestEvaluatorOutOfBoundsNeverValid(t *testing.T) {
	grid, _ := NewGrid(5, 5)
	eval := NewEvaluator(1)
	assert.False(t, eval.IsValidPlacement(occ("s1", "5A", "Blue"), 5, 0, grid))
	assert.Nil(t, eval.Violations(occ("s1", "5A", "Blue"), 0, 5, grid))
}

func TestEvaluatorEmptyGridAlwaysValid(t *testing.T) {
	grid, _ := NewGrid(3, 3)
	eval := Evaluator{}
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			assert.True(t, eval.IsValidPlacement(occ("s", "A", "H"), r, c, grid))
		}
	}
}

func TestEvaluatorRadiusFollowsConfiguration(t *testing.T) {
	grid, _ := NewGrid(7, 9)
	require.NoError(t, grid.Place(3, 4, occ("s1", "5A", "Red")))

	assert.True(t, NewEvaluator(1).IsValidPlacement(occ("s2", "5B", "Red"), 1, 6, grid))
	assert.False(t, NewEvaluator(2).IsValidPlacement(occ("s2", "5B", "Red"), 1, 6, grid))
}

func TestEvaluatorReportsEveryViolation(t *testing.T) {
	grid, _ := NewGrid(5, 5)
	require.NoError(t, grid.Place(0, 1, occ("s1", "5A", "Blue")))
	require.NoError(t, grid.Place(3, 0, occ("s2", "5A", "Red")))
	require.NoError(t, grid.Place(1, 1, occ("s3", "5C", "Green")))

	violations := NewEvaluator(1).Violations(occ("c", "5A", "Green"), 0, 0, grid)
	rules := make([]Rule, 0, len(violations))
	for _, v := range violations {
		rules = append(rules, v.Rule)
	}
	assert.ElementsMatch(t, []Rule{RuleSameClassRow, RuleSameClassColumn, RuleSameHouseAdjacent}, rules)
}

// Random greedy fills must never produce a layout that breaks any rule.
func TestEvaluatorRandomFillKeepsInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	classes := []string{"5A", "5B", "5C", "5D", "5E"}
	houses := []string{"Blue", "Red", "Green", "Yellow"}
	eval := NewEvaluator(1)

	for round := 0; round < 25; round++ {
		grid, _ := NewGrid(5, 5)
		for i := 0; i < 60; i++ {
			cand := occ(fmt.Sprintf("r%d-s%d", round, i), classes[rng.Intn(len(classes))], houses[rng.Intn(len(houses))])
			r, c := rng.Intn(5), rng.Intn(5)
			free, _ := grid.IsFree(r, c)
			if free && eval.IsValidPlacement(cand, r, c, grid) {
				require.NoError(t, grid.Place(r, c, cand))
			}
		}
		assertLayoutValid(t, grid)
	}
}

func assertLayoutValid(t *testing.T, grid *Grid) {
	t.Helper()
	seats := grid.Occupied()
	seen := map[string]bool{}
	for i, a := range seats {
		require.False(t, seen[a.Occupant.StudentID], "student %s seated twice", a.Occupant.StudentID)
		seen[a.Occupant.StudentID] = true
		for _, b := range seats[i+1:] {
			if a.Occupant.ClassSection == b.Occupant.ClassSection {
				assert.NotEqual(t, a.Row, b.Row, "same class in row")
				assert.NotEqual(t, a.Column, b.Column, "same class in column")
			}
			dr, dc := a.Row-b.Row, a.Column-b.Column
			if dr >= -1 && dr <= 1 && dc >= -1 && dc <= 1 {
				assert.NotEqual(t, a.Occupant.House, b.Occupant.House, "same house adjacent")
			}
		}
	}
}
