package service

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/noah-isme/sma-seating-api/internal/models"
)

// StudentSearcher narrows and ranks students by free text.
type StudentSearcher interface {
	Search(query string, students []models.Student) []models.Student
}

// FuzzyStudentSearcher matches the query as an in-order subsequence of name, class and house,
// ignoring case and diacritics. Closer matches come first; ties keep input order.
type FuzzyStudentSearcher struct{}

// NewFuzzyStudentSearcher constructs the default searcher.
func NewFuzzyStudentSearcher() *FuzzyStudentSearcher {
	return &FuzzyStudentSearcher{}
}

// Search returns the matching subset of students.
func (FuzzyStudentSearcher) Search(query string, students []models.Student) []models.Student {
	query = strings.TrimSpace(query)
	if query == "" {
		return students
	}
	targets := make([]string, len(students))
	for i, student := range students {
		targets[i] = strings.Join([]string{student.Name, student.ClassSection, student.House}, " ")
	}
	ranks := fuzzy.RankFindNormalizedFold(query, targets)
	sort.SliceStable(ranks, func(i, j int) bool {
		if ranks[i].Distance == ranks[j].Distance {
			return ranks[i].OriginalIndex < ranks[j].OriginalIndex
		}
		return ranks[i].Distance < ranks[j].Distance
	})
	out := make([]models.Student, 0, len(ranks))
	for _, rank := range ranks {
		out = append(out, students[rank.OriginalIndex])
	}
	return out
}
