package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/sma-seating-api/internal/models"
)

func TestFuzzyStudentSearcher(t *testing.T) {
	students := []models.Student{
		student("1", "Budi Santoso", "10A", "Red"),
		student("2", "Bunga Citra", "10B", "Blue"),
		student("3", "Siti Nurhaliza", "11A", "Green"),
	}
	searcher := NewFuzzyStudentSearcher()

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "blank returns input", query: "  ", want: []string{"1", "2", "3"}},
		{name: "name prefix", query: "bu", want: []string{"1", "2"}},
		{name: "case insensitive", query: "SITI", want: []string{"3"}},
		{name: "matches house", query: "green", want: []string{"3"}},
		{name: "matches class", query: "10b", want: []string{"2"}},
		{name: "no match", query: "zzz", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := searcher.Search(tt.query, students)
			assert.Equal(t, tt.want, studentIDs(got))
		})
	}
}

func TestFuzzyStudentSearcherRanksCloserMatchesFirst(t *testing.T) {
	students := []models.Student{
		student("long", "Anna Marie Louisa", "12C", "Gold"),
		student("short", "Ann", "12C", "Gold"),
	}
	got := NewFuzzyStudentSearcher().Search("ann", students)
	assert.Equal(t, []string{"short", "long"}, studentIDs(got))
}
