package services

import (
	"itinerary-service/internal/domain"
	"testing"

	"github.com/stretchr/testify/assert"
)

func names(cs []domain.Candidate) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.Name)
	}
	return out
}

func TestRankCandidates(t *testing.T) {
	in := []domain.Candidate{
		{Name: "A", Rating: 4.2, ReviewCount: 10},
		{Name: "B", Rating: 4.8, ReviewCount: 5},
		{Name: "C", Rating: 4.2, ReviewCount: 300},
		{Name: "D", Rating: 4.2, ReviewCount: 10},
		{Name: "E", Rating: 0},
	}

	ranked := RankCandidates(in)

	assert.Equal(t, []string{"B", "C", "A", "D", "E"}, names(ranked))
	// Input is left untouched.
	assert.Equal(t, "A", in[0].Name)
}
