package services

import (
	"itinerary-service/internal/domain"
	"slices"
)

// RankCandidates returns a copy of candidates ordered by rating, then by
// review count, both descending. Equal candidates keep their input order.
func RankCandidates(candidates []domain.Candidate) []domain.Candidate {
	ranked := slices.Clone(candidates)

	slices.SortStableFunc(ranked, func(a, b domain.Candidate) int {
		if a.Rating != b.Rating {
			if a.Rating > b.Rating {
				return -1
			}
			return 1
		}
		return b.ReviewCount - a.ReviewCount
	})

	return ranked
}

// RankSet ranks every category of set once.
func RankSet(set domain.CandidateSet) domain.CandidateSet {
	return domain.CandidateSet{
		Attractions: RankCandidates(set.Attractions),
		Lunch:       RankCandidates(set.Lunch),
		Dinner:      RankCandidates(set.Dinner),
	}
}
