package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePriceLevel(t *testing.T) {
	cases := map[int]int{
		-3:  0,
		0:   0,
		2:   2,
		4:   4,
		5:   0,
		40:  2,
		79:  3,
		100: 4,
		500: 4,
	}

	for in, want := range cases {
		assert.Equal(t, want, NormalizePriceLevel(in), "NormalizePriceLevel(%d)", in)
	}
}

func TestCategoryPreferencePriceRange(t *testing.T) {
	p := CategoryPreference{Keywords: []string{"ramen"}, MinBudget: 20, MaxBudget: 60}
	assert.Equal(t, PriceRange{Min: 1, Max: 3}, p.PriceRange())

	// Mixed scales are normalized independently; max never drops below min.
	p = CategoryPreference{MinBudget: 3, MaxBudget: 10}
	assert.Equal(t, PriceRange{Min: 3, Max: 3}, p.PriceRange())
}

func TestCategoryPreferenceKeyword(t *testing.T) {
	assert.True(t, CategoryPreference{Keywords: []string{"", ""}}.Empty())
	assert.Equal(t, "museum", CategoryPreference{Keywords: []string{"", "museum"}}.Keyword())
}
