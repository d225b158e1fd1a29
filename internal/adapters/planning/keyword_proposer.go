package planning

import (
	"context"
	"itinerary-service/internal/domain"
	"slices"
	"strings"
)

// Ordered so prompt matching yields a stable keyword order.
var interestKeywords = []struct{ interest, keyword string }{
	{"museums", "museum"},
	{"nature", "park"},
	{"shopping", "shopping"},
	{"nightlife", "bar"},
	{"sports", "stadium"},
	{"tech_innovation", "science"},
	{"history", "historic"},
	{"art", "art"},
	{"food", "market"},
}

func interestKeyword(interest string) (string, bool) {
	for _, ik := range interestKeywords {
		if ik.interest == interest {
			return ik.keyword, true
		}
	}
	return "", false
}

var styleKeywords = map[string]string{
	"adventure":            "outdoor",
	"relaxation":           "garden",
	"cultural_exploration": "museum",
	"cultural":             "museum",
	"family_friendly":      "zoo",
}

var foodKeywords = map[string]string{
	"vegetarian":     "vegetarian",
	"vegan":          "vegan",
	"halal":          "halal",
	"kosher":         "kosher",
	"gluten_free":    "gluten free",
	"non_vegetarian": "",
	"no_preference":  "",
}

// Currency budgets per meal, keyed by the traveller's budget tier.
var mealBudgets = map[string]struct{ lunch, dinner [2]int }{
	"low":    {lunch: [2]int{0, 20}, dinner: [2]int{0, 40}},
	"medium": {lunch: [2]int{20, 60}, dinner: [2]int{40, 80}},
	"high":   {lunch: [2]int{40, 100}, dinner: [2]int{60, 100}},
}

// KeywordProposer derives category search preferences from the
// traveller's structured preferences and prompt without calling a model.
type KeywordProposer struct{}

func NewKeywordProposer() *KeywordProposer { return &KeywordProposer{} }

func (KeywordProposer) ProposeCategories(_ context.Context, prompt string, prefs domain.Preferences) (domain.CategoryPlan, error) {
	var keywords []string
	seen := map[string]bool{}
	add := func(k string) {
		if k != "" && !seen[k] {
			seen[k] = true
			keywords = append(keywords, k)
		}
	}

	for _, interest := range prefs.Interests {
		key := strings.ToLower(strings.TrimSpace(interest))
		if k, ok := interestKeyword(key); ok {
			add(k)
		} else {
			add(key)
		}
	}
	add(styleKeywords[strings.ToLower(prefs.TravelStyle)])

	// Pick up known interests named in the free-text prompt.
	lowered := strings.ToLower(prompt + " " + prefs.CustomPreferences)
	for _, ik := range interestKeywords {
		if strings.Contains(lowered, strings.TrimSuffix(ik.interest, "s")) {
			add(ik.keyword)
		}
	}

	food := strings.ToLower(strings.TrimSpace(prefs.FoodPreference))
	foodKeyword, known := foodKeywords[food]
	if !known {
		foodKeyword = food
	}

	budget, ok := mealBudgets[strings.ToLower(strings.TrimSpace(prefs.Budget))]
	if !ok {
		budget = mealBudgets["medium"]
	}

	return domain.CategoryPlan{
		Attractions: domain.CategoryPreference{Keywords: keywords, MinBudget: 0, MaxBudget: 4},
		Events:      domain.CategoryPreference{Keywords: slices.Clone(keywords), MinBudget: 0, MaxBudget: 4},
		Lunch:       domain.CategoryPreference{Keywords: []string{foodKeyword}, MinBudget: budget.lunch[0], MaxBudget: budget.lunch[1]},
		Dinner:      domain.CategoryPreference{Keywords: []string{foodKeyword}, MinBudget: budget.dinner[0], MaxBudget: budget.dinner[1]},
	}, nil
}
