package domain

const (
	MinPriceLevel = 0
	MaxPriceLevel = 4

	// Budgets above MaxPriceLevel are currency amounts; one price level
	// step corresponds to this many currency units.
	currencyPerPriceLevel = 20
)

// Search preferences for one category.
// Budgets are either a 0-4 price level or a currency amount.
type CategoryPreference struct {
	Keywords  []string `json:"keywords"`
	MinBudget int      `json:"min_budget"`
	MaxBudget int      `json:"max_budget"`
}

// Empty reports whether the preference carries no search keywords.
func (p CategoryPreference) Empty() bool {
	for _, k := range p.Keywords {
		if k != "" {
			return false
		}
	}
	return true
}

// Keyword returns the first non-empty keyword.
func (p CategoryPreference) Keyword() string {
	for _, k := range p.Keywords {
		if k != "" {
			return k
		}
	}
	return ""
}

// Inclusive range of 0-4 price levels.
type PriceRange struct {
	Min int
	Max int
}

// PriceRange converts the budgets to price levels. This is the only place
// budgets are converted.
func (p CategoryPreference) PriceRange() PriceRange {
	r := PriceRange{
		Min: NormalizePriceLevel(p.MinBudget),
		Max: NormalizePriceLevel(p.MaxBudget),
	}
	if r.Max < r.Min {
		r.Max = r.Min
	}
	return r
}

// Contains reports whether level is within the range.
func (r PriceRange) Contains(level int) bool {
	return level >= r.Min && level <= r.Max
}

// NormalizePriceLevel maps a budget to a 0-4 price level. Values above 4
// are treated as currency and divided by 20 before clamping.
func NormalizePriceLevel(v int) int {
	if v > MaxPriceLevel {
		v /= currencyPerPriceLevel
	}
	if v < MinPriceLevel {
		return MinPriceLevel
	}
	if v > MaxPriceLevel {
		return MaxPriceLevel
	}
	return v
}

// Per-category preferences proposed for one request.
type CategoryPlan struct {
	Attractions CategoryPreference `json:"attractions"`
	Events      CategoryPreference `json:"events"`
	Lunch       CategoryPreference `json:"lunch"`
	Dinner      CategoryPreference `json:"dinner"`
}

// Traveller preferences supplied with a request.
type Preferences struct {
	TravelStyle       string   `json:"travel_style,omitempty"`
	FoodPreference    string   `json:"food_preference,omitempty"`
	Budget            string   `json:"budget,omitempty"`
	TransportMode     string   `json:"transport_mode,omitempty"`
	TimePreference    string   `json:"time_preference,omitempty"`
	ActivityIntensity string   `json:"activity_intensity,omitempty"`
	Interests         []string `json:"interests,omitempty"`
	CustomPreferences string   `json:"custom_preferences,omitempty"`
	CalendarID        string   `json:"calendar_id,omitempty"`
}
