package domain

// Category groups candidates by how the scheduler may place them.
type Category string

const (
	CategoryAttraction Category = "attraction"
	CategoryEvent      Category = "event"
	CategoryLunch      Category = "lunch"
	CategoryDinner     Category = "dinner"
)

// A point of interest returned by candidate search.
// Candidates are immutable within one request.
type Candidate struct {
	Name        string      `json:"name"`
	Coordinates Coordinates `json:"coordinates"`
	Rating      float64     `json:"rating"`
	ReviewCount int         `json:"review_count"`
	PriceLevel  *int        `json:"price_level,omitempty"`
	Category    Category    `json:"category"`
	Vicinity    string      `json:"vicinity,omitempty"`
}

// Pre-ranked candidate lists for one interval, indexed by category.
type CandidateSet struct {
	Attractions []Candidate
	Lunch       []Candidate
	Dinner      []Candidate
}
