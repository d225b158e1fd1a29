package ports

import (
	"context"
	"itinerary-service/internal/domain"
)

// Contract for turning a free-text prompt and preferences into
// per-category search preferences.
type CategoryProposer interface {
	ProposeCategories(ctx context.Context, prompt string, prefs domain.Preferences) (domain.CategoryPlan, error)
}
