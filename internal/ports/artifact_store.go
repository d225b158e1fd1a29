package ports

import "context"

// Artifact kinds persisted per request.
const (
	ArtifactPlan      = "plan"
	ArtifactItinerary = "itinerary"
	ArtifactError     = "error"
)

// Persists intermediate and final pipeline payloads for audit and debugging.
type ArtifactStore interface {
	Save(ctx context.Context, requestID, kind string, v any) error
}
