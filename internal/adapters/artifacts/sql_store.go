package artifacts

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"itinerary-service/internal/platform/obs"
)

// SQLStore persists artifacts in the Postgres request_artifacts table.
// Saving the same (request_id, kind) again replaces the payload.
type SQLStore struct {
	DB *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{DB: db}
}

func (s *SQLStore) Save(ctx context.Context, requestID, kind string, v any) (err error) {
	defer obs.Time(ctx, "artifacts.sql.save")(&err)

	if s.DB == nil {
		return errors.New("artifact store: db is nil")
	}

	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("save artifact: encode %s: %w", kind, err)
	}

	if _, err := s.DB.ExecContext(ctx, `
	INSERT INTO request_artifacts (request_id, kind, payload)
    VALUES ($1, $2, $3)
	ON CONFLICT (request_id, kind) DO UPDATE
	SET payload = EXCLUDED.payload,
		created_at = now();
	`, requestID, kind, payload); err != nil {
		return fmt.Errorf("save artifact request_id=%s kind=%s: %w", requestID, kind, err)
	}

	return nil
}
