package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SQLite backed cache for origin->destination durations. Keys are
// rounded coordinate pairs produced by domain.Coordinates.Key.
type SqliteTravelTimeCache struct {
	DB *sql.DB
}

func NewSqliteTravelTimeCache(db *sql.DB) *SqliteTravelTimeCache {
	return &SqliteTravelTimeCache{DB: db}
}

func (s *SqliteTravelTimeCache) GetSeconds(ctx context.Context, origin, destination string) (int, bool, error) {
	if s.DB == nil {
		return 0, false, errors.New("travel-time cache: db is nil")
	}

	if origin == "" || destination == "" {
		return 0, false, errors.New("get travel-time cache: origin and destination must not be empty")
	}

	var seconds int
	err := s.DB.QueryRowContext(ctx, `
	SELECT duration_seconds
    FROM travel_time_cache
    WHERE origin = ?
        AND destination = ?;
	`, origin, destination).Scan(&seconds)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get travel-time cache: query travel_time_cache table: %w", err)
	}

	return seconds, true, nil
}

func (s *SqliteTravelTimeCache) PutSeconds(ctx context.Context, origin, destination string, seconds int) error {
	if s.DB == nil {
		return errors.New("travel-time cache: db is nil")
	}

	if origin == "" || destination == "" {
		return errors.New("insert travel-time cache: origin and destination must not be empty")
	}

	if _, err := s.DB.ExecContext(ctx, `
	INSERT OR REPLACE INTO travel_time_cache (
        origin,
        destination,
        duration_seconds
    )
    VALUES (?, ?, ?);
	`, origin, destination, seconds); err != nil {
		return fmt.Errorf("insert travel-time cache %s -> %s: %w", origin, destination, err)
	}

	return nil
}
