package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"itinerary-service/internal/platform/obs"
)

// SQLTravelTimeCache is a Postgres-backed cache for origin->destination durations.
type SQLTravelTimeCache struct {
	DB *sql.DB
}

func NewSQLTravelTimeCache(db *sql.DB) *SQLTravelTimeCache {
	return &SQLTravelTimeCache{DB: db}
}

func (s *SQLTravelTimeCache) GetSeconds(
	ctx context.Context,
	origin string,
	destination string,
) (_ int, _ bool, err error) {
	defer obs.Time(ctx, "travel.cache.Get")(&err)

	if s.DB == nil {
		return 0, false, errors.New("travel-time cache: db is nil")
	}

	if origin == "" || destination == "" {
		return 0, false, errors.New("get travel-time cache: origin and destination must not be empty")
	}

	var seconds int
	err = s.DB.QueryRowContext(ctx, `
	SELECT duration_seconds
    FROM travel_time_cache
    WHERE origin = $1
        AND destination = $2;
	`, origin, destination).Scan(&seconds)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get travel-time cache: query travel_time_cache table: %w", err)
	}

	return seconds, true, nil
}

func (s *SQLTravelTimeCache) PutSeconds(
	ctx context.Context,
	origin string,
	destination string,
	seconds int,
) error {
	if s.DB == nil {
		return errors.New("travel-time cache: db is nil")
	}

	if origin == "" || destination == "" {
		return errors.New("insert travel-time cache: origin and destination must not be empty")
	}

	if _, err := s.DB.ExecContext(ctx, `
	INSERT INTO travel_time_cache (origin, destination, duration_seconds)
    VALUES ($1, $2, $3)
	ON CONFLICT (origin, destination) DO UPDATE
	SET duration_seconds = EXCLUDED.duration_seconds;
	`, origin, destination, seconds); err != nil {
		return fmt.Errorf("insert travel-time cache %s -> %s: %w", origin, destination, err)
	}

	return nil
}
