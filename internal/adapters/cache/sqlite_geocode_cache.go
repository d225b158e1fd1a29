package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"itinerary-service/internal/domain"
	"strings"
)

// SQLite backed cache for place name -> coordinates.
// Keys are expected to be normalized by the caller.
type SqliteGeocodeCache struct {
	DB *sql.DB
}

func NewSqliteGeocodeCache(db *sql.DB) *SqliteGeocodeCache {
	return &SqliteGeocodeCache{DB: db}
}

func (s *SqliteGeocodeCache) Get(ctx context.Context, name string) (domain.Coordinates, bool, error) {
	if s.DB == nil {
		return domain.Coordinates{}, false, errors.New("geocode cache: db is nil")
	}

	var c domain.Coordinates
	err := s.DB.QueryRowContext(ctx, `
	SELECT lat, lng
    FROM geocode_cache
    WHERE name = ?;
	`, name).Scan(&c.Lat, &c.Lng)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Coordinates{}, false, nil
	}
	if err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("get geocode cache name=%q: %w", name, err)
	}

	return c, true, nil
}

// Put stores name -> c unless the name is already cached.
func (s *SqliteGeocodeCache) Put(ctx context.Context, name string, c domain.Coordinates) error {
	if s.DB == nil {
		return errors.New("geocode cache: db is nil")
	}

	if strings.TrimSpace(name) == "" {
		return errors.New("insert geocode cache: empty name key")
	}

	if _, err := s.DB.ExecContext(ctx, `
	INSERT OR IGNORE INTO geocode_cache (name, lat, lng)
    VALUES (?, ?, ?);
	`, name, c.Lat, c.Lng); err != nil {
		return fmt.Errorf("insert geocode cache name=%q: %w", name, err)
	}

	return nil
}
