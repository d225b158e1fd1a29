package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"itinerary-service/internal/domain"
	"itinerary-service/internal/platform/obs"
	"strings"
)

// SQLGeocodeCache is a Postgres-backed cache mapping place names to coordinates.
type SQLGeocodeCache struct {
	DB *sql.DB
}

func NewSQLGeocodeCache(db *sql.DB) *SQLGeocodeCache {
	return &SQLGeocodeCache{DB: db}
}

func (s *SQLGeocodeCache) Get(ctx context.Context, name string) (_ domain.Coordinates, _ bool, err error) {
	defer obs.Time(ctx, "geocode.cache.Get")(&err)

	if s.DB == nil {
		return domain.Coordinates{}, false, errors.New("geocode cache: db is nil")
	}

	var c domain.Coordinates
	err = s.DB.QueryRowContext(ctx, `
	SELECT lat, lng
    FROM geocode_cache
    WHERE name = $1;
	`, name).Scan(&c.Lat, &c.Lng)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Coordinates{}, false, nil
	}
	if err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("get geocode cache name=%q: %w", name, err)
	}

	return c, true, nil
}

// Put stores name -> c. An existing entry is left untouched.
func (s *SQLGeocodeCache) Put(ctx context.Context, name string, c domain.Coordinates) error {
	if s.DB == nil {
		return errors.New("geocode cache: db is nil")
	}

	if strings.TrimSpace(name) == "" {
		return errors.New("insert geocode cache: empty name key")
	}

	if _, err := s.DB.ExecContext(ctx, `
	INSERT INTO geocode_cache (name, lat, lng)
    VALUES ($1, $2, $3)
	ON CONFLICT (name) DO NOTHING;
	`, name, c.Lat, c.Lng); err != nil {
		return fmt.Errorf("insert geocode cache name=%q: %w", name, err)
	}

	return nil
}
