package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"itinerary-service/internal/domain"
	"os"
	"strings"
)

// Initialize the SQLite database schema.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createPlacesQuery := `
	CREATE TABLE IF NOT EXISTS places (
		name TEXT PRIMARY KEY,
		category TEXT NOT NULL,
		lat REAL NOT NULL,
		lng REAL NOT NULL,
		rating REAL NOT NULL DEFAULT 0,
		review_count INTEGER NOT NULL DEFAULT 0,
		price_level INTEGER,
		tags TEXT NOT NULL DEFAULT '',
		vicinity TEXT NOT NULL DEFAULT ''
	);
	`

	createTravelTimeCacheQuery := `
	CREATE TABLE IF NOT EXISTS travel_time_cache (
        origin TEXT NOT NULL,
        destination TEXT NOT NULL,
        duration_seconds INTEGER NOT NULL,
        PRIMARY KEY (origin, destination)
    );
	`

	createGeocodeCacheQuery := `
	CREATE TABLE IF NOT EXISTS geocode_cache (
        name TEXT PRIMARY KEY,
        lat REAL NOT NULL,
        lng REAL NOT NULL
    );
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_places_category_lat_lng
    ON places(category, lat, lng);
	`

	statements := []string{
		createPlacesQuery,
		createTravelTimeCacheQuery,
		createGeocodeCacheQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// PlaceSeed is one entry of the place catalog seed file.
type PlaceSeed struct {
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Lat         float64  `json:"lat"`
	Lng         float64  `json:"lng"`
	Rating      float64  `json:"rating"`
	ReviewCount int      `json:"review_count"`
	PriceLevel  *int     `json:"price_level,omitempty"`
	Tags        []string `json:"tags"`
	Vicinity    string   `json:"vicinity"`
}

// Populate the places table from a JSON file.
func SeedFromJSON(db *sql.DB, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed places: read %q: %w", jsonPath, err)
	}

	var data []PlaceSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed places: parse json: %w", err)
	}

	return SeedPlaces(db, data)
}

// Insert or replace places after validating every row.
func SeedPlaces(db *sql.DB, data []PlaceSeed) error {
	rows := make([]PlaceSeed, 0, len(data))
	for i, item := range data {
		item.Name = strings.TrimSpace(item.Name)
		if item.Name == "" {
			return fmt.Errorf("seed places: item at index %d: name cannot be empty", i+1)
		}

		switch domain.Category(item.Category) {
		case domain.CategoryAttraction, domain.CategoryEvent:
		case "restaurant":
		default:
			return fmt.Errorf("seed places: item %q: unknown category %q", item.Name, item.Category)
		}

		if !(domain.Coordinates{Lat: item.Lat, Lng: item.Lng}).Valid() {
			return fmt.Errorf("seed places: item %q: invalid coordinates", item.Name)
		}
		rows = append(rows, item)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed places: begin tx: %w", err)
	}
	defer tx.Rollback()

	query := `
	INSERT OR REPLACE INTO places (
		name,
		category,
		lat,
		lng,
		rating,
		review_count,
		price_level,
		tags,
		vicinity
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);
	`
	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("seed places: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range rows {
		var price any
		if p.PriceLevel != nil {
			price = *p.PriceLevel
		}

		tags := strings.ToLower(strings.Join(p.Tags, ","))
		if _, err := stmt.Exec(p.Name, p.Category, p.Lat, p.Lng, p.Rating, p.ReviewCount, price, tags, p.Vicinity); err != nil {
			return fmt.Errorf("seed places: insert name=%q: %w", p.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed places: commit tx: %w", err)
	}

	return nil
}
