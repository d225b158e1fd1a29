package repositories

import (
	"cmp"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"itinerary-service/internal/domain"
	"itinerary-service/internal/platform/obs"
	"itinerary-service/internal/ports"
	"math"
	"slices"
	"strings"
)

// Maximum results per search, matching a single page of a places API.
const maxSearchResults = 20

// SQLite-backed implementation of the CandidateSource port.
type SqlitePlaceRepository struct{ DB *sql.DB }

func NewSqlitePlaceRepository(db *sql.DB) *SqlitePlaceRepository {
	return &SqlitePlaceRepository{DB: db}
}

type placeRow struct {
	domain.Candidate
	tags []string
}

func (s *SqlitePlaceRepository) SearchAttractions(
	ctx context.Context,
	q ports.AttractionQuery,
) (_ []domain.Candidate, err error) {
	defer obs.Time(ctx, "places.searchAttractions")(&err)

	rows, err := s.nearby(ctx, string(domain.CategoryAttraction), q.Center, q.RadiusM)
	if err != nil {
		return nil, fmt.Errorf("search attractions: %w", err)
	}

	out := make([]domain.Candidate, 0, len(rows))
	for _, r := range rows {
		if !matchesAny(r, q.Keywords) {
			continue
		}
		r.Category = domain.CategoryAttraction
		out = append(out, r.Candidate)
		if len(out) == maxSearchResults {
			break
		}
	}

	return out, nil
}

func (s *SqlitePlaceRepository) SearchRestaurants(
	ctx context.Context,
	q ports.RestaurantQuery,
) (_ []domain.Candidate, err error) {
	defer obs.Time(ctx, "places.searchRestaurants")(&err)

	if q.MealType != domain.CategoryLunch && q.MealType != domain.CategoryDinner {
		return nil, fmt.Errorf("search restaurants: unsupported meal type %q", q.MealType)
	}

	rows, err := s.nearby(ctx, "restaurant", q.Center, q.RadiusM)
	if err != nil {
		return nil, fmt.Errorf("search restaurants: %w", err)
	}

	var keywords []string
	if kw := strings.TrimSpace(q.Keyword); kw != "" {
		keywords = []string{kw}
	}

	out := make([]domain.Candidate, 0, len(rows))
	for _, r := range rows {
		if !servesMeal(r.tags, q.MealType) || !matchesAny(r, keywords) {
			continue
		}
		// Places without a published price level are kept.
		if r.PriceLevel != nil && !q.Price.Contains(*r.PriceLevel) {
			continue
		}
		r.Category = q.MealType
		out = append(out, r.Candidate)
		if len(out) == maxSearchResults {
			break
		}
	}

	return out, nil
}

// nearby returns places of category within radiusM of center, nearest first.
func (s *SqlitePlaceRepository) nearby(
	ctx context.Context,
	category string,
	center domain.Coordinates,
	radiusM int,
) ([]placeRow, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite place repository: DB is nil")
	}

	if radiusM <= 0 {
		return nil, fmt.Errorf("radius must be positive, got %d", radiusM)
	}

	// Bounding box prefilter; exact distance is checked below.
	radiusKm := float64(radiusM) / 1000
	dLat := radiusKm / 111.0
	dLng := radiusKm / (111.0 * math.Max(math.Cos(center.Lat*math.Pi/180), 0.01))

	query := `
	SELECT
		name,
		lat,
		lng,
		rating,
		review_count,
		price_level,
		tags,
		vicinity
	FROM places
	WHERE category = ?
		AND lat BETWEEN ? AND ?
		AND lng BETWEEN ? AND ?;
	`
	rows, err := s.DB.QueryContext(ctx, query,
		category,
		center.Lat-dLat, center.Lat+dLat,
		center.Lng-dLng, center.Lng+dLng,
	)
	if err != nil {
		return nil, fmt.Errorf("query places table: %w", err)
	}
	defer rows.Close()

	type hit struct {
		row  placeRow
		dist float64
	}
	hits := make([]hit, 0, 32)

	for rows.Next() {
		var (
			r     placeRow
			price sql.NullInt64
			tags  string
		)
		if err := rows.Scan(&r.Name, &r.Coordinates.Lat, &r.Coordinates.Lng, &r.Rating, &r.ReviewCount, &price, &tags, &r.Vicinity); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if price.Valid {
			p := int(price.Int64)
			r.PriceLevel = &p
		}
		if tags != "" {
			r.tags = strings.Split(tags, ",")
		}

		d := domain.DistanceKm(center, r.Coordinates)
		if d > radiusKm {
			continue
		}
		hits = append(hits, hit{row: r, dist: d})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration: %w", err)
	}

	slices.SortStableFunc(hits, func(a, b hit) int { return cmp.Compare(a.dist, b.dist) })

	out := make([]placeRow, len(hits))
	for i, h := range hits {
		out[i] = h.row
	}
	return out, nil
}

// matchesAny reports whether any keyword appears in the place name or tags.
// No keywords matches everything.
func matchesAny(r placeRow, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}

	name := strings.ToLower(r.Name)
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			return true
		}
		if strings.Contains(name, kw) {
			return true
		}
		for _, t := range r.tags {
			if strings.Contains(t, kw) {
				return true
			}
		}
	}
	return false
}

// servesMeal reports whether a restaurant serves meal. Restaurants tagged
// with neither meal serve both.
func servesMeal(tags []string, meal domain.Category) bool {
	tagged := false
	for _, t := range tags {
		switch domain.Category(t) {
		case meal:
			return true
		case domain.CategoryLunch, domain.CategoryDinner:
			tagged = true
		}
	}
	return !tagged
}

// Geocode resolves a catalog place by name, ignoring case. It serves as the
// offline Geocoder when no geocoding API is configured.
func (s *SqlitePlaceRepository) Geocode(ctx context.Context, name string) (_ domain.Coordinates, err error) {
	defer obs.Time(ctx, "places.geocode")(&err)

	if s.DB == nil {
		return domain.Coordinates{}, errors.New("sqlite place repository: DB is nil")
	}

	query := `
	SELECT lat, lng
	FROM places
	WHERE name = ? COLLATE NOCASE
	LIMIT 1;
	`
	var c domain.Coordinates
	err = s.DB.QueryRowContext(ctx, query, strings.TrimSpace(name)).Scan(&c.Lat, &c.Lng)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Coordinates{}, fmt.Errorf("geocode %q: %w", name, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("geocode %q: %w", name, err)
	}

	return c, nil
}
