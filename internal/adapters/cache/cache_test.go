package cache

import (
	"context"
	"database/sql"
	"errors"
	"itinerary-service/internal/adapters/repositories"
	"itinerary-service/internal/domain"
	"itinerary-service/internal/platform/db"
	"itinerary-service/internal/ports"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	louvre = domain.Coordinates{Lat: 48.8606, Lng: 2.3376}
	orsay  = domain.Coordinates{Lat: 48.8600, Lng: 2.3266}
)

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, repositories.InitSchema(conn))
	return conn
}

func newRedis(t *testing.T) *redis.Client {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

// Every geocode cache is append-only: the first value for a key wins.
func TestGeocodeCachesAppendOnly(t *testing.T) {
	caches := map[string]func(t *testing.T) ports.GeocodeCache{
		"memory": func(t *testing.T) ports.GeocodeCache { return NewMemoryGeocodeCache() },
		"sqlite": func(t *testing.T) ports.GeocodeCache { return NewSqliteGeocodeCache(openSQLite(t)) },
		"redis":  func(t *testing.T) ports.GeocodeCache { return NewRedisGeocodeCache(newRedis(t)) },
		"tiered": func(t *testing.T) ports.GeocodeCache { return NewTieredGeocodeCache(NewRedisGeocodeCache(newRedis(t))) },
	}

	for name, mk := range caches {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			c := mk(t)

			_, ok, err := c.Get(ctx, "Louvre Museum")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, c.Put(ctx, "Louvre Museum", louvre))
			require.NoError(t, c.Put(ctx, "Louvre Museum", orsay))

			got, ok, err := c.Get(ctx, "Louvre Museum")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, louvre, got)
		})
	}
}

func TestMemoryGeocodeCacheConcurrentPut(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryGeocodeCache()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = c.Put(ctx, "Louvre Museum", louvre)
			_, _, _ = c.Get(ctx, "Louvre Museum")
		}()
	}
	wg.Wait()

	got, ok, _ := c.Get(ctx, "Louvre Museum")
	require.True(t, ok)
	assert.Equal(t, louvre, got)
}

type failingCache struct{}

func (failingCache) Get(context.Context, string) (domain.Coordinates, bool, error) {
	return domain.Coordinates{}, false, errors.New("backend down")
}

func (failingCache) Put(context.Context, string, domain.Coordinates) error {
	return errors.New("backend down")
}

func TestTieredGeocodeCache(t *testing.T) {
	ctx := context.Background()

	back := NewMemoryGeocodeCache()
	require.NoError(t, back.Put(ctx, "Musée d'Orsay", orsay))

	tiered := NewTieredGeocodeCache(back)
	got, ok, err := tiered.Get(ctx, "Musée d'Orsay")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, orsay, got)

	_, ok, _ = tiered.front.Get(ctx, "Musée d'Orsay")
	assert.True(t, ok, "backing hit should be promoted")

}

func TestTieredGeocodeCacheKeepsFrontWhenBackFails(t *testing.T) {
	ctx := context.Background()

	broken := NewTieredGeocodeCache(failingCache{})
	require.Error(t, broken.Put(ctx, "Louvre Museum", louvre))

	got, ok, err := broken.Get(ctx, "Louvre Museum")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, louvre, got)
}

func TestSqliteTravelTimeCache(t *testing.T) {
	ctx := context.Background()
	c := NewSqliteTravelTimeCache(openSQLite(t))

	_, ok, err := c.GetSeconds(ctx, louvre.Key(), orsay.Key())
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.PutSeconds(ctx, louvre.Key(), orsay.Key(), 420))

	got, ok, err := c.GetSeconds(ctx, louvre.Key(), orsay.Key())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 420, got)

	// Direction matters.
	_, ok, err = c.GetSeconds(ctx, orsay.Key(), louvre.Key())
	require.NoError(t, err)
	assert.False(t, ok)

	require.Error(t, c.PutSeconds(ctx, "", orsay.Key(), 1))
}
