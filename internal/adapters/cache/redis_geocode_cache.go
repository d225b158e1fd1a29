package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"itinerary-service/internal/domain"
	"itinerary-service/internal/platform/obs"

	"github.com/redis/go-redis/v9"
)

const redisGeocodePrefix = "geocode:"

// RedisGeocodeCache shares geocode results between service instances.
// Entries never expire and are written with SET NX.
type RedisGeocodeCache struct {
	Client *redis.Client
}

func NewRedisGeocodeCache(client *redis.Client) *RedisGeocodeCache {
	return &RedisGeocodeCache{Client: client}
}

func (r *RedisGeocodeCache) Get(ctx context.Context, name string) (_ domain.Coordinates, _ bool, err error) {
	defer obs.Time(ctx, "geocode.redis.Get")(&err)

	raw, err := r.Client.Get(ctx, redisGeocodePrefix+name).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Coordinates{}, false, nil
	}
	if err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("redis geocode get name=%q: %w", name, err)
	}

	var c domain.Coordinates
	if err := json.Unmarshal(raw, &c); err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("redis geocode decode name=%q: %w", name, err)
	}

	return c, true, nil
}

func (r *RedisGeocodeCache) Put(ctx context.Context, name string, c domain.Coordinates) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("redis geocode encode name=%q: %w", name, err)
	}

	if err := r.Client.SetNX(ctx, redisGeocodePrefix+name, raw, 0).Err(); err != nil {
		return fmt.Errorf("redis geocode set name=%q: %w", name, err)
	}

	return nil
}
