package geocache

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"karsdrive/internal/domain"
)

const geocodeCachePrefix = "cache:geocode:"

// Redis is a cache backend shared between processes. Entries carry no
// TTL; a resolved address stays valid.
type Redis struct {
	client *redis.Client
}

// NewRedis creates a Redis-backed cache.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

var _ Cache = (*Redis)(nil)

// Get returns the cached coordinate and whether it was present.
func (r *Redis) Get(ctx context.Context, address string) (domain.Coordinate, bool, error) {
	data, err := r.client.Get(ctx, geocodeCachePrefix+Normalize(address)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return domain.Coordinate{}, false, nil // Cache miss
		}
		return domain.Coordinate{}, false, err
	}

	var coord domain.Coordinate
	if err := json.Unmarshal(data, &coord); err != nil {
		return domain.Coordinate{}, false, err
	}
	return coord, true, nil
}

// Set stores a resolved coordinate.
func (r *Redis) Set(ctx context.Context, address string, coord domain.Coordinate) error {
	data, err := json.Marshal(coord)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, geocodeCachePrefix+Normalize(address), data, 0).Err()
}
