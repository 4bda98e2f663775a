package hierarchy

import (
	"context"
	"encoding/json"
	"time"

	"github.com/EivindHaugen/SponsorFlow/internal/pkg/cache"
)

// resolvedIDs is the cached form of a path resolution.
type resolvedIDs struct {
	ClubID    uint `json:"club_id"`
	TeamID    uint `json:"team_id"`
	AthleteID uint `json:"athlete_id"`
}

// Cache is the injectable slug-resolution cache. Entries are advisory: a hit
// is re-verified against the directory and dropped when stale, so eviction
// and expiry need no coordination with writes.
type Cache interface {
	Get(ctx context.Context, key string) (resolvedIDs, bool)
	Set(ctx context.Context, key string, ids resolvedIDs)
	Delete(ctx context.Context, key string)
}

const redisCacheTTL = 10 * time.Minute

type redisCache struct{}

// NewRedisCache returns a cache backed by the shared redis client.
func NewRedisCache() Cache {
	return &redisCache{}
}

func (c *redisCache) Get(_ context.Context, key string) (resolvedIDs, bool) {
	raw, err := cache.Get(key)
	if err != nil {
		return resolvedIDs{}, false
	}
	var ids resolvedIDs
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return resolvedIDs{}, false
	}
	return ids, true
}

func (c *redisCache) Set(_ context.Context, key string, ids resolvedIDs) {
	raw, err := json.Marshal(ids)
	if err != nil {
		return
	}
	_ = cache.Set(key, string(raw), redisCacheTTL)
}

func (c *redisCache) Delete(_ context.Context, key string) {
	_ = cache.Delete(key)
}

type noopCache struct{}

// NewNoopCache returns a cache that stores nothing, for tests and for
// running without redis.
func NewNoopCache() Cache {
	return &noopCache{}
}

func (noopCache) Get(context.Context, string) (resolvedIDs, bool) { return resolvedIDs{}, false }
func (noopCache) Set(context.Context, string, resolvedIDs)        {}
func (noopCache) Delete(context.Context, string)                  {}
