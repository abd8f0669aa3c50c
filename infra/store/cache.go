package store

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/rjoseph-dev/crewsched/core/fatigue"
	"github.com/rjoseph-dev/crewsched/core/model"
)

// CacheConfig defines TTL settings for the duty-history cache.
type CacheConfig struct {
	Enabled bool `json:"enabled"`
	// TTLSeconds bounds how long a crew member's duty history is served
	// from memory. Fatigue scores tolerate slightly stale history, so a
	// short TTL keeps generation runs from hammering the database.
	TTLSeconds int `json:"ttl_seconds"`
}

// SetDefaults applies default cache settings.
func (c *CacheConfig) SetDefaults() {
	if c.TTLSeconds == 0 {
		c.TTLSeconds = 60
	}
}

// Validate checks the TTL.
func (c CacheConfig) Validate() error {
	if c.TTLSeconds < 0 {
		return fmt.Errorf("ttl_seconds must be positive")
	}
	return nil
}

// CachedDutySource wraps a fatigue.DutySource with a TTL cache. A
// generation run queries the same crew member once per slot; caching the
// history keeps those lookups in memory.
type CachedDutySource struct {
	next  fatigue.DutySource
	cache *gocache.Cache
}

// NewCachedDutySource wraps next with a TTL cache.
func NewCachedDutySource(next fatigue.DutySource, cfg CacheConfig) *CachedDutySource {
	cfg.SetDefaults()
	ttl := time.Duration(cfg.TTLSeconds) * time.Second
	return &CachedDutySource{
		next:  next,
		cache: gocache.New(ttl, 2*ttl),
	}
}

// ListSince serves duty history from the cache when present. Errors are
// never cached.
func (c *CachedDutySource) ListSince(ctx context.Context, crew model.CrewID, since time.Time, statuses []model.DutyStatus) ([]model.DutyRecord, error) {
	key := listKey(crew, since, statuses)
	if v, ok := c.cache.Get(key); ok {
		return v.([]model.DutyRecord), nil
	}
	duties, err := c.next.ListSince(ctx, crew, since, statuses)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(key, duties)
	return duties, nil
}

// MostRecentCompleted serves the last completed duty from the cache when
// present. A nil result is cached too; a crew member with no history
// stays cheap to score.
func (c *CachedDutySource) MostRecentCompleted(ctx context.Context, crew model.CrewID) (*model.DutyRecord, error) {
	key := "recent:" + string(crew)
	if v, ok := c.cache.Get(key); ok {
		return v.(*model.DutyRecord), nil
	}
	d, err := c.next.MostRecentCompleted(ctx, crew)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(key, d)
	return d, nil
}

// Invalidate drops cached history for one crew member. Callers invoke it
// after committing trips that change the member's duty record.
func (c *CachedDutySource) Invalidate(crew model.CrewID) {
	prefix := "list:" + string(crew) + ":"
	for key := range c.cache.Items() {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			c.cache.Delete(key)
		}
	}
	c.cache.Delete("recent:" + string(crew))
}

// Flush drops everything.
func (c *CachedDutySource) Flush() { c.cache.Flush() }

func listKey(crew model.CrewID, since time.Time, statuses []model.DutyStatus) string {
	key := "list:" + string(crew) + ":" + since.UTC().Format(time.RFC3339)
	for _, st := range statuses {
		key += ":" + string(st)
	}
	return key
}
