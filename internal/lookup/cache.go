package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"medialookup/internal/kv"
	"medialookup/internal/media"
)

const (
	// KeyPrefix starts every result cache key.
	KeyPrefix = "~lookup"
	// PositiveTTL is how long a resolved identity stays cached.
	PositiveTTL = 7 * 24 * time.Hour
	// NegativeTTL is how long an exhausted lookup stays cached.
	NegativeTTL = 24 * time.Hour
)

// envelope is the stored form of a cache entry: expiry in Unix milliseconds
// and the identity, null for negative results.
type envelope struct {
	ExpiresAt int64           `json:"r"`
	Value     *media.Identity `json:"v"`
}

// CacheEntry is a decoded result cache row.
type CacheEntry struct {
	Key       string          `json:"key"`
	ExpiresAt time.Time       `json:"expires_at"`
	Value     *media.Identity `json:"value"`
}

// Expired reports whether the entry is no longer served at now.
func (e CacheEntry) Expired(now time.Time) bool {
	return e.ExpiresAt.UnixMilli() < now.UnixMilli()
}

// ResultCache stores lookup outcomes in a kv.Store with per-entry expiry.
type ResultCache struct {
	store kv.Store
	now   func() time.Time
}

// NewResultCache wraps store. A nil now uses time.Now.
func NewResultCache(store kv.Store, now func() time.Time) *ResultCache {
	if now == nil {
		now = time.Now
	}
	return &ResultCache{store: store, now: now}
}

// CacheKey builds the key for one normalized name under the request's
// season constraints and media type.
func CacheKey(name string, req media.Request) string {
	parts := []string{KeyPrefix}
	if req.Type() != media.TypeAnime {
		parts = append(parts, string(req.Type()))
	}
	if req.StartSeason != nil {
		parts = append(parts, req.StartSeason.KeyPart()+">")
	}
	if req.EndSeason != nil {
		parts = append(parts, "<"+req.EndSeason.KeyPart())
	}
	if req.SomeSeason != nil && req.StartSeason == nil && req.EndSeason == nil {
		parts = append(parts, "<"+req.SomeSeason.KeyPart()+">")
	}
	parts = append(parts, name)
	return strings.Join(parts, ":")
}

// Get returns the cached value under key. hit is false when the key is absent,
// undecodable, or expired. A hit may carry a nil identity.
func (c *ResultCache) Get(ctx context.Context, key string) (*media.Identity, bool, error) {
	raw, ok, err := c.store.Get(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, false, fmt.Errorf("decode cache entry %q: %w", key, err)
	}
	if env.ExpiresAt < c.now().UnixMilli() {
		return nil, false, nil
	}
	return env.Value, true, nil
}

// Put stores value under key. Nil values expire after NegativeTTL, others
// after PositiveTTL.
func (c *ResultCache) Put(ctx context.Context, key string, value *media.Identity) error {
	ttl := PositiveTTL
	if value == nil {
		ttl = NegativeTTL
	}
	data, err := json.Marshal(envelope{ExpiresAt: c.now().Add(ttl).UnixMilli(), Value: value})
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	return c.store.Set(ctx, key, data)
}

// Delete removes one entry.
func (c *ResultCache) Delete(ctx context.Context, key string) error {
	return c.store.Delete(ctx, key)
}

// Entries lists every lookup entry, expired ones included. Undecodable rows
// are skipped.
func (c *ResultCache) Entries(ctx context.Context) ([]CacheEntry, error) {
	keys, err := c.store.Keys(ctx, KeyPrefix+":")
	if err != nil {
		return nil, err
	}
	entries := make([]CacheEntry, 0, len(keys))
	for _, key := range keys {
		raw, ok, err := c.store.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			continue
		}
		entries = append(entries, CacheEntry{Key: key, ExpiresAt: time.UnixMilli(env.ExpiresAt), Value: env.Value})
	}
	return entries, nil
}

// Clear removes every lookup entry, or only expired ones when expiredOnly is
// set. It returns the number of removed entries.
func (c *ResultCache) Clear(ctx context.Context, expiredOnly bool) (int, error) {
	entries, err := c.Entries(ctx)
	if err != nil {
		return 0, err
	}
	now := c.now()
	removed := 0
	for _, entry := range entries {
		if expiredOnly && !entry.Expired(now) {
			continue
		}
		if err := c.store.Delete(ctx, entry.Key); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
