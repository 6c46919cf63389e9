package api

import (
	"context"
	"fmt"

	"medialookup/internal/lookup"
)

// RemoveCacheEntryByNumber removes an entry using the 1-based numbering from
// cache list output.
func RemoveCacheEntryByNumber(ctx context.Context, cache *lookup.ResultCache, entryNum int) (lookup.CacheEntry, error) {
	if cache == nil {
		return lookup.CacheEntry{}, fmt.Errorf("result cache is not available")
	}
	if entryNum < 1 {
		return lookup.CacheEntry{}, fmt.Errorf("invalid entry number: %d (must be a positive integer)", entryNum)
	}

	entries, err := cache.Entries(ctx)
	if err != nil {
		return lookup.CacheEntry{}, fmt.Errorf("list cache entries: %w", err)
	}
	if entryNum > len(entries) {
		return lookup.CacheEntry{}, fmt.Errorf("entry number %d out of range (only %d entries exist)", entryNum, len(entries))
	}

	entry := entries[entryNum-1]
	if err := cache.Delete(ctx, entry.Key); err != nil {
		return lookup.CacheEntry{}, fmt.Errorf("remove cache entry: %w", err)
	}
	return entry, nil
}
