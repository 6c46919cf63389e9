package api_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"medialookup/internal/api"
	"medialookup/internal/config"
	"medialookup/internal/lookup"
	"medialookup/internal/media"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Lookup.FuzzyThreshold = 70
	cfg.Cache.Backend = "json"
	cfg.Cache.Path = filepath.Join(t.TempDir(), "lookup.json")
	return &cfg
}

func TestNewRegistryBuildsAllBackends(t *testing.T) {
	cfg := testConfig(t)
	registry, err := api.NewRegistry(cfg, nil)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	for _, name := range config.KnownBackends {
		if _, ok := registry.Get(name); !ok {
			t.Fatalf("expected backend %q to be registered", name)
		}
	}
}

func TestOpenEngineAndCacheShareStore(t *testing.T) {
	cfg := testConfig(t)
	engine, closer, err := api.OpenEngine(cfg, nil)
	if err != nil {
		t.Fatalf("OpenEngine: %v", err)
	}
	identity := &media.Identity{ID: media.ExternalID{Service: media.ServiceMAL, ID: "1"}, Type: media.TypeAnime}
	if err := engine.Cache().Put(context.Background(), lookup.CacheKey("naruto", media.Request{}), identity); err != nil {
		t.Fatalf("Put: %v", err)
	}
	_ = closer.Close()

	cache, closer, err := api.OpenResultCache(cfg, nil)
	if err != nil {
		t.Fatalf("OpenResultCache: %v", err)
	}
	defer closer.Close()
	entries, err := cache.Entries(context.Background())
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected one entry, got %v err=%v", entries, err)
	}

	removed, err := api.RemoveCacheEntryByNumber(context.Background(), cache, 1)
	if err != nil {
		t.Fatalf("RemoveCacheEntryByNumber: %v", err)
	}
	if removed.Key != "~lookup:naruto" {
		t.Fatalf("unexpected removed key %q", removed.Key)
	}
	if _, err := api.RemoveCacheEntryByNumber(context.Background(), cache, 1); err == nil {
		t.Fatal("expected out of range error")
	}
}

func TestOpenStoreRejectsUnknownBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.Cache.Backend = "redis"
	if _, err := api.OpenStore(cfg, nil); err == nil {
		t.Fatal("expected error")
	}
}

func TestFromBatch(t *testing.T) {
	identity := &media.Identity{ID: media.ExternalID{Service: media.ServiceMAL, ID: "20"}, Type: media.TypeAnime}
	results := api.FromBatch([]lookup.BatchResult{
		{Index: 0, Request: media.Request{Names: []string{"Naruto", ""}}, Identity: identity},
		{Index: 1, Request: media.Request{Names: []string{"x"}}, Err: errors.New("boom")},
	})
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if !results[0].Found || results[0].Key != "mal:20" || len(results[0].Names) != 1 {
		t.Fatalf("unexpected first result %+v", results[0])
	}
	if results[1].Found || results[1].Error != "boom" {
		t.Fatalf("unexpected second result %+v", results[1])
	}
}
