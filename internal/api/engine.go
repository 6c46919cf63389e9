package api

import (
	"fmt"
	"io"
	"log/slog"

	"medialookup/internal/config"
	"medialookup/internal/kv"
	"medialookup/internal/logging"
	"medialookup/internal/lookup"
	"medialookup/internal/search"
	"medialookup/internal/search/anilist"
	"medialookup/internal/search/kitsu"
	"medialookup/internal/search/mal"
	"medialookup/internal/search/shikimori"
	"medialookup/internal/search/websearch"
)

// OpenStore opens the key-value store configured for the result cache.
func OpenStore(cfg *config.Config, logger *slog.Logger) (kv.Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("open cache store: config is required")
	}
	store, err := kv.Open(cfg.Cache.Backend, cfg.Cache.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("open cache store: %w", err)
	}
	return store, nil
}

// NewFetcher builds the HTTP fetcher shared by every backend.
func NewFetcher(cfg *config.Config) *search.Fetcher {
	return search.NewFetcher(
		search.WithTimeout(cfg.HTTPTimeout()),
		search.WithRetryDelay(cfg.RetryDelay()),
		search.WithUserAgent(cfg.HTTP.UserAgent),
	)
}

// NewRegistry constructs every built-in backend from configuration.
func NewRegistry(cfg *config.Config, fetcher *search.Fetcher) (*search.Registry, error) {
	if cfg == nil {
		return nil, fmt.Errorf("build backends: config is required")
	}
	if fetcher == nil {
		fetcher = NewFetcher(cfg)
	}

	shiki, err := shikimori.New(cfg.Shikimori.BaseURL,
		shikimori.WithFetcher(fetcher),
		shikimori.WithUserAgent(cfg.Shikimori.UserAgent))
	if err != nil {
		return nil, fmt.Errorf("build shikimori backend: %w", err)
	}
	kitsuClient, err := kitsu.New(cfg.Kitsu.BaseURL, kitsu.WithFetcher(fetcher))
	if err != nil {
		return nil, fmt.Errorf("build kitsu backend: %w", err)
	}
	malClient, err := mal.New(cfg.MAL.BaseURL, cfg.MAL.ClientID, mal.WithFetcher(fetcher))
	if err != nil {
		return nil, fmt.Errorf("build mal backend: %w", err)
	}
	anilistClient, err := anilist.New(cfg.AniList.BaseURL, anilist.WithFetcher(fetcher))
	if err != nil {
		return nil, fmt.Errorf("build anilist backend: %w", err)
	}
	web, err := websearch.New(websearch.Config{
		SerpAPIKey: cfg.WebSearch.SerpAPIKey,
		SerpAPIURL: cfg.WebSearch.SerpAPIURL,
		HTMLURL:    cfg.WebSearch.HTMLURL,
		Site:       cfg.WebSearch.Site,
	}, websearch.WithFetcher(fetcher))
	if err != nil {
		return nil, fmt.Errorf("build websearch backend: %w", err)
	}

	return search.NewRegistry(shiki, kitsuClient, malClient, anilistClient, web)
}

// OpenEngine builds a lookup engine over the configured store and backends.
// The returned closer releases the store.
func OpenEngine(cfg *config.Config, logger *slog.Logger) (*lookup.Engine, io.Closer, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	registry, err := NewRegistry(cfg, nil)
	if err != nil {
		return nil, nil, err
	}
	store, err := OpenStore(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	engine, err := lookup.New(registry, store, lookup.Options{
		Threshold:      cfg.Lookup.FuzzyThreshold,
		Queue:          cfg.Lookup.Queue,
		ConflictQueue:  cfg.Lookup.ConflictQueue,
		RequestTimeout: cfg.RequestTimeout(),
		Logger:         logger,
	})
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	return engine, store, nil
}

// OpenResultCache opens the configured store wrapped as a result cache for
// administration commands.
func OpenResultCache(cfg *config.Config, logger *slog.Logger) (*lookup.ResultCache, io.Closer, error) {
	store, err := OpenStore(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return lookup.NewResultCache(store, nil), store, nil
}
