package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeLookup(); err != nil {
		return err
	}
	if err := c.normalizeCache(); err != nil {
		return err
	}
	c.normalizeHTTP()
	c.normalizeBackends()
	if err := c.normalizeLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) normalizeLookup() error {
	if c.Lookup.FuzzyThreshold == 0 {
		if value, ok := os.LookupEnv("FUZZY_THRESHOLD"); ok && strings.TrimSpace(value) != "" {
			parsed, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				return fmt.Errorf("FUZZY_THRESHOLD: %w", err)
			}
			c.Lookup.FuzzyThreshold = parsed
		}
	}
	if c.Lookup.FuzzyThreshold == 0 {
		c.Lookup.FuzzyThreshold = DefaultFuzzyThreshold
	}
	c.Lookup.Queue = normalizeNames(c.Lookup.Queue)
	c.Lookup.ConflictQueue = normalizeNames(c.Lookup.ConflictQueue)
	if c.Lookup.Concurrency <= 0 {
		c.Lookup.Concurrency = defaultConcurrency
	}
	return nil
}

func (c *Config) normalizeCache() error {
	c.Cache.Backend = strings.ToLower(strings.TrimSpace(c.Cache.Backend))
	if c.Cache.Backend == "" {
		c.Cache.Backend = defaultCacheBackend
	}
	c.Cache.Path = strings.TrimSpace(c.Cache.Path)
	if c.Cache.Path == "" {
		switch c.Cache.Backend {
		case "sqlite":
			c.Cache.Path = filepath.Join(defaultCacheDir(), "lookup.db")
		case "json":
			c.Cache.Path = filepath.Join(defaultCacheDir(), "lookup.json")
		}
	}
	var err error
	if c.Cache.Path, err = expandPath(c.Cache.Path); err != nil {
		return fmt.Errorf("cache.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeHTTP() {
	if c.HTTP.TimeoutSeconds <= 0 {
		c.HTTP.TimeoutSeconds = defaultHTTPTimeoutSeconds
	}
	if c.HTTP.RetryDelayMillis <= 0 {
		c.HTTP.RetryDelayMillis = defaultRetryDelayMillis
	}
	c.HTTP.UserAgent = strings.TrimSpace(c.HTTP.UserAgent)
	if c.HTTP.UserAgent == "" {
		c.HTTP.UserAgent = defaultUserAgent
	}
}

func (c *Config) normalizeBackends() {
	c.Shikimori.BaseURL = trimURL(c.Shikimori.BaseURL, defaultShikimoriBaseURL)
	c.Shikimori.UserAgent = strings.TrimSpace(c.Shikimori.UserAgent)
	if c.Shikimori.UserAgent == "" {
		c.Shikimori.UserAgent = defaultShikimoriUserAgent
	}
	c.AniList.BaseURL = trimURL(c.AniList.BaseURL, defaultAniListBaseURL)
	c.Kitsu.BaseURL = trimURL(c.Kitsu.BaseURL, defaultKitsuBaseURL)
	c.MAL.BaseURL = trimURL(c.MAL.BaseURL, defaultMALBaseURL)
	c.MAL.ClientID = strings.TrimSpace(c.MAL.ClientID)
	if c.MAL.ClientID == "" {
		if value, ok := os.LookupEnv("MAL_CLIENT_ID"); ok {
			c.MAL.ClientID = strings.TrimSpace(value)
		}
	}
	c.WebSearch.SerpAPIURL = strings.TrimSpace(c.WebSearch.SerpAPIURL)
	if c.WebSearch.SerpAPIURL == "" {
		c.WebSearch.SerpAPIURL = defaultSerpAPIURL
	}
	c.WebSearch.HTMLURL = strings.TrimSpace(c.WebSearch.HTMLURL)
	if c.WebSearch.HTMLURL == "" {
		c.WebSearch.HTMLURL = defaultWebSearchHTMLURL
	}
	c.WebSearch.Site = strings.TrimSpace(c.WebSearch.Site)
	if c.WebSearch.Site == "" {
		c.WebSearch.Site = defaultWebSearchSite
	}
	c.WebSearch.SerpAPIKey = strings.TrimSpace(c.WebSearch.SerpAPIKey)
	if c.WebSearch.SerpAPIKey == "" {
		if value, ok := os.LookupEnv("SERPAPI_TOKEN"); ok {
			c.WebSearch.SerpAPIKey = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	var err error
	if c.Logging.File, err = expandPath(strings.TrimSpace(c.Logging.File)); err != nil {
		return fmt.Errorf("logging.file: %w", err)
	}
	return nil
}

func normalizeNames(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		name := strings.ToLower(strings.TrimSpace(value))
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

func trimURL(value, fallback string) string {
	value = strings.TrimRight(strings.TrimSpace(value), "/")
	if value == "" {
		return fallback
	}
	return value
}
