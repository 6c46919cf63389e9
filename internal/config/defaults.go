package config

import "time"

const (
	defaultConfigPath            = "~/.config/medialookup/config.toml"
	DefaultFuzzyThreshold        = 70
	defaultConcurrency           = 4
	defaultCacheBackend          = "sqlite"
	defaultHTTPTimeoutSeconds    = 15
	defaultRetryDelayMillis      = 400
	defaultUserAgent             = "medialookup/dev"
	defaultShikimoriBaseURL      = "https://shikimori.one"
	defaultShikimoriUserAgent    = "PlaShiki"
	defaultAniListBaseURL        = "https://graphql.anilist.co"
	defaultKitsuBaseURL          = "https://kitsu.io/api/edge"
	defaultMALBaseURL            = "https://api.myanimelist.net/v2"
	defaultSerpAPIURL            = "https://serpapi.com/search.json"
	defaultWebSearchHTMLURL      = "https://html.duckduckgo.com/html/"
	defaultWebSearchSite         = "shikimori.one"
	defaultLogFormat             = "auto"
	defaultLogLevel              = "info"
	defaultRequestTimeoutSeconds = 0
)

// Backend names understood by the lookup engine.
const (
	BackendShikimori = "shikimori"
	BackendKitsu     = "kitsu"
	BackendMAL       = "mal"
	BackendAniList   = "anilist"
	BackendWebSearch = "websearch"
)

// KnownBackends lists every built-in backend in registry order.
var KnownBackends = []string{BackendShikimori, BackendKitsu, BackendMAL, BackendAniList, BackendWebSearch}

// Default returns a Config populated with repository defaults. The fuzzy
// threshold and credentials stay unset here; Load resolves them from the
// environment.
func Default() Config {
	return Config{
		Lookup: Lookup{
			Queue:                 []string{BackendShikimori, BackendKitsu, BackendMAL, BackendAniList},
			ConflictQueue:         []string{BackendWebSearch},
			RequestTimeoutSeconds: defaultRequestTimeoutSeconds,
			Concurrency:           defaultConcurrency,
		},
		Cache: Cache{Backend: defaultCacheBackend},
		HTTP: HTTP{
			TimeoutSeconds:   defaultHTTPTimeoutSeconds,
			RetryDelayMillis: defaultRetryDelayMillis,
			UserAgent:        defaultUserAgent,
		},
		Shikimori: Shikimori{BaseURL: defaultShikimoriBaseURL, UserAgent: defaultShikimoriUserAgent},
		AniList:   AniList{BaseURL: defaultAniListBaseURL},
		Kitsu:     Kitsu{BaseURL: defaultKitsuBaseURL},
		MAL:       MAL{BaseURL: defaultMALBaseURL},
		WebSearch: WebSearch{
			SerpAPIURL: defaultSerpAPIURL,
			HTMLURL:    defaultWebSearchHTMLURL,
			Site:       defaultWebSearchSite,
		},
		Logging: Logging{Format: defaultLogFormat, Level: defaultLogLevel},
	}
}

// HTTPTimeout returns the per-request HTTP timeout.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// RetryDelay returns the fixed back-off used when a 429 carries no Retry-After.
func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.HTTP.RetryDelayMillis) * time.Millisecond
}

// RequestTimeout returns the per-lookup deadline, zero meaning none.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Lookup.RequestTimeoutSeconds) * time.Second
}
