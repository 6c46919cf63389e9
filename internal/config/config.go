package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Lookup contains the matching knobs of the resolution engine.
type Lookup struct {
	// FuzzyThreshold is the 0-100 similarity a name pair must exceed to count.
	// Zero means "unset": FUZZY_THRESHOLD is consulted, then the default of 70.
	FuzzyThreshold int `toml:"fuzzy_threshold"`
	// Queue is the default order in which backends are consulted.
	Queue []string `toml:"queue"`
	// ConflictQueue is appended once when a backend reports a conflict.
	ConflictQueue         []string `toml:"conflict_queue"`
	RequestTimeoutSeconds int      `toml:"request_timeout_seconds"`
	Concurrency           int      `toml:"concurrency"`
}

// Cache selects the key-value store backing the result cache.
type Cache struct {
	Backend string `toml:"backend"` // sqlite, json, or memory
	Path    string `toml:"path"`
}

// HTTP contains transport settings shared by every backend.
type HTTP struct {
	TimeoutSeconds   int    `toml:"timeout_seconds"`
	RetryDelayMillis int    `toml:"retry_delay_ms"`
	UserAgent        string `toml:"user_agent"`
}

// Shikimori contains configuration for the Shikimori API.
type Shikimori struct {
	BaseURL   string `toml:"base_url"`
	UserAgent string `toml:"user_agent"`
}

// AniList contains configuration for the AniList GraphQL API.
type AniList struct {
	BaseURL string `toml:"base_url"`
}

// Kitsu contains configuration for the Kitsu JSON:API.
type Kitsu struct {
	BaseURL string `toml:"base_url"`
}

// MAL contains configuration for the MyAnimeList v2 API.
type MAL struct {
	BaseURL  string `toml:"base_url"`
	ClientID string `toml:"client_id"`
}

// WebSearch contains configuration for the search-engine fallback backend.
type WebSearch struct {
	SerpAPIKey string `toml:"serpapi_key"`
	SerpAPIURL string `toml:"serpapi_url"`
	HTMLURL    string `toml:"html_url"`
	Site       string `toml:"site"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	File   string `toml:"file"`
}

// Config encapsulates all configuration values for medialookup.
//
// Configuration sections by subsystem:
//   - Lookup: fuzzy threshold, backend order, per-call timeout
//   - Cache: result cache store selection
//   - HTTP: shared transport settings and 429 back-off
//   - Shikimori, AniList, Kitsu, MAL, WebSearch: per-backend endpoints and credentials
//   - Logging: log format, level, and optional file
type Config struct {
	Lookup    Lookup    `toml:"lookup"`
	Cache     Cache     `toml:"cache"`
	HTTP      HTTP      `toml:"http"`
	Shikimori Shikimori `toml:"shikimori"`
	AniList   AniList   `toml:"anilist"`
	Kitsu     Kitsu     `toml:"kitsu"`
	MAL       MAL       `toml:"mal"`
	WebSearch WebSearch `toml:"websearch"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has
// environment fallbacks applied and all path fields expanded.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("medialookup.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultCacheDir() string {
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "medialookup")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "~/.cache/medialookup"
	}
	return filepath.Join(home, ".cache", "medialookup")
}

// SampleConfig returns the embedded sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Encode renders the effective configuration as TOML.
func (c *Config) Encode() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}
