package config

import (
	"errors"
	"fmt"
	"slices"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLookup(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLookup() error {
	if c.Lookup.FuzzyThreshold < 1 || c.Lookup.FuzzyThreshold > 100 {
		return fmt.Errorf("lookup.fuzzy_threshold must be between 1 and 100 (got %d)", c.Lookup.FuzzyThreshold)
	}
	if len(c.Lookup.Queue) == 0 {
		return errors.New("lookup.queue must name at least one backend")
	}
	for _, name := range c.Lookup.Queue {
		if !slices.Contains(KnownBackends, name) {
			return fmt.Errorf("lookup.queue: unknown backend %q (known: %v)", name, KnownBackends)
		}
	}
	for _, name := range c.Lookup.ConflictQueue {
		if !slices.Contains(KnownBackends, name) {
			return fmt.Errorf("lookup.conflict_queue: unknown backend %q (known: %v)", name, KnownBackends)
		}
	}
	if c.Lookup.RequestTimeoutSeconds < 0 {
		return errors.New("lookup.request_timeout_seconds must be zero or positive")
	}
	return nil
}

func (c *Config) validateCache() error {
	switch c.Cache.Backend {
	case "sqlite", "json":
		if c.Cache.Path == "" {
			return fmt.Errorf("cache.path is required for the %s backend", c.Cache.Backend)
		}
	case "memory":
	default:
		return fmt.Errorf("cache.backend: unsupported value %q (use sqlite, json, or memory)", c.Cache.Backend)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "auto", "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (use auto, console, or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
