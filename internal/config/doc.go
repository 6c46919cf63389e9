// Package config loads, normalizes, and validates medialookup configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// FUZZY_THRESHOLD, MAL_CLIENT_ID and SERPAPI_TOKEN. The Config type centralizes
// every knob the lookup engine, its backends and the CLI need.
package config
