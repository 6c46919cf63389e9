// Package services defines shared utilities consumed by the lookup engine and
// its search backends.
//
// Key responsibilities:
//   - Context helpers that stamp correlation identifiers and the backend being
//     consulted so log lines can be traced back to one lookup call.
//   - Structured error markers plus the Wrap helper that classify backend
//     failures (configuration, transient, external) and map them to hints.
//
// Use these helpers when wiring a new backend so failure handling and
// observability stay uniform across services.
package services
