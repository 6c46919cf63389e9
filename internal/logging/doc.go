// Package logging assembles structured slog loggers and formatting helpers used
// across the lookup engine, its backends, and the CLI.
//
// It owns the console/JSON handlers, centralizes level and output plumbing, and
// exposes context-aware helpers so backend code automatically tags log lines
// with the correlation ID and backend name of the lookup in flight. A no-op
// logger is provided for tests and wiring code that cannot fail.
package logging
