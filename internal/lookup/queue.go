package lookup

import (
	"log/slog"
	"slices"
	"strings"

	"medialookup/internal/logging"
	"medialookup/internal/media"
	"medialookup/internal/search"
)

// queueNames returns the backend order for a request. An explicit queue
// replaces the default order; a preferred backend is moved or inserted at the
// front.
func (e *Engine) queueNames(req media.Request, logger *slog.Logger) []string {
	if len(req.Queue) > 0 {
		return cleanNames(req.Queue)
	}
	queue := slices.Clone(e.queue)
	prefer := strings.ToLower(strings.TrimSpace(req.Prefer))
	if prefer == "" {
		return queue
	}
	if idx := slices.Index(queue, prefer); idx >= 0 {
		queue = slices.Delete(queue, idx, idx+1)
		return slices.Insert(queue, 0, prefer)
	}
	if _, ok := e.registry.Get(prefer); ok {
		return slices.Insert(queue, 0, prefer)
	}
	logger.Debug("unknown preferred backend ignored", logging.String("prefer", prefer))
	return queue
}

// resolve maps backend names to registered backends, dropping unknown ones.
func (e *Engine) resolve(names []string, logger *slog.Logger) []search.Backend {
	backends := make([]search.Backend, 0, len(names))
	for _, name := range names {
		backend, ok := e.registry.Get(name)
		if !ok {
			logging.WarnWithContext(logger, "unknown backend dropped from queue",
				"lookup_unknown_backend",
				logging.String(logging.FieldBackend, name),
				logging.String(logging.FieldErrorHint, "check lookup.queue and --queue values"),
				logging.String(logging.FieldImpact, "backend skipped"))
			continue
		}
		backends = append(backends, backend)
	}
	return backends
}

func cleanNames(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if name := strings.ToLower(strings.TrimSpace(value)); name != "" {
			out = append(out, name)
		}
	}
	return out
}
