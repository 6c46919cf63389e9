package lookup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"medialookup/internal/kv"
	"medialookup/internal/logging"
	"medialookup/internal/media"
	"medialookup/internal/search"
	"medialookup/internal/services"
)

// Options configures an Engine.
type Options struct {
	// Threshold is the 1-100 fuzzy similarity a name pair must exceed.
	Threshold int
	// Queue is the default backend order.
	Queue []string
	// ConflictQueue is appended once after the first conflict.
	ConflictQueue []string
	// RequestTimeout bounds one Lookup call. Zero disables the deadline.
	RequestTimeout time.Duration
	Logger         *slog.Logger
	// Now overrides the clock used for cache expiry.
	Now func() time.Time
}

// Engine resolves title sets to canonical identities.
type Engine struct {
	registry      *search.Registry
	cache         *ResultCache
	threshold     int
	queue         []string
	conflictQueue []string
	timeout       time.Duration
	logger        *slog.Logger
}

// New constructs an Engine over the registered backends and the cache store.
func New(registry *search.Registry, store kv.Store, opts Options) (*Engine, error) {
	if registry == nil {
		return nil, errors.New("lookup: backend registry is required")
	}
	if store == nil {
		return nil, errors.New("lookup: cache store is required")
	}
	if opts.Threshold <= 0 || opts.Threshold > 100 {
		return nil, fmt.Errorf("lookup: fuzzy threshold must be between 1 and 100, got %d", opts.Threshold)
	}
	return &Engine{
		registry:      registry,
		cache:         NewResultCache(store, opts.Now),
		threshold:     opts.Threshold,
		queue:         cleanNames(opts.Queue),
		conflictQueue: cleanNames(opts.ConflictQueue),
		timeout:       opts.RequestTimeout,
		logger:        logging.NewComponentLogger(opts.Logger, "lookup"),
	}, nil
}

// Cache exposes the engine's result cache.
func (e *Engine) Cache() *ResultCache {
	return e.cache
}

// Lookup resolves the request to an identity. A nil identity with a nil error
// means nothing matched. Errors are returned only when ctx ends.
func (e *Engine) Lookup(ctx context.Context, req media.Request) (*media.Identity, error) {
	ctx, _ = services.EnsureRequestID(ctx)
	logger := logging.WithContext(ctx, e.logger)

	names := prepareNames(req.Names)
	if len(names) == 0 {
		logger.Debug("no usable names in request")
		return nil, nil
	}
	if req.Source.URL != "" {
		logger.Debug("lookup source", logging.String("url", req.Source.URL), logging.Bool("hq", req.Source.HQ))
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	for _, name := range names {
		value, hit, err := e.cache.Get(ctx, CacheKey(name, req))
		if err != nil {
			logging.WarnWithContext(logger, "result cache read failed",
				"lookup_cache_read_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check cache.path permissions or clear the cache"),
				logging.String(logging.FieldImpact, "treated as cache miss"))
			continue
		}
		if hit {
			logger.Info("lookup served from cache",
				logging.Args(append(logging.DecisionAttrs("lookup_cache", hitResult(value), "fresh cache entry"),
					logging.String("name", name),
					logging.String("identity", identityString(value)))...)...)
			return value, nil
		}
	}

	queue := e.resolve(e.queueNames(req, logger), logger)
	conflicted := false
	for i := 0; i < len(queue); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		backend := queue[i]
		bctx := services.WithBackend(ctx, backend.Name())
		blogger := logging.WithContext(bctx, e.logger)

		outcome, err := e.matchBackend(bctx, backend, req, names, blogger)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			logging.WarnWithContext(blogger, "backend lookup failed",
				"lookup_backend_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, services.Hint(err)))
			continue
		}

		switch outcome.Kind {
		case OutcomeMatch:
			logger.Info("lookup resolved",
				logging.Args(append(logging.DecisionAttrs("lookup_result", "match", "accepted candidate"),
					logging.String(logging.FieldBackend, backend.Name()),
					logging.String("identity", identityString(outcome.Identity)),
					logging.Int("name_count", len(names)))...)...)
			e.store(ctx, names, req, outcome.Identity, logger)
			return outcome.Identity, nil
		case OutcomeConflict:
			if !conflicted {
				conflicted = true
				fallback := e.resolve(e.conflictQueue, blogger)
				queue = append(queue, fallback...)
				blogger.Info("ambiguous candidates, consulting fallback backends",
					logging.Args(append(logging.DecisionAttrs("lookup_conflict", "escalate", "near-tied top candidates"),
						logging.Int("fallback_count", len(fallback)))...)...)
			} else {
				blogger.Debug("ambiguous candidates")
			}
		default:
			blogger.Debug("nothing found at backend")
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger.Info("lookup exhausted",
		logging.Args(append(logging.DecisionAttrs("lookup_result", "no_match", "queue exhausted"),
			logging.Int("backend_count", len(queue)),
			logging.String("names", strings.Join(names, " | ")))...)...)
	e.store(ctx, names, req, nil, logger)
	return nil, nil
}

func (e *Engine) store(ctx context.Context, names []string, req media.Request, value *media.Identity, logger *slog.Logger) {
	for _, name := range names {
		if err := e.cache.Put(ctx, CacheKey(name, req), value); err != nil {
			logging.WarnWithContext(logger, "result cache write failed",
				"lookup_cache_write_failed",
				logging.Error(err),
				logging.String("name", name),
				logging.String(logging.FieldErrorHint, "check cache.path permissions"),
				logging.String(logging.FieldImpact, "result will be looked up again next time"))
		}
	}
}

// prepareNames drops blank names, normalizes the rest, and returns them sorted
// and de-duplicated.
func prepareNames(raw []string) []string {
	names := make([]string, 0, len(raw))
	for _, name := range raw {
		if strings.TrimSpace(name) == "" {
			continue
		}
		if normalized := Normalize(name); normalized != "" {
			names = append(names, normalized)
		}
	}
	slices.Sort(names)
	return slices.Compact(names)
}

func hitResult(value *media.Identity) string {
	if value == nil {
		return "negative_hit"
	}
	return "hit"
}

func identityString(value *media.Identity) string {
	if value == nil {
		return "none"
	}
	return string(value.Type) + " " + value.ID.String()
}
