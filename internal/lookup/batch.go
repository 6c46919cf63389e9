package lookup

import (
	"context"
	"sync"

	"medialookup/internal/media"
)

// BatchResult is the outcome of one request of a batch.
type BatchResult struct {
	Index    int
	Request  media.Request
	Identity *media.Identity
	Err      error
}

// LookupAll resolves requests with at most concurrency lookups in flight.
// Results keep the input order.
func (e *Engine) LookupAll(ctx context.Context, reqs []media.Request, concurrency int) []BatchResult {
	if concurrency <= 0 {
		concurrency = 1
	}
	results := make([]BatchResult, len(reqs))
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for i, req := range reqs {
		results[i] = BatchResult{Index: i, Request: req}
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			results[i].Err = ctx.Err()
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			identity, err := e.Lookup(ctx, req)
			results[i].Identity = identity
			results[i].Err = err
		}()
	}
	wg.Wait()
	return results
}
