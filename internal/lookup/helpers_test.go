package lookup

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"medialookup/internal/kv"
	"medialookup/internal/logging"
	"medialookup/internal/media"
	"medialookup/internal/search"
)

type fakeCandidate struct {
	names   []string
	id      string
	seasons media.Seasons
}

func (c fakeCandidate) Names() []string { return c.names }

func (c fakeCandidate) PrimaryName() string {
	if len(c.names) == 0 {
		return ""
	}
	return c.names[0]
}

func (c fakeCandidate) Seasons() media.Seasons { return c.seasons }

func (c fakeCandidate) ID(context.Context) (media.ExternalID, bool, error) {
	if c.id == "" {
		return media.ExternalID{}, false, nil
	}
	return media.ExternalID{Service: media.ServiceMAL, ID: c.id}, true, nil
}

type fakeBackend struct {
	name   string
	search func(query string) ([]search.Candidate, error)

	mu    sync.Mutex
	calls int
}

func (b *fakeBackend) Name() string { return b.name }

func (b *fakeBackend) Search(_ context.Context, _ media.Type, query string) ([]search.Candidate, error) {
	b.mu.Lock()
	b.calls++
	b.mu.Unlock()
	if b.search == nil {
		return nil, nil
	}
	return b.search(query)
}

func (b *fakeBackend) callCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

func returning(candidates ...search.Candidate) func(string) ([]search.Candidate, error) {
	return func(string) ([]search.Candidate, error) { return candidates, nil }
}

func failing(err error) func(string) ([]search.Candidate, error) {
	return func(string) ([]search.Candidate, error) { return nil, err }
}

// ambiguousList returns two identical leading candidates followed by unrelated
// fillers, long enough for the position bonus to keep the top two within the
// conflict margin.
func ambiguousList(title string) []search.Candidate {
	list := []search.Candidate{
		fakeCandidate{names: []string{title}, id: "1"},
		fakeCandidate{names: []string{title}, id: "2"},
	}
	for i := range 18 {
		list = append(list, fakeCandidate{names: []string{fmt.Sprintf("Filler %d", i+1)}, id: fmt.Sprint(100 + i)})
	}
	return list
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestEngine(t *testing.T, opts Options, backends ...search.Backend) (*Engine, kv.Store) {
	t.Helper()
	registry, err := search.NewRegistry(backends...)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	if opts.Threshold == 0 {
		opts.Threshold = 70
	}
	if opts.Queue == nil {
		for _, backend := range backends {
			opts.Queue = append(opts.Queue, backend.Name())
		}
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	store := kv.NewMemory()
	engine, err := New(registry, store, opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return engine, store
}
