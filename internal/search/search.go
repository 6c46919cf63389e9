package search

import (
	"context"
	"fmt"
	"sort"

	"medialookup/internal/media"
)

// PageSize is the number of results requested from every service.
const PageSize = 15

// Candidate is one search result as seen by the scoring engine.
type Candidate interface {
	// Names returns every known title of the entry, possibly with blanks.
	Names() []string
	// PrimaryName is the title used in diagnostics.
	PrimaryName() string
	// Seasons returns the known start and end seasons.
	Seasons() media.Seasons
	// ID resolves the MyAnimeList identifier. ok is false when the entry has
	// no usable id.
	ID(ctx context.Context) (id media.ExternalID, ok bool, err error)
}

// Backend queries one external metadata service.
type Backend interface {
	Name() string
	Search(ctx context.Context, kind media.Type, query string) ([]Candidate, error)
}

// Registry holds the backends available to the engine, keyed by name.
type Registry struct {
	backends map[string]Backend
}

// NewRegistry indexes the provided backends by name.
func NewRegistry(backends ...Backend) (*Registry, error) {
	r := &Registry{backends: make(map[string]Backend, len(backends))}
	for _, backend := range backends {
		if backend == nil {
			continue
		}
		name := backend.Name()
		if _, exists := r.backends[name]; exists {
			return nil, fmt.Errorf("duplicate backend %q", name)
		}
		r.backends[name] = backend
	}
	return r, nil
}

// Get returns the backend registered under name.
func (r *Registry) Get(name string) (Backend, bool) {
	if r == nil {
		return nil, false
	}
	backend, ok := r.backends[name]
	return backend, ok
}

// Names lists registered backend names in sorted order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.backends))
	for name := range r.backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MALID builds a MyAnimeList external id from a numeric identifier.
func MALID(id int64) (media.ExternalID, bool) {
	if id <= 0 {
		return media.ExternalID{}, false
	}
	return media.ExternalID{Service: media.ServiceMAL, ID: fmt.Sprintf("%d", id)}, true
}

// AppendNonEmpty appends the non-blank values to dst.
func AppendNonEmpty(dst []string, values ...string) []string {
	for _, value := range values {
		if value != "" {
			dst = append(dst, value)
		}
	}
	return dst
}
