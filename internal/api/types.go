package api

import (
	"medialookup/internal/lookup"
	"medialookup/internal/media"
)

// LookupResult is the transport representation of one lookup.
type LookupResult struct {
	Index    int             `json:"index"`
	Names    []string        `json:"names"`
	Found    bool            `json:"found"`
	Identity *media.Identity `json:"identity"`
	Key      string          `json:"key,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// FromIdentity converts a single lookup outcome.
func FromIdentity(index int, req media.Request, identity *media.Identity, err error) LookupResult {
	result := LookupResult{
		Index:    index,
		Names:    req.NonEmptyNames(),
		Found:    identity != nil,
		Identity: identity,
	}
	if identity != nil {
		result.Key = identity.ID.String()
	}
	if err != nil {
		result.Error = err.Error()
	}
	return result
}

// FromBatch converts batch results preserving their order.
func FromBatch(results []lookup.BatchResult) []LookupResult {
	out := make([]LookupResult, 0, len(results))
	for _, r := range results {
		out = append(out, FromIdentity(r.Index, r.Request, r.Identity, r.Err))
	}
	return out
}
