package lookup

import (
	"context"
	"log/slog"

	"medialookup/internal/logging"
	"medialookup/internal/media"
	"medialookup/internal/search"
)

// OutcomeKind classifies the result of consulting one backend.
type OutcomeKind int

const (
	// OutcomeNoMatch means no candidate was accepted.
	OutcomeNoMatch OutcomeKind = iota
	// OutcomeMatch means a candidate was accepted and its id resolved.
	OutcomeMatch
	// OutcomeConflict means no candidate was accepted and at least one name
	// produced a near-tie.
	OutcomeConflict
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeMatch:
		return "match"
	case OutcomeConflict:
		return "conflict"
	default:
		return "no_match"
	}
}

// Outcome is the result of matching a request against one backend.
type Outcome struct {
	Kind     OutcomeKind
	Identity *media.Identity
}

// matchBackend searches the backend once per normalized name and returns the
// first acceptable candidate. Search and id resolution errors abort the
// backend.
func (e *Engine) matchBackend(ctx context.Context, backend search.Backend, req media.Request, names []string, logger *slog.Logger) (Outcome, error) {
	kind := req.Type()
	sc := &scorer{threshold: e.threshold, sig: newSignatures()}
	floor := acceptanceFloor(len(names), e.threshold)
	hadConflict := false

	for _, name := range names {
		candidates, err := backend.Search(ctx, kind, name)
		if err != nil {
			return Outcome{}, err
		}
		ranked := sc.rank(names, candidates)
		if isConflict(ranked) {
			logger.Debug("close match",
				logging.String("query", name),
				logging.Float64("top_score", ranked[0].score),
				logging.Float64("runner_up_score", ranked[1].score),
				logging.Int("candidates", len(ranked)))
			hadConflict = true
			continue
		}

		for _, entry := range ranked {
			if entry.score < floor {
				continue
			}
			if !seasonsAllowed(req, entry.candidate) {
				logger.Debug("candidate rejected by season constraint",
					logging.String("candidate", entry.candidate.PrimaryName()),
					logging.Float64("score", entry.score))
				continue
			}

			logger.Debug("candidate accepted",
				logging.String("query", name),
				logging.String("candidate", entry.candidate.PrimaryName()),
				logging.Float64("score", entry.score))
			id, ok, err := entry.candidate.ID(ctx)
			if err != nil {
				return Outcome{}, err
			}
			if !ok {
				logger.Debug("accepted candidate has no usable id",
					logging.String("candidate", entry.candidate.PrimaryName()))
				return Outcome{Kind: OutcomeNoMatch}, nil
			}
			return Outcome{Kind: OutcomeMatch, Identity: &media.Identity{ID: id, Type: kind}}, nil
		}
	}

	if hadConflict {
		return Outcome{Kind: OutcomeConflict}, nil
	}
	return Outcome{Kind: OutcomeNoMatch}, nil
}

// seasonsAllowed applies the request's season constraints to a candidate.
// Start and end constraints require a known, equal season. The "some"
// constraint requires every known season of the candidate to equal it, so a
// candidate with no known seasons passes.
func seasonsAllowed(req media.Request, candidate search.Candidate) bool {
	if req.StartSeason == nil && req.EndSeason == nil && req.SomeSeason == nil {
		return true
	}
	seasons := candidate.Seasons()
	if req.StartSeason != nil && (seasons.Start == nil || !req.StartSeason.Equal(*seasons.Start)) {
		return false
	}
	if req.EndSeason != nil && (seasons.End == nil || !req.EndSeason.Equal(*seasons.End)) {
		return false
	}
	if some := req.SomeSeason; some != nil {
		if seasons.Start != nil && !some.Equal(*seasons.Start) {
			return false
		}
		if seasons.End != nil && !some.Equal(*seasons.End) {
			return false
		}
	}
	return true
}
