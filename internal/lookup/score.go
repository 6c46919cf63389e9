package lookup

import (
	"cmp"
	"slices"

	"medialookup/internal/search"
	"medialookup/internal/textutil"
)

const (
	// signatureBonus is added when two names carry identical flags.
	signatureBonus = 15
	// positionWeight scales the bonus for appearing early in a result list.
	positionWeight = 0.2
	// acceptanceFactor scales names*threshold into the acceptance floor.
	acceptanceFactor = 0.6
	// maxAcronymDistance bounds the edit distance of acronyms that may stand
	// in for a failed full-name comparison.
	maxAcronymDistance = 1
)

type scorer struct {
	threshold int
	sig       *signatures
}

// scored pairs a candidate with its weighted total.
type scored struct {
	candidate search.Candidate
	score     float64
}

// score rates a candidate at position index of a result list of length total
// against the normalized requested names.
func (s *scorer) score(names []string, candidate search.Candidate, index, total int) float64 {
	best := make([]int, len(names))
	for _, raw := range candidate.Names() {
		itNorm := s.sig.normalize(raw)
		if itNorm == "" {
			continue
		}
		itFlags := s.sig.flags(itNorm)
		itAcronym := s.sig.acronym(itNorm)

		for i, name := range names {
			score := textutil.Ratio(itNorm, name)
			acronym := s.sig.acronym(name)

			if score < s.threshold && (itNorm == itAcronym || name == acronym) {
				if textutil.Distance(itAcronym, acronym) <= maxAcronymDistance {
					if acrScore := textutil.Ratio(itAcronym, acronym); acrScore > score {
						score = acrScore
					}
				}
			}
			if itFlags == s.sig.flags(name) {
				score += signatureBonus
			}
			if score > s.threshold && score > best[i] {
				best[i] = score
			}
		}
	}

	sum := 0
	for _, v := range best {
		sum += v
	}
	return float64(sum) * positionCoefficient(index, total)
}

// rank scores every candidate and orders them by descending score. Ties keep
// the backend's order.
func (s *scorer) rank(names []string, candidates []search.Candidate) []scored {
	ranked := make([]scored, 0, len(candidates))
	for i, candidate := range candidates {
		ranked = append(ranked, scored{candidate: candidate, score: s.score(names, candidate, i, len(candidates))})
	}
	slices.SortStableFunc(ranked, func(a, b scored) int {
		return cmp.Compare(b.score, a.score)
	})
	return ranked
}

// positionCoefficient rewards candidates near the top of a result list.
func positionCoefficient(index, total int) float64 {
	halfway := max(1, total/2)
	return 1 + positionWeight*(float64(total-index)/float64(halfway))
}

// acceptanceFloor is the minimum total a candidate needs to be accepted.
func acceptanceFloor(nameCount, threshold int) float64 {
	return float64(nameCount) * float64(threshold) * acceptanceFactor
}
