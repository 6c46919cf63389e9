package lookup

import "math"

// conflictMargin is the score gap under which the two best candidates are
// considered indistinguishable.
const conflictMargin = 5

// isConflict reports whether a ranked list of at least three candidates has a
// near-tie at the top.
func isConflict(ranked []scored) bool {
	if len(ranked) <= 2 {
		return false
	}
	return math.Abs(ranked[0].score-ranked[1].score) < conflictMargin
}
