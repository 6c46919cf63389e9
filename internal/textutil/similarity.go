package textutil

import "math"

// Ratio returns the 0-100 similarity of a and b, computed as the normalized
// insert/delete edit distance over runes: round(100 * (len(a)+len(b)-d) / (len(a)+len(b)))
// where a substitution costs 2. Returns 0 when either string is empty.
func Ratio(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	lensum := len(ra) + len(rb)
	dist := levenshtein(ra, rb, 2)
	return int(math.Round(100 * float64(lensum-dist) / float64(lensum)))
}

// Distance returns the Levenshtein edit distance between a and b over runes.
func Distance(a, b string) int {
	return levenshtein([]rune(a), []rune(b), 1)
}

func levenshtein(a, b []rune, substitutionCost int) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	if len(a) < len(b) {
		a, b = b, a
	}
	row := make([]int, len(b)+1)
	for j := range row {
		row[j] = j
	}
	for i := 1; i <= len(a); i++ {
		prevDiag := row[0]
		row[0] = i
		for j := 1; j <= len(b); j++ {
			cost := prevDiag
			if a[i-1] != b[j-1] {
				cost += substitutionCost
			}
			prevDiag = row[j]
			row[j] = min(row[j]+1, row[j-1]+1, cost)
		}
	}
	return row[len(b)]
}
