package lookup

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const (
	// removableChars are dropped unless a rule below keeps them.
	removableChars = "«»'\"‘’“”„「」『』《》〈〉()[]{}<>-_⁓‐‑‒–—―`~!@#$%^&*;:.,\\/?|"
	// middleChars survive between two word characters.
	middleChars = "⁓‐‑‒–—―.,;/\\$_-"
	// endChars survive at the end of a word or of the string.
	endChars = "!?'.;*"

	maxNormalizePasses = 8
)

var (
	ordinalSeason      = regexp.MustCompile(`(?i)(\d+)'?\s*(?:nd|th|st|rd)?\s*season`)
	russianSeason      = regexp.MustCompile(`(?i)\s*сезон`)
	tvNumber           = regexp.MustCompile(`(?i)(?:tv|тв)(?:[-_⁓‐‑‒–—―]|\s*)(\d+)`)
	sequelWords        = regexp.MustCompile(`(?i)продолжение|дважды`)
	highSchoolDxDTitle = regexp.MustCompile(`(?i)демоны старшей школы`)
	whitespaceRun      = regexp.MustCompile(`\s+`)
)

// Normalize canonicalizes a title for comparison. The result is lowercase,
// carries single spaces between words, keeps only the punctuation that
// carries meaning, and rewrites season and sequel markers to bare numbers.
// Normalize is idempotent.
func Normalize(s string) string {
	current := s
	for range maxNormalizePasses {
		next := normalizeOnce(current)
		if next == current {
			return next
		}
		current = next
	}
	return current
}

func normalizeOnce(s string) string {
	runes := []rune(strings.ToLower(norm.NFC.String(s)))
	out := make([]rune, 0, len(runes))
	prevWhitespace := false
	last := len(runes) - 1

	for i, r := range runes {
		ws := unicode.IsSpace(r)
		if strings.ContainsRune(removableChars, r) {
			if prevWhitespace {
				continue
			}
			atEnd := i == last || unicode.IsSpace(runes[i+1])
			switch {
			case atEnd:
				if strings.ContainsRune(endChars, r) {
					out = append(out, r)
				}
			case strings.ContainsRune(endChars, r):
				j := i + 1
				for j < last && strings.ContainsRune(endChars, runes[j]) {
					j++
				}
				if strings.ContainsRune(middleChars, r) || j == last || unicode.IsSpace(runes[j]) {
					out = append(out, r)
				}
			case strings.ContainsRune(middleChars, r):
				out = append(out, r)
			}
			continue
		}
		if !prevWhitespace || !ws {
			if ws {
				r = ' '
			}
			out = append(out, r)
		}
		prevWhitespace = ws
	}

	result := string(out)
	result = strings.ReplaceAll(result, "oad", "ova")
	result = replaceFirst(ordinalSeason, result, "$1")
	result = russianSeason.ReplaceAllString(result, "")
	result = tvNumber.ReplaceAllStringFunc(result, func(match string) string {
		number := tvNumber.FindStringSubmatch(match)[1]
		if number == "1" {
			return ""
		}
		return number
	})
	result = sequelWords.ReplaceAllString(result, "2")
	result = highSchoolDxDTitle.ReplaceAllString(result, "старшая школа dxd")
	result = strings.ReplaceAll(result, "ё", "е")
	result = whitespaceRun.ReplaceAllString(result, " ")
	return strings.TrimSpace(result)
}

func replaceFirst(re *regexp.Regexp, s, template string) string {
	loc := re.FindStringSubmatchIndex(s)
	if loc == nil {
		return s
	}
	expanded := re.ExpandString(nil, template, s, loc)
	return s[:loc[0]] + string(expanded) + s[loc[1]:]
}
