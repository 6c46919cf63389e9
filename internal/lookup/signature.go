package lookup

import (
	"regexp"
	"slices"
	"strings"
)

var (
	releaseTagPattern = regexp.MustCompile(`(?i)o[vn]a|special|сп[еэ]шл|спецвыпуск|recap|рекап|movie|фильм|pv`)
	acronymSeparators = regexp.MustCompile(`\s+|[⁓‐‑‒–—―.,;/\\$_\-]`)

	ovaTag     = regexp.MustCompile(`(?i)o[vn]a`)
	pvTag      = regexp.MustCompile(`(?i)pv`)
	specialTag = regexp.MustCompile(`(?i)special|сп[еэ]шл|спецвыпуск`)
	recapTag   = regexp.MustCompile(`(?i)recap|рекап`)
	movieTag   = regexp.MustCompile(`(?i)movie|фильм`)
)

// signatures memoizes normalization, flags, and acronyms of names seen during
// one lookup call. It is not safe for concurrent use.
type signatures struct {
	normalized map[string]string
	flagsOf    map[string]string
	acronymOf  map[string]string
}

func newSignatures() *signatures {
	return &signatures{
		normalized: make(map[string]string),
		flagsOf:    make(map[string]string),
		acronymOf:  make(map[string]string),
	}
}

func (s *signatures) normalize(raw string) string {
	if v, ok := s.normalized[raw]; ok {
		return v
	}
	v := Normalize(raw)
	s.normalized[raw] = v
	return v
}

func (s *signatures) flags(name string) string {
	if v, ok := s.flagsOf[name]; ok {
		return v
	}
	v := Flags(name)
	s.flagsOf[name] = v
	return v
}

func (s *signatures) acronym(name string) string {
	if v, ok := s.acronymOf[name]; ok {
		return v
	}
	v := Acronym(name)
	s.acronymOf[name] = v
	return v
}

// Flags returns the digits of a normalized name followed by "_" and the sorted,
// comma-joined release tags it mentions, e.g. "2_ova,special".
func Flags(name string) string {
	var digits strings.Builder
	for _, r := range name {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}

	var tags []string
	for _, match := range releaseTagPattern.FindAllString(name, -1) {
		tag := releaseTag(match)
		if !slices.Contains(tags, tag) {
			tags = append(tags, tag)
		}
	}
	slices.Sort(tags)
	return digits.String() + "_" + strings.Join(tags, ",")
}

func releaseTag(match string) string {
	switch {
	case ovaTag.MatchString(match):
		return "ova"
	case pvTag.MatchString(match):
		return "pv"
	case specialTag.MatchString(match):
		return "special"
	case recapTag.MatchString(match):
		return "recap"
	case movieTag.MatchString(match):
		return "movie"
	default:
		return "unknown"
	}
}

// Acronym strips release tags from a normalized name and returns the first
// letter of every remaining word. Single-word names are returned unchanged.
func Acronym(name string) string {
	meaningful := strings.TrimSpace(releaseTagPattern.ReplaceAllString(name, ""))
	words := acronymSeparators.Split(meaningful, -1)
	if len(words) < 2 {
		return meaningful
	}
	var b strings.Builder
	for _, word := range words {
		for _, r := range word {
			b.WriteRune(r)
			break
		}
	}
	return b.String()
}
