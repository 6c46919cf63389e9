package media

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SeasonName is one of the four airing seasons or the wildcard "any".
type SeasonName string

const (
	Winter    SeasonName = "winter"
	Spring    SeasonName = "spring"
	Summer    SeasonName = "summer"
	Fall      SeasonName = "fall"
	AnySeason SeasonName = "any"
)

// Season is a (year, season) pair.
type Season struct {
	Year int        `json:"year"`
	Name SeasonName `json:"season"`
}

// Equal reports whether the years match and the season names match, with
// "any" on either side matching every season.
func (s Season) Equal(other Season) bool {
	return s.Year == other.Year && (s.Name == other.Name || s.Name == AnySeason || other.Name == AnySeason)
}

// String renders the season in the "name:year" form accepted by ParseSeason.
func (s Season) String() string {
	return string(s.Name) + ":" + strconv.Itoa(s.Year)
}

// KeyPart renders the compact "name+year" form used in cache keys.
func (s Season) KeyPart() string {
	return string(s.Name) + strconv.Itoa(s.Year)
}

// Seasons holds the known start and end seasons of a catalogue entry.
type Seasons struct {
	Start *Season
	End   *Season
}

// SeasonFromMonth maps a 1-based month to its season. December stays in its
// own calendar year.
func SeasonFromMonth(month time.Month) SeasonName {
	switch {
	case month <= time.February || month == time.December:
		return Winter
	case month <= time.May:
		return Spring
	case month <= time.August:
		return Summer
	default:
		return Fall
	}
}

// SeasonFromDate returns the season a date falls into.
func SeasonFromDate(t time.Time) Season {
	return Season{Year: t.Year(), Name: SeasonFromMonth(t.Month())}
}

var dateLayouts = []string{time.DateOnly, "2006-01", time.RFC3339, "2006"}

// ParseSeasonDate parses a catalogue date ("2019-04-06", "2019-04", RFC3339 or
// a bare year) into a season. A bare year maps to winter, like January 1st.
func ParseSeasonDate(value string) (*Season, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			s := SeasonFromDate(t)
			return &s, true
		}
	}
	return nil, false
}

// SeasonFromParts builds a season from a year and an optional 1-based month.
// Missing months map to January. A zero year yields nil.
func SeasonFromParts(year, month int) *Season {
	if year <= 0 {
		return nil
	}
	if month < 1 || month > 12 {
		month = 1
	}
	return &Season{Year: year, Name: SeasonFromMonth(time.Month(month))}
}

// ParseSeason parses "winter:2019", "2019:winter" or a bare "2019" (any season).
func ParseSeason(value string) (Season, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return Season{}, fmt.Errorf("empty season")
	}
	parts := strings.FieldsFunc(value, func(r rune) bool { return r == ':' || r == ' ' || r == '/' })
	var season Season
	for _, part := range parts {
		if year, err := strconv.Atoi(part); err == nil {
			season.Year = year
			continue
		}
		switch name := SeasonName(part); name {
		case Winter, Spring, Summer, Fall, AnySeason:
			season.Name = name
		default:
			return Season{}, fmt.Errorf("unknown season %q in %q", part, value)
		}
	}
	if season.Year <= 0 {
		return Season{}, fmt.Errorf("season %q has no year", value)
	}
	if season.Name == "" {
		season.Name = AnySeason
	}
	return season, nil
}
