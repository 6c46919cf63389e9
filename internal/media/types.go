package media

import (
	"fmt"
	"strings"
)

// Type distinguishes anime from manga entries.
type Type string

const (
	TypeAnime Type = "anime"
	TypeManga Type = "manga"
)

// ParseType accepts "anime" or "manga" (case-insensitive); empty means anime.
func ParseType(value string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", string(TypeAnime):
		return TypeAnime, nil
	case string(TypeManga):
		return TypeManga, nil
	default:
		return "", fmt.Errorf("unknown media type %q (use anime or manga)", value)
	}
}

// Service names an external metadata catalogue.
type Service string

const (
	ServiceMAL          Service = "mal"
	ServiceAniDB        Service = "anidb"
	ServiceWorldArt     Service = "worldart"
	ServiceKitsu        Service = "kitsu"
	ServiceAniList      Service = "anilist"
	ServiceANN          Service = "ann"
	ServiceAllCinema    Service = "allcinema"
	ServiceFansubs      Service = "fansubs"
	ServiceCrunchyroll  Service = "crunchyroll"
	ServiceKinopoisk    Service = "kp"
	ServiceIMDb         Service = "imdb"
	ServiceMangaUpdates Service = "mangaupdates"
	ServiceTheTVDB      Service = "thetvdb"
	ServiceTrakt        Service = "trakt"
	ServiceMyDramaList  Service = "mydramalist"
	ServiceAnime365     Service = "anime365"
)

// ExternalID identifies an entry in one external catalogue.
type ExternalID struct {
	Service Service `json:"service"`
	ID      string  `json:"id"`
}

func (id ExternalID) String() string {
	return string(id.Service) + ":" + id.ID
}

// Identity is the resolved canonical identity of a title.
type Identity struct {
	ID   ExternalID `json:"id"`
	Type Type       `json:"type"`
}

// Source carries auxiliary per-item data supplied by a scraper. The engine
// only logs it.
type Source struct {
	URL string `json:"url,omitempty"`
	HQ  bool   `json:"hq,omitempty"`
}

// Request is one lookup call: candidate titles plus optional constraints.
type Request struct {
	// Names are candidate titles, ideally romaji before translated titles.
	Names       []string `json:"names"`
	MediaType   Type     `json:"media_type,omitempty"`
	StartSeason *Season  `json:"start_season,omitempty"`
	EndSeason   *Season  `json:"end_season,omitempty"`
	// SomeSeason constrains either the start or the end season.
	SomeSeason *Season `json:"some_season,omitempty"`
	// Prefer moves a single backend to the front of the default order.
	Prefer string `json:"prefer,omitempty"`
	// Queue replaces the backend order entirely.
	Queue  []string `json:"queue,omitempty"`
	Source Source   `json:"source,omitzero"`
}

// NonEmptyNames returns the names that are not blank.
func (r Request) NonEmptyNames() []string {
	out := make([]string, 0, len(r.Names))
	for _, name := range r.Names {
		if strings.TrimSpace(name) != "" {
			out = append(out, name)
		}
	}
	return out
}

// Type returns the requested media type, defaulting to anime.
func (r Request) Type() Type {
	if r.MediaType == "" {
		return TypeAnime
	}
	return r.MediaType
}
