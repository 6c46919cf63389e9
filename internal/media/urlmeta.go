package media

import (
	"regexp"
	"strings"
)

type urlRule struct {
	pattern *regexp.Regexp
	service Service
	kind    Type
}

const urlPrefix = `^(?i)(?:https?:)?//(?:www\.)?`

var urlRules = []urlRule{
	{regexp.MustCompile(urlPrefix + `animenewsnetwork\.com/encyclopedia/anime\.php\?id=(\d+)`), ServiceANN, TypeAnime},
	{regexp.MustCompile(urlPrefix + `animenewsnetwork\.com/encyclopedia/manga\.php\?id=(\d+)`), ServiceANN, TypeManga},
	{regexp.MustCompile(urlPrefix + `anidb\.(?:net|info)/(?:perl-bin/animedb\.pl\?show=anime&aid=|anime/)(\d+)`), ServiceAniDB, TypeAnime},
	{regexp.MustCompile(urlPrefix + `myanimelist\.net/anime/(\d+)`), ServiceMAL, TypeAnime},
	{regexp.MustCompile(urlPrefix + `myanimelist\.net/manga/(\d+)`), ServiceMAL, TypeManga},
	{regexp.MustCompile(urlPrefix + `shikimori\.(?:one|org|me)/animes/[a-z]*(\d+)`), ServiceMAL, TypeAnime},
	{regexp.MustCompile(urlPrefix + `shikimori\.(?:one|org|me)/(?:mangas|ranobe)/[a-z]*(\d+)`), ServiceMAL, TypeManga},
	{regexp.MustCompile(urlPrefix + `allcinema\.net/cinema/(\d+)`), ServiceAllCinema, TypeAnime},
	{regexp.MustCompile(urlPrefix + `allcinema\.net/prog/show_c\.php\?num_c=(\d+)`), ServiceAllCinema, TypeAnime},
	{regexp.MustCompile(urlPrefix + `fansubs\.ru/base\.php\?id=(\d+)`), ServiceFansubs, TypeAnime},
	{regexp.MustCompile(urlPrefix + `world-art\.ru/animation/animation\.php\?id=(\d+)`), ServiceWorldArt, TypeAnime},
	{regexp.MustCompile(urlPrefix + `world-art\.ru/animation/manga\.php\?id=(\d+)`), ServiceWorldArt, TypeManga},
	{regexp.MustCompile(urlPrefix + `kinopoisk\.ru/(?:film|series)/(\d+)`), ServiceKinopoisk, TypeAnime},
	{regexp.MustCompile(urlPrefix + `mangaupdates\.com/series\.html\?id=(\d+)`), ServiceMangaUpdates, TypeManga},
	{regexp.MustCompile(urlPrefix + `thetvdb\.com/\?tab=series&id=(\d+)`), ServiceTheTVDB, TypeAnime},
	{regexp.MustCompile(urlPrefix + `imdb\.com/title/tt(\d+)`), ServiceIMDb, TypeAnime},
	{regexp.MustCompile(urlPrefix + `(?:smotret-?anime|anime365|hentai365)\.(?:ru|online)/catalog/(?:[a-z0-9-]*-)?(\d+)(?:/|$|\?)`), ServiceAnime365, TypeAnime},
	{regexp.MustCompile(urlPrefix + `crunchyroll\.com/(?:[a-z]{2}(?:-[a-z]{2})?/)?series/([a-z0-9]+)`), ServiceCrunchyroll, TypeAnime},
	{regexp.MustCompile(urlPrefix + `trakt\.tv/(?:shows|movies)/([a-z0-9-]+)`), ServiceTrakt, TypeAnime},
	{regexp.MustCompile(urlPrefix + `mydramalist\.com/(\d+)`), ServiceMyDramaList, TypeAnime},
	{regexp.MustCompile(urlPrefix + `kitsu\.(?:io|app)/(?:anime|manga)/(\d+)`), ServiceKitsu, ""},
	{regexp.MustCompile(urlPrefix + `anilist\.co/(?:anime|manga)/(\d+)`), ServiceAniList, ""},
}

// IdentityFromURL maps a catalogue URL that embeds an identifier to an
// Identity. Shikimori URLs resolve to MyAnimeList ids since Shikimori reuses
// them. Kitsu and AniList rules take the media type from the path.
func IdentityFromURL(rawURL string) (Identity, bool) {
	rawURL = strings.TrimSpace(rawURL)
	for _, rule := range urlRules {
		match := rule.pattern.FindStringSubmatch(rawURL)
		if match == nil {
			continue
		}
		kind := rule.kind
		if kind == "" {
			kind = TypeAnime
			if strings.Contains(strings.ToLower(rawURL), "/manga/") {
				kind = TypeManga
			}
		}
		return Identity{ID: ExternalID{Service: rule.service, ID: match[1]}, Type: kind}, true
	}
	return Identity{}, false
}
