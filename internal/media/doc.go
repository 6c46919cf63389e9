// Package media defines the value types shared by the lookup engine, its
// search backends and the CLI: media types, airing seasons, external
// identifiers and the lookup request itself.
//
// It also maps well-known catalogue URLs (MyAnimeList, Shikimori, AniDB, ANN
// and friends) straight to an Identity when a scraped page links to one, so
// callers can skip fuzzy matching entirely.
package media
