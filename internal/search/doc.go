// Package search defines the contract between the lookup engine and the
// metadata services it queries, plus the HTTP plumbing those services share.
//
// A Backend turns a title query into Candidates. Candidates expose their
// alternative titles, airing seasons and a lazily resolved MyAnimeList id so
// the engine never needs to know the wire shape of any one service. The
// Fetcher retries HTTP 429 responses until the caller's context ends, waiting
// for Retry-After when the service sends one.
//
// Concrete backends live in subpackages (shikimori, anilist, kitsu, mal,
// websearch).
package search
