// Package lookup resolves free-text anime and manga titles to a canonical
// MyAnimeList identity.
//
// The Engine normalizes the requested names, consults the result cache, then
// walks an ordered queue of search backends. Each backend's candidates are
// scored against every requested name using fuzzy similarity, acronym
// matching, and tag signatures; the best candidate that clears the
// acceptance floor and the season filters wins. Ambiguous result lists mark a
// conflict, which appends the fallback queue once. Positive results are cached
// for a week under every requested name; exhausted lookups are cached as
// negative for a day.
package lookup
