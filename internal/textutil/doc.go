// Package textutil provides the string similarity primitives used to compare
// media titles.
//
// Ratio is a 0-100 score derived from the insert/delete edit distance and is
// what title scoring thresholds are expressed in. Distance is the plain
// Levenshtein distance, used where a small absolute number of edits matters
// (for example comparing short acronyms). Both operate on runes so Cyrillic
// and Japanese titles are measured per character.
package textutil
