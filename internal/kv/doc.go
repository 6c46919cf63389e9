// Package kv provides the string-keyed byte stores that back the lookup
// result cache.
//
// Three implementations share the Store contract: an in-process map, a JSON
// file guarded by an advisory lock, and a SQLite database with embedded
// migrations. Values are opaque to the store; expiry is encoded by callers.
package kv
