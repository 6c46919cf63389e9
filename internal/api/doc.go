// Package api wires configuration into ready-to-use lookup components and
// defines the transport-friendly result types the CLI emits.
//
// # Wiring
//
// OpenStore selects the result cache store from the [cache] section.
// NewRegistry builds every built-in search backend over one shared HTTP
// fetcher. OpenEngine combines both into a lookup.Engine and returns a closer
// for the store.
//
// # Results
//
// LookupResult is the JSON shape of one resolved request. Batch output emits
// one LookupResult per line, in input order, with camelCase keys.
package api
