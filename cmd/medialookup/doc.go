// Command medialookup resolves anime and manga titles to canonical catalogue
// identities from the command line.
//
// Subcommands cover single and batch lookups, normalizer diagnostics, URL
// identity extraction, result cache administration, backend listing, and
// configuration management. Every command accepts --json for machine-readable
// output.
package main
