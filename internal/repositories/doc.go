// Package repositories implements SQLite persistence for spotlens.
//
// Key Implementations:
//   - [GenreRepository] : the persistent tier of the artist genre cache, one row per artist
//   - [RunRepository] : the ledger of written reports with their content fingerprints
//
// Sequence numbers provide stable, human-readable ordering of runs (run #1, #2, ...) independent of UUIDs and timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
