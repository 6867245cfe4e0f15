// Package repositories implements SQLite persistence for play history and the catalog snapshot.
//
// Key Implementations:
//   - [PlayRepository] : append-only history of counted playbacks
//   - [ItemRepository] : the most recently loaded catalog, replaced wholesale on every load
//
// The play-count file stays the source of truth for selection. The database
// only records what happened so it can be listed and exported.
package repositories
