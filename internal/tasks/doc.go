// Package tasks builds the in-memory catalog from the configured playlist sources.
//
// # Loading
//
// [CatalogLoader.Load] fetches every [services.Source] concurrently with an
// errgroup. A failing source is logged and recorded in the [LoadResult]; the
// items of the other sources are still used. The merged catalog keeps source
// order and drops duplicate item ids, first occurrence wins.
//
// # Progress Reporting
//
// Progress is reported on an optional channel with non-blocking sends, so a
// slow or absent reader never stalls a load.
//
// # Snapshots
//
// The optional [CatalogCache] receives each successfully loaded catalog so
// the CLI can list the last known catalog without network access.
// Snapshot errors are logged and do not fail the load.
package tasks
