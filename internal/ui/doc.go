// Package ui implements the interactive next-up queue using bubbletea's Elm architecture.
//
// The (view) [Model] shows the queued entries of a [playback.Session] with their play
// counts. Keys play the selected entry or the next least-played one (optionally limited
// to one platform), reorder or shuffle the queue, retry a failed dispatch and refresh the
// catalog through a [tasks.CatalogLoader].
//
// Two timers drive the model without blocking Update: an autoplay tick scheduled from the
// playing item's duration, and a catalog refresh tick. Each autoplay tick carries a
// sequence number so a tick from an earlier item is ignored once something else plays.
package ui
