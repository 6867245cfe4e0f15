// Package playback hands selected items to the operating system and drives
// the select, dispatch, count loop.
//
// A [Dispatcher] is the outward "please play this" call; its error result is
// the inward completion signal. [Session] owns the catalog, the "next up"
// queue and the play-count store, and only increments a count after a
// dispatch succeeded. A failed dispatch leaves the entry Selected so it can
// be retried with [Session.Retry] or discarded by picking another one.
package playback
