// Package counts persists how many times each catalog item has been played.
//
// The store is a single JSON object mapping item ids to counts. Every write
// goes to a temporary file in the same directory which is synced and then
// renamed over the target, so a reader never observes a partial file. The
// in-memory view only changes after the rename succeeds.
package counts
