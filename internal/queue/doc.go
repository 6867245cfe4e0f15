// Package queue picks what plays next.
//
// [Selector] restricts the catalog to its least-played tier and draws
// uniformly from it. [Queue] holds the advisory "next up" ordering that the
// user can shuffle and reorder, and [Entry] tracks one pick through
// Pending, Selected, Dispatched and Counted.
package queue
