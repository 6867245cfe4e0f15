// Package models defines the domain entities shared by the karaoke shuffler.
//
//   - [Item] : a playable track or video from one of the source playlists
//   - [Platform] : the service an item is played on
//   - [PlayCountEntry] : how many times an item has been played
//   - [Catalog] : the de-duplicated set of items from the most recent load
//   - [Play] : a counted playback recorded in the history table
//
// Items are immutable after load. A catalog is rebuilt from scratch on every
// load and never merged with an older one.
package models
