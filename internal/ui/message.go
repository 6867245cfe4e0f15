package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/karaoke/internal/queue"
	"github.com/desertthunder/karaoke/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgPlayed MsgKind = iota
	MsgCatalogLoaded
	MsgAutoplay
	MsgRefreshTick
)

type playedData struct {
	entry *queue.Entry
	err   error
}

type catalogData struct {
	result *tasks.LoadResult
	err    error
}

// playedMsg is the constructor for [MsgPlayed]
func playedMsg(entry *queue.Entry, err error) Msg {
	return Msg{kind: MsgPlayed, data: playedData{entry, err}}
}

// catalogLoadedMsg is the constructor for [MsgCatalogLoaded]
func catalogLoadedMsg(result *tasks.LoadResult, err error) Msg {
	return Msg{kind: MsgCatalogLoaded, data: catalogData{result, err}}
}

// autoplayMsg is the constructor for [MsgAutoplay]; seq identifies the play that scheduled it.
func autoplayMsg(seq int) Msg {
	return Msg{kind: MsgAutoplay, data: seq}
}

// refreshTickMsg is the constructor for [MsgRefreshTick]
func refreshTickMsg() Msg {
	return Msg{kind: MsgRefreshTick}
}
