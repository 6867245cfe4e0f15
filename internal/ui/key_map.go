package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	play     key.Binding
	next     key.Binding
	youtube  key.Binding
	spotify  key.Binding
	shuffle  key.Binding
	moveUp   key.Binding
	moveDown key.Binding
	front    key.Binding
	refresh  key.Binding
	adder    key.Binding
	retry    key.Binding
	quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		play:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "play selected")),
		next:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next")),
		youtube:  key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "next youtube")),
		spotify:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "next spotify")),
		shuffle:  key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "shuffle")),
		moveUp:   key.NewBinding(key.WithKeys("K"), key.WithHelp("K", "move up")),
		moveDown: key.NewBinding(key.WithKeys("J"), key.WithHelp("J", "move down")),
		front:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "to front")),
		refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		adder:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "added by")),
		retry:    key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "retry")),
		quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.play, k.next, k.youtube, k.spotify, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.play, k.next, k.youtube, k.spotify},
		{k.shuffle, k.moveUp, k.moveDown, k.front},
		{k.refresh, k.adder, k.retry, k.quit},
	}
}
