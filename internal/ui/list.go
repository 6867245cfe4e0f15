package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/karaoke/internal/queue"
	"github.com/desertthunder/karaoke/internal/shared"
)

var _ list.Item = queueItem{}

// queueItem wraps a queued [queue.Entry] to implement [list.Item].
type queueItem struct {
	entry     *queue.Entry
	count     int
	showAdder bool
}

func (i queueItem) FilterValue() string { return i.entry.Item.DisplayName() }

func (i queueItem) Title() string {
	tag := styles.Platform(i.entry.Item.Platform).Render(i.entry.Item.Platform.Label())
	return fmt.Sprintf("%s %s", tag, i.entry.Item.DisplayName())
}

func (i queueItem) Description() string {
	parts := []string{fmt.Sprintf("%d plays", i.count)}
	if i.entry.Item.Duration > 0 {
		parts = append(parts, shared.FormatDuration(i.entry.Item.Duration))
	}
	if i.showAdder && i.entry.Item.AddedBy != "" {
		parts = append(parts, "added by "+i.entry.Item.AddedBy)
	}
	return strings.Join(parts, " • ")
}
