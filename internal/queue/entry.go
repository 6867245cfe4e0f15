package queue

import (
	"fmt"

	"github.com/desertthunder/karaoke/internal/models"
	"github.com/desertthunder/karaoke/internal/shared"
)

// State is the lifecycle position of a queue [Entry].
type State int

const (
	Pending State = iota
	Selected
	Dispatched
	Counted
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Selected:
		return "selected"
	case Dispatched:
		return "dispatched"
	case Counted:
		return "counted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Entry is one queued reference to a catalog item.
type Entry struct {
	Item  models.Item
	State State
	// Count is the play count recorded when the entry reached [Counted].
	Count int
}

// NewEntry returns a pending entry for item.
func NewEntry(item models.Item) *Entry {
	return &Entry{Item: item, State: Pending}
}

// Select moves the entry from Pending to Selected.
func (e *Entry) Select() error { return e.advance(Pending, Selected) }

// Dispatch moves the entry from Selected to Dispatched.
func (e *Entry) Dispatch() error { return e.advance(Selected, Dispatched) }

// MarkCounted moves the entry from Dispatched to Counted and records count.
func (e *Entry) MarkCounted(count int) error {
	if err := e.advance(Dispatched, Counted); err != nil {
		return err
	}
	e.Count = count
	return nil
}

func (e *Entry) advance(from, to State) error {
	if e.State != from {
		return fmt.Errorf("%w: %s -> %s for %s", shared.ErrInvalidTransition, e.State, to, e.Item.ID)
	}
	e.State = to
	return nil
}
