package queue

import (
	"fmt"

	"github.com/desertthunder/karaoke/internal/models"
	"github.com/desertthunder/karaoke/internal/shared"
)

// Queue is the ordered "next up" list. Its order is advisory; callers
// re-validate the head against the current tier before playing it.
type Queue struct {
	entries []*Entry
}

// New returns an empty queue.
func New() *Queue {
	return &Queue{}
}

// Len returns the number of queued entries.
func (q *Queue) Len() int { return len(q.entries) }

// Entries returns a copy of the queued entries in order.
func (q *Queue) Entries() []*Entry {
	out := make([]*Entry, len(q.entries))
	copy(out, q.entries)
	return out
}

// Items returns the queued items in order.
func (q *Queue) Items() []models.Item {
	out := make([]models.Item, len(q.entries))
	for i, e := range q.entries {
		out[i] = e.Item
	}
	return out
}

// Peek returns up to n entries from the front without removing them.
func (q *Queue) Peek(n int) []*Entry {
	if n < 0 || n > len(q.entries) {
		n = len(q.entries)
	}
	out := make([]*Entry, n)
	copy(out, q.entries[:n])
	return out
}

// Contains reports whether an entry for id is queued.
func (q *Queue) Contains(id string) bool {
	return q.indexOf(id) >= 0
}

// Push appends a pending entry for item unless it is already queued.
func (q *Queue) Push(item models.Item) bool {
	if q.Contains(item.ID) {
		return false
	}
	q.entries = append(q.entries, NewEntry(item))
	return true
}

// Fill appends items in the given order, skipping ones already queued.
// It returns the number appended.
func (q *Queue) Fill(items []models.Item) int {
	added := 0
	for _, it := range items {
		if q.Push(it) {
			added++
		}
	}
	return added
}

// Pop removes and returns the entry at i.
func (q *Queue) Pop(i int) (*Entry, error) {
	if err := q.checkIndex(i); err != nil {
		return nil, err
	}
	e := q.entries[i]
	q.entries = append(q.entries[:i], q.entries[i+1:]...)
	return e, nil
}

// Remove drops the entry for id and reports whether one was queued.
func (q *Queue) Remove(id string) bool {
	i := q.indexOf(id)
	if i < 0 {
		return false
	}
	q.entries = append(q.entries[:i], q.entries[i+1:]...)
	return true
}

// Move relocates the entry at from so it ends up at index to.
//
// Out of range indices fail with [shared.ErrIndexOutOfRange] and leave the queue unchanged.
func (q *Queue) Move(from, to int) error {
	if err := q.checkIndex(from); err != nil {
		return err
	}
	if err := q.checkIndex(to); err != nil {
		return err
	}
	if from == to {
		return nil
	}

	e := q.entries[from]
	if from < to {
		copy(q.entries[from:to], q.entries[from+1:to+1])
	} else {
		copy(q.entries[to+1:from+1], q.entries[to:from])
	}
	q.entries[to] = e
	return nil
}

// MoveToFront moves the entry at i to the head of the queue.
func (q *Queue) MoveToFront(i int) error {
	return q.Move(i, 0)
}

// Prune drops every entry for which keep returns false and returns how many were dropped.
func (q *Queue) Prune(keep func(*Entry) bool) int {
	kept := q.entries[:0]
	for _, e := range q.entries {
		if keep(e) {
			kept = append(kept, e)
		}
	}
	dropped := len(q.entries) - len(kept)
	for i := len(kept); i < len(q.entries); i++ {
		q.entries[i] = nil
	}
	q.entries = kept
	return dropped
}

// Sync reconciles the queue with a freshly loaded catalog: entries whose
// item disappeared are dropped and items that were not in previous are appended.
func (q *Queue) Sync(previous, current models.Catalog) (added, removed int) {
	index := current.Index()
	removed = q.Prune(func(e *Entry) bool {
		_, ok := index[e.Item.ID]
		return ok
	})

	before := previous.Index()
	for _, it := range current {
		if _, seen := before[it.ID]; seen {
			continue
		}
		if q.Push(it) {
			added++
		}
	}
	return added, removed
}

func (q *Queue) indexOf(id string) int {
	for i, e := range q.entries {
		if e.Item.ID == id {
			return i
		}
	}
	return -1
}

func (q *Queue) checkIndex(i int) error {
	if i < 0 || i >= len(q.entries) {
		return fmt.Errorf("%w: %d not in [0, %d)", shared.ErrIndexOutOfRange, i, len(q.entries))
	}
	return nil
}
