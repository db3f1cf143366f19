package actions

import (
	"time"

	"cardboard/domain/core/entities"
	"cardboard/pkg/clock"
)

// History holds the two halves of a single edit timeline split at "now":
// the undo stack (most recent last, bounded) and the redo stack. Undo moves
// the timeline pointer backward, redo forward; any new forward edit
// truncates everything after "now" by clearing redo.
//
// History is owned by Actions and shares its single-writer discipline;
// there is no internal locking.
type History struct {
	limit  int
	window time.Duration
	clock  clock.Clock

	entries []Record
	redo    []Record
}

// NewHistory creates an empty history with the given bounds
func NewHistory(limit int, window time.Duration, clk clock.Clock) *History {
	if clk == nil {
		clk = clock.System()
	}
	return &History{
		limit:  limit,
		window: window,
		clock:  clk,
	}
}

// Push appends a record to the undo stack, evicting the oldest entry once
// the cap is reached. With resetRedo, the redo stack is cleared: a new
// forward edit invalidates every queued redo. Redo replays pass
// resetRedo=false so one replayed step does not destroy its siblings.
func (h *History) Push(rec Record, resetRedo bool) {
	if len(h.entries) >= h.limit {
		h.entries = h.entries[1:]
	}
	h.entries = append(h.entries, rec)

	if resetRedo {
		h.redo = h.redo[:0]
	}
}

// PushCardUpdate records a card's pre-mutation state, unless the in-flight
// edit continues the gesture the top record already covers: same entity id,
// last mutated within the merge window of now. In that case the existing
// record, holding the state before the gesture began, stays the undo
// target. The card's UpdatedAt is the sole coalescing signal.
func (h *History) PushCardUpdate(before *entities.Card, resetRedo bool) {
	if top, ok := h.peek(); ok {
		if top.entityID().Equals(before.ID) &&
			h.clock.Now().Sub(before.UpdatedAt.Time()) <= h.window {
			if resetRedo {
				h.redo = h.redo[:0]
			}
			return
		}
	}
	h.Push(UpdatedCard{Card: before}, resetRedo)
}

// PopUndo removes and returns the most recent undo record
func (h *History) PopUndo() (Record, bool) {
	if len(h.entries) == 0 {
		return nil, false
	}
	rec := h.entries[len(h.entries)-1]
	h.entries = h.entries[:len(h.entries)-1]
	return rec, true
}

// PushRedo appends a record to the redo stack
func (h *History) PushRedo(rec Record) {
	h.redo = append(h.redo, rec)
}

// PopRedo removes and returns the most recent redo record
func (h *History) PopRedo() (Record, bool) {
	if len(h.redo) == 0 {
		return nil, false
	}
	rec := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	return rec, true
}

// Reset clears both stacks. Called whenever a new document is loaded: undo
// context from a previous document is meaningless for the new one.
func (h *History) Reset() {
	h.entries = h.entries[:0]
	h.redo = h.redo[:0]
}

// Len returns the number of undoable steps
func (h *History) Len() int {
	return len(h.entries)
}

// RedoLen returns the number of redoable steps
func (h *History) RedoLen() int {
	return len(h.redo)
}

func (h *History) peek() (Record, bool) {
	if len(h.entries) == 0 {
		return nil, false
	}
	return h.entries[len(h.entries)-1], true
}
