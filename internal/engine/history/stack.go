package history

import (
	"errors"
	"fmt"
	"time"

	"github.com/dshills/hexstorm/internal/engine/buffer"
)

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// Applier is the buffer surface History needs to undo and redo actions.
// *buffer.Buffer satisfies it.
type Applier interface {
	Apply(edit buffer.Edit) error
}

// entry is one undo unit: a single action or a closed group.
type entry struct {
	actions   []Action
	name      string
	timestamp time.Time
}

// History manages undo/redo state for a buffer.
type History struct {
	undoStack []*entry
	redoStack []*entry

	// maxEntries bounds the undo stack; <= 0 means unbounded.
	maxEntries int

	// Grouping state
	grouping     bool
	groupName    string
	groupActions []Action
}

// NewHistory creates a new history manager.
// maxEntries <= 0 keeps every action.
func NewHistory(maxEntries int) *History {
	return &History{maxEntries: maxEntries}
}

// Record pushes an action that has already been applied to the buffer.
// Clears the redo stack. While a group is open the action joins the group.
// History keeps its own copy of the action's bytes.
func (h *History) Record(action Action) {
	action = action.Clone()
	h.redoStack = nil

	if h.grouping {
		h.groupActions = append(h.groupActions, action)
		return
	}

	h.undoStack = append(h.undoStack, &entry{
		actions:   []Action{action},
		timestamp: time.Now(),
	})
	h.trim()
}

// Undo reverts the newest undo unit and moves it to the redo stack.
// It returns copies of the unit's actions in the order they were recorded.
// An open group is closed first. If the buffer rejects an inverse edit, the
// actions already reverted are reapplied and the unit stays on the undo
// stack.
func (h *History) Undo(buf Applier) ([]Action, error) {
	h.EndGroup()
	if len(h.undoStack) == 0 {
		return nil, ErrNothingToUndo
	}

	e := h.undoStack[len(h.undoStack)-1]
	if err := revert(buf, e.actions); err != nil {
		return nil, err
	}

	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.redoStack = append(h.redoStack, e)
	return cloneActions(e.actions), nil
}

// Redo re-applies the most recently undone unit.
// If the buffer rejects an edit, the unit stays on the redo stack.
func (h *History) Redo(buf Applier) ([]Action, error) {
	h.EndGroup()
	if len(h.redoStack) == 0 {
		return nil, ErrNothingToRedo
	}

	e := h.redoStack[len(h.redoStack)-1]
	if err := reapply(buf, e.actions); err != nil {
		return nil, err
	}

	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.undoStack = append(h.undoStack, e)
	h.trim()
	return cloneActions(e.actions), nil
}

// BeginGroup starts an action group.
// Actions recorded while grouping are undone and redone as one unit.
// Nested calls are ignored.
func (h *History) BeginGroup(name string) {
	if h.grouping {
		return
	}
	h.grouping = true
	h.groupName = name
	h.groupActions = nil
}

// EndGroup closes the open group and pushes it as one undo unit.
// An empty group records nothing.
func (h *History) EndGroup() {
	if !h.grouping {
		return
	}
	h.grouping = false

	if len(h.groupActions) > 0 {
		h.undoStack = append(h.undoStack, &entry{
			actions:   h.groupActions,
			name:      h.groupName,
			timestamp: time.Now(),
		})
		h.trim()
	}
	h.groupActions = nil
	h.groupName = ""
}

// AbortGroup reverts every action recorded in the open group and discards
// them. The redo stack stays empty.
func (h *History) AbortGroup(buf Applier) error {
	if !h.grouping {
		return nil
	}
	actions := h.groupActions
	h.grouping = false
	h.groupActions = nil
	h.groupName = ""

	if err := revert(buf, actions); err != nil {
		return fmt.Errorf("abort group: %w", err)
	}
	return nil
}

// IsGrouping returns true if a group is open.
func (h *History) IsGrouping() bool {
	return h.grouping
}

// CanUndo returns true if undo is available.
func (h *History) CanUndo() bool {
	return len(h.undoStack) > 0
}

// CanRedo returns true if redo is available.
func (h *History) CanRedo() bool {
	return len(h.redoStack) > 0
}

// UndoCount returns the number of undo units available.
func (h *History) UndoCount() int {
	return len(h.undoStack)
}

// RedoCount returns the number of redo units available.
func (h *History) RedoCount() int {
	return len(h.redoStack)
}

// PeekUndo returns info about the next undo unit without removing it.
func (h *History) PeekUndo() (ActionInfo, bool) {
	if len(h.undoStack) == 0 {
		return ActionInfo{}, false
	}
	return infoFor(h.undoStack[len(h.undoStack)-1]), true
}

// PeekRedo returns info about the next redo unit without removing it.
func (h *History) PeekRedo() (ActionInfo, bool) {
	if len(h.redoStack) == 0 {
		return ActionInfo{}, false
	}
	return infoFor(h.redoStack[len(h.redoStack)-1]), true
}

// UndoInfo returns info about available undo units, oldest first.
func (h *History) UndoInfo() []ActionInfo {
	result := make([]ActionInfo, len(h.undoStack))
	for i, e := range h.undoStack {
		result[i] = infoFor(e)
	}
	return result
}

// Clear removes all undo/redo history and any open group.
func (h *History) Clear() {
	h.undoStack = nil
	h.redoStack = nil
	h.grouping = false
	h.groupActions = nil
	h.groupName = ""
}

// SetMaxEntries changes the maximum number of undo entries.
// If the current stack is larger, oldest entries are removed.
func (h *History) SetMaxEntries(max int) {
	h.maxEntries = max
	h.trim()
}

// MaxEntries returns the maximum number of undo entries (0 = unbounded).
func (h *History) MaxEntries() int {
	if h.maxEntries < 0 {
		return 0
	}
	return h.maxEntries
}

// trim drops the oldest undo entries beyond maxEntries.
func (h *History) trim() {
	if h.maxEntries <= 0 || len(h.undoStack) <= h.maxEntries {
		return
	}
	excess := len(h.undoStack) - h.maxEntries
	h.undoStack = h.undoStack[excess:]
}

// revert applies the inverses of actions, newest first. On failure the
// actions already reverted are applied again.
func revert(buf Applier, actions []Action) error {
	for i := len(actions) - 1; i >= 0; i-- {
		if err := buf.Apply(actions[i].Invert()); err != nil {
			for _, a := range actions[i+1:] {
				buf.Apply(a)
			}
			return err
		}
	}
	return nil
}

// reapply applies actions oldest first. On failure the actions already
// applied are reverted.
func reapply(buf Applier, actions []Action) error {
	for i, a := range actions {
		if err := buf.Apply(a); err != nil {
			for j := i - 1; j >= 0; j-- {
				buf.Apply(actions[j].Invert())
			}
			return err
		}
	}
	return nil
}

func cloneActions(actions []Action) []Action {
	out := make([]Action, len(actions))
	for i, a := range actions {
		out[i] = a.Clone()
	}
	return out
}
