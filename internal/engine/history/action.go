package history

import (
	"fmt"
	"time"

	"github.com/dshills/hexstorm/internal/engine/buffer"
)

// Action is a recorded, invertible buffer mutation.
type Action = buffer.Edit

// Action kinds, re-exported for convenience.
const (
	Insert  = buffer.EditInsert
	Delete  = buffer.EditDelete
	Replace = buffer.EditReplace
)

// Describe returns a human-readable description of an action.
func Describe(a Action) string {
	switch a.Kind {
	case Insert:
		if len(a.New) == 1 {
			return fmt.Sprintf("Insert %02x at %#x", a.New[0], a.Offset)
		}
		return fmt.Sprintf("Insert %d bytes at %#x", len(a.New), a.Offset)
	case Delete:
		if len(a.Old) == 1 {
			return fmt.Sprintf("Delete %02x at %#x", a.Old[0], a.Offset)
		}
		return fmt.Sprintf("Delete %d bytes at %#x", len(a.Old), a.Offset)
	case Replace:
		if len(a.New) == 1 {
			return fmt.Sprintf("Replace %02x with %02x at %#x", a.Old[0], a.New[0], a.Offset)
		}
		return fmt.Sprintf("Replace %d bytes at %#x", len(a.New), a.Offset)
	default:
		return "Unknown edit"
	}
}

// ActionInfo provides read-only info about a recorded action.
// Used for displaying undo/redo history to users.
type ActionInfo struct {
	Description string    // Human-readable description
	Offset      int       // Where the action applies
	Timestamp   time.Time // When the action was recorded
	BytesDelta  int       // Positive for insertions, negative for deletions
	Count       int       // Number of actions in the unit
}

func infoFor(e *entry) ActionInfo {
	info := ActionInfo{
		Offset:    e.actions[0].Offset,
		Timestamp: e.timestamp,
		Count:     len(e.actions),
	}
	for _, a := range e.actions {
		info.BytesDelta += a.Delta()
	}

	switch {
	case len(e.actions) == 1:
		info.Description = Describe(e.actions[0])
	case e.name != "":
		info.Description = e.name
	default:
		info.Description = fmt.Sprintf("%d edits at %#x", len(e.actions), info.Offset)
	}
	return info
}
