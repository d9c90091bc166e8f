// Package history provides undo/redo for the byte buffer.
//
// Every buffer mutator returns a buffer.Edit describing what it changed. The
// caller records that edit here right away:
//
//	edit, err := buf.ReplaceAt(off, 0x41)
//	if err != nil {
//	    return err
//	}
//	hist.Record(edit)
//
// # Actions
//
// An Action is one of three closed variants: insert, delete or replace. Each
// carries the bytes it added or removed, so its inverse can be built without
// reading the buffer.
//
// # Stacks
//
// History keeps two stacks. Undo pops the newest action, applies its inverse
// and pushes the action onto the redo stack. Redo does the reverse. Recording
// a new action always empties the redo stack.
//
//	hist.Undo(buf) // reverts the replace
//	hist.Redo(buf) // applies it again
//
// # Groups
//
// Actions recorded between BeginGroup and EndGroup form one undo unit:
//
//	hist.BeginGroup("Insert 3 bytes")
//	// ... three InsertAt calls, each recorded ...
//	hist.EndGroup()
//	hist.Undo(buf) // removes all three bytes
//
// AbortGroup reverts a group that cannot be completed.
//
// History copies every recorded action, so callers may keep and modify the
// edits they hold without affecting undo.
//
// A History is owned by one editing session and is not safe for concurrent
// use.
package history
