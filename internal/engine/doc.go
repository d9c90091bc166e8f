// Package engine provides the editing session at the heart of hexstorm.
//
// A Session combines a byte buffer, its undo/redo history, an optional
// substitution table and pattern search into one object. Callers never touch
// the buffer and history separately: every edit made through a Session is
// recorded so it can be undone.
//
// # Sub-packages
//
//   - buffer: the editable byte sequence and the Edit type
//   - history: undo/redo stacks of applied edits
//
// # Basic Usage
//
//	s, err := engine.NewFromReader(f, engine.WithName(path))
//	if err != nil {
//	    return err
//	}
//
//	s.ReplaceByte(0x10, 0x41)
//	s.IncrementByte(0x11, -1)
//	s.Undo() // restores 0x11
//
// Group makes several edits one undo unit, and reverts them all if any
// fails:
//
//	err := s.Group("fill", func() error { ... })
//
// # Substitution
//
// When a table is attached, Substitute resolves the longest key that matches
// the bytes at an offset:
//
//	text, n, ok := s.Substitute(off)
//
// # Search
//
// Find compiles an expression such as `AB\x00\xff` and searches for it:
//
//	off, err := s.Find(`\x89PNG`, 0, engine.Forward)
//
// # Thread Safety
//
// A Session has a single owner. It does no locking and must not be used from
// more than one goroutine at a time.
package engine
