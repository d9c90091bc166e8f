package buffer

import (
	"bytes"
	"fmt"
)

// EditKind tags the variant held by an Edit.
type EditKind uint8

const (
	// EditInsert inserts New at Offset.
	EditInsert EditKind = iota + 1
	// EditDelete removes Old from Offset.
	EditDelete
	// EditReplace overwrites Old at Offset with New (same length).
	EditReplace
)

// String returns the name of the edit kind.
func (k EditKind) String() string {
	switch k {
	case EditInsert:
		return "insert"
	case EditDelete:
		return "delete"
	case EditReplace:
		return "replace"
	default:
		return "unknown"
	}
}

// Edit is a reversible description of one buffer mutation.
// It carries everything needed to build its inverse without reading the
// buffer again.
type Edit struct {
	Kind   EditKind
	Offset int
	Old    []byte // bytes removed or overwritten
	New    []byte // bytes inserted or written
}

// NewInsert creates an Edit that inserts data at offset.
func NewInsert(offset int, data []byte) Edit {
	return Edit{Kind: EditInsert, Offset: offset, New: cloneBytes(data)}
}

// NewDelete creates an Edit that removes removed from offset.
func NewDelete(offset int, removed []byte) Edit {
	return Edit{Kind: EditDelete, Offset: offset, Old: cloneBytes(removed)}
}

// NewReplace creates an Edit that overwrites oldData with newData at offset.
// Both slices must have the same length.
func NewReplace(offset int, oldData, newData []byte) Edit {
	return Edit{Kind: EditReplace, Offset: offset, Old: cloneBytes(oldData), New: cloneBytes(newData)}
}

// Invert returns the edit that undoes e.
func (e Edit) Invert() Edit {
	switch e.Kind {
	case EditInsert:
		return Edit{Kind: EditDelete, Offset: e.Offset, Old: e.New}
	case EditDelete:
		return Edit{Kind: EditInsert, Offset: e.Offset, New: e.Old}
	case EditReplace:
		return Edit{Kind: EditReplace, Offset: e.Offset, Old: e.New, New: e.Old}
	default:
		return e
	}
}

// Delta returns the change in buffer length caused by this edit.
func (e Edit) Delta() int {
	return len(e.New) - len(e.Old)
}

// Clone returns a deep copy of e.
func (e Edit) Clone() Edit {
	e.Old = cloneBytes(e.Old)
	e.New = cloneBytes(e.New)
	return e
}

// Equal reports whether two edits describe the same mutation.
func (e Edit) Equal(other Edit) bool {
	return e.Kind == other.Kind &&
		e.Offset == other.Offset &&
		bytes.Equal(e.Old, other.Old) &&
		bytes.Equal(e.New, other.New)
}

// String returns a human-readable representation of the edit.
func (e Edit) String() string {
	switch e.Kind {
	case EditInsert:
		return fmt.Sprintf("Insert(%d, % x)", e.Offset, e.New)
	case EditDelete:
		return fmt.Sprintf("Delete(%d, % x)", e.Offset, e.Old)
	case EditReplace:
		return fmt.Sprintf("Replace(%d, % x -> % x)", e.Offset, e.Old, e.New)
	default:
		return "Edit(?)"
	}
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
