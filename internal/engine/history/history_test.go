package history

import (
	"bytes"
	"errors"
	"testing"

	"github.com/dshills/hexstorm/internal/engine/buffer"
)

// Helper to create a test buffer
func newTestBuffer(data ...byte) *buffer.Buffer {
	return buffer.NewBufferFromBytes(data)
}

// record runs a buffer mutation and records its edit.
func record(t *testing.T, h *History, edit Action, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("mutation failed: %v", err)
	}
	h.Record(edit)
}

type failingApplier struct{ err error }

func (f failingApplier) Apply(buffer.Edit) error { return f.err }

func TestHistoryUndoRestoresState(t *testing.T) {
	buf := newTestBuffer(0x10, 0x20, 0x30)
	h := NewHistory(0)
	start := buf.Bytes()

	e, err := buf.InsertAt(1, 0xaa, false)
	record(t, h, e, err)
	e, err = buf.DeleteAt(0)
	record(t, h, e, err)
	e, err = buf.ReplaceAt(2, 0xbb)
	record(t, h, e, err)
	e, err = buf.IncrementAt(0, -1)
	record(t, h, e, err)
	e, err = buf.InsertAt(buf.Len()-1, 0xcc, true)
	record(t, h, e, err)

	for i := 0; i < 5; i++ {
		if _, err := h.Undo(buf); err != nil {
			t.Fatalf("undo %d failed: %v", i, err)
		}
	}

	if !bytes.Equal(buf.Bytes(), start) {
		t.Errorf("got % x after undo, want % x", buf.Bytes(), start)
	}
	if buf.Len() != len(start) {
		t.Errorf("length %d, want %d", buf.Len(), len(start))
	}
}

func TestHistoryUndoRedo(t *testing.T) {
	buf := newTestBuffer(1, 2, 3)
	h := NewHistory(0)

	e, err := buf.DeleteAt(1)
	record(t, h, e, err)
	after := buf.Bytes()

	undone, err := h.Undo(buf)
	if err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	if len(undone) != 1 || !undone[0].Equal(e) {
		t.Errorf("undo returned %v, want %v", undone, e)
	}
	if !bytes.Equal(buf.Bytes(), []byte{1, 2, 3}) {
		t.Errorf("got % x after undo", buf.Bytes())
	}

	if _, err := h.Redo(buf); err != nil {
		t.Fatalf("Redo failed: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), after) {
		t.Errorf("got % x after redo, want % x", buf.Bytes(), after)
	}
	if h.UndoCount() != 1 || h.RedoCount() != 0 {
		t.Errorf("undo=%d redo=%d, want 1 and 0", h.UndoCount(), h.RedoCount())
	}
}

func TestHistoryEmptyStacks(t *testing.T) {
	buf := newTestBuffer()
	h := NewHistory(0)

	if _, err := h.Undo(buf); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("expected ErrNothingToUndo, got %v", err)
	}
	if _, err := h.Redo(buf); !errors.Is(err, ErrNothingToRedo) {
		t.Errorf("expected ErrNothingToRedo, got %v", err)
	}
	if h.CanUndo() || h.CanRedo() {
		t.Error("empty history should not offer undo or redo")
	}
}

func TestHistoryRecordClearsRedo(t *testing.T) {
	buf := newTestBuffer(1, 2)
	h := NewHistory(0)

	e, err := buf.ReplaceAt(0, 9)
	record(t, h, e, err)
	if _, err := h.Undo(buf); err != nil {
		t.Fatal(err)
	}
	if !h.CanRedo() {
		t.Fatal("expected redo after undo")
	}

	e, err = buf.ReplaceAt(1, 8)
	record(t, h, e, err)

	if h.CanRedo() {
		t.Error("new edit should discard redo history")
	}
	if _, err := h.Redo(buf); !errors.Is(err, ErrNothingToRedo) {
		t.Errorf("expected ErrNothingToRedo, got %v", err)
	}
}

func TestHistoryFailedApplyKeepsStacks(t *testing.T) {
	h := NewHistory(0)
	h.Record(buffer.NewInsert(0, []byte{1}))
	boom := errors.New("boom")

	if _, err := h.Undo(failingApplier{boom}); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if h.UndoCount() != 1 || h.RedoCount() != 0 {
		t.Errorf("undo=%d redo=%d after failed undo", h.UndoCount(), h.RedoCount())
	}

	buf := newTestBuffer(1)
	if _, err := h.Undo(buf); err != nil {
		t.Fatal(err)
	}
	if _, err := h.Redo(failingApplier{boom}); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if h.UndoCount() != 0 || h.RedoCount() != 1 {
		t.Errorf("undo=%d redo=%d after failed redo", h.UndoCount(), h.RedoCount())
	}
}

func TestHistoryMaxEntries(t *testing.T) {
	buf := newTestBuffer()
	h := NewHistory(3)

	for i := 0; i < 5; i++ {
		e, err := buf.InsertAt(buf.Len(), byte(i), false)
		record(t, h, e, err)
	}

	if h.UndoCount() != 3 {
		t.Fatalf("undo count %d, want 3", h.UndoCount())
	}
	for h.CanUndo() {
		if _, err := h.Undo(buf); err != nil {
			t.Fatal(err)
		}
	}
	// The two oldest inserts fell off the stack.
	if !bytes.Equal(buf.Bytes(), []byte{0, 1}) {
		t.Errorf("got % x, want 00 01", buf.Bytes())
	}

	h.SetMaxEntries(1)
	if h.MaxEntries() != 1 {
		t.Errorf("MaxEntries() = %d, want 1", h.MaxEntries())
	}
}

func TestHistoryPeekAndInfo(t *testing.T) {
	buf := newTestBuffer(0x41)
	h := NewHistory(0)

	if _, ok := h.PeekUndo(); ok {
		t.Error("PeekUndo on empty history should report false")
	}

	e, err := buf.ReplaceAt(0, 0x42)
	record(t, h, e, err)

	info, ok := h.PeekUndo()
	if !ok {
		t.Fatal("PeekUndo should report an entry")
	}
	if info.Description != "Replace 41 with 42 at 0x0" {
		t.Errorf("description %q", info.Description)
	}
	if info.Timestamp.IsZero() {
		t.Error("timestamp not set")
	}

	if _, err := h.Undo(buf); err != nil {
		t.Fatal(err)
	}
	if info, ok := h.PeekRedo(); !ok || info.Offset != 0 {
		t.Errorf("PeekRedo = %+v, %v", info, ok)
	}
	if len(h.UndoInfo()) != 0 {
		t.Error("UndoInfo should be empty after undo")
	}

	h.Clear()
	if h.CanRedo() {
		t.Error("Clear should drop redo entries")
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		action   Action
		expected string
	}{
		{buffer.NewInsert(16, []byte{0xff}), "Insert ff at 0x10"},
		{buffer.NewInsert(0, []byte{1, 2}), "Insert 2 bytes at 0x0"},
		{buffer.NewDelete(2, []byte{0x0a}), "Delete 0a at 0x2"},
		{buffer.NewDelete(2, []byte{1, 2, 3}), "Delete 3 bytes at 0x2"},
		{buffer.NewReplace(1, []byte{1, 2}, []byte{3, 4}), "Replace 2 bytes at 0x1"},
		{Action{}, "Unknown edit"},
	}

	for _, tt := range tests {
		if got := Describe(tt.action); got != tt.expected {
			t.Errorf("Describe(%v) = %q, want %q", tt.action, got, tt.expected)
		}
	}
}

func TestHistoryKeepsOwnCopy(t *testing.T) {
	buf := newTestBuffer(1, 2, 3)
	h := NewHistory(0)

	e, err := buf.DeleteAt(1)
	record(t, h, e, err)
	e.Old[0] = 0xee

	undone, err := h.Undo(buf)
	if err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), []byte{1, 2, 3}) {
		t.Fatalf("got % x after undo, want 01 02 03", buf.Bytes())
	}

	undone[0].Old[0] = 0xdd
	if _, err := h.Redo(buf); err != nil {
		t.Fatal(err)
	}
	if _, err := h.Undo(buf); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf.Bytes(), []byte{1, 2, 3}) {
		t.Errorf("got % x after second undo, want 01 02 03", buf.Bytes())
	}
}

func TestHistoryGroupUndoRedo(t *testing.T) {
	buf := newTestBuffer(0x10)
	h := NewHistory(0)

	h.BeginGroup("Insert 3 bytes")
	for i, b := range []byte{0xa, 0xb, 0xc} {
		e, err := buf.InsertAt(1+i, b, false)
		record(t, h, e, err)
	}
	if h.UndoCount() != 0 || !h.IsGrouping() {
		t.Fatalf("open group should not be on the stack yet")
	}
	h.EndGroup()

	if h.UndoCount() != 1 {
		t.Fatalf("UndoCount = %d, want 1", h.UndoCount())
	}
	info, _ := h.PeekUndo()
	if info.Description != "Insert 3 bytes" || info.Count != 3 || info.BytesDelta != 3 || info.Offset != 1 {
		t.Errorf("info = %+v", info)
	}

	undone, err := h.Undo(buf)
	if err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	if len(undone) != 3 || undone[0].Offset != 1 || undone[2].Offset != 3 {
		t.Errorf("undone = %v", undone)
	}
	if !bytes.Equal(buf.Bytes(), []byte{0x10}) {
		t.Errorf("got % x after undo", buf.Bytes())
	}

	if _, err := h.Redo(buf); err != nil {
		t.Fatalf("Redo failed: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), []byte{0x10, 0xa, 0xb, 0xc}) {
		t.Errorf("got % x after redo", buf.Bytes())
	}
}

func TestHistoryEmptyGroupRecordsNothing(t *testing.T) {
	h := NewHistory(0)
	h.BeginGroup("nothing")
	h.EndGroup()
	if h.CanUndo() {
		t.Error("empty group should not create an undo entry")
	}
}

func TestHistoryUndoClosesOpenGroup(t *testing.T) {
	buf := newTestBuffer(1, 2)
	h := NewHistory(0)

	h.BeginGroup("")
	e, err := buf.ReplaceAt(0, 5)
	record(t, h, e, err)
	e, err = buf.ReplaceAt(1, 6)
	record(t, h, e, err)

	if _, err := h.Undo(buf); err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	if h.IsGrouping() {
		t.Error("Undo should close the open group")
	}
	if !bytes.Equal(buf.Bytes(), []byte{1, 2}) {
		t.Errorf("got % x, want 01 02", buf.Bytes())
	}
	if info, _ := h.PeekRedo(); info.Description != "2 edits at 0x0" {
		t.Errorf("description %q", info.Description)
	}
}

func TestHistoryAbortGroup(t *testing.T) {
	buf := newTestBuffer(1, 2)
	h := NewHistory(0)

	e, err := buf.ReplaceAt(0, 9)
	record(t, h, e, err)

	h.BeginGroup("partial")
	e, err = buf.InsertAt(2, 3, false)
	record(t, h, e, err)
	e, err = buf.DeleteAt(0)
	record(t, h, e, err)

	if err := h.AbortGroup(buf); err != nil {
		t.Fatalf("AbortGroup failed: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), []byte{9, 2}) {
		t.Errorf("got % x after abort, want 09 02", buf.Bytes())
	}
	if h.UndoCount() != 1 || h.IsGrouping() {
		t.Errorf("undo=%d grouping=%v after abort", h.UndoCount(), h.IsGrouping())
	}
}

// flakyApplier fails on the nth Apply call and records the rest.
type flakyApplier struct {
	buf    *buffer.Buffer
	calls  int
	failOn int
}

func (f *flakyApplier) Apply(edit buffer.Edit) error {
	f.calls++
	if f.calls == f.failOn {
		return errors.New("rejected")
	}
	return f.buf.Apply(edit)
}

func TestHistoryGroupUndoFailureRestores(t *testing.T) {
	buf := newTestBuffer(0, 0, 0)
	h := NewHistory(0)

	h.BeginGroup("")
	for i := 0; i < 3; i++ {
		e, err := buf.ReplaceAt(i, 0xff)
		record(t, h, e, err)
	}
	h.EndGroup()

	// The third inverse fails after two have been applied.
	if _, err := h.Undo(&flakyApplier{buf: buf, failOn: 3}); err == nil {
		t.Fatal("expected undo to fail")
	}
	if !bytes.Equal(buf.Bytes(), []byte{0xff, 0xff, 0xff}) {
		t.Errorf("got % x after failed undo, want ff ff ff", buf.Bytes())
	}
	if h.UndoCount() != 1 || h.RedoCount() != 0 {
		t.Errorf("undo=%d redo=%d after failed undo", h.UndoCount(), h.RedoCount())
	}
}
