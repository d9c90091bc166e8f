package engine

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dshills/hexstorm/internal/engine/buffer"
	"github.com/dshills/hexstorm/internal/engine/history"
	"github.com/dshills/hexstorm/internal/logging"
	"github.com/dshills/hexstorm/internal/thingy"
)

// Re-export commonly used types for convenience.
type (
	// Edit represents an applied change to the buffer.
	Edit = buffer.Edit

	// EditKind identifies the variant of an Edit.
	EditKind = buffer.EditKind

	// ActionInfo describes an entry on the undo stack.
	ActionInfo = history.ActionInfo
)

// Re-export constants.
const (
	EditInsert  = buffer.EditInsert
	EditDelete  = buffer.EditDelete
	EditReplace = buffer.EditReplace
)

// Session is one editing session over a byte buffer.
// It owns the buffer, its history and the substitution table.
type Session struct {
	id   string
	name string

	buf     *buffer.Buffer
	history *history.History
	table   *thingy.Table
	logger  *zap.Logger

	// Configuration
	maxUndoEntries int
	initContent    []byte
}

func newSession(opts []Option) *Session {
	s := &Session{
		id:             uuid.New().String(),
		maxUndoEntries: DefaultMaxUndoEntries,
		table:          thingy.New(),
		logger:         logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.history = history.NewHistory(s.maxUndoEntries)
	s.logger = s.logger.With(zap.String("session", s.id))
	if s.name != "" {
		s.logger = s.logger.With(zap.String("name", s.name))
	}
	return s
}

// New creates a new Session with the given options.
func New(opts ...Option) *Session {
	s := newSession(opts)
	s.buf = buffer.NewBufferFromBytes(s.initContent)
	s.initContent = nil
	return s
}

// NewFromReader creates a Session holding everything r yields.
// WithContent is ignored.
func NewFromReader(r io.Reader, opts ...Option) (*Session, error) {
	s := newSession(opts)
	s.initContent = nil

	var err error
	s.buf, err = buffer.NewBufferFromReader(r)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("session opened", zap.Int("bytes", s.buf.Len()))
	return s, nil
}

// ID returns the unique identifier of the session.
func (s *Session) ID() string {
	return s.id
}

// Name returns the name given with WithName.
func (s *Session) Name() string {
	return s.name
}

// ============================================================================
// Read Operations
// ============================================================================

// Len returns the number of bytes in the buffer.
func (s *Session) Len() int {
	return s.buf.Len()
}

// ByteAt returns the byte at offset.
func (s *Session) ByteAt(offset int) (byte, error) {
	return s.buf.ByteAt(offset)
}

// Bytes returns a copy of the buffer contents.
func (s *Session) Bytes() []byte {
	return s.buf.Bytes()
}

// Slice returns a copy of the bytes in [start, end). end is clamped.
func (s *Session) Slice(start, end int) ([]byte, error) {
	return s.buf.Slice(start, end)
}

// Dirty reports whether the buffer changed since it was loaded or saved.
func (s *Session) Dirty() bool {
	return s.buf.Dirty()
}

// MarkSaved clears the dirty flag after the contents have been persisted.
func (s *Session) MarkSaved() {
	s.buf.MarkClean()
	s.logger.Debug("marked saved", zap.Int("bytes", s.buf.Len()))
}

// WriteTo writes the buffer contents to w.
func (s *Session) WriteTo(w io.Writer) (int64, error) {
	return s.buf.WriteTo(w)
}

// ============================================================================
// Edit Operations
// ============================================================================

// InsertByte inserts value at offset, or just after it when after is set.
func (s *Session) InsertByte(offset int, value byte, after bool) (Edit, error) {
	return s.record(s.buf.InsertAt(offset, value, after))
}

// DeleteByte removes the byte at offset.
func (s *Session) DeleteByte(offset int) (Edit, error) {
	return s.record(s.buf.DeleteAt(offset))
}

// ReplaceByte overwrites the byte at offset.
func (s *Session) ReplaceByte(offset int, value byte) (Edit, error) {
	return s.record(s.buf.ReplaceAt(offset, value))
}

// IncrementByte adds delta to the byte at offset, wrapping modulo 256.
func (s *Session) IncrementByte(offset int, delta int) (Edit, error) {
	return s.record(s.buf.IncrementAt(offset, delta))
}

// record pushes a successful edit onto the history.
func (s *Session) record(edit Edit, err error) (Edit, error) {
	if err != nil {
		return Edit{}, err
	}
	s.history.Record(edit)
	s.logger.Debug("edit", zap.Stringer("edit", edit))
	return edit, nil
}

// ============================================================================
// Undo/Redo Operations
// ============================================================================

// Undo reverts the most recent undo unit and returns its edits in the
// order they were made. Most units hold a single edit.
func (s *Session) Undo() ([]Edit, error) {
	edits, err := s.history.Undo(s.buf)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("undo", zap.String("action", describeEdits(edits)))
	return edits, nil
}

// Redo reapplies the most recently undone unit and returns its edits.
func (s *Session) Redo() ([]Edit, error) {
	edits, err := s.history.Redo(s.buf)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("redo", zap.String("action", describeEdits(edits)))
	return edits, nil
}

// Group runs fn and records every edit it makes as one undo unit. If fn
// fails, its edits are reverted and nothing is recorded. Inside another
// Group, fn simply joins the outer unit.
func (s *Session) Group(name string, fn func() error) error {
	if s.history.IsGrouping() {
		return fn()
	}

	s.history.BeginGroup(name)
	if err := fn(); err != nil {
		if aerr := s.history.AbortGroup(s.buf); aerr != nil {
			s.logger.Error("group rollback failed", zap.String("group", name), zap.Error(aerr))
		}
		return err
	}
	s.history.EndGroup()
	return nil
}

func describeEdits(edits []Edit) string {
	if len(edits) == 1 {
		return history.Describe(edits[0])
	}
	return fmt.Sprintf("%d edits", len(edits))
}

// CanUndo returns true if there are edits to undo.
func (s *Session) CanUndo() bool {
	return s.history.CanUndo()
}

// CanRedo returns true if there are edits to redo.
func (s *Session) CanRedo() bool {
	return s.history.CanRedo()
}

// UndoCount returns the number of undo units (single edits or groups).
func (s *Session) UndoCount() int {
	return s.history.UndoCount()
}

// RedoCount returns the number of units that can be redone.
func (s *Session) RedoCount() int {
	return s.history.RedoCount()
}

// UndoInfo describes the undo stack, oldest first.
func (s *Session) UndoInfo() []ActionInfo {
	return s.history.UndoInfo()
}

// ClearHistory drops all undo and redo entries.
func (s *Session) ClearHistory() {
	s.history.Clear()
}

// ============================================================================
// Substitution Table
// ============================================================================

// Table returns the attached substitution table. It is never nil.
func (s *Session) Table() *thingy.Table {
	return s.table
}

// SetTable replaces the substitution table. A nil table installs an empty one.
func (s *Session) SetTable(t *thingy.Table) {
	if t == nil {
		t = thingy.New()
	}
	s.table = t
}

// LoadTable reads a definition file into a new table and attaches it.
// The current table is kept when the file cannot be read.
func (s *Session) LoadTable(path string) (thingy.LoadResult, error) {
	return s.LoadTables(path)
}

// LoadTables builds a new table from several definition files applied in
// order, so later files override or delete entries from earlier ones. The
// new table replaces the current one only if every file could be read.
// The returned result sums all files.
func (s *Session) LoadTables(paths ...string) (thingy.LoadResult, error) {
	t := thingy.New()
	var total thingy.LoadResult
	for _, path := range paths {
		res, err := s.loadInto(t, path)
		total = addResults(total, res)
		if err != nil {
			return total, err
		}
	}
	s.table = t
	return total, nil
}

// MergeTable applies a definition file on top of the current table. Bare
// keys in the file delete entries the table already holds. Lines read before
// a read error stay applied.
func (s *Session) MergeTable(path string) (thingy.LoadResult, error) {
	return s.loadInto(s.table, path)
}

func (s *Session) loadInto(t *thingy.Table, path string) (thingy.LoadResult, error) {
	res, err := t.LoadFile(path)
	if err != nil {
		s.logger.Warn("table not loaded", zap.String("path", path), zap.Error(err))
		return res, err
	}

	for _, lerr := range res.Errors {
		s.logger.Warn("table line skipped",
			zap.String("path", path),
			zap.Int("line", lerr.Line),
			zap.Error(lerr.Err),
		)
	}
	s.logger.Info("table loaded",
		zap.String("path", path),
		zap.Int("applied", res.Applied),
		zap.Int("deleted", res.Deleted),
		zap.Int("skipped", res.Skipped),
		zap.Int("longest_key", t.LongestKey()),
	)
	return res, nil
}

func addResults(a, b thingy.LoadResult) thingy.LoadResult {
	a.Applied += b.Applied
	a.Deleted += b.Deleted
	a.Skipped += b.Skipped
	a.Errors = append(a.Errors, b.Errors...)
	return a
}

// Substitute resolves the longest table key matching the bytes at offset.
// It returns the display string and the number of bytes it covers.
func (s *Session) Substitute(offset int) (string, int, bool) {
	if s.table.LongestKey() == 0 || offset < 0 || offset >= s.buf.Len() {
		return "", 0, false
	}
	window, err := s.buf.Slice(offset, offset+s.table.LongestKey())
	if err != nil {
		return "", 0, false
	}
	return s.table.Match(window)
}
