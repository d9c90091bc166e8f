package engine

import (
	"go.uber.org/zap"

	"github.com/dshills/hexstorm/internal/thingy"
)

// DefaultMaxUndoEntries bounds the undo stack of a new session.
// Zero keeps every edit.
const DefaultMaxUndoEntries = 0

// Option configures a Session during creation.
type Option func(*Session)

// WithContent sets the initial content of the session.
// The bytes are copied.
func WithContent(content []byte) Option {
	return func(s *Session) {
		s.initContent = content
	}
}

// WithMaxUndoEntries sets the maximum number of undo history entries.
// Zero or less keeps every edit.
func WithMaxUndoEntries(max int) Option {
	return func(s *Session) {
		s.maxUndoEntries = max
	}
}

// WithTable attaches a substitution table.
func WithTable(t *thingy.Table) Option {
	return func(s *Session) {
		if t != nil {
			s.table = t
		}
	}
}

// WithLogger sets the logger used for session events.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithName names the session, usually after the file it edits.
func WithName(name string) Option {
	return func(s *Session) {
		s.name = name
	}
}
