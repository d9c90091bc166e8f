package engine

import (
	"fmt"

	"github.com/dshills/hexstorm/internal/pattern"
)

// Direction selects which way Find scans.
type Direction int

const (
	// Forward finds the first match at or after the start offset.
	Forward Direction = iota
	// Backward finds the last match starting before the start offset.
	Backward
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	default:
		return "unknown"
	}
}

// Find compiles expr and searches the buffer for it from offset from.
// Compile failures are returned as *pattern.SyntaxError.
func (s *Session) Find(expr string, from int, dir Direction) (int, error) {
	pat, err := compileSearch(expr)
	if err != nil {
		return -1, err
	}
	return s.FindBytes(pat, from, dir)
}

// FindBytes searches the buffer for a raw byte pattern.
func (s *Session) FindBytes(pat []byte, from int, dir Direction) (int, error) {
	if len(pat) == 0 {
		return -1, ErrEmptyPattern
	}

	var (
		off int
		err error
	)
	switch dir {
	case Forward:
		off, err = s.buf.Index(pat, from)
	case Backward:
		off, err = s.buf.LastIndex(pat, from)
	default:
		return -1, fmt.Errorf("direction %d: %w", dir, ErrInvalidDirection)
	}
	if err != nil {
		return -1, err
	}
	if off < 0 {
		return -1, ErrNoMatch
	}
	return off, nil
}

// FindAll returns the offsets of every non-overlapping match of expr,
// in ascending order.
func (s *Session) FindAll(expr string) ([]int, error) {
	pat, err := compileSearch(expr)
	if err != nil {
		return nil, err
	}

	var offsets []int
	for from := 0; from <= s.buf.Len(); {
		off, err := s.buf.Index(pat, from)
		if err != nil {
			return nil, err
		}
		if off < 0 {
			break
		}
		offsets = append(offsets, off)
		from = off + len(pat)
	}
	return offsets, nil
}

func compileSearch(expr string) ([]byte, error) {
	pat, err := pattern.Compile(expr)
	if err != nil {
		return nil, err
	}
	if len(pat) == 0 {
		return nil, ErrEmptyPattern
	}
	return pat, nil
}
