package engine

import (
	"errors"

	"github.com/dshills/hexstorm/internal/engine/buffer"
	"github.com/dshills/hexstorm/internal/engine/history"
)

// Errors returned by session operations.
var (
	// ErrOffsetOutOfRange indicates an offset is outside the buffer.
	ErrOffsetOutOfRange = buffer.ErrOffsetOutOfRange

	// ErrEmptyBuffer indicates a delete on an empty buffer.
	ErrEmptyBuffer = buffer.ErrEmptyBuffer

	// ErrNothingToUndo indicates the undo stack is empty.
	ErrNothingToUndo = history.ErrNothingToUndo

	// ErrNothingToRedo indicates the redo stack is empty.
	ErrNothingToRedo = history.ErrNothingToRedo

	// ErrEmptyPattern indicates a search expression that compiles to no bytes.
	ErrEmptyPattern = errors.New("empty search pattern")

	// ErrNoMatch indicates a search found nothing.
	ErrNoMatch = errors.New("pattern not found")

	// ErrInvalidDirection indicates an unknown search direction.
	ErrInvalidDirection = errors.New("invalid search direction")
)
