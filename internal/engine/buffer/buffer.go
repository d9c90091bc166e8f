package buffer

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// Errors returned by buffer operations.
var (
	ErrOffsetOutOfRange = errors.New("offset out of range")
	ErrEmptyBuffer      = errors.New("buffer is empty")
	ErrInvalidEdit      = errors.New("invalid edit")
)

// Buffer is an editable byte sequence with a dirty flag.
type Buffer struct {
	data  []byte
	dirty bool
}

// NewBuffer creates a new empty buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// NewBufferFromBytes creates a buffer holding a copy of data.
// The new buffer is clean.
func NewBufferFromBytes(data []byte) *Buffer {
	return &Buffer{data: cloneBytes(data)}
}

// NewBufferFromReader creates a buffer from everything r yields.
func NewBufferFromReader(r io.Reader) (*Buffer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return &Buffer{data: data}, nil
}

// Read Operations

// Len returns the number of bytes in the buffer.
func (b *Buffer) Len() int {
	return len(b.data)
}

// IsEmpty returns true if the buffer holds no bytes.
func (b *Buffer) IsEmpty() bool {
	return len(b.data) == 0
}

// ByteAt returns the byte at offset.
func (b *Buffer) ByteAt(offset int) (byte, error) {
	if offset < 0 || offset >= len(b.data) {
		return 0, rangeError(offset, len(b.data))
	}
	return b.data[offset], nil
}

// Bytes returns a copy of the buffer contents.
func (b *Buffer) Bytes() []byte {
	return cloneBytes(b.data)
}

// Slice returns a copy of the bytes in [start, end).
// end is clamped to Len; start must be within the buffer.
func (b *Buffer) Slice(start, end int) ([]byte, error) {
	if start < 0 || start > len(b.data) || end < start {
		return nil, fmt.Errorf("slice [%d,%d) of %d bytes: %w", start, end, len(b.data), ErrOffsetOutOfRange)
	}
	if end > len(b.data) {
		end = len(b.data)
	}
	return cloneBytes(b.data[start:end]), nil
}

// Index returns the offset of the first occurrence of pat at or after from,
// or -1. from must be within 0..Len.
func (b *Buffer) Index(pat []byte, from int) (int, error) {
	if from < 0 || from > len(b.data) {
		return -1, rangeError(from, len(b.data))
	}
	i := bytes.Index(b.data[from:], pat)
	if i < 0 {
		return -1, nil
	}
	return from + i, nil
}

// LastIndex returns the offset of the last occurrence of pat that starts
// before the offset before, or -1. before must be within 0..Len.
func (b *Buffer) LastIndex(pat []byte, before int) (int, error) {
	if before < 0 || before > len(b.data) {
		return -1, rangeError(before, len(b.data))
	}
	if before == 0 {
		return -1, nil
	}
	end := before - 1 + len(pat)
	if end > len(b.data) {
		end = len(b.data)
	}
	return bytes.LastIndex(b.data[:end], pat), nil
}

// WriteTo writes the buffer contents to w.
func (b *Buffer) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(b.data)
	return int64(n), err
}

// Dirty reports whether the contents changed since the last MarkClean.
func (b *Buffer) Dirty() bool {
	return b.dirty
}

// MarkClean acknowledges that the current contents have been persisted.
func (b *Buffer) MarkClean() {
	b.dirty = false
}

// Single-byte Mutators

// InsertAt inserts value at offset, or at offset+1 when after is set.
// Bytes from the insertion point onward shift up by one.
func (b *Buffer) InsertAt(offset int, value byte, after bool) (Edit, error) {
	pos := offset
	if after && len(b.data) > 0 {
		pos++
	}
	if offset < 0 || pos > len(b.data) {
		return Edit{}, rangeError(offset, len(b.data))
	}

	data := []byte{value}
	b.insert(pos, data)
	return NewInsert(pos, data), nil
}

// DeleteAt removes the byte at offset.
func (b *Buffer) DeleteAt(offset int) (Edit, error) {
	if len(b.data) == 0 {
		return Edit{}, ErrEmptyBuffer
	}
	if offset < 0 || offset >= len(b.data) {
		return Edit{}, rangeError(offset, len(b.data))
	}

	removed := b.remove(offset, 1)
	return Edit{Kind: EditDelete, Offset: offset, Old: removed}, nil
}

// ReplaceAt overwrites the byte at offset with value.
func (b *Buffer) ReplaceAt(offset int, value byte) (Edit, error) {
	if offset < 0 || offset >= len(b.data) {
		return Edit{}, rangeError(offset, len(b.data))
	}

	old := b.data[offset]
	b.data[offset] = value
	b.dirty = true
	return Edit{Kind: EditReplace, Offset: offset, Old: []byte{old}, New: []byte{value}}, nil
}

// IncrementAt adds delta to the byte at offset, wrapping modulo 256.
// A negative delta decrements. The change is reported as a replace.
func (b *Buffer) IncrementAt(offset int, delta int) (Edit, error) {
	if offset < 0 || offset >= len(b.data) {
		return Edit{}, rangeError(offset, len(b.data))
	}
	value := byte(int(b.data[offset]) + delta)
	return b.ReplaceAt(offset, value)
}

// Span Mutators

// InsertBytes inserts data at offset.
func (b *Buffer) InsertBytes(offset int, data []byte) error {
	if offset < 0 || offset > len(b.data) {
		return rangeError(offset, len(b.data))
	}
	if len(data) == 0 {
		return nil
	}
	b.insert(offset, data)
	return nil
}

// DeleteRange removes n bytes starting at offset and returns them.
func (b *Buffer) DeleteRange(offset, n int) ([]byte, error) {
	if len(b.data) == 0 && n > 0 {
		return nil, ErrEmptyBuffer
	}
	if offset < 0 || n < 0 || offset+n > len(b.data) {
		return nil, fmt.Errorf("delete [%d,%d) of %d bytes: %w", offset, offset+n, len(b.data), ErrOffsetOutOfRange)
	}
	if n == 0 {
		return nil, nil
	}
	return b.remove(offset, n), nil
}

// WriteBytes overwrites len(data) bytes at offset and returns the old bytes.
func (b *Buffer) WriteBytes(offset int, data []byte) ([]byte, error) {
	if offset < 0 || offset+len(data) > len(b.data) {
		return nil, fmt.Errorf("write [%d,%d) of %d bytes: %w", offset, offset+len(data), len(b.data), ErrOffsetOutOfRange)
	}
	if len(data) == 0 {
		return nil, nil
	}
	old := cloneBytes(b.data[offset : offset+len(data)])
	copy(b.data[offset:], data)
	b.dirty = true
	return old, nil
}

// Apply performs edit on the buffer.
// Delete and replace edits only need Old for its length; the bytes in the
// buffer are not compared against it.
func (b *Buffer) Apply(edit Edit) error {
	switch edit.Kind {
	case EditInsert:
		return b.InsertBytes(edit.Offset, edit.New)
	case EditDelete:
		_, err := b.DeleteRange(edit.Offset, len(edit.Old))
		return err
	case EditReplace:
		if len(edit.Old) != len(edit.New) {
			return fmt.Errorf("replace %d bytes with %d: %w", len(edit.Old), len(edit.New), ErrInvalidEdit)
		}
		_, err := b.WriteBytes(edit.Offset, edit.New)
		return err
	default:
		return fmt.Errorf("kind %d: %w", edit.Kind, ErrInvalidEdit)
	}
}

// insert splices data in at pos. pos must already be validated.
func (b *Buffer) insert(pos int, data []byte) {
	b.data = append(b.data, data...)
	copy(b.data[pos+len(data):], b.data[pos:len(b.data)-len(data)])
	copy(b.data[pos:], data)
	b.dirty = true
}

// remove cuts n bytes at pos and returns them. The range must already be
// validated.
func (b *Buffer) remove(pos, n int) []byte {
	removed := cloneBytes(b.data[pos : pos+n])
	b.data = append(b.data[:pos], b.data[pos+n:]...)
	b.dirty = true
	return removed
}

func rangeError(offset, length int) error {
	return fmt.Errorf("offset %d in %d bytes: %w", offset, length, ErrOffsetOutOfRange)
}
