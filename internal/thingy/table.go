package thingy

import (
	"errors"
	"fmt"
)

// MaxKeyLen is the longest key a table accepts.
const MaxKeyLen = 255

// Errors returned by table operations.
var (
	ErrInvalidKeyLength = errors.New("key length must be between 1 and 255")
	ErrNotFound         = errors.New("key not found")
)

// slot holds the value of a single-byte key.
type slot struct {
	value string
	set   bool
}

// Table maps byte sequences to display strings.
//
// Single-byte keys live in a directly indexed array. Longer keys are grouped
// by their leading byte; each group maps the exact key bytes to a value, so
// two keys sharing a prefix but differing in length never collide.
type Table struct {
	single     [256]slot
	multi      map[byte]map[string]string
	longestKey int
	count      int
}

// New creates an empty table.
func New() *Table {
	return &Table{multi: make(map[byte]map[string]string)}
}

// Assign sets the value for key, replacing any previous value.
func (t *Table) Assign(key []byte, value string) error {
	if err := checkKey(key); err != nil {
		return err
	}

	if len(key) == 1 {
		s := &t.single[key[0]]
		if !s.set {
			t.count++
		}
		*s = slot{value: value, set: true}
	} else {
		group, ok := t.multi[key[0]]
		if !ok {
			group = make(map[string]string)
			t.multi[key[0]] = group
		}
		if _, exists := group[string(key)]; !exists {
			t.count++
		}
		group[string(key)] = value
	}

	if len(key) > t.longestKey {
		t.longestKey = len(key)
	}
	return nil
}

// Search returns the value assigned to exactly key.
func (t *Table) Search(key []byte) (string, bool) {
	if len(key) == 0 || len(key) > t.longestKey {
		return "", false
	}

	if len(key) == 1 {
		s := t.single[key[0]]
		return s.value, s.set
	}

	group, ok := t.multi[key[0]]
	if !ok {
		return "", false
	}
	value, ok := group[string(key)]
	return value, ok
}

// Delete removes key from the table.
// LongestKey is left unchanged.
func (t *Table) Delete(key []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if len(key) > t.longestKey {
		return fmt.Errorf("delete % x: %w", key, ErrNotFound)
	}

	if len(key) == 1 {
		s := &t.single[key[0]]
		if !s.set {
			return fmt.Errorf("delete % x: %w", key, ErrNotFound)
		}
		*s = slot{}
		t.count--
		return nil
	}

	group, ok := t.multi[key[0]]
	if !ok {
		return fmt.Errorf("delete % x: %w", key, ErrNotFound)
	}
	if _, exists := group[string(key)]; !exists {
		return fmt.Errorf("delete % x: %w", key, ErrNotFound)
	}
	delete(group, string(key))
	if len(group) == 0 {
		delete(t.multi, key[0])
	}
	t.count--
	return nil
}

// Match resolves the longest key that prefixes window.
// It tries lengths from min(LongestKey, len(window)) down to 1 and returns
// the first hit along with the number of bytes it covers.
func (t *Table) Match(window []byte) (string, int, bool) {
	n := t.longestKey
	if len(window) < n {
		n = len(window)
	}
	for ; n > 0; n-- {
		if value, ok := t.Search(window[:n]); ok {
			return value, n, true
		}
	}
	return "", 0, false
}

// LongestKey returns the length of the longest key ever assigned.
// Deleting keys never lowers it.
func (t *Table) LongestKey() int {
	return t.longestKey
}

// Len returns the number of keys in the table.
func (t *Table) Len() int {
	return t.count
}

func checkKey(key []byte) error {
	if len(key) == 0 || len(key) > MaxKeyLen {
		return fmt.Errorf("key of %d bytes: %w", len(key), ErrInvalidKeyLength)
	}
	return nil
}
