package thingy

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// Errors returned when parsing definition lines.
var (
	ErrInvalidHexKey = errors.New("key contains non-hex characters")
	ErrEmptyKey      = errors.New("empty key")
	ErrKeyTooLong    = errors.New("key longer than 255 bytes")
)

// Op is the action a definition line asks for.
type Op uint8

const (
	// OpAssign sets a key's value.
	OpAssign Op = iota + 1
	// OpDelete removes a key.
	OpDelete
)

// String returns the operation name.
func (op Op) String() string {
	switch op {
	case OpAssign:
		return "assign"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Directive is one parsed definition line.
type Directive struct {
	Op    Op
	Key   []byte
	Value string
}

// LineError describes a definition line that could not be applied.
type LineError struct {
	Line int    // 1-based line number, 0 when not loading from a stream
	Text string // the offending line
	Err  error  // underlying error
}

func (e *LineError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %q: %v", e.Line, e.Text, e.Err)
	}
	return fmt.Sprintf("%q: %v", e.Text, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// ParseLine parses one line of the definition language.
// Blank lines and comments return ok == false and a nil error.
func ParseLine(line string) (d Directive, ok bool, err error) {
	line = strings.TrimRight(line, "\r\n")
	line = strings.TrimLeft(line, " \t")
	if line == "" || line[0] == '#' {
		return Directive{}, false, nil
	}

	keyText, value, hasValue := strings.Cut(line, "=")

	// A '/' or '*' prefix fixes the value and ignores anything after '='.
	switch {
	case strings.HasPrefix(keyText, "/"):
		keyText, value, hasValue = keyText[1:], "\n", true
	case strings.HasPrefix(keyText, "*"):
		keyText, value, hasValue = keyText[1:], "\x00", true
	}

	key, err := decodeKey(keyText)
	if err != nil {
		return Directive{}, false, err
	}

	// "KEY=" with nothing after it deletes, same as a bare key.
	if !hasValue || value == "" {
		return Directive{Op: OpDelete, Key: key}, true, nil
	}
	return Directive{Op: OpAssign, Key: key, Value: value}, true, nil
}

// decodeKey turns a hex key into bytes. An odd digit count is read as if it
// had a leading zero, so "123" is 01 23.
func decodeKey(text string) ([]byte, error) {
	if text == "" {
		return nil, ErrEmptyKey
	}
	if strings.IndexFunc(text, func(r rune) bool { return !isHexDigit(r) }) >= 0 {
		return nil, ErrInvalidHexKey
	}
	if (len(text)+1)/2 > MaxKeyLen {
		return nil, ErrKeyTooLong
	}
	if len(text)%2 == 1 {
		text = "0" + text
	}

	key, err := hex.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHexKey, err)
	}
	return key, nil
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}
