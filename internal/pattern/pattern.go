// Package pattern compiles user-typed search expressions into raw bytes.
//
// An expression mixes literal characters with escapes:
//
//	\\     a single backslash (0x5c)
//	\xHH   the byte with hex value HH
//
// Every other character stands for its own byte value. Errors report the
// byte offset of the offending character in the original input.
package pattern

import (
	"errors"
	"fmt"
)

// Errors reported by Compile, wrapped in a *SyntaxError.
var (
	ErrInvalidHex    = errors.New("invalid hex digit")
	ErrInvalidEscape = errors.New("invalid escape")
	ErrUnexpectedEnd = errors.New("unexpected end of input")
)

// SyntaxError locates a problem in an expression.
type SyntaxError struct {
	Err    error  // ErrInvalidHex, ErrInvalidEscape or ErrUnexpectedEnd
	Offset int    // byte offset of the offending character in Input
	Input  string // the expression being compiled
}

func (e *SyntaxError) Error() string {
	if e.Offset < len(e.Input) {
		return fmt.Sprintf("%v at offset %d (%q)", e.Err, e.Offset, e.Input[e.Offset])
	}
	return fmt.Sprintf("%v at offset %d", e.Err, e.Offset)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// Compile decodes input into the byte pattern it describes.
// The result is never longer than input. On error nothing is returned.
func Compile(input string) ([]byte, error) {
	out := make([]byte, 0, len(input))

	for i := 0; i < len(input); {
		c := input[i]
		if c != '\\' {
			out = append(out, c)
			i++
			continue
		}

		if i+1 >= len(input) {
			return nil, &SyntaxError{Err: ErrUnexpectedEnd, Offset: i, Input: input}
		}

		switch input[i+1] {
		case '\\':
			out = append(out, '\\')
			i += 2
		case 'x':
			var v byte
			for j := i + 2; j < i+4; j++ {
				if j >= len(input) {
					return nil, &SyntaxError{Err: ErrUnexpectedEnd, Offset: j, Input: input}
				}
				d, ok := hexValue(input[j])
				if !ok {
					return nil, &SyntaxError{Err: ErrInvalidHex, Offset: j, Input: input}
				}
				v = v<<4 | d
			}
			out = append(out, v)
			i += 4
		default:
			return nil, &SyntaxError{Err: ErrInvalidEscape, Offset: i + 1, Input: input}
		}
	}

	return out, nil
}

func hexValue(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}
