package thingy

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// maxLineLen bounds a single definition line.
const maxLineLen = 1 << 20

// ErrLineTooLong is recorded for a definition line longer than 1 MiB.
var ErrLineTooLong = errors.New("line too long")

// LoadResult summarizes a load.
type LoadResult struct {
	// Applied counts successful assignments.
	Applied int
	// Deleted counts successful delete lines.
	Deleted int
	// Skipped counts malformed lines and deletes of absent keys.
	Skipped int
	// Errors holds one entry per skipped line.
	Errors []*LineError
}

// ApplyLine parses and applies a single definition line.
// Blank lines and comments are accepted and do nothing.
func (t *Table) ApplyLine(line string) error {
	d, ok, err := ParseLine(line)
	if err != nil || !ok {
		return err
	}
	return t.apply(d)
}

func (t *Table) apply(d Directive) error {
	switch d.Op {
	case OpAssign:
		return t.Assign(d.Key, d.Value)
	case OpDelete:
		return t.Delete(d.Key)
	default:
		return fmt.Errorf("unknown directive %d", d.Op)
	}
}

// Load applies every line read from r.
// Malformed lines, including lines longer than the line limit, are skipped
// and recorded in the result. The returned error is non-nil only when
// reading r fails; the result still reflects the lines applied before the
// failure.
func (t *Table) Load(r io.Reader) (LoadResult, error) {
	var res LoadResult

	br := bufio.NewReader(r)
	lineNo := 0
	for {
		line, tooLong, err := readLine(br)
		if len(line) > 0 || tooLong {
			lineNo++
			t.loadLine(&res, lineNo, string(line), tooLong)
		}
		if err == io.EOF {
			return res, nil
		}
		if err != nil {
			return res, fmt.Errorf("line %d: %w", lineNo+1, err)
		}
	}
}

// LoadString applies every line of text.
func (t *Table) LoadString(text string) LoadResult {
	var res LoadResult
	for i, line := range strings.Split(text, "\n") {
		tooLong := len(line) > maxLineLen
		if tooLong {
			line = line[:maxLineLen]
		}
		t.loadLine(&res, i+1, line, tooLong)
	}
	return res
}

// loadLine applies one numbered line and updates res.
func (t *Table) loadLine(res *LoadResult, lineNo int, text string, tooLong bool) {
	var (
		d   Directive
		ok  bool
		err error
	)
	if tooLong {
		err = ErrLineTooLong
		text = truncate(text)
	} else {
		d, ok, err = ParseLine(text)
		if err == nil && !ok {
			return
		}
	}
	if err == nil {
		err = t.apply(d)
	}
	if err != nil {
		res.Skipped++
		res.Errors = append(res.Errors, &LineError{Line: lineNo, Text: strings.TrimRight(text, "\r\n"), Err: err})
		return
	}

	if d.Op == OpDelete {
		res.Deleted++
	} else {
		res.Applied++
	}
}

// readLine returns the next line including its newline. A line longer than
// maxLineLen is read to its end but only its first maxLineLen bytes are
// kept, and tooLong is set. err is io.EOF after the last line.
func readLine(br *bufio.Reader) (line []byte, tooLong bool, err error) {
	for {
		chunk, rerr := br.ReadSlice('\n')
		if !tooLong {
			if room := maxLineLen - len(line); len(chunk) > room {
				line = append(line, chunk[:room]...)
				tooLong = true
			} else {
				line = append(line, chunk...)
			}
		}
		if rerr == bufio.ErrBufferFull {
			continue
		}
		return line, tooLong, rerr
	}
}

// truncate shortens an over-long line for error reports.
func truncate(text string) string {
	const keep = 32
	if len(text) <= keep {
		return text
	}
	return text[:keep] + "..."
}

// LoadFile applies the definition file at path.
func (t *Table) LoadFile(path string) (LoadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return LoadResult{}, fmt.Errorf("open table %s: %w", path, err)
	}
	defer f.Close()

	res, err := t.Load(f)
	if err != nil {
		return res, fmt.Errorf("read table %s: %w", path, err)
	}
	return res, nil
}
