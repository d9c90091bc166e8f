package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/dshills/hexstorm/internal/engine"
)

// Errors returned while parsing a patch script.
var (
	errUnknownStep  = errors.New("unknown step")
	errStepArgs     = errors.New("wrong number of arguments")
	errInvalidValue = errors.New("invalid value")
)

// ScriptError locates a failing patch script line.
type ScriptError struct {
	Path string
	Line int
	Err  error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}

func runPatch(_ context.Context, a *app, args []string) error {
	var out string
	fs := a.newFlagSet("patch", "SCRIPT FILE")
	fs.StringVar(&out, "o", "", "Write the result here instead of FILE")

	pos, err := parseArgs(fs, args, 2)
	if err != nil {
		return err
	}
	scriptPath, path := pos[0], pos[1]
	if out == "" {
		out = path
	}

	s, err := a.openSession(path)
	if err != nil {
		return err
	}

	script, err := os.Open(scriptPath)
	if err != nil {
		return err
	}
	defer script.Close()

	steps, err := applyScript(s, scriptPath, script)
	if err != nil {
		return err
	}
	a.logger.Info("patch applied",
		zap.String("script", scriptPath),
		zap.Int("steps", steps),
		zap.Int("undo_depth", s.UndoCount()),
	)

	if !s.Dirty() {
		a.logger.Info("nothing changed", zap.String("file", path))
		if out == path {
			return nil
		}
	}
	if err := saveSession(s, out, path); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "%s: %d bytes\n", out, s.Len())
	return nil
}

// applyScript runs every step of a patch script against s and returns the
// number of steps executed. The first failing step stops the script.
func applyScript(s *engine.Session, name string, r io.Reader) (int, error) {
	scanner := bufio.NewScanner(r)
	lineNo, steps := 0, 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := applyStep(s, strings.Fields(line)); err != nil {
			return steps, &ScriptError{Path: name, Line: lineNo, Err: err}
		}
		steps++
	}
	if err := scanner.Err(); err != nil {
		return steps, fmt.Errorf("read %s: %w", name, err)
	}
	return steps, nil
}

// applyStep runs one parsed script line. Each line is one undo step; a
// multi-byte line that fails part way leaves the buffer untouched.
func applyStep(s *engine.Session, fields []string) error {
	verb, args := fields[0], fields[1:]

	want := map[string]int{
		"insert": 2, "append": 2, "replace": 2,
		"delete": 1, "inc": 2,
		"undo": 0, "redo": 0,
	}
	n, ok := want[verb]
	if !ok {
		return fmt.Errorf("%q: %w", verb, errUnknownStep)
	}
	if len(args) != n {
		return fmt.Errorf("%s takes %d, got %d: %w", verb, n, len(args), errStepArgs)
	}

	switch verb {
	case "undo":
		_, err := s.Undo()
		return err
	case "redo":
		_, err := s.Redo()
		return err
	}

	off, err := parseInt(args[0])
	if err != nil {
		return err
	}

	switch verb {
	case "delete":
		_, err := s.DeleteByte(off)
		return err
	case "inc":
		delta, err := parseInt(args[1])
		if err != nil {
			return err
		}
		_, err = s.IncrementByte(off, delta)
		return err
	}

	data, err := hex.DecodeString(args[1])
	if err != nil || len(data) == 0 {
		return fmt.Errorf("data %q: %w", args[1], errInvalidValue)
	}

	return s.Group(strings.Join(fields, " "), func() error {
		if verb == "replace" {
			for i, b := range data {
				if _, err := s.ReplaceByte(off+i, b); err != nil {
					return err
				}
			}
			return nil
		}

		// Later bytes follow wherever the first one landed.
		edit, err := s.InsertByte(off, data[0], verb == "append")
		if err != nil {
			return err
		}
		for i, b := range data[1:] {
			if _, err := s.InsertByte(edit.Offset+1+i, b, false); err != nil {
				return err
			}
		}
		return nil
	})
}

// parseInt accepts decimal, 0x hex, 0o octal and 0b binary, with an
// optional sign.
func parseInt(text string) (int, error) {
	v, err := strconv.ParseInt(text, 0, 0)
	if err != nil {
		return 0, fmt.Errorf("number %q: %w", text, errInvalidValue)
	}
	return int(v), nil
}

// saveSession writes the session to out, keeping the permissions of the
// source file, and marks it saved.
func saveSession(s *engine.Session, out, src string) error {
	perm := os.FileMode(0644)
	if info, err := os.Stat(src); err == nil {
		perm = info.Mode().Perm()
	}

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return err
	}
	if err := os.WriteFile(out, buf.Bytes(), perm); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	s.MarkSaved()
	return nil
}
