package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"

	"github.com/dshills/hexstorm/internal/engine"
	"github.com/dshills/hexstorm/internal/watcher"
)

// dumpLayout controls how a dump is laid out.
type dumpLayout struct {
	width int
	group int
}

func runDump(ctx context.Context, a *app, args []string) error {
	layout := dumpLayout{
		width: a.cfg.Display.OctetsPerLine,
		group: a.cfg.Display.Grouping,
	}
	follow := a.cfg.Table.Watch

	fs := a.newFlagSet("dump", "FILE")
	fs.IntVar(&layout.width, "width", layout.width, "Octets per line")
	fs.IntVar(&layout.group, "group", layout.group, "Octets per group")
	fs.BoolVar(&follow, "follow", follow, "Redraw whenever the table file changes")

	pos, err := parseArgs(fs, args, 1)
	if err != nil {
		return err
	}
	if layout.width < 1 || layout.group < 1 || layout.group > layout.width {
		return fmt.Errorf("dump: width %d and group %d: %w", layout.width, layout.group, errUsage)
	}

	s, err := a.openSession(pos[0])
	if err != nil {
		return err
	}

	if err := writeDump(a.stdout, s, layout); err != nil {
		return err
	}
	if !follow {
		return nil
	}
	if len(a.tablePaths()) == 0 {
		return fmt.Errorf("dump: -follow needs a table: %w", errUsage)
	}
	return a.follow(ctx, s, layout)
}

// follow redraws the dump each time one of the table files changes until
// ctx is done. Reloads happen on this goroutine so the session keeps one
// owner; the watcher goroutines only forward events.
func (a *app) follow(ctx context.Context, s *engine.Session, layout dumpLayout) error {
	paths := a.tablePaths()
	debounce := time.Duration(a.cfg.Table.DebounceMS) * time.Millisecond

	done := make(chan struct{})
	defer close(done)
	events := make(chan watcher.Event)
	errs := make(chan error)

	for _, path := range paths {
		w, err := watcher.New(path, watcher.WithDebounce(debounce))
		if err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		defer w.Close()
		go forward(w, events, errs, done)
		a.logger.Info("watching table", zap.String("path", w.Path()))
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-events:
			if ev.Op.Has(watcher.OpRemove) || ev.Op.Has(watcher.OpRename) {
				a.logger.Warn("table file went away", zap.String("path", ev.Path), zap.Stringer("op", ev.Op))
				continue
			}
			if _, err := s.LoadTables(paths...); err != nil {
				// Keep showing the previous table.
				continue
			}
			fmt.Fprintln(a.stdout)
			if err := writeDump(a.stdout, s, layout); err != nil {
				return err
			}

		case err := <-errs:
			a.logger.Error("watcher error", zap.Error(err))
		}
	}
}

// forward copies one watcher's events and errors onto shared channels
// until the watcher closes or done is closed.
func forward(w *watcher.Watcher, events chan<- watcher.Event, errs chan<- error, done <-chan struct{}) {
	for {
		select {
		case ev, ok := <-w.Events():
			if !ok {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		case err, ok := <-w.Errors():
			if !ok {
				return
			}
			select {
			case errs <- err:
			case <-done:
				return
			}
		case <-done:
			return
		}
	}
}

// writeDump prints every line of the session as offset, hex octets and a
// text column. The text column uses the session's substitution table and
// falls back to printable ASCII.
func writeDump(w io.Writer, s *engine.Session, layout dumpLayout) error {
	var (
		line strings.Builder
		skip int
	)
	for off := 0; off < s.Len(); off += layout.width {
		row, err := s.Slice(off, off+layout.width)
		if err != nil {
			return err
		}

		line.Reset()
		fmt.Fprintf(&line, "%08x ", off)
		for i := 0; i < layout.width; i++ {
			if i%layout.group == 0 {
				line.WriteByte(' ')
			}
			if i < len(row) {
				fmt.Fprintf(&line, "%02x ", row[i])
			} else {
				line.WriteString("   ")
			}
		}

		line.WriteString(" |")
		for i := range row {
			if skip > 0 {
				skip--
				continue
			}
			if text, n, ok := s.Substitute(off + i); ok {
				line.WriteString(displayText(text))
				skip = n - 1
				continue
			}
			line.WriteByte(printable(row[i]))
		}
		line.WriteString("|\n")

		if _, err := io.WriteString(w, line.String()); err != nil {
			return err
		}
	}
	return nil
}

// printable maps bytes outside printable ASCII to '.'.
func printable(c byte) byte {
	if c < 0x20 || c > 0x7e {
		return '.'
	}
	return c
}

// displayText makes a table value safe for one dump line. Control
// characters, such as the newline of a /KEY entry, become '.'.
func displayText(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return '.'
		}
		return r
	}, s)
}
