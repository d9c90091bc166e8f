package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/dshills/hexstorm/internal/engine"
)

func runFind(_ context.Context, a *app, args []string) error {
	fs := a.newFlagSet("find", "EXPR FILE")
	pos, err := parseArgs(fs, args, 2)
	if err != nil {
		return err
	}
	expr, path := pos[0], pos[1]

	s, err := a.openSession(path)
	if err != nil {
		return err
	}

	offsets, err := s.FindAll(expr)
	if err != nil {
		return fmt.Errorf("find %q: %w", expr, err)
	}
	a.logger.Debug("search done", zap.String("expr", expr), zap.Int("matches", len(offsets)))
	if len(offsets) == 0 {
		return engine.ErrNoMatch
	}

	for _, off := range offsets {
		fmt.Fprintf(a.stdout, "%08x\n", off)
	}
	return nil
}
