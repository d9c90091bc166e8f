// Package main is the entry point for the hexstorm binary tool.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"github.com/dshills/hexstorm/internal/config"
	"github.com/dshills/hexstorm/internal/engine"
	"github.com/dshills/hexstorm/internal/logging"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// errUsage marks errors caused by bad command-line arguments.
var errUsage = errors.New("usage error")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// app carries what every command needs.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	stdout io.Writer
	stderr io.Writer
}

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, a *app, args []string) error
}

var commands = []command{
	{"dump", "print a hex dump of FILE", runDump},
	{"find", "print the offset of every match of EXPR in FILE", runFind},
	{"patch", "apply an edit script to FILE", runPatch},
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var (
		configPath  string
		tablePath   string
		logLevel    string
		showVersion bool
	)

	fs := flag.NewFlagSet("hexstorm", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&configPath, "config", "", "Path to configuration file (.toml, .yaml)")
	fs.StringVar(&configPath, "c", "", "Path to configuration file (shorthand)")
	fs.StringVar(&tablePath, "table", "", "Substitution table file(s), layered in order, separated by "+string(filepath.ListSeparator))
	fs.StringVar(&tablePath, "t", "", "Substitution table file(s) (shorthand)")
	fs.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.BoolVar(&showVersion, "version", false, "Show version information")
	fs.Usage = func() { usage(fs) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	if showVersion {
		fmt.Fprintf(stdout, "hexstorm %s\n", version)
		fmt.Fprintf(stdout, "Commit: %s\n", commit)
		fmt.Fprintf(stdout, "Built: %s\n", date)
		return exitOK
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return exitUsage
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: loading config: %v\n", err)
		return exitFailure
	}
	if tablePath != "" {
		cfg.Table.Path = tablePath
	}
	if logLevel != "" {
		if !logging.ValidLevel(logLevel) {
			fmt.Fprintf(stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", logLevel)
			return exitUsage
		}
		cfg.Logging.Level = logLevel
	}

	logCfg := cfg.LoggerConfig()
	logCfg.Output = stderr
	logger, err := logging.New(logCfg)
	if err != nil {
		fmt.Fprintf(stderr, "Error: creating logger: %v\n", err)
		return exitFailure
	}
	defer logger.Sync()

	a := &app{cfg: cfg, logger: logger, stdout: stdout, stderr: stderr}

	for _, cmd := range commands {
		if cmd.name != rest[0] {
			continue
		}
		err := cmd.run(ctx, a, rest[1:])
		switch {
		case err == nil:
			return exitOK
		case errors.Is(err, errUsage):
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitUsage
		case errors.Is(err, engine.ErrNoMatch):
			return exitFailure
		default:
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitFailure
		}
	}

	fmt.Fprintf(stderr, "Error: unknown command %q\n", rest[0])
	fs.Usage()
	return exitUsage
}

func usage(fs *flag.FlagSet) {
	w := fs.Output()
	fmt.Fprintf(w, "hexstorm - binary file editor core\n\n")
	fmt.Fprintf(w, "Usage: hexstorm [options] <command> [args]\n\n")
	fmt.Fprintf(w, "Commands:\n")
	for _, cmd := range commands {
		fmt.Fprintf(w, "  %-6s %s\n", cmd.name, cmd.summary)
	}
	fmt.Fprintf(w, "\nOptions:\n")
	fs.PrintDefaults()
	fmt.Fprintf(w, "\nExamples:\n")
	fmt.Fprintf(w, "  hexstorm dump rom.bin                 Hex dump a file\n")
	fmt.Fprintf(w, "  hexstorm -t game.tbl dump -follow rom.bin\n")
	fmt.Fprintf(w, "  hexstorm find '\\x89PNG' image.bin     Find a byte pattern\n")
	fmt.Fprintf(w, "  hexstorm patch -o out.bin fix.txt rom.bin\n")
}

// openSession reads path into a new session and attaches the configured
// table, if any.
func (a *app) openSession(path string) (*engine.Session, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s, err := engine.NewFromReader(f,
		engine.WithName(path),
		engine.WithLogger(a.logger),
		engine.WithMaxUndoEntries(a.cfg.History.MaxEntries),
	)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if paths := a.tablePaths(); len(paths) > 0 {
		if _, err := s.LoadTables(paths...); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// tablePaths splits the configured table setting. Several files, separated
// like PATH entries, are layered in order.
func (a *app) tablePaths() []string {
	return filepath.SplitList(a.cfg.Table.Path)
}

// newFlagSet returns a flag set for a subcommand that reports errors
// through the app's stderr.
func (a *app) newFlagSet(name, args string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	fs.Usage = func() {
		fmt.Fprintf(a.stderr, "Usage: hexstorm %s [options] %s\n", name, args)
		fs.PrintDefaults()
	}
	return fs
}

// parseArgs parses a subcommand's flags and checks the positional count.
func parseArgs(fs *flag.FlagSet, args []string, want int) ([]string, error) {
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%s: %w", fs.Name(), errUsage)
	}
	if fs.NArg() != want {
		fs.Usage()
		return nil, fmt.Errorf("%s: expected %d arguments, got %d: %w", fs.Name(), want, fs.NArg(), errUsage)
	}
	return fs.Args(), nil
}
