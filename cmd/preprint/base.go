package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Cyclone1070/preprint/internal/config"
	"github.com/Cyclone1070/preprint/internal/executor"
	"github.com/Cyclone1070/preprint/internal/fsutil"
	"github.com/Cyclone1070/preprint/internal/tex"
	"github.com/maruel/subcommands"
)

// Dependencies holds the components shared by every command.
type Dependencies struct {
	Config *config.Config
	Log    *slog.Logger
	FS     *fsutil.OSFileSystem
	Exec   *executor.OSCommandExecutor
	Out    io.Writer
}

// overrides collects repeated -set key=value flags.
type overrides []string

func (o *overrides) String() string { return strings.Join(*o, ",") }

func (o *overrides) Set(v string) error {
	if !strings.Contains(v, "=") {
		return fmt.Errorf("expected key=value, got %q", v)
	}
	*o = append(*o, v)
	return nil
}

// commandBase carries the flags every command accepts.
type commandBase struct {
	subcommands.CommandRunBase
	master string
	debug  bool
	sets   overrides
}

func (c *commandBase) registerBaseFlags() {
	c.Flags.StringVar(&c.master, "master", "", "root document (default: config master, else the detected root)")
	c.Flags.BoolVar(&c.debug, "debug", false, "log at debug level")
	c.Flags.Var(&c.sets, "set", "override a config key, as key=value (repeatable)")
}

// dependencies loads the configuration from the current directory and
// builds the shared components.
func (c *commandBase) dependencies(a subcommands.Application) (*Dependencies, error) {
	log := newLogger(a.GetErr(), c.debug)

	cfg, err := config.NewLoader(".").Load(c.sets...)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if c.master != "" {
		cfg.Master = c.master
	}

	fs := fsutil.NewOSFileSystem()
	return &Dependencies{
		Config: cfg,
		Log:    log,
		FS:     fs,
		Exec:   executor.NewOSCommandExecutor(cfg, log),
		Out:    a.GetOut(),
	}, nil
}

// resolveMaster returns the configured master, falling back to the root
// document detected under the current directory when it does not exist.
func resolveMaster(deps *Dependencies) (string, error) {
	if deps.FS.Exists(deps.Config.Master) {
		return deps.Config.Master, nil
	}
	root, err := tex.NewRootFinder(deps.FS, deps.Config, deps.Log).Find(".")
	if err != nil {
		return "", fmt.Errorf("master %q not found: %w", deps.Config.Master, err)
	}
	deps.Log.Info("using detected root document", "path", root, "configured", deps.Config.Master)
	return root, nil
}

func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// report prints err and returns the exit code for it.
func report(a subcommands.Application, err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, context.Canceled) {
		return 130
	}
	fmt.Fprintf(a.GetErr(), "%s: %v\n", a.GetName(), err)
	return 1
}

// usageError prints msg and returns the exit code for bad arguments.
func usageError(a subcommands.Application, msg string) int {
	fmt.Fprintf(a.GetErr(), "%s: %s\n", a.GetName(), msg)
	return 2
}
