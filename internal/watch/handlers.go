package watch

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/Cyclone1070/preprint/internal/executor"
	"github.com/Cyclone1070/preprint/internal/latexdiff"
	"github.com/Cyclone1070/preprint/internal/tex"
)

// Handler rebuilds the manuscript after a batch of changes.
type Handler interface {
	Name() string
	Handle(ctx context.Context) error
}

type stamper interface {
	Run(ctx context.Context) error
}

type commandExecutor interface {
	RunWithTimeout(ctx context.Context, command []string, dir string, env []string, timeout time.Duration) (*executor.Result, error)
}

type diffRunner interface {
	Run(ctx context.Context, outputName, masterPath, prevCommit string) (*latexdiff.Result, error)
}

// CompileHandler refreshes the vc stamp and runs the build command through sh.
type CompileHandler struct {
	vc      stamper
	exec    commandExecutor
	command string
	dir     string
	log     *slog.Logger
}

// NewCompileHandler creates a CompileHandler. {master} in command expands to master.
func NewCompileHandler(vc stamper, exec commandExecutor, command, master, dir string, log *slog.Logger) *CompileHandler {
	if vc == nil {
		panic("vc is required")
	}
	if exec == nil {
		panic("exec is required")
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &CompileHandler{
		vc:      vc,
		exec:    exec,
		command: strings.ReplaceAll(command, "{master}", master),
		dir:     dir,
		log:     log,
	}
}

func (h *CompileHandler) Name() string { return "compile" }

func (h *CompileHandler) Handle(ctx context.Context) error {
	if err := h.vc.Run(ctx); err != nil {
		h.log.Warn("vc failed", "error", err)
	}
	cmd := []string{"sh", "-c", h.command}
	res, err := h.exec.RunWithTimeout(ctx, cmd, h.dir, nil, 0)
	if err := executor.Check(cmd, res, err); err != nil {
		return err
	}
	if res.Stdout != "" {
		h.log.Debug("build output", "stdout", res.Stdout)
	}
	return nil
}

// DiffHandler rebuilds a latexdiff PDF against a fixed commit.
type DiffHandler struct {
	pipeline diffRunner
	master   string
	ref      string
}

func NewDiffHandler(pipeline diffRunner, master, ref string) *DiffHandler {
	if pipeline == nil {
		panic("pipeline is required")
	}
	return &DiffHandler{pipeline: pipeline, master: master, ref: ref}
}

// DiffOutputName is the output base name used while watching.
func DiffOutputName(master string) string {
	return tex.StripExt(filepath.Base(master)) + "_diff"
}

func (h *DiffHandler) Name() string { return "diff " + h.ref }

func (h *DiffHandler) Handle(ctx context.Context) error {
	_, err := h.pipeline.Run(ctx, DiffOutputName(h.master), h.master, h.ref)
	return err
}
