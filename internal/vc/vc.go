// Package vc runs the CTAN vc script, which refreshes the version-control
// stamp a manuscript includes, when the project ships it.
package vc

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/Cyclone1070/preprint/internal/executor"
)

const (
	scriptName = "vc"
	awkName    = "vc-git.awk"
)

type fileChecker interface {
	Exists(path string) bool
}

type commandExecutor interface {
	Run(ctx context.Context, command []string, dir string, env []string) (*executor.Result, error)
}

// Stamper runs ./vc in a project directory.
type Stamper struct {
	fs   fileChecker
	exec commandExecutor
	dir  string
	log  *slog.Logger
}

// NewStamper creates a Stamper for the project in dir.
func NewStamper(fs fileChecker, exec commandExecutor, dir string, log *slog.Logger) *Stamper {
	if fs == nil {
		panic("fs is required")
	}
	if exec == nil {
		panic("exec is required")
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Stamper{fs: fs, exec: exec, dir: dir, log: log}
}

// Exists reports whether both the vc script and its git awk helper are present.
func (s *Stamper) Exists() bool {
	return s.fs.Exists(filepath.Join(s.dir, scriptName)) && s.fs.Exists(filepath.Join(s.dir, awkName))
}

// Run executes ./vc. It does nothing when vc is not installed.
func (s *Stamper) Run(ctx context.Context) error {
	if !s.Exists() {
		s.log.Debug("vc not installed, skipping")
		return nil
	}
	cmd := []string{"./" + scriptName}
	res, err := s.exec.Run(ctx, cmd, s.dir, nil)
	if err := executor.Check(cmd, res, err); err != nil {
		return err
	}
	s.log.Debug("vc stamp updated")
	return nil
}
