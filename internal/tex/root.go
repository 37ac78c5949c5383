package tex

import (
	"io/fs"
	"log/slog"
	"path/filepath"
	"regexp"

	"github.com/Cyclone1070/preprint/internal/config"
	"github.com/Cyclone1070/preprint/internal/fsutil"
)

var documentClassRe = regexp.MustCompile(`(?m)^\s*\\documentclass`)

// RootFinder locates the .tex file that declares \documentclass.
type RootFinder struct {
	fs        rootFS
	scanBytes int64
	log       *slog.Logger
}

// NewRootFinder creates a RootFinder that inspects the head of each candidate.
func NewRootFinder(fs rootFS, cfg *config.Config, log *slog.Logger) *RootFinder {
	if fs == nil {
		panic("fs is required")
	}
	if cfg == nil {
		panic("cfg is required")
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &RootFinder{fs: fs, scanBytes: cfg.Tex.RootScanBytes, log: log}
}

// FindRootDocument searches baseDir on the local filesystem with default settings.
func FindRootDocument(baseDir string) (string, error) {
	return NewRootFinder(fsutil.NewOSFileSystem(), config.DefaultConfig(), nil).Find(baseDir)
}

// Find walks baseDir in lexical order, skipping .git, and returns the first .tex file whose head has a line starting with \documentclass.
func (f *RootFinder) Find(baseDir string) (string, error) {
	root := filepath.Clean(baseDir)
	var found string

	err := f.fs.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			f.log.Debug("skipping unreadable entry", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path != root && d.Name() == ".git" {
				return fs.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".tex" {
			return nil
		}

		head, err := f.fs.ReadHead(path, f.scanBytes)
		if err != nil {
			f.log.Warn("cannot read candidate root document", "path", path, "error", err)
			return nil
		}
		if documentClassRe.Match(head) {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", &RootNotFoundError{Dir: baseDir, Cause: err}
	}
	if found == "" {
		return "", &RootNotFoundError{Dir: baseDir}
	}
	f.log.Debug("root document found", "path", found)
	return found, nil
}
