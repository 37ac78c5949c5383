package tex

import (
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/Cyclone1070/preprint/internal/config"
)

// Inliner flattens \input and \InputIfFileExists against files on disk.
type Inliner struct {
	fs       fileReader
	log      *slog.Logger
	maxDepth int
	workDir  string
}

// NewInliner creates an Inliner that falls back to the process working
// directory when an include is not found next to the including file.
func NewInliner(fs fileReader, cfg *config.Config, log *slog.Logger) *Inliner {
	if fs == nil {
		panic("fs is required")
	}
	if cfg == nil {
		panic("cfg is required")
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Inliner{fs: fs, log: log, maxDepth: cfg.Tex.MaxIncludeDepth, workDir: "."}
}

// Inline returns text with every recognised include replaced by the
// recursively inlined content of the file it names, or by "" when that file
// cannot be found or read.
func (in *Inliner) Inline(text, baseDir string) string {
	return in.inline(text, baseDir, includeChain{maxDepth: in.maxDepth})
}

// InlineAs inlines text as the content of the file at path: includes resolve
// next to path, and an include of path itself is a cycle.
func (in *Inliner) InlineAs(text, path string) string {
	return in.inline(text, filepath.Dir(path), masterChain(fileKey(path), in.maxDepth))
}

// InlineFile reads path and returns it flattened.
func (in *Inliner) InlineFile(path string) (string, error) {
	data, err := in.fs.ReadFile(path)
	if err != nil {
		return "", err
	}
	return in.InlineAs(string(data), path), nil
}

func (in *Inliner) inline(text, baseDir string, chain includeChain) string {
	return Parse(text, IncludeMacros).Render(func(n Node) (string, bool) {
		if len(n.Args) == 0 {
			in.log.Debug("skipping include without argument", "macro", n.Text)
			return "", false
		}

		name := includeName(n.Arg(0))
		if name == "" {
			in.log.Debug("skipping include with empty path", "macro", n.Text)
			return "", true
		}

		path, ok := in.resolve(baseDir, name)
		if !ok {
			in.log.Debug("include not found", "path", name, "base_dir", baseDir)
			return "", true
		}

		next, reason := chain.enter(fileKey(path))
		if reason != "" {
			in.log.Warn("include dropped", "path", path, "reason", reason)
			return "", true
		}

		data, err := in.fs.ReadFile(path)
		if err != nil {
			in.log.Warn("include unreadable", "path", path, "error", err)
			return "", true
		}
		in.log.Debug("inlining", "path", path)
		return in.inline(string(data), filepath.Dir(path), next), true
	})
}

// resolve tries baseDir then the working directory.
func (in *Inliner) resolve(baseDir, name string) (string, bool) {
	native := filepath.FromSlash(name)
	if filepath.IsAbs(native) {
		return native, in.fs.Exists(native)
	}
	for _, dir := range []string{baseDir, in.workDir} {
		candidate := filepath.Join(dir, native)
		if in.fs.Exists(candidate) {
			return candidate, true
		}
	}
	return "", false
}

// includeName turns a raw \input argument into a file name with a .tex suffix.
func includeName(arg string) string {
	name := strings.TrimSpace(arg)
	if len(name) >= 2 && name[0] == '"' && name[len(name)-1] == '"' {
		name = strings.TrimSpace(name[1 : len(name)-1])
	}
	if name == "" {
		return ""
	}
	if !strings.HasSuffix(name, ".tex") {
		name += ".tex"
	}
	return name
}

func fileKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
