package watch

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/Cyclone1070/preprint/internal/latexdiff"
	"github.com/Cyclone1070/preprint/internal/tex"
)

type ignoreMatcher interface {
	ShouldIgnore(relativePath string, isDir bool) bool
}

// Filter decides which changed paths should trigger a build.
type Filter struct {
	root     string
	exts     []string
	ignores  []string
	buildDir string
	matcher  ignoreMatcher
}

// NewFilter creates a Filter for files under root. exts are matched without
// the leading dot and case-insensitively; ignores are path fragments.
func NewFilter(root string, exts, ignores []string, buildDir string, matcher ignoreMatcher) *Filter {
	lower := make([]string, 0, len(exts))
	for _, ext := range exts {
		lower = append(lower, strings.ToLower(strings.TrimPrefix(ext, ".")))
	}
	return &Filter{root: root, exts: lower, ignores: ignores, buildDir: buildDir, matcher: matcher}
}

// Ignores returns the fragments that are always excluded: the compiled PDF,
// the build directory and the diff pipeline's intermediate files.
func Ignores(master, buildDir string, extra ...string) []string {
	out := []string{
		tex.StripExt(filepath.Base(master)) + ".pdf",
		buildDir,
		latexdiff.CurrentFile,
		latexdiff.PreviousFile,
	}
	return append(out, extra...)
}

// Match reports whether a change to the regular file at path is relevant.
func (f *Filter) Match(path string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if !slices.Contains(f.exts, ext) {
		return false
	}
	rel := f.rel(path)
	for _, ig := range f.ignores {
		if ig != "" && strings.Contains(rel, ig) {
			return false
		}
	}
	return f.matcher == nil || !f.matcher.ShouldIgnore(rel, false)
}

// SkipDir reports whether a directory should not be watched.
func (f *Filter) SkipDir(path string) bool {
	rel := f.rel(path)
	if rel == "." {
		return false
	}
	if strings.HasPrefix(filepath.Base(path), ".") || rel == filepath.Clean(f.buildDir) {
		return true
	}
	return f.matcher != nil && f.matcher.ShouldIgnore(rel, true)
}

func (f *Filter) rel(path string) string {
	if rel, err := filepath.Rel(f.root, path); err == nil {
		return rel
	}
	return path
}
