package gitutil

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// ignoreFS is the filesystem surface the matcher needs.
type ignoreFS interface {
	Stat(path string) (os.FileInfo, error)
	ReadFile(path string) ([]byte, error)
}

// IgnoreMatcher reports whether project-relative paths are excluded by the
// root .gitignore or by extra gitignore-syntax patterns.
type IgnoreMatcher struct {
	matcher gitignore.Matcher
}

// NewIgnoreMatcher loads .gitignore from root and appends extra patterns.
// A missing .gitignore is not an error.
func NewIgnoreMatcher(root string, fs ignoreFS, extra ...string) (*IgnoreMatcher, error) {
	if root == "" {
		panic("root is required")
	}
	if fs == nil {
		panic("fs is required")
	}

	var lines []string
	gitignorePath := filepath.Join(root, ".gitignore")
	if _, err := fs.Stat(gitignorePath); err == nil {
		data, err := fs.ReadFile(gitignorePath)
		if err != nil {
			return nil, &GitignoreReadError{Path: gitignorePath, Cause: err}
		}
		lines = strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	}
	lines = append(lines, extra...)

	var patterns []gitignore.Pattern
	for _, line := range lines {
		line = strings.TrimRight(line, " \t\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, gitignore.ParsePattern(line, nil))
	}
	if len(patterns) == 0 {
		return &IgnoreMatcher{}, nil
	}
	return &IgnoreMatcher{matcher: gitignore.NewMatcher(patterns)}, nil
}

// ShouldIgnore reports whether relativePath matches. isDir enables
// directory-only patterns such as "build/".
func (m *IgnoreMatcher) ShouldIgnore(relativePath string, isDir bool) bool {
	if m == nil || m.matcher == nil {
		return false
	}
	return m.matcher.Match(splitPath(relativePath), isDir)
}

// splitPath splits a path into segments, dropping empty and "." segments.
func splitPath(p string) []string {
	var segments []string
	for _, part := range strings.Split(filepath.ToSlash(p), "/") {
		if part != "" && part != "." {
			segments = append(segments, part)
		}
	}
	return segments
}
