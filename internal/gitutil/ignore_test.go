package gitutil

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockIgnoreFS struct {
	files   map[string][]byte
	readErr error
}

func newMockIgnoreFS() *mockIgnoreFS {
	return &mockIgnoreFS{files: make(map[string][]byte)}
}

func (m *mockIgnoreFS) Stat(path string) (os.FileInfo, error) {
	if _, ok := m.files[path]; ok {
		return nil, nil
	}
	return nil, os.ErrNotExist
}

func (m *mockIgnoreFS) ReadFile(path string) ([]byte, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	data, ok := m.files[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	return data, nil
}

func TestIgnoreMatcher(t *testing.T) {
	const root = "/paper"

	t.Run("root gitignore", func(t *testing.T) {
		fs := newMockIgnoreFS()
		fs.files["/paper/.gitignore"] = []byte("*.aux\n# comment\nbuild/\n")

		m, err := NewIgnoreMatcher(root, fs)
		require.NoError(t, err)

		assert.True(t, m.ShouldIgnore("paper.aux", false))
		assert.True(t, m.ShouldIgnore("sections/intro.aux", false))
		assert.True(t, m.ShouldIgnore("build", true))
		assert.False(t, m.ShouldIgnore("build", false))
		assert.False(t, m.ShouldIgnore("paper.tex", false))
	})

	t.Run("missing gitignore ignores nothing", func(t *testing.T) {
		m, err := NewIgnoreMatcher(root, newMockIgnoreFS())
		require.NoError(t, err)
		assert.False(t, m.ShouldIgnore("paper.aux", false))
	})

	t.Run("extra patterns", func(t *testing.T) {
		m, err := NewIgnoreMatcher(root, newMockIgnoreFS(), "*_diff.tex", "_*.tex")
		require.NoError(t, err)
		assert.True(t, m.ShouldIgnore("paper_diff.tex", false))
		assert.True(t, m.ShouldIgnore("_current.tex", false))
		assert.False(t, m.ShouldIgnore("paper.tex", false))
	})

	t.Run("windows line endings", func(t *testing.T) {
		fs := newMockIgnoreFS()
		fs.files["/paper/.gitignore"] = []byte("*.log\r\nfigs_old\r\n")

		m, err := NewIgnoreMatcher(root, fs)
		require.NoError(t, err)
		assert.True(t, m.ShouldIgnore("paper.log", false))
		assert.True(t, m.ShouldIgnore("figs_old/a.png", false))
	})

	t.Run("path normalization", func(t *testing.T) {
		fs := newMockIgnoreFS()
		fs.files["/paper/.gitignore"] = []byte("*.log")

		m, err := NewIgnoreMatcher(root, fs)
		require.NoError(t, err)
		assert.True(t, m.ShouldIgnore("foo//bar.log", false))
		assert.True(t, m.ShouldIgnore("./baz.log", false))
	})

	t.Run("read error", func(t *testing.T) {
		fs := newMockIgnoreFS()
		fs.files["/paper/.gitignore"] = []byte("*.log")
		fs.readErr = errors.New("disk failure")

		_, err := NewIgnoreMatcher(root, fs)
		var readErr *GitignoreReadError
		assert.ErrorAs(t, err, &readErr)
	})

	t.Run("nil matcher", func(t *testing.T) {
		var m *IgnoreMatcher
		assert.False(t, m.ShouldIgnore("x", false))
	})
}
