// Package mocks provides in-memory fakes shared by package tests.
package mocks

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// MockFileInfo implements os.FileInfo.
type MockFileInfo struct {
	NameVal  string
	SizeVal  int64
	ModeVal  os.FileMode
	IsDirVal bool
}

func (f *MockFileInfo) Name() string       { return f.NameVal }
func (f *MockFileInfo) Size() int64        { return f.SizeVal }
func (f *MockFileInfo) Mode() os.FileMode  { return f.ModeVal }
func (f *MockFileInfo) ModTime() time.Time { return time.Time{} }
func (f *MockFileInfo) IsDir() bool        { return f.IsDirVal }
func (f *MockFileInfo) Sys() any           { return nil }

// MockFileSystem is an in-memory filesystem satisfying the consumer
// interfaces of tex, latexdiff, pack and config.
type MockFileSystem struct {
	Mu       sync.RWMutex
	Files    map[string][]byte // path -> content
	Dirs     map[string]bool   // path -> exists
	Errors   map[string]error  // path -> error to return
	OpErrors map[string]error  // operation -> error to return
	// Removed records every path passed to Remove, in order.
	Removed    []string
	HomeDir    string
	HomeDirErr error
}

// NewMockFileSystem creates an empty mock filesystem.
func NewMockFileSystem() *MockFileSystem {
	return &MockFileSystem{
		Files:    make(map[string][]byte),
		Dirs:     make(map[string]bool),
		Errors:   make(map[string]error),
		OpErrors: make(map[string]error),
		HomeDir:  "/home/user",
	}
}

// SetError sets an error to return for a specific path.
func (f *MockFileSystem) SetError(path string, err error) {
	f.Mu.Lock()
	defer f.Mu.Unlock()
	f.Errors[filepath.Clean(path)] = err
}

// SetOperationError sets an error to return for a specific operation.
func (f *MockFileSystem) SetOperationError(operation string, err error) {
	f.Mu.Lock()
	defer f.Mu.Unlock()
	f.OpErrors[operation] = err
}

// CreateFile creates a file and its parent directories.
func (f *MockFileSystem) CreateFile(path string, content string) {
	f.Mu.Lock()
	defer f.Mu.Unlock()
	path = filepath.Clean(path)
	f.Files[path] = []byte(content)
	f.addDirs(filepath.Dir(path))
}

// CreateDir creates a directory and its parents.
func (f *MockFileSystem) CreateDir(path string) {
	f.Mu.Lock()
	defer f.Mu.Unlock()
	f.addDirs(filepath.Clean(path))
}

// Content returns a file's content and whether it exists.
func (f *MockFileSystem) Content(path string) (string, bool) {
	f.Mu.RLock()
	defer f.Mu.RUnlock()
	data, ok := f.Files[filepath.Clean(path)]
	return string(data), ok
}

func (f *MockFileSystem) addDirs(dir string) {
	for {
		f.Dirs[dir] = true
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}

func (f *MockFileSystem) opErr(op, path string) error {
	if err, ok := f.OpErrors[op]; ok {
		return err
	}
	if err, ok := f.Errors[path]; ok {
		return err
	}
	return nil
}

func (f *MockFileSystem) Stat(path string) (os.FileInfo, error) {
	f.Mu.RLock()
	defer f.Mu.RUnlock()
	path = filepath.Clean(path)

	if err := f.opErr("Stat", path); err != nil {
		return nil, err
	}
	return f.lookup(path)
}

// lookup describes path without consulting injected errors. Caller holds Mu.
func (f *MockFileSystem) lookup(path string) (os.FileInfo, error) {
	if data, ok := f.Files[path]; ok {
		return &MockFileInfo{NameVal: filepath.Base(path), SizeVal: int64(len(data)), ModeVal: 0o644}, nil
	}
	if f.Dirs[path] {
		return &MockFileInfo{NameVal: filepath.Base(path), ModeVal: os.ModeDir | 0o755, IsDirVal: true}, nil
	}
	return nil, &os.PathError{Op: "stat", Path: path, Err: os.ErrNotExist}
}

func (f *MockFileSystem) Exists(path string) bool {
	f.Mu.RLock()
	defer f.Mu.RUnlock()
	_, ok := f.Files[filepath.Clean(path)]
	return ok
}

func (f *MockFileSystem) ReadFile(path string) ([]byte, error) {
	f.Mu.RLock()
	defer f.Mu.RUnlock()
	path = filepath.Clean(path)

	if err := f.opErr("ReadFile", path); err != nil {
		return nil, err
	}
	content, ok := f.Files[path]
	if !ok {
		return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrNotExist}
	}
	return content, nil
}

func (f *MockFileSystem) ReadHead(path string, n int64) ([]byte, error) {
	f.Mu.RLock()
	defer f.Mu.RUnlock()
	path = filepath.Clean(path)

	if err := f.opErr("ReadHead", path); err != nil {
		return nil, err
	}
	content, ok := f.Files[path]
	if !ok {
		return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrNotExist}
	}
	if n > 0 && n < int64(len(content)) {
		content = content[:n]
	}
	return append([]byte(nil), content...), nil
}

func (f *MockFileSystem) WriteFileAtomic(path string, content []byte, perm os.FileMode) error {
	f.Mu.Lock()
	defer f.Mu.Unlock()
	path = filepath.Clean(path)

	if err := f.opErr("WriteFileAtomic", path); err != nil {
		return err
	}
	f.Files[path] = append([]byte(nil), content...)
	f.addDirs(filepath.Dir(path))
	return nil
}

func (f *MockFileSystem) CopyFile(src, dst string) error {
	f.Mu.Lock()
	defer f.Mu.Unlock()
	src, dst = filepath.Clean(src), filepath.Clean(dst)

	if err := f.opErr("CopyFile", src); err != nil {
		return err
	}
	content, ok := f.Files[src]
	if !ok {
		return &os.PathError{Op: "open", Path: src, Err: os.ErrNotExist}
	}
	f.Files[dst] = append([]byte(nil), content...)
	f.addDirs(filepath.Dir(dst))
	return nil
}

func (f *MockFileSystem) Move(src, dst string) error {
	f.Mu.Lock()
	defer f.Mu.Unlock()
	src, dst = filepath.Clean(src), filepath.Clean(dst)

	if err := f.opErr("Move", src); err != nil {
		return err
	}
	content, ok := f.Files[src]
	if !ok {
		return &os.PathError{Op: "rename", Path: src, Err: os.ErrNotExist}
	}
	f.Files[dst] = content
	delete(f.Files, src)
	f.addDirs(filepath.Dir(dst))
	return nil
}

func (f *MockFileSystem) Remove(path string) error {
	f.Mu.Lock()
	defer f.Mu.Unlock()
	path = filepath.Clean(path)

	if err := f.opErr("Remove", path); err != nil {
		return err
	}
	f.Removed = append(f.Removed, path)
	delete(f.Files, path)
	return nil
}

func (f *MockFileSystem) EnsureDirs(path string) error {
	f.Mu.Lock()
	defer f.Mu.Unlock()
	path = filepath.Clean(path)

	if err := f.opErr("EnsureDirs", path); err != nil {
		return err
	}
	f.addDirs(path)
	return nil
}

func (f *MockFileSystem) UserHomeDir() (string, error) {
	return f.HomeDir, f.HomeDirErr
}

// WalkDir visits root and its descendants in lexical order, honouring
// fs.SkipDir and fs.SkipAll like filepath.WalkDir.
func (f *MockFileSystem) WalkDir(root string, fn fs.WalkDirFunc) error {
	root = filepath.Clean(root)
	info, err := f.Stat(root)
	if err != nil {
		err = fn(root, nil, err)
	} else {
		err = f.walk(root, fs.FileInfoToDirEntry(info), fn)
	}
	if err == fs.SkipDir || err == fs.SkipAll {
		return nil
	}
	return err
}

func (f *MockFileSystem) walk(path string, d fs.DirEntry, fn fs.WalkDirFunc) error {
	if err := fn(path, d, nil); err != nil || !d.IsDir() {
		if err == fs.SkipDir && d.IsDir() {
			return nil
		}
		return err
	}

	if err := f.opErr("ReadDir", path); err != nil {
		if err := fn(path, d, err); err != nil {
			if err == fs.SkipDir {
				return nil
			}
			return err
		}
		return nil
	}

	// Listing a directory succeeds for entries that cannot be opened, so
	// errors injected for a child surface when it is read, not here.
	for _, child := range f.children(path) {
		f.Mu.RLock()
		info, err := f.lookup(child)
		f.Mu.RUnlock()
		if err != nil {
			if err := fn(child, nil, err); err != nil && err != fs.SkipDir {
				return err
			}
			continue
		}
		if err := f.walk(child, fs.FileInfoToDirEntry(info), fn); err != nil {
			if err == fs.SkipDir {
				break
			}
			return err
		}
	}
	return nil
}

func (f *MockFileSystem) children(dir string) []string {
	f.Mu.RLock()
	defer f.Mu.RUnlock()

	seen := make(map[string]bool)
	collect := func(p string) {
		if p != dir && filepath.Dir(p) == dir {
			seen[p] = true
		}
	}
	for p := range f.Files {
		collect(p)
	}
	for p := range f.Dirs {
		collect(p)
	}

	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.Compare(filepath.Base(out[i]), filepath.Base(out[j])) < 0
	})
	return out
}
