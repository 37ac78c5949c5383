// Package fsutil wraps the OS filesystem primitives used by the inliners,
// the diff pipeline and the packager.
package fsutil

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// tempFile is the part of *os.File an atomic write touches.
type tempFile interface {
	io.Writer
	Sync() error
	Close() error
	Name() string
}

// OSFileSystem is the real filesystem. The syscalls used by WriteFileAtomic
// are fields so tests can fail each step.
type OSFileSystem struct {
	createTemp func(dir, pattern string) (tempFile, error)
	rename     func(oldpath, newpath string) error
	chmod      func(name string, mode os.FileMode) error
	remove     func(name string) error
}

func NewOSFileSystem() *OSFileSystem {
	return &OSFileSystem{
		createTemp: func(dir, pattern string) (tempFile, error) {
			return os.CreateTemp(dir, pattern)
		},
		rename: os.Rename,
		chmod:  os.Chmod,
		remove: os.Remove,
	}
}

func (r *OSFileSystem) Stat(path string) (os.FileInfo, error) {
	return os.Stat(path)
}

// Exists reports whether path names an existing regular file.
func (r *OSFileSystem) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func (r *OSFileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// ReadHead returns at most the first n bytes of a file, or all of it when
// n <= 0. Used to sniff for \documentclass without reading whole chapters.
func (r *OSFileSystem) ReadHead(path string, n int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var src io.Reader = f
	if n > 0 {
		src = io.LimitReader(f, n)
	}
	return io.ReadAll(src)
}

// WriteFileAtomic writes to a temp file next to path and renames it into
// place, so a watcher never sees a half-written _current.tex.
func (r *OSFileSystem) WriteFileAtomic(path string, content []byte, perm os.FileMode) error {
	fail := func(step string, cause error) error {
		return &AtomicWriteError{Path: path, Step: step, Cause: cause}
	}

	tmp, err := r.createTemp(filepath.Dir(path), ".preprint-*")
	if err != nil {
		return fail(StepCreateTemp, err)
	}
	name := tmp.Name()
	closed, renamed := false, false
	defer func() {
		if !closed {
			_ = tmp.Close()
		}
		if !renamed {
			_ = r.remove(name)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fail(StepWrite, err)
	}
	if err := tmp.Sync(); err != nil {
		return fail(StepSync, err)
	}
	closed = true
	if err := tmp.Close(); err != nil {
		return fail(StepClose, err)
	}
	if err := r.rename(name, path); err != nil {
		return fail(StepRename, err)
	}
	renamed = true
	if err := r.chmod(path, perm); err != nil {
		return fail(StepChmod, err)
	}
	return nil
}

// CopyFile copies src to dst, replacing dst if it exists.
func (r *OSFileSystem) CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return &CopyError{Src: src, Dst: dst, Cause: err}
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return &CopyError{Src: src, Dst: dst, Cause: err}
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return &CopyError{Src: src, Dst: dst, Cause: err}
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return &CopyError{Src: src, Dst: dst, Cause: err}
	}
	if err := out.Close(); err != nil {
		return &CopyError{Src: src, Dst: dst, Cause: err}
	}
	return nil
}

// Move renames src to dst.
func (r *OSFileSystem) Move(src, dst string) error {
	if err := r.rename(src, dst); err != nil {
		return &RenameError{Old: src, New: dst, Cause: err}
	}
	return nil
}

// Remove deletes a file. A missing file is not an error.
func (r *OSFileSystem) Remove(path string) error {
	if err := r.remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// EnsureDirs is mkdir -p.
func (r *OSFileSystem) EnsureDirs(path string) error {
	return os.MkdirAll(path, 0o755)
}

func (r *OSFileSystem) UserHomeDir() (string, error) {
	return os.UserHomeDir()
}

// WalkDir walks the tree rooted at root in lexical order.
func (r *OSFileSystem) WalkDir(root string, fn fs.WalkDirFunc) error {
	return filepath.WalkDir(root, fn)
}
