package gitutil

import (
	"errors"
	"fmt"
)

// -- Sentinels --

var (
	// ErrNotFound matches any *NotFoundError.
	ErrNotFound = errors.New("path not found at commit")
	// ErrNotUTF8 matches any *DecodeError.
	ErrNotUTF8 = errors.New("blob is not valid UTF-8")
	// ErrAmbiguousRef is returned when a short hash matches more than one commit.
	ErrAmbiguousRef = errors.New("ambiguous commit reference")
)

// OpenError is returned when no repository can be opened at a path.
type OpenError struct {
	Path  string
	Cause error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("failed to open git repository at %s: %v", e.Path, e.Cause)
}
func (e *OpenError) Unwrap() error { return e.Cause }

// RefError is returned when a commit reference does not resolve to a commit.
type RefError struct {
	Ref   string
	Cause error
}

func (e *RefError) Error() string {
	return fmt.Sprintf("cannot resolve %q to a commit: %v", e.Ref, e.Cause)
}
func (e *RefError) Unwrap() error { return e.Cause }

// NotFoundError is returned when a path does not exist in a commit's tree.
type NotFoundError struct {
	Ref   string
	Path  string
	Cause error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s does not exist at %s", e.Path, e.Ref)
}
func (e *NotFoundError) Unwrap() error        { return e.Cause }
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// DecodeError is returned when a blob's bytes are not valid UTF-8 text.
type DecodeError struct {
	Ref  string
	Path string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s at %s is not valid UTF-8 text", e.Path, e.Ref)
}
func (e *DecodeError) Is(target error) bool { return target == ErrNotUTF8 }

// OutsideRepoError is returned when a filesystem path lies outside the repository worktree.
type OutsideRepoError struct {
	Path string
	Root string
}

func (e *OutsideRepoError) Error() string {
	return fmt.Sprintf("%s is outside the repository at %s", e.Path, e.Root)
}

// GitignoreReadError is returned when .gitignore cannot be read.
type GitignoreReadError struct {
	Path  string
	Cause error
}

func (e *GitignoreReadError) Error() string {
	return fmt.Sprintf("failed to read .gitignore at %s: %v", e.Path, e.Cause)
}
func (e *GitignoreReadError) Unwrap() error { return e.Cause }
