package fsutil

import "fmt"

// AtomicWriteError reports which step of a temp-file-and-rename write failed.
// Path is the destination, not the temp file.
type AtomicWriteError struct {
	Path  string
	Step  string
	Cause error
}

func (e *AtomicWriteError) Error() string {
	return fmt.Sprintf("write %s: %s: %v", e.Path, e.Step, e.Cause)
}

func (e *AtomicWriteError) Unwrap() error { return e.Cause }

// Steps of an atomic write, in order.
const (
	StepCreateTemp = "create temp"
	StepWrite      = "write temp"
	StepSync       = "sync temp"
	StepClose      = "close temp"
	StepRename     = "rename"
	StepChmod      = "chmod"
)

// RenameError is returned by Move.
type RenameError struct {
	Old   string
	New   string
	Cause error
}

func (e *RenameError) Error() string {
	return fmt.Sprintf("move %s to %s: %v", e.Old, e.New, e.Cause)
}

func (e *RenameError) Unwrap() error { return e.Cause }

// CopyError is returned by CopyFile.
type CopyError struct {
	Src   string
	Dst   string
	Cause error
}

func (e *CopyError) Error() string {
	return fmt.Sprintf("copy %s to %s: %v", e.Src, e.Dst, e.Cause)
}

func (e *CopyError) Unwrap() error { return e.Cause }
