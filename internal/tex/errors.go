package tex

import (
	"errors"
	"fmt"
)

// ErrRootNotFound matches any *RootNotFoundError.
var ErrRootNotFound = errors.New("no root document found")

// RootNotFoundError is returned when no .tex file under Dir declares \documentclass.
type RootNotFoundError struct {
	Dir   string
	Cause error
}

func (e *RootNotFoundError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("no root document under %s: %v", e.Dir, e.Cause)
	}
	return fmt.Sprintf("no .tex file under %s contains \\documentclass", e.Dir)
}
func (e *RootNotFoundError) Unwrap() error        { return e.Cause }
func (e *RootNotFoundError) Is(target error) bool { return target == ErrRootNotFound }
