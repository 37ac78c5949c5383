package latexdiff

import (
	"errors"
	"fmt"
)

// ErrNoPDF is returned when latexmk finishes without producing the diff PDF.
var ErrNoPDF = errors.New("latexmk produced no PDF")

// StageError wraps a failure with the pipeline stage it happened in.
type StageError struct {
	Stage string
	Cause error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("diff %s: %v", e.Stage, e.Cause)
}
func (e *StageError) Unwrap() error { return e.Cause }

// MasterAtCommitError is returned when the root document is missing from the
// commit being diffed against.
type MasterAtCommitError struct {
	Ref   string
	Path  string
	Cause error
}

func (e *MasterAtCommitError) Error() string {
	return fmt.Sprintf("cannot read %s at %s: %v", e.Path, e.Ref, e.Cause)
}
func (e *MasterAtCommitError) Unwrap() error { return e.Cause }
