package pack

import "fmt"

// MasterReadError is returned when the root document cannot be read.
type MasterReadError struct {
	Path  string
	Cause error
}

func (e *MasterReadError) Error() string {
	return fmt.Sprintf("cannot read root document %s: %v", e.Path, e.Cause)
}
func (e *MasterReadError) Unwrap() error { return e.Cause }

// InstallError is returned when the package directory or file cannot be written.
type InstallError struct {
	Path  string
	Cause error
}

func (e *InstallError) Error() string {
	return fmt.Sprintf("cannot install %s: %v", e.Path, e.Cause)
}
func (e *InstallError) Unwrap() error { return e.Cause }
