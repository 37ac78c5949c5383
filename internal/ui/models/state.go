package models

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
)

// Phase of the watch loop as shown in the status bar.
type Phase string

const (
	PhaseStarting Phase = "starting"
	PhaseWatching Phase = "watching"
	PhaseBuilding Phase = "building"
	PhaseDone     Phase = "done"
	PhaseFailed   Phase = "failed"
)

// Run is one completed handler invocation.
type Run struct {
	At      time.Time
	Handler string
	Paths   []string
	Elapsed time.Duration
	Err     error
}

// Failed reports whether the run returned an error.
func (r Run) Failed() bool {
	return r.Err != nil
}

// State holds everything the views need to draw a frame.
type State struct {
	Root    string
	Dirs    int
	Phase   Phase
	Pending []string
	Runs    []Run

	// Most recent watcher error, cleared on the next successful build
	WatchErr string

	Spinner spinner.Model
	Width   int
	Height  int
}

// LastRun returns the most recent run, if any.
func (s State) LastRun() (Run, bool) {
	if len(s.Runs) == 0 {
		return Run{}, false
	}
	return s.Runs[len(s.Runs)-1], true
}
