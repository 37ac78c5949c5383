// Package ui renders a running watch session in the terminal.
package ui

import (
	"context"
	"sync"
	"time"

	"github.com/Cyclone1070/preprint/internal/ui/services"
	"github.com/Cyclone1070/preprint/internal/watch"
	tea "github.com/charmbracelet/bubbletea"
)

var _ watch.Reporter = (*UI)(nil)

// UI implements watch.Reporter on top of a Bubble Tea program.
type UI struct {
	program *tea.Program

	// Watcher -> UI
	watchingChan  chan watchingMsg
	triggeredChan chan triggeredMsg
	finishedChan  chan finishedMsg
	errorChan     chan watchErrorMsg

	// Closed once the program exits so reporters never block on a dead UI
	done     chan struct{}
	stopOnce sync.Once
}

// Internal message types
type watchingMsg struct {
	root string
	dirs int
}

type triggeredMsg struct {
	paths []string
}

type finishedMsg struct {
	handler string
	elapsed time.Duration
	err     error
}

type watchErrorMsg struct {
	err error
}

// UIChannels holds the channels between the watcher and the model.
type UIChannels struct {
	Watching  chan watchingMsg
	Triggered chan triggeredMsg
	Finished  chan finishedMsg
	Errors    chan watchErrorMsg
	Commands  chan UICommand
}

// NewUIChannels creates a new UIChannels struct with default buffers
func NewUIChannels() *UIChannels {
	return &UIChannels{
		Watching:  make(chan watchingMsg, 1),
		Triggered: make(chan triggeredMsg, 10),
		Finished:  make(chan finishedMsg, 10),
		Errors:    make(chan watchErrorMsg, 10),
		Commands:  make(chan UICommand, 10),
	}
}

// NewUI creates a new Bubble Tea UI
func NewUI(
	channels *UIChannels,
	renderer services.MarkdownRenderer,
	spinnerFactory SpinnerFactory,
	opts ...tea.ProgramOption,
) *UI {
	if channels == nil {
		panic("channels is required")
	}
	if spinnerFactory == nil {
		panic("spinnerFactory is required")
	}

	model := newBubbleTeaModel(
		channels.Watching,
		channels.Triggered,
		channels.Finished,
		channels.Errors,
		channels.Commands,
		renderer,
		spinnerFactory,
	)

	return &UI{
		program:       tea.NewProgram(model, opts...),
		watchingChan:  channels.Watching,
		triggeredChan: channels.Triggered,
		finishedChan:  channels.Finished,
		errorChan:     channels.Errors,
		done:          make(chan struct{}),
	}
}

// Start runs the program until the user quits or Quit is called.
func (u *UI) Start() error {
	defer u.stop()
	_, err := u.program.Run()
	return err
}

// Quit asks the program to exit.
func (u *UI) Quit() {
	u.program.Quit()
}

func (u *UI) stop() {
	u.stopOnce.Do(func() { close(u.done) })
}

func (u *UI) Watching(root string, dirs int) {
	send(u.watchingChan, watchingMsg{root: root, dirs: dirs}, u.done)
}

func (u *UI) Triggered(paths []string) {
	send(u.triggeredChan, triggeredMsg{paths: paths}, u.done)
}

func (u *UI) Finished(handler string, elapsed time.Duration, err error) {
	send(u.finishedChan, finishedMsg{handler: handler, elapsed: elapsed, err: err}, u.done)
}

func (u *UI) WatchError(err error) {
	send(u.errorChan, watchErrorMsg{err: err}, u.done)
}

func send[T any](ch chan<- T, v T, done <-chan struct{}) {
	select {
	case ch <- v:
	case <-done:
	}
}

// ForwardCommands passes user commands to r until ctx is done.
func ForwardCommands(ctx context.Context, commands <-chan UICommand, r Rebuilder) {
	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-commands:
			if cmd == CommandRebuild {
				r.Rebuild()
			}
		}
	}
}
