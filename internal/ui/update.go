package ui

import (
	"time"

	"github.com/Cyclone1070/preprint/internal/ui/models"
	"github.com/Cyclone1070/preprint/internal/ui/services"
	"github.com/Cyclone1070/preprint/internal/ui/views"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// maxRuns bounds the history kept in memory.
const maxRuns = 50

// BubbleTeaModel implements tea.Model
type BubbleTeaModel struct {
	state models.State

	// Dependencies
	renderer services.MarkdownRenderer
	now      func() time.Time

	// Channels from the watcher
	watchingChan  <-chan watchingMsg
	triggeredChan <-chan triggeredMsg
	finishedChan  <-chan finishedMsg
	errorChan     <-chan watchErrorMsg

	// UI -> watch loop
	commandChan chan<- UICommand
}

// SpinnerFactory creates a new spinner
type SpinnerFactory func() spinner.Model

// DefaultSpinner is the spinner used by the watch command.
func DefaultSpinner() spinner.Model {
	return spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(views.StatusBuildingStyle),
	)
}

func newBubbleTeaModel(
	watchingChan <-chan watchingMsg,
	triggeredChan <-chan triggeredMsg,
	finishedChan <-chan finishedMsg,
	errorChan <-chan watchErrorMsg,
	commandChan chan<- UICommand,
	renderer services.MarkdownRenderer,
	spinnerFactory SpinnerFactory,
) BubbleTeaModel {
	return BubbleTeaModel{
		state: models.State{
			Phase:   models.PhaseStarting,
			Spinner: spinnerFactory(),
		},
		renderer:      renderer,
		now:           time.Now,
		watchingChan:  watchingChan,
		triggeredChan: triggeredChan,
		finishedChan:  finishedChan,
		errorChan:     errorChan,
		commandChan:   commandChan,
	}
}

// Init initializes the model
func (m BubbleTeaModel) Init() tea.Cmd {
	return tea.Batch(
		listen(m.watchingChan),
		listen(m.triggeredChan),
		listen(m.finishedChan),
		listen(m.errorChan),
	)
}

// Update handles messages
func (m BubbleTeaModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.state.Width = msg.Width
		m.state.Height = msg.Height
		return m, nil

	case spinner.TickMsg:
		// Let the tick chain lapse while idle; the next build restarts it.
		if m.state.Phase != models.PhaseBuilding {
			return m, nil
		}
		var cmd tea.Cmd
		m.state.Spinner, cmd = m.state.Spinner.Update(msg)
		return m, cmd

	case watchingMsg:
		m.state.Root = msg.root
		m.state.Dirs = msg.dirs
		m.state.Phase = models.PhaseWatching
		return m, listen(m.watchingChan)

	case triggeredMsg:
		m.state.Phase = models.PhaseBuilding
		m.state.Pending = msg.paths
		return m, tea.Batch(listen(m.triggeredChan), m.state.Spinner.Tick)

	case finishedMsg:
		m.state.Runs = append(m.state.Runs, models.Run{
			At:      m.now(),
			Handler: msg.handler,
			Paths:   m.state.Pending,
			Elapsed: msg.elapsed,
			Err:     msg.err,
		})
		if len(m.state.Runs) > maxRuns {
			m.state.Runs = m.state.Runs[len(m.state.Runs)-maxRuns:]
		}
		m.state.Pending = nil
		if msg.err != nil {
			m.state.Phase = models.PhaseFailed
		} else {
			m.state.Phase = models.PhaseDone
			m.state.WatchErr = ""
		}
		return m, listen(m.finishedChan)

	case watchErrorMsg:
		m.state.WatchErr = msg.err.Error()
		return m, listen(m.errorChan)
	}

	return m, nil
}

func (m BubbleTeaModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "b":
		select {
		case m.commandChan <- CommandRebuild:
		default:
		}

	case "c":
		m.state.Runs = nil
		m.state.WatchErr = ""
		if m.state.Phase != models.PhaseBuilding && m.state.Root != "" {
			m.state.Phase = models.PhaseWatching
		}
	}
	return m, nil
}

// View renders the UI
func (m BubbleTeaModel) View() string {
	return views.RenderRoot(m.state, m.renderer)
}

func listen[T any](ch <-chan T) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}
