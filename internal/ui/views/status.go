package views

import (
	"fmt"
	"time"

	"github.com/Cyclone1070/preprint/internal/ui/models"
)

// RenderStatus renders the one-line status bar.
func RenderStatus(s models.State) string {
	switch s.Phase {
	case models.PhaseBuilding:
		return StatusBuildingStyle.Render(fmt.Sprintf("%s Building (%s)", s.Spinner.View(), plural(len(s.Pending), "change")))
	case models.PhaseDone:
		run, _ := s.LastRun()
		return StatusDoneStyle.Render(fmt.Sprintf("✔ %s finished in %s", run.Handler, formatElapsed(run.Elapsed)))
	case models.PhaseFailed:
		run, _ := s.LastRun()
		return StatusFailedStyle.Render(fmt.Sprintf("✘ %s failed after %s", run.Handler, formatElapsed(run.Elapsed)))
	case models.PhaseWatching:
		return StatusDefaultStyle.Render(fmt.Sprintf("Watching %s (%s)", s.Root, plural(s.Dirs, "directory")))
	default:
		return StatusDefaultStyle.Render("Starting")
	}
}

func formatElapsed(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(100 * time.Millisecond).String()
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	if word == "directory" {
		return fmt.Sprintf("%d directories", n)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
