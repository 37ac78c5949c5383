package views

import (
	"fmt"
	"strings"

	"github.com/Cyclone1070/preprint/internal/ui/models"
)

// RenderHistory lists the most recent runs, newest last. limit <= 0 shows all.
func RenderHistory(s models.State, limit int) string {
	if len(s.Runs) == 0 {
		return DimStyle.Render("No builds yet. Save a file to start one.")
	}

	runs := s.Runs
	if limit > 0 && len(runs) > limit {
		runs = runs[len(runs)-limit:]
	}

	lines := make([]string, 0, len(runs))
	for _, run := range runs {
		icon := StatusDoneStyle.Render("✔")
		if run.Failed() {
			icon = StatusFailedStyle.Render("✘")
		}
		lines = append(lines, fmt.Sprintf("%s %s %s %s  %s",
			DimStyle.Render(run.At.Format("15:04:05")),
			icon,
			run.Handler,
			DimStyle.Render(formatElapsed(run.Elapsed)),
			DimStyle.Render(summarizePaths(run.Paths)),
		))
	}
	return strings.Join(lines, "\n")
}

func summarizePaths(paths []string) string {
	switch len(paths) {
	case 0:
		return ""
	case 1:
		return paths[0]
	default:
		return fmt.Sprintf("%s +%d", paths[0], len(paths)-1)
	}
}
