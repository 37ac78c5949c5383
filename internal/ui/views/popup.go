package views

import (
	"fmt"

	"github.com/Cyclone1070/preprint/internal/ui/models"
	"github.com/Cyclone1070/preprint/internal/ui/services"
)

// RenderErrorBox renders the error of the last run when it failed, or the
// latest watcher error. It returns "" when there is nothing to show.
func RenderErrorBox(s models.State, renderer services.MarkdownRenderer) string {
	var content string
	if run, ok := s.LastRun(); ok && run.Failed() {
		content = fmt.Sprintf("**%s failed**\n\n```\n%s\n```\n", run.Handler, run.Err)
	} else if s.WatchErr != "" {
		content = fmt.Sprintf("**watch error**\n\n```\n%s\n```\n", s.WatchErr)
	} else {
		return ""
	}

	width := s.Width - 4
	rendered, err := services.RenderMarkdown(content, width, renderer)
	if err != nil {
		rendered = content
	}
	return ErrorBoxStyle.Render(rendered)
}
