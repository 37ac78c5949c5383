package views

import (
	"github.com/Cyclone1070/preprint/internal/ui/models"
	"github.com/Cyclone1070/preprint/internal/ui/services"
	"github.com/charmbracelet/lipgloss"
)

const helpLine = "b: rebuild  c: clear  q: quit"

// RenderRoot renders the complete watch screen.
func RenderRoot(s models.State, renderer services.MarkdownRenderer) string {
	historyRows := 10
	if s.Height > 0 {
		historyRows = max(s.Height-8, 3)
	}

	sections := []string{
		HeaderStyle.Render("preprint watch"),
		"",
		RenderHistory(s, historyRows),
		"",
	}
	if box := RenderErrorBox(s, renderer); box != "" {
		sections = append(sections, box)
	}
	sections = append(sections, RenderStatus(s), DimStyle.Render(helpLine))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
