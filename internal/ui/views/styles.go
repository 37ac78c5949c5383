package views

import "github.com/charmbracelet/lipgloss"

var (
	ColorPrimary = lipgloss.Color("109")
	ColorDim     = lipgloss.Color("241")
	ColorSuccess = lipgloss.Color("108")
	ColorError   = lipgloss.Color("167")

	HeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	DimStyle    = lipgloss.NewStyle().Foreground(ColorDim)

	StatusBuildingStyle = lipgloss.NewStyle().Foreground(ColorPrimary)
	StatusDoneStyle     = lipgloss.NewStyle().Foreground(ColorSuccess)
	StatusFailedStyle   = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	StatusDefaultStyle  = lipgloss.NewStyle()

	ErrorBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorError).
			Padding(0, 1)
)
