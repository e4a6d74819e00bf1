package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/n0roo/mdhelper/internal/history"
)

var (
	// Colors
	primaryColor   = lipgloss.Color("#7C3AED") // Purple
	secondaryColor = lipgloss.Color("#10B981") // Green
	warningColor   = lipgloss.Color("#F59E0B") // Yellow
	errorColor     = lipgloss.Color("#EF4444") // Red
	mutedColor     = lipgloss.Color("#6B7280") // Gray

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(0, 1)

	// Pass and report outcome styles
	okStyle = lipgloss.NewStyle().
		Foreground(secondaryColor).
		Bold(true)

	skippedStyle = lipgloss.NewStyle().
			Foreground(warningColor)

	failedStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	dimStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	// Tab styles
	tabStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Foreground(mutedColor)

	activeTabStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Foreground(primaryColor).
			Bold(true).
			Underline(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			MarginTop(1)

	selectedItemStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("#374151")).
				Foreground(lipgloss.Color("#FFFFFF")).
				Bold(true)

	detailPanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(mutedColor).
				Padding(0, 1)
)

// StatusIcon returns the icon of a run status. An empty status is a pass
// still running.
func StatusIcon(status history.Status) string {
	switch status {
	case history.StatusSuccess:
		return okStyle.Render("✓")
	case history.StatusPartial:
		return skippedStyle.Render("○")
	case history.StatusFailed:
		return failedStyle.Render("✗")
	case "":
		return okStyle.Render("●")
	default:
		return dimStyle.Render("?")
	}
}
