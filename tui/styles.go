package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "4", Dark: "12"})
	labelStyle      = lipgloss.NewStyle().Width(7).Foreground(lipgloss.AdaptiveColor{Light: "240", Dark: "245"})
	fieldErrorStyle = lipgloss.NewStyle().PaddingLeft(7).Foreground(lipgloss.AdaptiveColor{Light: "1", Dark: "9"})
	successStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "2", Dark: "10"})
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "1", Dark: "9"})
	dimStyle        = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "240", Dark: "240"})
	selectedStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "5", Dark: "13"})
)

// focusedBorder returns a rounded border in the accent colour.
func focusedBorder() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.AdaptiveColor{Light: "4", Dark: "12"}).
		Padding(0, 1)
}

// unfocusedBorder returns a dim rounded border.
func unfocusedBorder() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.AdaptiveColor{Light: "240", Dark: "240"}).
		Padding(0, 1)
}
