package terminal

import (
	"github.com/charmbracelet/lipgloss"

	"pomodoro/internal/core/cycle"
)

var (
	focusColor = lipgloss.Color("203")
	breakColor = lipgloss.Color("78")
	idleColor  = lipgloss.Color("245")

	clockStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("231")).
			Padding(0, 1)

	detailStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))

	playingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("147"))

	noteStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	frameStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(1, 2)
)

func phaseColor(state cycle.CycleState) lipgloss.Color {
	switch state {
	case cycle.CycleFocus:
		return focusColor
	case cycle.CycleBreak:
		return breakColor
	default:
		return idleColor
	}
}

func titleStyle(state cycle.CycleState) lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("231")).
		Background(phaseColor(state)).
		Padding(0, 1)
}
