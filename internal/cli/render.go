package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	filledStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	emptyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	headerStyle  = lipgloss.NewStyle().Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

const (
	DoneGlyph    = "✔"
	PendingGlyph = "✗"
	FilledCell   = "█"
	EmptyCell    = "░"

	// EmptyHabitsMessage is printed when no habits exist yet
	EmptyHabitsMessage = "No habits found. Use 'habit add <name>' to create your first habit."
)

// Glyph renders the completion marker for a habit
func Glyph(done bool) string {
	if done {
		return doneStyle.Render(DoneGlyph)
	}
	return pendingStyle.Render(PendingGlyph)
}

// Bar renders percent as width cells; partial cells round down.
func Bar(percent float64, width int) string {
	if width <= 0 {
		return ""
	}
	filled := int(float64(width) * percent / 100)
	filled = max(0, min(filled, width))

	return filledStyle.Render(strings.Repeat(FilledCell, filled)) +
		emptyStyle.Render(strings.Repeat(EmptyCell, width-filled))
}

// StatLine renders one habit's completion row
func StatLine(name string, percent float64, width int) string {
	return fmt.Sprintf("%s: %s %.1f%%", name, Bar(percent, width), percent)
}

func Header(s string) string {
	return headerStyle.Render(s)
}

func Warn(s string) string {
	return warnStyle.Render(s)
}
