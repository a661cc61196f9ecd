package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habit/internal/models"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	sections := []string{m.viewHeader(), m.habits.View()}

	if m.showStats {
		sections = append(sections, statsPaneStyle.Render(m.stats.View()))
	}
	if m.state == StateAddHabit {
		sections = append(sections, m.input.View())
	}
	if line := m.viewStatus(); line != "" {
		sections = append(sections, line)
	}

	if m.state == StateAddHabit {
		sections = append(sections, m.help.View(inputKeyMap{Submit: m.keys.Submit, Cancel: m.keys.Cancel}))
	} else {
		sections = append(sections, m.help.View(m.keys))
	}

	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m Model) viewHeader() string {
	list := m.habits.Habits()
	done := 0
	for _, h := range list {
		if h.IsCompletedToday() {
			done++
		}
	}

	progress := subtleStyle.Render(fmt.Sprintf("%s  %d/%d done", models.FormatDay(m.now()), done, len(list)))
	return lipgloss.JoinHorizontal(lipgloss.Center, headerStyle.Render("Habits"), " ", progress)
}

func (m Model) viewStatus() string {
	if m.err != nil {
		return errorStyle.Render("Error: " + m.err.Error())
	}
	if m.status != "" {
		return successStyle.Render(m.status)
	}
	return ""
}
