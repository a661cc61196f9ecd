package stats

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habit/internal/models"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	nameStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true)
)

const minBarWidth = 10

type Model struct {
	stats []models.HabitStat
	days  int
	bar   progress.Model
	width int
}

func New(days int) Model {
	return Model{
		days: days,
		bar:  progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
	}
}

func (m *Model) SetStats(stats []models.HabitStat) {
	m.stats = stats
}

func (m Model) Stats() []models.HabitStat {
	return m.stats
}

func (m *Model) SetWidth(width int) {
	m.width = width
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Last %d days", m.days)))
	b.WriteString("\n")

	if len(m.stats) == 0 {
		b.WriteString(dimStyle.Render("No habits tracked yet."))
		return b.String()
	}

	nameWidth := 0
	for _, s := range m.stats {
		nameWidth = max(nameWidth, lipgloss.Width(s.Name))
	}

	bar := m.bar
	bar.Width = max(minBarWidth, m.width-nameWidth-12)

	for _, s := range m.stats {
		name := nameStyle.Width(nameWidth).Render(s.Name)
		fmt.Fprintf(&b, "%s  %s %5.1f%%\n", name, bar.ViewAs(s.Percent/100), s.Percent)
	}

	return strings.TrimRight(b.String(), "\n")
}
