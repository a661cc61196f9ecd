package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habit/internal/models"
	"github.com/julianstephens/habit/internal/tui/components/habits"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case habitsLoadedMsg:
		return m, m.habits.SetHabits(msg.habits)

	case statsLoadedMsg:
		m.stats.SetStats(msg.stats)
		return m, nil

	case habitAddedMsg:
		m.err = nil
		m.status = fmt.Sprintf("Added habit %q", msg.habit.Name)
		return m, tea.Batch(m.loadHabits(), m.loadStats())

	case habitMarkedMsg:
		m.err = nil
		m.status = fmt.Sprintf("Marked %q done for %s", msg.name, msg.entry.Day)
		return m, tea.Batch(m.loadHabits(), m.loadStats())

	case errMsg:
		m.err = msg.err
		m.status = ""
		return m, nil

	case habits.AddHabitMsg:
		m.state = StateAddHabit
		m.input.Reset()
		m.layout()
		return m, m.input.Focus()

	case habits.MarkHabitMsg:
		return m, m.markDone(msg.Name)

	case tea.KeyMsg:
		if m.state == StateAddHabit {
			return m.updateAddHabit(msg)
		}
		if !m.habits.Filtering() {
			switch {
			case key.Matches(msg, m.keys.Quit):
				m.quitting = true
				return m, tea.Quit
			case key.Matches(msg, m.keys.Stats):
				m.showStats = !m.showStats
				return m, nil
			case key.Matches(msg, m.keys.Help):
				m.help.ShowAll = !m.help.ShowAll
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	m.habits, cmd = m.habits.Update(msg)
	return m, cmd
}

func (m Model) updateAddHabit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.state = StateBrowse
		m.input.Blur()
		m.layout()
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		name := m.input.Value()
		if err := models.ValidateHabitName(name); err != nil {
			m.err = err
			return m, nil
		}
		m.state = StateBrowse
		m.input.Blur()
		m.layout()
		return m, m.addHabit(strings.TrimSpace(name))

	case msg.Type == tea.KeyCtrlC:
		m.quitting = true
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}
