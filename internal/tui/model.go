package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habit/internal/models"
	"github.com/julianstephens/habit/internal/storage"
	"github.com/julianstephens/habit/internal/tui/components/habits"
	"github.com/julianstephens/habit/internal/tui/components/stats"
)

type SessionState int

const (
	StateBrowse SessionState = iota
	StateAddHabit
)

type Model struct {
	store     storage.Provider
	state     SessionState
	keys      KeyMap
	help      help.Model
	habits    habits.Model
	stats     stats.Model
	input     textinput.Model
	days      int
	showStats bool
	status    string
	err       error
	quitting  bool
	width     int
	height    int
	now       func() time.Time
}

func NewModel(store storage.Provider, days int) Model {
	ti := textinput.New()
	ti.Placeholder = "Habit name"
	ti.CharLimit = 128
	ti.Prompt = "New habit: "

	list := habits.New(nil, 0, 0)

	return Model{
		store:  store,
		state:  StateBrowse,
		keys:   DefaultKeyMap().withListKeys(list.Keys()),
		help:   help.New(),
		habits: list,
		stats:  stats.New(days),
		input:  ti,
		days:   days,
		now:    time.Now,
	}
}

type habitsLoadedMsg struct {
	habits []models.Habit
}

type statsLoadedMsg struct {
	stats []models.HabitStat
}

type habitAddedMsg struct {
	habit models.Habit
}

type habitMarkedMsg struct {
	name  string
	entry models.Entry
}

type errMsg struct {
	err error
}

func (e errMsg) Error() string { return e.err.Error() }

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadHabits(), m.loadStats())
}

func (m Model) loadHabits() tea.Cmd {
	store := m.store
	return func() tea.Msg {
		list, err := store.ListHabits(true)
		if err != nil {
			return errMsg{err}
		}
		return habitsLoadedMsg{habits: list}
	}
}

func (m Model) loadStats() tea.Cmd {
	store, days := m.store, m.days
	return func() tea.Msg {
		result, err := store.GetStats(days)
		if err != nil {
			return errMsg{err}
		}
		return statsLoadedMsg{stats: result}
	}
}

func (m Model) addHabit(name string) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		h, err := store.AddHabit(name)
		if err != nil {
			return errMsg{err}
		}
		return habitAddedMsg{habit: h}
	}
}

func (m Model) markDone(name string) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		e, err := store.MarkDone(name)
		if err != nil {
			return errMsg{err}
		}
		return habitMarkedMsg{name: name, entry: e}
	}
}

func (m *Model) layout() {
	width := m.width - docStyle.GetHorizontalFrameSize()
	height := m.height - docStyle.GetVerticalFrameSize() - 4
	if m.state == StateAddHabit {
		height -= 2
	}
	m.habits.SetSize(width, max(height, 3))
	m.stats.SetWidth(width - statsPaneStyle.GetHorizontalFrameSize())
	m.help.Width = width
	m.input.Width = max(width-len(m.input.Prompt)-2, 10)
}
