package habits

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habit/internal/models"
)

type AddHabitMsg struct{}

type MarkHabitMsg struct {
	Name string
}

type Item struct {
	Habit models.Habit
}

func (i Item) Title() string {
	if i.Habit.IsCompletedToday() {
		return "✓ " + i.Habit.Name
	}
	return "○ " + i.Habit.Name
}

func (i Item) Description() string {
	status := "not completed today"
	if i.Habit.IsCompletedToday() {
		status = "completed today"
	}
	return fmt.Sprintf("%s | since %s", status, models.FormatDay(i.Habit.CreatedAt))
}

func (i Item) FilterValue() string { return i.Habit.Name }

type KeyMap struct {
	Add  key.Binding
	Mark key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add habit"),
		),
		Mark: key.NewBinding(
			key.WithKeys("m", " "),
			key.WithHelp("m/space", "mark done"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(habits []models.Habit, width, height int) Model {
	l := list.New(toItems(habits), list.NewDefaultDelegate(), width, height)
	l.Title = "Habits"
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.DisableQuitKeybindings()

	return Model{
		list: l,
		keys: DefaultKeyMap(),
	}
}

func toItems(habits []models.Habit) []list.Item {
	items := make([]list.Item, len(habits))
	for i, h := range habits {
		items[i] = Item{Habit: h}
	}
	return items
}

// SetHabits replaces the list contents, keeping the cursor where it was.
func (m *Model) SetHabits(habits []models.Habit) tea.Cmd {
	index := m.list.Index()
	cmd := m.list.SetItems(toItems(habits))
	if index < len(habits) {
		m.list.Select(index)
	}
	return cmd
}

// Selected returns the habit under the cursor
func (m Model) Selected() (models.Habit, bool) {
	i, ok := m.list.SelectedItem().(Item)
	if !ok {
		return models.Habit{}, false
	}
	return i.Habit, true
}

// Habits returns the habits currently shown
func (m Model) Habits() []models.Habit {
	items := m.list.Items()
	habits := make([]models.Habit, 0, len(items))
	for _, item := range items {
		if i, ok := item.(Item); ok {
			habits = append(habits, i.Habit)
		}
	}
	return habits
}

// Filtering reports whether the list is capturing keystrokes for its filter
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// Keys returns the bindings the list component handles itself
func (m Model) Keys() KeyMap {
	return m.keys
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.Filtering() {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Add):
			return m, func() tea.Msg { return AddHabitMsg{} }
		case key.Matches(msg, m.keys.Mark):
			if h, ok := m.Selected(); ok && !h.IsCompletedToday() {
				return m, func() tea.Msg { return MarkHabitMsg{Name: h.Name} }
			}
			return m, nil
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && !m.Filtering() {
		return "\n  No habits yet.\n  Press 'a' to add one."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
