package storage

import "github.com/julianstephens/habit/internal/models"

// Provider is the habit store consumed by the CLI and TUI.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Habits
	AddHabit(name string) (models.Habit, error)
	GetHabit(id int64) (models.Habit, bool, error)
	GetHabitByName(name string) (models.Habit, bool, error)
	ListHabits(showAll bool) ([]models.Habit, error)

	// Entries
	MarkDone(name string) (models.Entry, error)
	GetEntry(id int64) (models.Entry, bool, error)
	GetEntriesForHabit(habitID int64, startDay, endDay string) ([]models.Entry, error)

	// Stats over the inclusive window of days ending today
	GetStats(days int) ([]models.HabitStat, error)

	// Utils
	GetConfigPath() string
}
