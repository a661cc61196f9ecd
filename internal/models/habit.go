package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/habit/internal/constants"
)

var (
	ErrEmptyHabitName   = errors.New("habit name cannot be empty")
	ErrInvalidHabitID   = errors.New("habit ID must be positive")
	ErrInvalidEntryID   = errors.New("entry ID must be positive")
	ErrInvalidEntryDate = errors.New("entry date must be in YYYY-MM-DD format")
	ErrFutureEntryDate  = errors.New("entry date cannot be in the future")
)

// Habit is a named activity tracked for daily completion
type Habit struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	// CompletedToday is only set by status-aware listings.
	CompletedToday *bool `json:"completed_today,omitempty"`
}

// NewHabit builds a Habit and checks its invariants.
func NewHabit(id int64, name string, createdAt time.Time) (Habit, error) {
	h := Habit{ID: id, Name: name, CreatedAt: createdAt}
	if err := h.Validate(); err != nil {
		return Habit{}, err
	}
	return h, nil
}

func (h Habit) Validate() error {
	if err := ValidateHabitName(h.Name); err != nil {
		return err
	}
	if h.ID <= 0 {
		return ErrInvalidHabitID
	}
	return nil
}

// IsCompletedToday reports the listing status, treating an unset status as false.
func (h Habit) IsCompletedToday() bool {
	return h.CompletedToday != nil && *h.CompletedToday
}

// ValidateHabitName rejects names that are empty or only whitespace.
// Names are not normalized; the caller's string is stored as given.
func ValidateHabitName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyHabitName
	}
	return nil
}

// Entry records that a habit was completed on a calendar day
type Entry struct {
	ID        int64     `json:"id"`
	HabitID   int64     `json:"habit_id"`
	Day       string    `json:"day"` // YYYY-MM-DD format
	CreatedAt time.Time `json:"created_at"`
}

// NewEntry builds an Entry and checks its invariants against today's date.
func NewEntry(id, habitID int64, day string, createdAt, today time.Time) (Entry, error) {
	e := Entry{ID: id, HabitID: habitID, Day: day, CreatedAt: createdAt}
	if err := e.Validate(today); err != nil {
		return Entry{}, err
	}
	return e, nil
}

// Validate checks the entry invariants. Dates are compared as calendar days
// in today's location, so any time on the current day is accepted.
func (e Entry) Validate(today time.Time) error {
	if e.ID <= 0 {
		return ErrInvalidEntryID
	}
	if e.HabitID <= 0 {
		return ErrInvalidHabitID
	}
	day, err := ParseDay(e.Day, today.Location())
	if err != nil {
		return err
	}
	if day.After(StartOfDay(today)) {
		return fmt.Errorf("%w: %s", ErrFutureEntryDate, e.Day)
	}
	return nil
}

// HabitStat is one habit's completion rate over a window of days
type HabitStat struct {
	Name      string  `json:"name"`
	Completed int     `json:"completed"`
	Days      int     `json:"days"`
	Percent   float64 `json:"percent"`
}

// ParseDay parses a YYYY-MM-DD string as midnight in loc.
func ParseDay(day string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(constants.DateFormat, day, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidEntryDate, day)
	}
	return t, nil
}

// FormatDay formats t as a calendar date in t's own location.
func FormatDay(t time.Time) string {
	return t.Format(constants.DateFormat)
}

// StartOfDay truncates t to midnight in its location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
