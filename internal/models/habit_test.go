package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHabit(t *testing.T) {
	now := time.Now()

	h, err := NewHabit(1, "Read", now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), h.ID)
	assert.Equal(t, "Read", h.Name)
	assert.Nil(t, h.CompletedToday)
	assert.False(t, h.IsCompletedToday())
}

func TestHabitValidation(t *testing.T) {
	tests := []struct {
		name    string
		habit   Habit
		wantErr error
	}{
		{"valid", Habit{ID: 3, Name: "Walk"}, nil},
		{"empty name", Habit{ID: 1, Name: ""}, ErrEmptyHabitName},
		{"whitespace name", Habit{ID: 1, Name: "  \t\n"}, ErrEmptyHabitName},
		{"zero id", Habit{ID: 0, Name: "Walk"}, ErrInvalidHabitID},
		{"negative id", Habit{ID: -4, Name: "Walk"}, ErrInvalidHabitID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.habit.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestHabitCompletedToday(t *testing.T) {
	done := true
	h := Habit{ID: 1, Name: "Read", CompletedToday: &done}
	assert.True(t, h.IsCompletedToday())
}

func TestNewEntry(t *testing.T) {
	today := time.Date(2026, 3, 14, 15, 30, 0, 0, time.Local)

	tests := []struct {
		name    string
		id      int64
		habitID int64
		day     string
		wantErr error
	}{
		{"today", 1, 1, "2026-03-14", nil},
		{"past", 2, 1, "2025-12-31", nil},
		{"tomorrow", 3, 1, "2026-03-15", ErrFutureEntryDate},
		{"zero id", 0, 1, "2026-03-14", ErrInvalidEntryID},
		{"zero habit id", 1, 0, "2026-03-14", ErrInvalidHabitID},
		{"bad date", 1, 1, "14/03/2026", ErrInvalidEntryDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := NewEntry(tt.id, tt.habitID, tt.day, today, today)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.day, e.Day)
			assert.Equal(t, tt.habitID, e.HabitID)
		})
	}
}

func TestParseDay(t *testing.T) {
	d, err := ParseDay("2026-01-02", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC), d)
	assert.Equal(t, "2026-01-02", FormatDay(d))
}

func TestStartOfDay(t *testing.T) {
	in := time.Date(2026, 7, 4, 23, 59, 59, 999, time.UTC)
	assert.Equal(t, time.Date(2026, 7, 4, 0, 0, 0, 0, time.UTC), StartOfDay(in))
}
