package storage

import (
	"errors"

	"github.com/julianstephens/habit/internal/models"
)

var (
	// ErrDuplicateHabit is returned by AddHabit when the name is taken
	ErrDuplicateHabit = errors.New("already exists")
	// ErrHabitNotFound is returned by MarkDone when no habit has the name
	ErrHabitNotFound = errors.New("not found")
	// ErrInvalidWindow is returned by GetStats for a non-positive day count
	ErrInvalidWindow = errors.New("stats window must be at least 1 day")
	// ErrNotInitialized is returned by Load when the database file is missing
	// or does not hold the habit schema
	ErrNotInitialized = errors.New("storage not initialized, run 'habit init' first")
)

// IsUserError reports whether err is an expected condition the caller should
// show as a message rather than treat as a storage failure.
func IsUserError(err error) bool {
	for _, target := range []error{
		ErrDuplicateHabit,
		ErrHabitNotFound,
		ErrInvalidWindow,
		ErrNotInitialized,
		models.ErrEmptyHabitName,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsStorageFailure reports whether err is an engine or I/O failure, that is
// an error of none of the known kinds.
func IsStorageFailure(err error) bool {
	return err != nil && !IsUserError(err)
}
