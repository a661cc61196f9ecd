package storage

import (
	"errors"
	"fmt"
	"testing"

	"github.com/julianstephens/habit/internal/models"
)

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		user    bool
		failure bool
	}{
		{name: "nil", err: nil},
		{name: "duplicate", err: fmt.Errorf("habit %q %w", "Read", ErrDuplicateHabit), user: true},
		{name: "not found", err: fmt.Errorf("habit %q %w", "Read", ErrHabitNotFound), user: true},
		{name: "invalid window", err: ErrInvalidWindow, user: true},
		{name: "not initialized", err: ErrNotInitialized, user: true},
		{name: "empty name", err: models.ErrEmptyHabitName, user: true},
		{name: "engine error", err: fmt.Errorf("failed to insert habit: %w", errors.New("disk I/O error")), failure: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUserError(tt.err); got != tt.user {
				t.Errorf("IsUserError(%v) = %v, want %v", tt.err, got, tt.user)
			}
			if got := IsStorageFailure(tt.err); got != tt.failure {
				t.Errorf("IsStorageFailure(%v) = %v, want %v", tt.err, got, tt.failure)
			}
		})
	}
}
