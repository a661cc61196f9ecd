package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habit/internal/lockfile"
	"github.com/julianstephens/habit/internal/logger"
	"github.com/julianstephens/habit/internal/storage"
)

// Run starts the interactive board. The lockfile at lockPath is held for the
// lifetime of the program.
func Run(store storage.Provider, days int, lockPath string) error {
	lock, err := lockfile.Acquire(lockPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Warn("Failed to release lockfile", "path", lockPath, "error", err)
		}
	}()

	logger.Debug("Starting TUI", "days", days, "lockfile", lockPath)

	p := tea.NewProgram(NewModel(store, days), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
