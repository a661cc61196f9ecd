package errors

import (
	"fmt"
	"os"

	"github.com/julianstephens/habit/internal/logger"
	"github.com/julianstephens/habit/internal/storage"
)

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Fatal logs an error and exits the program with exit code 1.
// Expected conditions such as duplicates are logged at info level.
func Fatal(err error) {
	if err != nil {
		if storage.IsStorageFailure(err) {
			logger.Error("Command execution failed", "error", err)
		} else {
			logger.Info("Command rejected", "error", err)
		}
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}
