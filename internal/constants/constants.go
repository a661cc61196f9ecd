package constants

const (
	AppName           = "habit"
	DefaultDBFileName = "habits.db"
	ConfigFileName    = "config.yaml"
	Version           = "v0.1.0"

	// DateFormat is the calendar date format used for entry dates (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// Stats defaults
	DefaultStatsDays = 7
	DefaultBarWidth  = 20

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "habit-"
	BackupFileSuffix = ".db"

	// LockfileName marks an interactive session holding the database open
	LockfileName = "habit.lock"

	// Environment variables
	EnvDBPath    = "HABIT_DB"
	EnvStatsDays = "HABIT_STATS_DAYS"
	EnvDebug     = "HABIT_DEBUG"
)
