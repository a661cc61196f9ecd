package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/habit/internal/cli"
	"github.com/julianstephens/habit/internal/cli/backups"
	"github.com/julianstephens/habit/internal/cli/habits"
	"github.com/julianstephens/habit/internal/cli/system"
	"github.com/julianstephens/habit/internal/config"
	"github.com/julianstephens/habit/internal/constants"
	"github.com/julianstephens/habit/internal/errors"
	"github.com/julianstephens/habit/internal/logger"
	"github.com/julianstephens/habit/internal/storage/sqlite"
)

var CLI struct {
	Version kong.VersionFlag
	DB      string `help:"Database file path (overrides HABIT_DB and config)." type:"path"`
	Config  string `help:"Config file path." type:"path"`
	Debug   bool   `help:"Enable debug logging to stderr."`

	Init   system.InitCmd   `cmd:"" help:"Initialize the habit tracker database."`
	Add    habits.AddCmd    `cmd:"" help:"Add a new habit to track."`
	Done   habits.DoneCmd   `cmd:"" help:"Mark a habit as completed for today."`
	List   habits.ListCmd   `cmd:"" help:"List habits and their status."`
	Stats  habits.StatsCmd  `cmd:"" help:"Show completion statistics for habits."`
	Log    habits.LogCmd    `cmd:"" help:"Show per-day habit history."`
	Tui    system.TuiCmd    `cmd:"" help:"Launch the interactive board."`
	Doctor system.DoctorCmd `cmd:"" help:"Run health checks and diagnostics."`
	Backup struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage database backups."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Lightweight habit tracker backed by SQLite."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	envErr := config.LoadEnvFile(".env")

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		errors.Fatal(err)
	}
	if CLI.DB != "" {
		cfg.DBPath = CLI.DB
	}
	if CLI.Debug {
		cfg.Debug = true
	}

	if err := logger.Init(logger.Config{Debug: cfg.Debug, LogDir: config.ExpandPath(cfg.LogDir)}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}
	if envErr != nil {
		logger.Warn("Failed to load .env file", "error", envErr)
	}
	logger.Debug("Starting command", "command", ctx.Command(), "db", cfg.DBPath)

	store := sqlite.NewStore(config.ExpandPath(cfg.DBPath))
	appCtx := cli.NewContext(store, cfg)
	appCtx.ConfigPath = CLI.Config

	err = ctx.Run(appCtx)
	if closeErr := store.Close(); closeErr != nil {
		logger.Warn("Failed to close database", "error", closeErr)
	}
	errors.Fatal(err)
}
