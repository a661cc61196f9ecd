package system

import (
	"fmt"
	"os"
	"time"

	"github.com/julianstephens/habit/internal/backup"
	"github.com/julianstephens/habit/internal/cli"
	"github.com/julianstephens/habit/internal/lockfile"
	"github.com/julianstephens/habit/internal/models"
	"github.com/julianstephens/habit/internal/storage/sqlite"
)

type DoctorCmd struct{}

type check struct {
	name     string
	run      func(*cli.Context) error
	needsDB  bool
	warnOnly bool
}

var checks = []check{
	{name: "Schema version", run: checkSchemaVersion, needsDB: true},
	{name: "Entry dates", run: checkEntryDates, needsDB: true},
	{name: "Duplicate entries", run: checkDuplicateEntries, needsDB: true},
	{name: "Backups present", run: checkBackupsPresent, warnOnly: true},
	{name: "Session lock", run: checkSessionLock, warnOnly: true},
	{name: "Clock", run: func(*cli.Context) error { return checkClock(time.Now()) }},
	{name: "Timezone", run: func(*cli.Context) error { return checkTimezone(time.Now(), os.Getenv("TZ")) }, warnOnly: true},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	hasError := false
	dbReachable := true

	if err := checkDBReachable(ctx); err != nil {
		ctx.Printf("❌ Database reachable: FAIL\n")
		ctx.Printf("   Error: %v\n", err)
		hasError = true
		dbReachable = false
	} else {
		ctx.Printf("✓ Database reachable: OK\n")
	}

	for _, c := range checks {
		if c.needsDB && !dbReachable {
			ctx.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}

		err := c.run(ctx)
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", c.name)
		case c.warnOnly:
			ctx.Printf("⚠ %s: WARNING\n", c.name)
			ctx.Printf("   %v\n", err)
		default:
			ctx.Printf("❌ %s: FAIL\n", c.name)
			ctx.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	ctx.Println("All diagnostics passed!")
	return nil
}

func sqliteStore(ctx *cli.Context) (*sqlite.Store, error) {
	store, ok := ctx.Store.(*sqlite.Store)
	if !ok {
		return nil, fmt.Errorf("unsupported store type %T", ctx.Store)
	}
	if store.GetDB() == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return store, nil
}

func checkDBReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}

	store, err := sqliteStore(ctx)
	if err != nil {
		return err
	}
	var result int
	if err := store.GetDB().QueryRow("SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("failed to query database: %w", err)
	}
	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	store, err := sqliteStore(ctx)
	if err != nil {
		return err
	}

	current, latest, err := store.SchemaVersion()
	if err != nil {
		return err
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d (run 'habit init')", current, latest)
	}
	return nil
}

func checkEntryDates(ctx *cli.Context) error {
	store, err := sqliteStore(ctx)
	if err != nil {
		return err
	}

	rows, err := store.GetDB().Query("SELECT id, habit_id, CAST(entry_date AS TEXT) FROM entries")
	if err != nil {
		return fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	today := ctx.Today()
	var bad []int64
	for rows.Next() {
		var e models.Entry
		if err := rows.Scan(&e.ID, &e.HabitID, &e.Day); err != nil {
			return err
		}
		if err := e.Validate(today); err != nil {
			bad = append(bad, e.ID)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if len(bad) > 0 {
		return fmt.Errorf("%d entries have invalid or future dates (ids %v)", len(bad), bad)
	}
	return nil
}

func checkDuplicateEntries(ctx *cli.Context) error {
	store, err := sqliteStore(ctx)
	if err != nil {
		return err
	}

	var dupes int
	err = store.GetDB().QueryRow(`
		SELECT COUNT(*) FROM (
			SELECT habit_id, entry_date FROM entries
			GROUP BY habit_id, entry_date HAVING COUNT(*) > 1
		)`).Scan(&dupes)
	if err != nil {
		return fmt.Errorf("failed to check duplicates: %w", err)
	}
	if dupes > 0 {
		return fmt.Errorf("%d habit/day pairs have more than one entry", dupes)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	mgr := backup.NewManager(ctx.Store.GetConfigPath())
	backups, err := mgr.List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'habit backup create'")
	}
	return nil
}

func checkSessionLock(ctx *cli.Context) error {
	status, err := lockfile.Check(lockfile.PathFor(ctx.Store.GetConfigPath()))
	if err != nil {
		return err
	}

	switch status.State {
	case lockfile.StateActive:
		return fmt.Errorf("an interactive session is running (pid %d)", status.PID)
	case lockfile.StateStale:
		return fmt.Errorf("stale lockfile at %s can be removed", status.Path)
	}
	return nil
}

func checkClock(now time.Time) error {
	if now.Year() < 2000 {
		return fmt.Errorf("system clock appears to be wrong: %s", now.Format(time.RFC3339))
	}
	return nil
}

// checkTimezone warns when the local zone fell back to UTC without TZ being
// set, which usually means no zone is configured. Days then roll over at UTC
// midnight.
func checkTimezone(now time.Time, tz string) error {
	name, offset := now.Zone()
	if tz == "" && name == "UTC" && offset == 0 {
		return fmt.Errorf("local timezone is UTC and TZ is not set; habits roll over at UTC midnight")
	}
	return nil
}
