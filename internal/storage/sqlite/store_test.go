package sqlite

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/habit/internal/migration"
	"github.com/julianstephens/habit/internal/models"
	"github.com/julianstephens/habit/internal/storage"
)

var testNow = time.Date(2026, 5, 20, 9, 30, 0, 0, time.Local)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "habits.db")

	store := NewStore(dbPath, WithClock(fixedClock(testNow)))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func countEntries(t *testing.T, store *Store, habitID int64, day string) int {
	t.Helper()
	var count int
	err := store.GetDB().QueryRow(
		"SELECT count(*) FROM entries WHERE habit_id = ? AND entry_date = ?", habitID, day,
	).Scan(&count)
	if err != nil {
		t.Fatalf("failed to count entries: %v", err)
	}
	return count
}

func TestInitCreatesTables(t *testing.T) {
	store := setupTestStore(t)

	for _, table := range []string{"habits", "entries"} {
		exists, err := store.tableExists(table)
		if err != nil {
			t.Fatalf("tableExists(%q) failed: %v", table, err)
		}
		if !exists {
			t.Errorf("expected table %q to exist", table)
		}
	}

	exists, err := store.tableExists("nonexistent_table")
	if err != nil {
		t.Fatalf("tableExists failed: %v", err)
	}
	if exists {
		t.Error("tableExists() = true, want false for nonexistent table")
	}
}

func TestInitIsIdempotent(t *testing.T) {
	store := setupTestStore(t)

	if _, err := store.AddHabit("Read"); err != nil {
		t.Fatalf("AddHabit failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := store.Init(); err != nil {
			t.Fatalf("Init call %d failed: %v", i+2, err)
		}
	}

	habits, err := store.ListHabits(true)
	if err != nil {
		t.Fatalf("ListHabits failed: %v", err)
	}
	if len(habits) != 1 {
		t.Errorf("expected existing data to survive re-init, got %d habits", len(habits))
	}

	current, latest, err := store.SchemaVersion()
	if err != nil {
		t.Fatalf("SchemaVersion failed: %v", err)
	}
	if current != latest || current < 1 {
		t.Errorf("expected schema at latest version, got current=%d latest=%d", current, latest)
	}
}

func TestLoadNotInitialized(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing.db"))

	err := store.Load()
	if !errors.Is(err, storage.ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}

	if _, err := store.AddHabit("Read"); !errors.Is(err, storage.ErrNotInitialized) {
		t.Errorf("expected operations to fail with ErrNotInitialized, got %v", err)
	}
}

func TestLoadRejectsEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "habits.db")
	if err := os.WriteFile(path, nil, 0600); err != nil {
		t.Fatalf("failed to create empty file: %v", err)
	}

	store := NewStore(path, WithClock(fixedClock(testNow)))
	t.Cleanup(func() { store.Close() })

	if err := store.Load(); !errors.Is(err, storage.ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
	if store.GetDB() != nil {
		t.Error("expected connection to be released after failed Load")
	}

	_, err := store.AddHabit("X")
	if !errors.Is(err, storage.ErrNotInitialized) {
		t.Errorf("expected AddHabit to fail with ErrNotInitialized, got %v", err)
	}
	if !storage.IsUserError(err) {
		t.Error("expected an uninitialized database to be a user error")
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("failed to stat database: %v", err)
	}
	if info.Size() != 0 {
		t.Errorf("expected Load to leave the file untouched, size is %d", info.Size())
	}

	if err := store.Init(); err != nil {
		t.Fatalf("Init on empty file failed: %v", err)
	}
	if _, err := store.AddHabit("X"); err != nil {
		t.Errorf("AddHabit after Init failed: %v", err)
	}
}

func TestLoadRejectsMissingHabitsTable(t *testing.T) {
	store := setupTestStore(t)
	path := store.GetConfigPath()

	for _, table := range []string{"entries", "habits"} {
		if _, err := store.GetDB().Exec("DROP TABLE " + table); err != nil {
			t.Fatalf("failed to drop %s: %v", table, err)
		}
	}
	store.Close()

	reopened := NewStore(path)
	t.Cleanup(func() { reopened.Close() })
	if err := reopened.Load(); !errors.Is(err, storage.ErrNotInitialized) {
		t.Errorf("expected ErrNotInitialized, got %v", err)
	}
}

func TestLoadRejectsNewerSchema(t *testing.T) {
	store := setupTestStore(t)
	path := store.GetConfigPath()

	if _, err := store.GetDB().Exec("UPDATE schema_version SET version = 999"); err != nil {
		t.Fatalf("failed to bump schema version: %v", err)
	}
	store.Close()

	reopened := NewStore(path)
	err := reopened.Load()
	if !errors.Is(err, migration.ErrSchemaTooNew) {
		t.Errorf("expected ErrSchemaTooNew, got %v", err)
	}
	if reopened.GetDB() != nil {
		t.Error("expected connection to be released after failed Load")
	}
}

func TestCloseAndReopen(t *testing.T) {
	store := setupTestStore(t)

	added, err := store.AddHabit("Read")
	if err != nil {
		t.Fatalf("AddHabit failed: %v", err)
	}

	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Errorf("second Close should be a no-op, got %v", err)
	}

	// The next call reopens the connection lazily
	got, found, err := store.GetHabitByName("Read")
	if err != nil {
		t.Fatalf("GetHabitByName after Close failed: %v", err)
	}
	if !found || got.ID != added.ID {
		t.Errorf("expected habit %d after reopen, got %+v (found=%v)", added.ID, got, found)
	}
}

func TestAddHabit(t *testing.T) {
	store := setupTestStore(t)

	habit, err := store.AddHabit("Test Habit")
	if err != nil {
		t.Fatalf("AddHabit failed: %v", err)
	}

	if habit.ID <= 0 {
		t.Errorf("expected positive ID, got %d", habit.ID)
	}
	if habit.Name != "Test Habit" {
		t.Errorf("expected name %q, got %q", "Test Habit", habit.Name)
	}
	if !habit.CreatedAt.Equal(testNow) {
		t.Errorf("expected created_at %v, got %v", testNow, habit.CreatedAt)
	}
	if habit.CompletedToday != nil {
		t.Error("expected CompletedToday to be unset outside of listings")
	}
}

func TestAddHabitDuplicate(t *testing.T) {
	store := setupTestStore(t)

	if _, err := store.AddHabit("X"); err != nil {
		t.Fatalf("AddHabit failed: %v", err)
	}

	_, err := store.AddHabit("X")
	if !errors.Is(err, storage.ErrDuplicateHabit) {
		t.Fatalf("expected ErrDuplicateHabit, got %v", err)
	}
	if err.Error() != `habit "X" already exists` {
		t.Errorf("unexpected error message: %q", err.Error())
	}
	if !storage.IsUserError(err) {
		t.Error("duplicate should be classified as a user error")
	}

	var count int
	if err := store.GetDB().QueryRow("SELECT count(*) FROM habits WHERE name = 'X'").Scan(&count); err != nil {
		t.Fatalf("failed to count habits: %v", err)
	}
	if count != 1 {
		t.Errorf("expected exactly one habit named X, got %d", count)
	}
}

func TestAddHabitNamesAreExact(t *testing.T) {
	store := setupTestStore(t)

	for _, name := range []string{"Run", "run", " Run"} {
		if _, err := store.AddHabit(name); err != nil {
			t.Errorf("AddHabit(%q) failed: %v", name, err)
		}
	}

	if _, found, _ := store.GetHabitByName("RUN"); found {
		t.Error("lookup should be case-sensitive")
	}
	h, found, err := store.GetHabitByName(" Run")
	if err != nil || !found {
		t.Fatalf("expected to find %q: found=%v err=%v", " Run", found, err)
	}
	if h.Name != " Run" {
		t.Errorf("expected name stored untrimmed, got %q", h.Name)
	}
}

func TestAddHabitRejectsEmptyName(t *testing.T) {
	store := setupTestStore(t)

	for _, name := range []string{"", "   ", "\t\n"} {
		if _, err := store.AddHabit(name); !errors.Is(err, models.ErrEmptyHabitName) {
			t.Errorf("AddHabit(%q): expected ErrEmptyHabitName, got %v", name, err)
		}
	}

	habits, err := store.ListHabits(false)
	if err != nil {
		t.Fatalf("ListHabits failed: %v", err)
	}
	if len(habits) != 0 {
		t.Errorf("expected no habits, got %d", len(habits))
	}
}

func TestGetHabitByName(t *testing.T) {
	store := setupTestStore(t)

	original, err := store.AddHabit("Test Habit")
	if err != nil {
		t.Fatalf("AddHabit failed: %v", err)
	}

	t.Run("found", func(t *testing.T) {
		found, ok, err := store.GetHabitByName("Test Habit")
		if err != nil {
			t.Fatalf("GetHabitByName failed: %v", err)
		}
		if !ok {
			t.Fatal("expected habit to be found")
		}
		if found != original {
			t.Errorf("round trip mismatch: got %+v, want %+v", found, original)
		}
	})

	t.Run("not found", func(t *testing.T) {
		_, ok, err := store.GetHabitByName("Nonexistent")
		if err != nil {
			t.Fatalf("expected no error for missing habit, got %v", err)
		}
		if ok {
			t.Error("expected habit not to be found")
		}
	})
}

func TestGetHabitByID(t *testing.T) {
	store := setupTestStore(t)

	original, err := store.AddHabit("Stretch")
	if err != nil {
		t.Fatalf("AddHabit failed: %v", err)
	}

	got, ok, err := store.GetHabit(original.ID)
	if err != nil || !ok {
		t.Fatalf("GetHabit failed: ok=%v err=%v", ok, err)
	}
	if got != original {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, original)
	}

	if _, ok, err := store.GetHabit(original.ID + 100); err != nil || ok {
		t.Errorf("expected missing habit: ok=%v err=%v", ok, err)
	}
}

func TestMarkDone(t *testing.T) {
	store := setupTestStore(t)

	habit, err := store.AddHabit("Test Habit")
	if err != nil {
		t.Fatalf("AddHabit failed: %v", err)
	}

	entry, err := store.MarkDone("Test Habit")
	if err != nil {
		t.Fatalf("MarkDone failed: %v", err)
	}

	if entry.ID <= 0 {
		t.Errorf("expected positive entry ID, got %d", entry.ID)
	}
	if entry.HabitID != habit.ID {
		t.Errorf("expected habit ID %d, got %d", habit.ID, entry.HabitID)
	}
	if entry.Day != "2026-05-20" {
		t.Errorf("expected day 2026-05-20, got %s", entry.Day)
	}
	if !entry.CreatedAt.Equal(testNow) {
		t.Errorf("expected created_at %v, got %v", testNow, entry.CreatedAt)
	}

	got, ok, err := store.GetEntry(entry.ID)
	if err != nil || !ok {
		t.Fatalf("GetEntry failed: ok=%v err=%v", ok, err)
	}
	if got != entry {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, entry)
	}
}

func TestMarkDoneIsIdempotent(t *testing.T) {
	store := setupTestStore(t)

	habit, err := store.AddHabit("X")
	if err != nil {
		t.Fatalf("AddHabit failed: %v", err)
	}

	first, err := store.MarkDone("X")
	if err != nil {
		t.Fatalf("first MarkDone failed: %v", err)
	}

	// Later the same day
	store.now = fixedClock(testNow.Add(3 * time.Hour))
	second, err := store.MarkDone("X")
	if err != nil {
		t.Fatalf("second MarkDone failed: %v", err)
	}

	if first != second {
		t.Errorf("expected identical entries, got %+v and %+v", first, second)
	}
	if n := countEntries(t, store, habit.ID, "2026-05-20"); n != 1 {
		t.Errorf("expected exactly 1 entry row, got %d", n)
	}
}

func TestMarkDoneNextDayCreatesNewEntry(t *testing.T) {
	store := setupTestStore(t)

	if _, err := store.AddHabit("X"); err != nil {
		t.Fatalf("AddHabit failed: %v", err)
	}

	first, err := store.MarkDone("X")
	if err != nil {
		t.Fatalf("MarkDone failed: %v", err)
	}

	store.now = fixedClock(testNow.AddDate(0, 0, 1))
	second, err := store.MarkDone("X")
	if err != nil {
		t.Fatalf("MarkDone next day failed: %v", err)
	}

	if second.ID == first.ID {
		t.Error("expected a new entry on a new day")
	}
	if second.Day != "2026-05-21" {
		t.Errorf("expected day 2026-05-21, got %s", second.Day)
	}
}

func TestMarkDoneNotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.MarkDone("Ghost")
	if !errors.Is(err, storage.ErrHabitNotFound) {
		t.Fatalf("expected ErrHabitNotFound, got %v", err)
	}
	if err.Error() != `habit "Ghost" not found` {
		t.Errorf("unexpected error message: %q", err.Error())
	}

	var count int
	if err := store.GetDB().QueryRow("SELECT count(*) FROM entries").Scan(&count); err != nil {
		t.Fatalf("failed to count entries: %v", err)
	}
	if count != 0 {
		t.Errorf("expected no entries, got %d", count)
	}
}

func TestEntriesRequireExistingHabit(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.GetDB().Exec(
		"INSERT INTO entries (habit_id, entry_date, created_at) VALUES (42, '2026-05-20', '2026-05-20T00:00:00Z')")
	if err == nil {
		t.Error("expected foreign key violation for unknown habit")
	}
}

func TestListHabitsEmpty(t *testing.T) {
	store := setupTestStore(t)

	for _, showAll := range []bool{true, false} {
		habits, err := store.ListHabits(showAll)
		if err != nil {
			t.Fatalf("ListHabits(%v) failed: %v", showAll, err)
		}
		if habits == nil || len(habits) != 0 {
			t.Errorf("ListHabits(%v): expected empty non-nil slice, got %#v", showAll, habits)
		}
	}
}

func TestListHabitsWithCompletionStatus(t *testing.T) {
	store := setupTestStore(t)

	// Inserted out of order to exercise sorting
	for _, name := range []string{"B", "A"} {
		if _, err := store.AddHabit(name); err != nil {
			t.Fatalf("AddHabit(%q) failed: %v", name, err)
		}
	}
	if _, err := store.MarkDone("A"); err != nil {
		t.Fatalf("MarkDone failed: %v", err)
	}

	var results [2][]models.Habit
	for i, showAll := range []bool{true, false} {
		habits, err := store.ListHabits(showAll)
		if err != nil {
			t.Fatalf("ListHabits(%v) failed: %v", showAll, err)
		}
		if len(habits) != 2 {
			t.Fatalf("ListHabits(%v): expected 2 habits, got %d", showAll, len(habits))
		}

		if habits[0].Name != "A" || habits[1].Name != "B" {
			t.Errorf("ListHabits(%v): expected [A B], got [%s %s]", showAll, habits[0].Name, habits[1].Name)
		}
		for _, h := range habits {
			if h.CompletedToday == nil {
				t.Fatalf("ListHabits(%v): CompletedToday unset for %s", showAll, h.Name)
			}
		}
		if !*habits[0].CompletedToday {
			t.Errorf("ListHabits(%v): expected A completed", showAll)
		}
		if *habits[1].CompletedToday {
			t.Errorf("ListHabits(%v): expected B not completed", showAll)
		}
		results[i] = habits
	}

	for i := range results[0] {
		a, b := results[0][i], results[1][i]
		if a.ID != b.ID || a.Name != b.Name || !a.CreatedAt.Equal(b.CreatedAt) || a.IsCompletedToday() != b.IsCompletedToday() {
			t.Errorf("modes disagree at %d: %+v vs %+v", i, a, b)
		}
	}
}

func TestListHabitsIgnoresOtherDays(t *testing.T) {
	store := setupTestStore(t)

	if _, err := store.AddHabit("A"); err != nil {
		t.Fatalf("AddHabit failed: %v", err)
	}

	store.now = fixedClock(testNow.AddDate(0, 0, -1))
	if _, err := store.MarkDone("A"); err != nil {
		t.Fatalf("MarkDone failed: %v", err)
	}
	store.now = fixedClock(testNow)

	for _, showAll := range []bool{true, false} {
		habits, err := store.ListHabits(showAll)
		if err != nil {
			t.Fatalf("ListHabits(%v) failed: %v", showAll, err)
		}
		if habits[0].IsCompletedToday() {
			t.Errorf("ListHabits(%v): yesterday's entry should not count for today", showAll)
		}
	}
}

func TestGetStats(t *testing.T) {
	store := setupTestStore(t)

	if _, err := store.AddHabit("X"); err != nil {
		t.Fatalf("AddHabit failed: %v", err)
	}
	if _, err := store.AddHabit("Y"); err != nil {
		t.Fatalf("AddHabit failed: %v", err)
	}
	if _, err := store.MarkDone("X"); err != nil {
		t.Fatalf("MarkDone failed: %v", err)
	}

	tests := []struct {
		days  int
		wantX float64
	}{
		{1, 100.0},
		{7, 100.0 / 7},
		{30, 100.0 / 30},
	}

	for _, tt := range tests {
		stats, err := store.GetStats(tt.days)
		if err != nil {
			t.Fatalf("GetStats(%d) failed: %v", tt.days, err)
		}
		if len(stats) != 2 {
			t.Fatalf("GetStats(%d): expected 2 rows, got %d", tt.days, len(stats))
		}
		if stats[0].Name != "X" || stats[1].Name != "Y" {
			t.Errorf("GetStats(%d): expected [X Y], got [%s %s]", tt.days, stats[0].Name, stats[1].Name)
		}
		if math.Abs(stats[0].Percent-tt.wantX) > 0.1 {
			t.Errorf("GetStats(%d): X = %.4f, want %.4f", tt.days, stats[0].Percent, tt.wantX)
		}
		if stats[1].Percent != 0 {
			t.Errorf("GetStats(%d): Y = %.4f, want 0", tt.days, stats[1].Percent)
		}
		if stats[0].Completed != 1 || stats[0].Days != tt.days {
			t.Errorf("GetStats(%d): unexpected counts %+v", tt.days, stats[0])
		}
	}
}

func TestGetStatsWindowBoundaries(t *testing.T) {
	store := setupTestStore(t)

	if _, err := store.AddHabit("X"); err != nil {
		t.Fatalf("AddHabit failed: %v", err)
	}

	// Entries 0, 6 and 7 days ago
	for _, offset := range []int{0, -6, -7} {
		store.now = fixedClock(testNow.AddDate(0, 0, offset))
		if _, err := store.MarkDone("X"); err != nil {
			t.Fatalf("MarkDone at offset %d failed: %v", offset, err)
		}
	}
	store.now = fixedClock(testNow)

	tests := []struct {
		days          int
		wantCompleted int
	}{
		{1, 1},
		{6, 1},
		{7, 2},
		{8, 3},
	}

	for _, tt := range tests {
		stats, err := store.GetStats(tt.days)
		if err != nil {
			t.Fatalf("GetStats(%d) failed: %v", tt.days, err)
		}
		if stats[0].Completed != tt.wantCompleted {
			t.Errorf("GetStats(%d): completed = %d, want %d", tt.days, stats[0].Completed, tt.wantCompleted)
		}
		want := float64(tt.wantCompleted) / float64(tt.days) * 100
		if math.Abs(stats[0].Percent-want) > 1e-9 {
			t.Errorf("GetStats(%d): percent = %f, want %f", tt.days, stats[0].Percent, want)
		}
	}
}

func TestGetStatsEmptyAndInvalid(t *testing.T) {
	store := setupTestStore(t)

	stats, err := store.GetStats(7)
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if len(stats) != 0 {
		t.Errorf("expected no stats for empty store, got %d", len(stats))
	}

	for _, days := range []int{0, -1} {
		if _, err := store.GetStats(days); !errors.Is(err, storage.ErrInvalidWindow) {
			t.Errorf("GetStats(%d): expected ErrInvalidWindow, got %v", days, err)
		}
	}
}

func TestGetEntriesForHabit(t *testing.T) {
	store := setupTestStore(t)

	habit, err := store.AddHabit("X")
	if err != nil {
		t.Fatalf("AddHabit failed: %v", err)
	}
	for _, offset := range []int{0, -2, -10} {
		store.now = fixedClock(testNow.AddDate(0, 0, offset))
		if _, err := store.MarkDone("X"); err != nil {
			t.Fatalf("MarkDone failed: %v", err)
		}
	}

	entries, err := store.GetEntriesForHabit(habit.ID, "2026-05-14", "2026-05-20")
	if err != nil {
		t.Fatalf("GetEntriesForHabit failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries in range, got %d", len(entries))
	}
	if entries[0].Day != "2026-05-18" || entries[1].Day != "2026-05-20" {
		t.Errorf("expected oldest first, got %s, %s", entries[0].Day, entries[1].Day)
	}
}

func TestInitCreatesParentDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "habits.db")

	store := NewStore(dbPath)
	defer store.Close()
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if _, err := os.Stat(dbPath); err != nil {
		t.Errorf("expected database file at %s: %v", dbPath, err)
	}
}
