package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/julianstephens/habit/internal/models"
	"github.com/julianstephens/habit/internal/storage"
)

const entryColumns = `id, habit_id, CAST(entry_date AS TEXT), CAST(created_at AS TEXT)`

// MarkDone records today's completion of the named habit. Repeat calls on the
// same day return the existing entry unchanged.
func (s *Store) MarkDone(name string) (models.Entry, error) {
	habit, found, err := s.GetHabitByName(name)
	if err != nil {
		return models.Entry{}, err
	}
	if !found {
		return models.Entry{}, fmt.Errorf("habit %q %w", name, storage.ErrHabitNotFound)
	}

	db, err := s.conn()
	if err != nil {
		return models.Entry{}, err
	}

	now := s.now()
	day := models.FormatDay(now)

	tx, err := db.Begin()
	if err != nil {
		return models.Entry{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(`
		INSERT INTO entries (habit_id, entry_date, created_at) VALUES (?, ?, ?)
		ON CONFLICT(habit_id, entry_date) DO NOTHING`,
		habit.ID, day, formatTimestamp(now))
	if err != nil {
		return models.Entry{}, fmt.Errorf("failed to insert entry: %w", err)
	}

	row := tx.QueryRow(`SELECT `+entryColumns+` FROM entries WHERE habit_id = ? AND entry_date = ?`, habit.ID, day)
	entry, err := scanEntry(row)
	if err != nil {
		return models.Entry{}, fmt.Errorf("failed to read entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.Entry{}, fmt.Errorf("failed to commit entry: %w", err)
	}

	if err := entry.Validate(now); err != nil {
		return models.Entry{}, err
	}
	return entry, nil
}

// GetEntry looks up an entry by ID. A missing entry is found=false with no error.
func (s *Store) GetEntry(id int64) (models.Entry, bool, error) {
	db, err := s.conn()
	if err != nil {
		return models.Entry{}, false, err
	}

	entry, err := scanEntry(db.QueryRow(`SELECT `+entryColumns+` FROM entries WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Entry{}, false, nil
	}
	if err != nil {
		return models.Entry{}, false, fmt.Errorf("failed to get entry: %w", err)
	}
	return entry, true, nil
}

// GetEntriesForHabit returns a habit's entries between two YYYY-MM-DD days
// inclusive, oldest first.
func (s *Store) GetEntriesForHabit(habitID int64, startDay, endDay string) ([]models.Entry, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(`
		SELECT `+entryColumns+` FROM entries
		WHERE habit_id = ? AND entry_date BETWEEN ? AND ?
		ORDER BY entry_date`,
		habitID, startDay, endDay)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	entries := []models.Entry{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

func scanEntry(row scanner) (models.Entry, error) {
	var (
		e         models.Entry
		createdAt sql.NullString
	)
	if err := row.Scan(&e.ID, &e.HabitID, &e.Day, &createdAt); err != nil {
		return models.Entry{}, err
	}

	var err error
	if e.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return models.Entry{}, fmt.Errorf("entry %d: %w", e.ID, err)
	}
	return e, nil
}
