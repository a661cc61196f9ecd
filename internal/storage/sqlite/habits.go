package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/julianstephens/habit/internal/models"
	"github.com/julianstephens/habit/internal/storage"
)

// Columns are cast to TEXT so the driver hands back the stored strings
// instead of guessing a time.Time from the declared column type.
const habitColumns = `h.id, h.name, CAST(h.created_at AS TEXT)`

func (s *Store) AddHabit(name string) (models.Habit, error) {
	if err := models.ValidateHabitName(name); err != nil {
		return models.Habit{}, err
	}

	db, err := s.conn()
	if err != nil {
		return models.Habit{}, err
	}

	createdAt := formatTimestamp(s.now())
	result, err := db.Exec(`
		INSERT INTO habits (name, created_at) VALUES (?, ?)
		ON CONFLICT(name) DO NOTHING`,
		name, createdAt)
	if err != nil {
		return models.Habit{}, fmt.Errorf("failed to insert habit: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return models.Habit{}, fmt.Errorf("failed to insert habit: %w", err)
	}
	if rows == 0 {
		return models.Habit{}, fmt.Errorf("habit %q %w", name, storage.ErrDuplicateHabit)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return models.Habit{}, fmt.Errorf("failed to get habit ID: %w", err)
	}

	created, err := parseTimestamp(sql.NullString{String: createdAt, Valid: true})
	if err != nil {
		return models.Habit{}, err
	}

	return models.NewHabit(id, name, created)
}

func (s *Store) GetHabit(id int64) (models.Habit, bool, error) {
	db, err := s.conn()
	if err != nil {
		return models.Habit{}, false, err
	}

	row := db.QueryRow(`SELECT `+habitColumns+` FROM habits h WHERE h.id = ?`, id)
	return scanHabitRow(row)
}

// GetHabitByName looks up a habit by exact, case-sensitive name.
// A missing habit is reported as found=false with no error.
func (s *Store) GetHabitByName(name string) (models.Habit, bool, error) {
	db, err := s.conn()
	if err != nil {
		return models.Habit{}, false, err
	}

	row := db.QueryRow(`SELECT `+habitColumns+` FROM habits h WHERE h.name = ?`, name)
	return scanHabitRow(row)
}

// ListHabits returns every habit ordered by name with CompletedToday set.
// showAll selects a single joined query; otherwise status is checked per
// habit. Both produce the same result.
func (s *Store) ListHabits(showAll bool) ([]models.Habit, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	today := models.FormatDay(s.now())
	if showAll {
		return s.listHabitsJoined(db, today)
	}
	return s.listHabitsChecked(db, today)
}

func (s *Store) listHabitsJoined(db *sql.DB, today string) ([]models.Habit, error) {
	rows, err := db.Query(`
		SELECT `+habitColumns+`, e.id IS NOT NULL
		FROM habits h
		LEFT JOIN entries e ON e.habit_id = h.id AND e.entry_date = ?
		ORDER BY h.name`, today)
	if err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}
	defer rows.Close()

	habits := []models.Habit{}
	for rows.Next() {
		var (
			h         models.Habit
			createdAt sql.NullString
			completed bool
		)
		if err := rows.Scan(&h.ID, &h.Name, &createdAt, &completed); err != nil {
			return nil, fmt.Errorf("failed to scan habit: %w", err)
		}
		if h.CreatedAt, err = parseTimestamp(createdAt); err != nil {
			return nil, fmt.Errorf("habit %d: %w", h.ID, err)
		}
		h.CompletedToday = &completed
		habits = append(habits, h)
	}

	return habits, rows.Err()
}

func (s *Store) listHabitsChecked(db *sql.DB, today string) ([]models.Habit, error) {
	habits, err := s.allHabits(db)
	if err != nil {
		return nil, err
	}

	// The habits cursor is closed by now; the single connection is free
	// for the per-habit checks.
	for i := range habits {
		var completed bool
		err := db.QueryRow(`
			SELECT EXISTS (SELECT 1 FROM entries WHERE habit_id = ? AND entry_date = ?)`,
			habits[i].ID, today).Scan(&completed)
		if err != nil {
			return nil, fmt.Errorf("failed to check completion for habit %d: %w", habits[i].ID, err)
		}
		habits[i].CompletedToday = &completed
	}

	return habits, nil
}

func (s *Store) allHabits(db *sql.DB) ([]models.Habit, error) {
	rows, err := db.Query(`SELECT ` + habitColumns + ` FROM habits h ORDER BY h.name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}
	defer rows.Close()

	habits := []models.Habit{}
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}

	return habits, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanHabit(row scanner) (models.Habit, error) {
	var (
		h         models.Habit
		createdAt sql.NullString
	)
	if err := row.Scan(&h.ID, &h.Name, &createdAt); err != nil {
		return models.Habit{}, err
	}

	var err error
	if h.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return models.Habit{}, fmt.Errorf("habit %d: %w", h.ID, err)
	}
	return h, nil
}

func scanHabitRow(row *sql.Row) (models.Habit, bool, error) {
	h, err := scanHabit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Habit{}, false, nil
	}
	if err != nil {
		return models.Habit{}, false, fmt.Errorf("failed to get habit: %w", err)
	}
	return h, true, nil
}
