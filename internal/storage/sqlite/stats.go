package sqlite

import (
	"fmt"

	"github.com/julianstephens/habit/internal/models"
	"github.com/julianstephens/habit/internal/storage"
)

// GetStats returns each habit's completion percentage over the last days
// calendar days including today, ordered by name. Habits with no entries in
// the window are reported at 0%.
func (s *Store) GetStats(days int) ([]models.HabitStat, error) {
	if days <= 0 {
		return nil, fmt.Errorf("%w: got %d", storage.ErrInvalidWindow, days)
	}

	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	end := s.now()
	start := end.AddDate(0, 0, -(days - 1))

	rows, err := db.Query(`
		SELECT h.name, COUNT(DISTINCT e.entry_date)
		FROM habits h
		LEFT JOIN entries e ON e.habit_id = h.id
			AND e.entry_date BETWEEN ? AND ?
		GROUP BY h.id, h.name
		ORDER BY h.name`,
		models.FormatDay(start), models.FormatDay(end))
	if err != nil {
		return nil, fmt.Errorf("failed to query stats: %w", err)
	}
	defer rows.Close()

	stats := []models.HabitStat{}
	for rows.Next() {
		stat := models.HabitStat{Days: days}
		if err := rows.Scan(&stat.Name, &stat.Completed); err != nil {
			return nil, fmt.Errorf("failed to scan stats: %w", err)
		}
		stat.Percent = float64(stat.Completed) / float64(days) * 100
		stats = append(stats, stat)
	}

	return stats, rows.Err()
}
