package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/studyflow/internal/models"
)

const habitColumns = "id, name, cadence, weekday, minutes, preset, created_at, deleted_at"

func scanHabit(row rowScanner) (models.Habit, error) {
	var h models.Habit
	var cadence, preset, createdAt string
	var weekday sql.NullInt64
	var deletedAt sql.NullString

	if err := row.Scan(&h.ID, &h.Name, &cadence, &weekday, &h.Minutes, &preset, &createdAt, &deletedAt); err != nil {
		return models.Habit{}, err
	}
	h.Cadence = models.HabitCadence(cadence)
	h.Preset = models.HabitPreset(preset)
	if weekday.Valid {
		wd := time.Weekday(weekday.Int64)
		h.Weekday = &wd
	}

	var err error
	if h.CreatedAt, err = parseTime(createdAt); err != nil {
		return models.Habit{}, err
	}
	if h.DeletedAt, err = parseNullTime(deletedAt); err != nil {
		return models.Habit{}, err
	}
	return h, nil
}

func (d *DB) AddHabit(habit models.Habit) error {
	if habit.CreatedAt.IsZero() {
		habit.CreatedAt = time.Now()
	}
	var weekday sql.NullInt64
	if habit.Weekday != nil {
		weekday = sql.NullInt64{Int64: int64(*habit.Weekday), Valid: true}
	}
	_, err := d.exec(`INSERT INTO habits (`+habitColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		habit.ID, habit.Name, string(habit.Cadence), weekday, habit.Minutes, string(habit.Preset),
		formatTime(habit.CreatedAt), formatNullTime(habit.DeletedAt))
	return err
}

func (d *DB) GetHabit(id string) (models.Habit, error) {
	h, err := scanHabit(d.queryRow("SELECT "+habitColumns+" FROM habits WHERE id = ? AND deleted_at IS NULL", id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Habit{}, fmt.Errorf("habit %s: %w", id, ErrNotFound)
	}
	return h, err
}

func (d *DB) GetAllHabits(includeDeleted bool) ([]models.Habit, error) {
	query := "SELECT " + habitColumns + " FROM habits"
	if !includeDeleted {
		query += " WHERE deleted_at IS NULL"
	}
	rows, err := d.query(query + " ORDER BY created_at, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var habits []models.Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

func (d *DB) DeleteHabit(id string) error {
	res, err := d.exec("UPDATE habits SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL", formatTime(time.Now()), id)
	if err != nil {
		return err
	}
	return checkAffected(res, "habit", id)
}
