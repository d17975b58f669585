package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/studyflow/internal/models"
)

const taskColumns = `id, subject, title, deadline, timezone, difficulty, duration_min, duration_max,
	duration_unit, estimated_minutes, importance, content_focus, success_criteria, milestones,
	notes, progress_minutes, created_at, updated_at, deleted_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (models.Task, error) {
	var t models.Task
	var deadline, createdAt, updatedAt, criteria, milestones, unit string
	var deletedAt sql.NullString

	err := row.Scan(
		&t.ID, &t.Subject, &t.Title, &deadline, &t.Timezone, &t.Difficulty, &t.DurationEstimateMin, &t.DurationEstimateMax,
		&unit, &t.EstimatedMinutes, &t.Importance, &t.ContentFocus, &criteria, &milestones,
		&t.Notes, &t.ProgressMinutes, &createdAt, &updatedAt, &deletedAt,
	)
	if err != nil {
		return models.Task{}, err
	}
	t.DurationUnit = models.DurationUnit(unit)

	if t.Deadline, err = parseTime(deadline); err != nil {
		return models.Task{}, fmt.Errorf("task %s has invalid deadline: %w", t.ID, err)
	}
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return models.Task{}, fmt.Errorf("task %s has invalid created_at: %w", t.ID, err)
	}
	if t.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return models.Task{}, fmt.Errorf("task %s has invalid updated_at: %w", t.ID, err)
	}
	if t.DeletedAt, err = parseNullTime(deletedAt); err != nil {
		return models.Task{}, fmt.Errorf("task %s has invalid deleted_at: %w", t.ID, err)
	}
	if err := json.Unmarshal([]byte(criteria), &t.SuccessCriteria); err != nil {
		return models.Task{}, fmt.Errorf("task %s has invalid success criteria: %w", t.ID, err)
	}
	if err := json.Unmarshal([]byte(milestones), &t.Milestones); err != nil {
		return models.Task{}, fmt.Errorf("task %s has invalid milestones: %w", t.ID, err)
	}
	if len(t.Milestones) == 0 {
		t.Milestones = nil
	}
	return t, nil
}

func taskArgs(t models.Task) ([]any, error) {
	criteria := t.SuccessCriteria
	if criteria == nil {
		criteria = []string{}
	}
	criteriaJSON, err := json.Marshal(criteria)
	if err != nil {
		return nil, err
	}
	milestones := t.Milestones
	if milestones == nil {
		milestones = []models.Milestone{}
	}
	milestonesJSON, err := json.Marshal(milestones)
	if err != nil {
		return nil, err
	}
	return []any{
		t.ID, t.Subject, t.Title, formatTime(t.Deadline), t.Timezone, t.Difficulty, t.DurationEstimateMin, t.DurationEstimateMax,
		string(t.DurationUnit), t.EstimatedMinutes, t.Importance, t.ContentFocus, string(criteriaJSON), string(milestonesJSON),
		t.Notes, t.ProgressMinutes, formatTime(t.CreatedAt), formatTime(t.UpdatedAt), formatNullTime(t.DeletedAt),
	}, nil
}

func (d *DB) AddTask(task models.Task) error {
	now := time.Now()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	if task.UpdatedAt.IsZero() {
		task.UpdatedAt = now
	}
	args, err := taskArgs(task)
	if err != nil {
		return err
	}
	_, err = d.exec(`INSERT INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...)
	return err
}

func (d *DB) GetTask(id string) (models.Task, error) {
	row := d.queryRow("SELECT "+taskColumns+" FROM tasks WHERE id = ? AND deleted_at IS NULL", id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return t, err
}

func (d *DB) GetAllTasks() ([]models.Task, error) {
	return d.listTasks("SELECT " + taskColumns + " FROM tasks WHERE deleted_at IS NULL ORDER BY deadline, id")
}

func (d *DB) GetAllTasksIncludingDeleted() ([]models.Task, error) {
	return d.listTasks("SELECT " + taskColumns + " FROM tasks ORDER BY deadline, id")
}

func (d *DB) listTasks(query string) ([]models.Task, error) {
	rows, err := d.query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (d *DB) UpdateTask(task models.Task) error {
	task.UpdatedAt = time.Now()
	args, err := taskArgs(task)
	if err != nil {
		return err
	}
	// id goes last for the WHERE clause
	args = append(args[1:18], task.ID)
	res, err := d.exec(`UPDATE tasks SET
		subject = ?, title = ?, deadline = ?, timezone = ?, difficulty = ?, duration_min = ?, duration_max = ?,
		duration_unit = ?, estimated_minutes = ?, importance = ?, content_focus = ?, success_criteria = ?, milestones = ?,
		notes = ?, progress_minutes = ?, created_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`, args...)
	if err != nil {
		return err
	}
	return checkAffected(res, "task", task.ID)
}

func (d *DB) DeleteTask(id string) error {
	res, err := d.exec("UPDATE tasks SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL", formatTime(time.Now()), id)
	if err != nil {
		return err
	}
	return checkAffected(res, "task", id)
}

func (d *DB) RestoreTask(id string) error {
	res, err := d.exec("UPDATE tasks SET deleted_at = NULL WHERE id = ? AND deleted_at IS NOT NULL", id)
	if err != nil {
		return err
	}
	return checkAffected(res, "deleted task", id)
}
