package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/studyflow/internal/models"
)

func (d *DB) AddFeedback(f models.Feedback) error {
	if f.SubmittedAt.IsZero() {
		f.SubmittedAt = time.Now()
	}
	_, err := d.exec("INSERT INTO feedback (id, label, note, plan_version, submitted_at) VALUES (?, ?, ?, ?, ?)",
		f.ID, string(f.Label), f.Note, f.PlanVersion, formatTime(f.SubmittedAt))
	return err
}

func scanFeedback(row rowScanner) (models.Feedback, error) {
	var f models.Feedback
	var label, submittedAt string
	if err := row.Scan(&f.ID, &label, &f.Note, &f.PlanVersion, &submittedAt); err != nil {
		return models.Feedback{}, err
	}
	f.Label = models.FeedbackLabel(label)
	var err error
	f.SubmittedAt, err = parseTime(submittedAt)
	return f, err
}

func (d *DB) GetLatestFeedback() (models.Feedback, error) {
	f, err := scanFeedback(d.queryRow(
		"SELECT id, label, note, plan_version, submitted_at FROM feedback ORDER BY submitted_at DESC, id DESC LIMIT 1"))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Feedback{}, fmt.Errorf("feedback %w", ErrNotFound)
	}
	return f, err
}

func (d *DB) GetAllFeedback() ([]models.Feedback, error) {
	rows, err := d.query("SELECT id, label, note, plan_version, submitted_at FROM feedback ORDER BY submitted_at DESC, id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Feedback
	for rows.Next() {
		f, err := scanFeedback(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
