package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/studyflow/internal/logger"
	"github.com/julianstephens/studyflow/internal/models"
)

// sessionPayload is the JSON column holding the source-specific detail.
type sessionPayload struct {
	Task  *models.TaskSessionDetail  `json:"task,omitempty"`
	Habit *models.HabitSessionDetail `json:"habit,omitempty"`
	Break *models.BreakSessionDetail `json:"break,omitempty"`
}

const sessionColumns = `id, source, subject, title, planned_start, planned_end, minutes, buffer_minutes,
	status, completed_at, plan_version, payload`

func (d *DB) SavePlan(plan models.PlanRecord) error {
	if plan.PlanVersion < 1 {
		return fmt.Errorf("invalid plan version %d", plan.PlanVersion)
	}

	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRow(d.rebind("SELECT COUNT(*) FROM plans WHERE version = ?"), plan.PlanVersion).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check existing plan: %w", err)
	}
	if exists > 0 {
		return fmt.Errorf("plan version %d already exists", plan.PlanVersion)
	}

	unscheduled := plan.UnscheduledTasks
	if unscheduled == nil {
		unscheduled = []models.Task{}
	}
	unscheduledJSON, err := json.Marshal(unscheduled)
	if err != nil {
		return err
	}
	suggestions := plan.Suggestions
	if suggestions == nil {
		suggestions = []models.PlanSuggestion{}
	}
	suggestionsJSON, err := json.Marshal(suggestions)
	if err != nil {
		return err
	}

	_, err = tx.Exec(d.rebind("INSERT INTO plans (version, generated_at, unscheduled_tasks, suggestions) VALUES (?, ?, ?, ?)"),
		plan.PlanVersion, formatTime(plan.GeneratedAt), string(unscheduledJSON), string(suggestionsJSON))
	if err != nil {
		return fmt.Errorf("failed to insert plan: %w", err)
	}

	stmt, err := tx.Prepare(d.rebind(`
		INSERT INTO sessions (
			plan_version, id, position, source, subject, title, planned_start, planned_end,
			minutes, buffer_minutes, status, completed_at, task_id, habit_id, payload
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, s := range plan.Sessions {
		payload, err := json.Marshal(sessionPayload{Task: s.Task, Habit: s.Habit, Break: s.Break})
		if err != nil {
			return err
		}
		_, err = stmt.Exec(
			plan.PlanVersion, s.ID, i, string(s.Source), s.Subject, s.Title, formatTime(s.PlannedStart), formatTime(s.PlannedEnd),
			s.Minutes, s.BufferMinutes, string(s.Status), formatNullTime(s.CompletedAt), nullString(s.TaskID()), nullString(s.HabitID()), string(payload),
		)
		if err != nil {
			return fmt.Errorf("failed to insert session %s: %w", s.ID, err)
		}
	}

	pruned, err := d.prunePlans(tx)
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	if pruned > 0 {
		logger.Debug("Pruned old plan versions", "count", pruned, "kept", d.maxHistory)
	}
	return nil
}

// prunePlans drops every version older than the newest maxHistory.
func (d *DB) prunePlans(tx *sql.Tx) (int64, error) {
	var cutoff int
	err := tx.QueryRow(d.rebind("SELECT version FROM plans ORDER BY version DESC LIMIT 1 OFFSET ?"), d.maxHistory-1).Scan(&cutoff)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to find prune cutoff: %w", err)
	}

	if _, err := tx.Exec(d.rebind("DELETE FROM sessions WHERE plan_version < ?"), cutoff); err != nil {
		return 0, fmt.Errorf("failed to prune sessions: %w", err)
	}
	res, err := tx.Exec(d.rebind("DELETE FROM plans WHERE version < ?"), cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune plans: %w", err)
	}
	return res.RowsAffected()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (d *DB) LatestPlanVersion() (int, error) {
	var version sql.NullInt64
	if err := d.queryRow("SELECT MAX(version) FROM plans").Scan(&version); err != nil {
		return 0, err
	}
	return int(version.Int64), nil
}

func (d *DB) GetLatestPlan() (models.PlanRecord, error) {
	version, err := d.LatestPlanVersion()
	if err != nil {
		return models.PlanRecord{}, err
	}
	if version == 0 {
		return models.PlanRecord{}, fmt.Errorf("plan %w", ErrNotFound)
	}
	return d.GetPlan(version)
}

func (d *DB) GetPlan(version int) (models.PlanRecord, error) {
	var generatedAt, unscheduledJSON, suggestionsJSON string
	err := d.queryRow("SELECT generated_at, unscheduled_tasks, suggestions FROM plans WHERE version = ?", version).
		Scan(&generatedAt, &unscheduledJSON, &suggestionsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return models.PlanRecord{}, fmt.Errorf("plan version %d: %w", version, ErrNotFound)
	}
	if err != nil {
		return models.PlanRecord{}, err
	}

	plan := models.PlanRecord{PlanVersion: version}
	if plan.GeneratedAt, err = parseTime(generatedAt); err != nil {
		return models.PlanRecord{}, err
	}
	if err := json.Unmarshal([]byte(unscheduledJSON), &plan.UnscheduledTasks); err != nil {
		return models.PlanRecord{}, fmt.Errorf("plan %d has invalid unscheduled tasks: %w", version, err)
	}
	if err := json.Unmarshal([]byte(suggestionsJSON), &plan.Suggestions); err != nil {
		return models.PlanRecord{}, fmt.Errorf("plan %d has invalid suggestions: %w", version, err)
	}

	rows, err := d.query("SELECT "+sessionColumns+" FROM sessions WHERE plan_version = ? ORDER BY position", version)
	if err != nil {
		return models.PlanRecord{}, err
	}
	defer rows.Close()

	plan.Sessions = []models.Session{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return models.PlanRecord{}, err
		}
		plan.Sessions = append(plan.Sessions, s)
	}
	return plan, rows.Err()
}

func scanSession(row rowScanner) (models.Session, error) {
	var s models.Session
	var source, status, start, end, payload string
	var completedAt sql.NullString

	err := row.Scan(&s.ID, &source, &s.Subject, &s.Title, &start, &end, &s.Minutes, &s.BufferMinutes,
		&status, &completedAt, &s.PlanVersion, &payload)
	if err != nil {
		return models.Session{}, err
	}
	s.Source = models.SessionSource(source)
	s.Status = models.SessionStatus(status)

	if s.PlannedStart, err = parseTime(start); err != nil {
		return models.Session{}, err
	}
	if s.PlannedEnd, err = parseTime(end); err != nil {
		return models.Session{}, err
	}
	if s.CompletedAt, err = parseNullTime(completedAt); err != nil {
		return models.Session{}, err
	}

	var p sessionPayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return models.Session{}, fmt.Errorf("session %s has invalid payload: %w", s.ID, err)
	}
	s.Task, s.Habit, s.Break = p.Task, p.Habit, p.Break
	return s, nil
}

func (d *DB) ListPlans() ([]PlanSummary, error) {
	rows, err := d.query(`
		SELECT p.version, p.generated_at, p.unscheduled_tasks, p.suggestions,
		       (SELECT COUNT(*) FROM sessions s WHERE s.plan_version = p.version AND s.source <> 'break')
		FROM plans p ORDER BY p.version DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PlanSummary
	for rows.Next() {
		var sum PlanSummary
		var generatedAt, unscheduledJSON, suggestionsJSON string
		if err := rows.Scan(&sum.Version, &generatedAt, &unscheduledJSON, &suggestionsJSON, &sum.SessionCount); err != nil {
			return nil, err
		}
		if sum.GeneratedAt, err = parseTime(generatedAt); err != nil {
			return nil, err
		}
		var unscheduled []json.RawMessage
		var suggestions []json.RawMessage
		if err := json.Unmarshal([]byte(unscheduledJSON), &unscheduled); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(suggestionsJSON), &suggestions); err != nil {
			return nil, err
		}
		sum.UnscheduledCount = len(unscheduled)
		sum.SuggestionCount = len(suggestions)
		out = append(out, sum)
	}
	return out, rows.Err()
}

func (d *DB) UpdateSessionStatus(sessionID string, status models.SessionStatus, at time.Time) (models.Session, error) {
	version, err := d.LatestPlanVersion()
	if err != nil {
		return models.Session{}, err
	}
	if version == 0 {
		return models.Session{}, fmt.Errorf("plan %w", ErrNotFound)
	}

	s, err := scanSession(d.queryRow("SELECT "+sessionColumns+" FROM sessions WHERE plan_version = ? AND id = ?", version, sessionID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Session{}, fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
	}
	if err != nil {
		return models.Session{}, err
	}

	if err := s.SetStatus(status, at); err != nil {
		return models.Session{}, err
	}
	_, err = d.exec("UPDATE sessions SET status = ?, completed_at = ? WHERE plan_version = ? AND id = ?",
		string(s.Status), formatNullTime(s.CompletedAt), version, sessionID)
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to update session %s: %w", sessionID, err)
	}
	return s, nil
}
