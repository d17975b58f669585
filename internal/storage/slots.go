package storage

import (
	"time"

	"github.com/julianstephens/studyflow/internal/models"
)

func (d *DB) AddSlot(slot models.FreeSlot) error {
	if slot.CreatedAt.IsZero() {
		slot.CreatedAt = time.Now()
	}
	if slot.Source == "" {
		slot.Source = models.SlotSourceUser
	}
	_, err := d.exec(`INSERT INTO free_slots (id, weekday, start_min, end_min, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		slot.ID, int(slot.Weekday), slot.StartMin, slot.EndMin, string(slot.Source), formatTime(slot.CreatedAt))
	return err
}

func (d *DB) GetAllSlots() ([]models.FreeSlot, error) {
	rows, err := d.query("SELECT id, weekday, start_min, end_min, source, created_at FROM free_slots ORDER BY weekday, start_min")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slots []models.FreeSlot
	for rows.Next() {
		var s models.FreeSlot
		var weekday int
		var source, createdAt string
		if err := rows.Scan(&s.ID, &weekday, &s.StartMin, &s.EndMin, &source, &createdAt); err != nil {
			return nil, err
		}
		s.Weekday = time.Weekday(weekday)
		s.Source = models.SlotSource(source)
		if s.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}

func (d *DB) DeleteSlot(id string) error {
	res, err := d.exec("DELETE FROM free_slots WHERE id = ?", id)
	if err != nil {
		return err
	}
	return checkAffected(res, "slot", id)
}
