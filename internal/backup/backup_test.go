package backup

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

// setupTestDB creates a minimal store with a schema_version table and one task.
func setupTestDB(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "studyflow.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	defer db.Close()

	for _, stmt := range []string{
		"CREATE TABLE schema_version (version INTEGER NOT NULL)",
		"INSERT INTO schema_version (version) VALUES (1)",
		"CREATE TABLE tasks (id TEXT PRIMARY KEY, title TEXT)",
		"INSERT INTO tasks (id, title) VALUES ('t1', 'Quadratic equations')",
	} {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("failed to seed test database: %v", err)
		}
	}
	return dbPath
}

func countTasks(t *testing.T, path string) int {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("failed to open %s: %v", path, err)
	}
	defer db.Close()

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM tasks").Scan(&n); err != nil {
		t.Fatalf("failed to count tasks: %v", err)
	}
	return n
}

func fixedClock(ts ...time.Time) func() time.Time {
	i := 0
	return func() time.Time {
		t := ts[i]
		if i < len(ts)-1 {
			i++
		}
		return t
	}
}

func TestCreateBackup(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	mgr.now = fixedClock(time.Date(2026, 3, 9, 19, 0, 0, 0, time.Local))

	path, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}
	if filepath.Base(path) != "studyflow-20260309-190000.db" {
		t.Errorf("unexpected backup name %s", filepath.Base(path))
	}
	if filepath.Dir(path) != mgr.GetBackupDir() {
		t.Errorf("backup written outside %s", mgr.GetBackupDir())
	}
	if got := countTasks(t, path); got != 1 {
		t.Errorf("backup has %d tasks, want 1", got)
	}
}

func TestCreateBackupSameSecond(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	mgr.now = fixedClock(time.Date(2026, 3, 9, 19, 0, 0, 0, time.Local))

	first, err := mgr.CreateBackup()
	if err != nil {
		t.Fatal(err)
	}
	second, err := mgr.CreateBackup()
	if err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Fatal("second backup overwrote the first")
	}
	if filepath.Base(second) != "studyflow-20260309-190000-1.db" {
		t.Errorf("unexpected counter name %s", filepath.Base(second))
	}

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 2 {
		t.Fatalf("expected 2 backups, got %d", len(backups))
	}
}

func TestCreateBackupMissingDatabase(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "missing.db"))
	if _, err := mgr.CreateBackup(); !errors.Is(err, ErrNoDatabase) {
		t.Errorf("expected ErrNoDatabase, got %v", err)
	}
}

func TestRotateBackups(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	mgr.keep = 3

	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.Local)
	var stamps []time.Time
	for i := 0; i < 5; i++ {
		stamps = append(stamps, base.Add(time.Duration(i)*time.Hour))
	}
	mgr.now = fixedClock(stamps...)

	for i := 0; i < 5; i++ {
		if _, err := mgr.CreateBackup(); err != nil {
			t.Fatalf("backup %d failed: %v", i, err)
		}
	}

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 3 {
		t.Fatalf("expected 3 backups after rotation, got %d", len(backups))
	}
	if !backups[0].Timestamp.Equal(stamps[4]) {
		t.Errorf("newest backup = %v, want %v", backups[0].Timestamp, stamps[4])
	}
	if !backups[2].Timestamp.Equal(stamps[2]) {
		t.Errorf("oldest kept backup = %v, want %v", backups[2].Timestamp, stamps[2])
	}
}

func TestListBackupsIgnoresStrayFiles(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	if err := os.MkdirAll(mgr.GetBackupDir(), 0700); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"notes.txt", "studyflow-garbage.db", "other-20260101-000000.db"} {
		if err := os.WriteFile(filepath.Join(mgr.GetBackupDir(), name), []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
	}

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 0 {
		t.Errorf("expected stray files to be ignored, got %+v", backups)
	}
}

func TestRestoreBackup(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	mgr.now = fixedClock(
		time.Date(2026, 3, 9, 19, 0, 0, 0, time.Local),
		time.Date(2026, 3, 9, 20, 0, 0, 0, time.Local),
	)

	saved, err := mgr.CreateBackup()
	if err != nil {
		t.Fatal(err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("INSERT INTO tasks (id, title) VALUES ('t2', 'Geometry')"); err != nil {
		t.Fatal(err)
	}
	db.Close()

	previous, err := mgr.RestoreBackup(saved)
	if err != nil {
		t.Fatalf("RestoreBackup failed: %v", err)
	}
	if got := countTasks(t, dbPath); got != 1 {
		t.Errorf("restored database has %d tasks, want 1", got)
	}
	if previous == "" || countTasks(t, previous) != 2 {
		t.Errorf("pre-restore snapshot should hold 2 tasks (%s)", previous)
	}
}

func TestRestoreRejectsForeignDatabase(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)

	foreign := filepath.Join(t.TempDir(), "other.db")
	db, err := sql.Open("sqlite", foreign)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("CREATE TABLE x (id INTEGER)"); err != nil {
		t.Fatal(err)
	}
	db.Close()

	if _, err := mgr.RestoreBackup(foreign); err == nil {
		t.Error("expected restore of a non-studyflow database to fail")
	}
	if _, err := mgr.RestoreBackup(filepath.Join(t.TempDir(), "nope.db")); err == nil {
		t.Error("expected restore of a missing file to fail")
	}
}
