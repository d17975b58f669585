package lock

import (
	"errors"
	"os"
	"testing"

	ps "github.com/mitchellh/go-ps"
)

type mockProcess struct {
	pid        int
	executable string
}

func (m *mockProcess) Pid() int           { return m.pid }
func (m *mockProcess) PPid() int          { return 0 }
func (m *mockProcess) Executable() string { return m.executable }

// withProcesses swaps process lookup for a fixed table.
func withProcesses(t *testing.T, self int, procs map[int]string) {
	t.Helper()
	oldFind, oldPid := findProcessFunc, getpidFunc
	t.Cleanup(func() {
		findProcessFunc, getpidFunc = oldFind, oldPid
	})
	getpidFunc = func() int { return self }
	findProcessFunc = func(pid int) (ps.Process, error) {
		exe, ok := procs[pid]
		if !ok {
			return nil, nil
		}
		return &mockProcess{pid: pid, executable: exe}, nil
	}
}

func TestAcquireAndRelease(t *testing.T) {
	dir := t.TempDir()
	withProcesses(t, 100, map[int]string{100: "studyflow"})

	l, err := Acquire(dir)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	data, _ := os.ReadFile(Path(dir))
	if got := string(data); len(got) == 0 || got[:14] != "100|studyflow|" {
		t.Errorf("unexpected lockfile contents %q", got)
	}

	if err := l.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if err := l.Release(); err != nil {
		t.Errorf("second Release should be a no-op, got %v", err)
	}
	if _, err := os.Stat(Path(dir)); !os.IsNotExist(err) {
		t.Error("lockfile should be removed")
	}
}

func TestAcquireWhileHeld(t *testing.T) {
	dir := t.TempDir()
	withProcesses(t, 100, map[int]string{100: "studyflow", 200: "studyflow"})

	if err := os.WriteFile(Path(dir), []byte("200|studyflow|1700000000"), 0600); err != nil {
		t.Fatal(err)
	}
	_, err := Acquire(dir)
	if !errors.Is(err, ErrLocked) {
		t.Errorf("expected ErrLocked, got %v", err)
	}
}

func TestAcquireReplacesStaleLock(t *testing.T) {
	tests := []struct {
		name     string
		contents string
	}{
		{"dead process", "300|studyflow|1700000000"},
		{"pid reused by another program", "200|studyflow|1700000000"},
		{"malformed", "garbage"},
		{"bad pid", "abc|studyflow|1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			withProcesses(t, 100, map[int]string{100: "studyflow", 200: "bash"})

			if err := os.WriteFile(Path(dir), []byte(tt.contents), 0600); err != nil {
				t.Fatal(err)
			}
			l, err := Acquire(dir)
			if err != nil {
				t.Fatalf("expected stale lock to be replaced, got %v", err)
			}
			defer l.Release()
		})
	}
}
