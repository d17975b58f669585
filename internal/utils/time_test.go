package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadLocation(t *testing.T) {
	tests := []struct {
		name     string
		timezone string
		wantErr  bool
	}{
		{name: "empty string returns local", timezone: "", wantErr: false},
		{name: "Local returns local", timezone: "Local", wantErr: false},
		{name: "valid timezone UTC", timezone: "UTC", wantErr: false},
		{name: "valid timezone Asia/Ho_Chi_Minh", timezone: "Asia/Ho_Chi_Minh", wantErr: false},
		{name: "invalid timezone", timezone: "Invalid/Timezone", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := LoadLocation(tt.timezone)
			if (err != nil) != tt.wantErr {
				t.Fatalf("LoadLocation(%q) error = %v, wantErr %v", tt.timezone, err, tt.wantErr)
			}
			if !tt.wantErr && loc == nil {
				t.Errorf("LoadLocation(%q) returned nil location", tt.timezone)
			}
		})
	}
}

func TestParseTimeToMinutes(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"19:30", 1170, false},
		{"23:59", 1439, false},
		{"7pm", 0, true},
		{"25:00", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseTimeToMinutes(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseTimeToMinutes(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseTimeToMinutes(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestParseSlotEnd(t *testing.T) {
	if got, err := ParseSlotEnd("24:00"); err != nil || got != 1440 {
		t.Errorf("ParseSlotEnd(24:00) = %d, %v", got, err)
	}
	if got, err := ParseSlotEnd("21:15"); err != nil || got != 1275 {
		t.Errorf("ParseSlotEnd(21:15) = %d, %v", got, err)
	}
	if _, err := ParseSlotEnd("24:30"); err == nil {
		t.Error("expected error for 24:30")
	}
}

func TestMinutesToTime(t *testing.T) {
	if got := MinutesToTime(1170); got != "19:30" {
		t.Errorf("MinutesToTime(1170) = %q, want 19:30", got)
	}
	if got := MinutesToTime(5); got != "00:05" {
		t.Errorf("MinutesToTime(5) = %q, want 00:05", got)
	}
}

func TestAtMinuteAndDateKey(t *testing.T) {
	loc, err := LoadLocation("Asia/Ho_Chi_Minh")
	if err != nil {
		t.Fatalf("LoadLocation failed: %v", err)
	}
	// 2025-03-02 20:00 UTC is 2025-03-03 03:00 in UTC+7
	instant := time.Date(2025, 3, 2, 20, 0, 0, 0, time.UTC)
	if got := DateKey(instant, loc); got != "2025-03-03" {
		t.Errorf("DateKey = %q, want 2025-03-03", got)
	}
	at := AtMinute(instant, 19*60, loc)
	want := time.Date(2025, 3, 3, 19, 0, 0, 0, loc)
	if !at.Equal(want) {
		t.Errorf("AtMinute = %v, want %v", at, want)
	}
	if sod := StartOfDay(instant, loc); !sod.Equal(time.Date(2025, 3, 3, 0, 0, 0, 0, loc)) {
		t.Errorf("StartOfDay = %v", sod)
	}
}

func TestParseDeadline(t *testing.T) {
	loc := time.UTC
	tests := []struct {
		input string
		want  time.Time
	}{
		{"2025-03-10T18:00:00Z", time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)},
		{"2025-03-10 09:30", time.Date(2025, 3, 10, 9, 30, 0, 0, loc)},
		{"2025-03-10", time.Date(2025, 3, 10, 23, 59, 0, 0, loc)},
	}
	for _, tt := range tests {
		got, err := ParseDeadline(tt.input, loc)
		if err != nil {
			t.Errorf("ParseDeadline(%q) failed: %v", tt.input, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("ParseDeadline(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
	if _, err := ParseDeadline("next friday", loc); err == nil {
		t.Error("expected error for unparseable deadline")
	}
}

func TestFormatMinutes(t *testing.T) {
	tests := map[int]string{0: "0m", 45: "45m", 60: "1h", 90: "1h 30m", 240: "4h"}
	for in, want := range tests {
		if got := FormatMinutes(in); got != want {
			t.Errorf("FormatMinutes(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	got, err := ExpandHome("~/.config/studyflow/studyflow.db")
	if err != nil {
		t.Fatalf("ExpandHome failed: %v", err)
	}
	want := filepath.Join(home, ".config/studyflow/studyflow.db")
	if got != want {
		t.Errorf("ExpandHome = %q, want %q", got, want)
	}
	if got, _ := ExpandHome("/tmp/x.db"); got != "/tmp/x.db" {
		t.Errorf("ExpandHome changed absolute path: %q", got)
	}
}

func TestParseWeekdays(t *testing.T) {
	got, err := ParseWeekdays("mon, Tuesday,0")
	if err != nil {
		t.Fatalf("ParseWeekdays failed: %v", err)
	}
	want := []time.Weekday{time.Monday, time.Tuesday, time.Sunday}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("day %d = %v, want %v", i, got[i], want[i])
		}
	}

	for _, bad := range []string{"funday", "7", ""} {
		if _, err := ParseWeekday(bad); err == nil {
			t.Errorf("ParseWeekday(%q) should fail", bad)
		}
	}
}
