package models

// BreakPreset is the focus/rest rhythm used when chunking and inserting breaks
type BreakPreset struct {
	Focus int    `json:"focus"` // preferred session length in minutes
	Rest  int    `json:"rest"`  // rest length in minutes
	Label string `json:"label"`
}

// Settings represents application-wide settings
type Settings struct {
	DailyLimitMinutes int         `json:"daily_limit_minutes"` // 30-600
	BufferPercent     float64     `json:"buffer_percent"`      // 0-0.5, share of slot time held back
	BreakPreset       BreakPreset `json:"break_preset"`
	Timezone          string      `json:"timezone"` // IANA timezone name or "Local"
}
