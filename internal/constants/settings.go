package constants

const (
	// Setting keys
	SettingDailyLimitMin = "daily_limit_min"
	SettingBufferPercent = "buffer_percent"
	SettingFocusMin      = "break_focus_min"
	SettingRestMin       = "break_rest_min"
	SettingBreakLabel    = "break_label"
	SettingTimezone      = "timezone"

	// Default Settings Values
	DefaultDailyLimitMin = 180
	DefaultBufferPercent = 0.15
	DefaultFocusMin      = 45
	DefaultRestMin       = 10
	DefaultBreakLabel    = "Deep work 45/10"
	DefaultTimezone      = "Asia/Ho_Chi_Minh"

	// Settings bounds
	MinDailyLimitMin = 30
	MaxDailyLimitMin = 600
	MinBufferPercent = 0.0
	MaxBufferPercent = 0.5
)
