package models

import (
	"fmt"
	"strconv"

	"github.com/julianstephens/studyflow/internal/constants"
)

// DefaultSettings returns the settings a fresh store starts with.
func DefaultSettings() Settings {
	return Settings{
		DailyLimitMinutes: constants.DefaultDailyLimitMin,
		BufferPercent:     constants.DefaultBufferPercent,
		BreakPreset: BreakPreset{
			Focus: constants.DefaultFocusMin,
			Rest:  constants.DefaultRestMin,
			Label: constants.DefaultBreakLabel,
		},
		Timezone: constants.DefaultTimezone,
	}
}

// MapToSettings converts a map of key-value pairs to a Settings struct.
func MapToSettings(data map[string]string) (Settings, error) {
	settings := Settings{}

	for key, value := range data {
		switch key {
		case constants.SettingDailyLimitMin:
			if _, err := fmt.Sscanf(value, "%d", &settings.DailyLimitMinutes); err != nil {
				return Settings{}, fmt.Errorf("parsing daily_limit_min: %w", err)
			}
		case constants.SettingBufferPercent:
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return Settings{}, fmt.Errorf("parsing buffer_percent: %w", err)
			}
			settings.BufferPercent = f
		case constants.SettingFocusMin:
			if _, err := fmt.Sscanf(value, "%d", &settings.BreakPreset.Focus); err != nil {
				return Settings{}, fmt.Errorf("parsing break_focus_min: %w", err)
			}
		case constants.SettingRestMin:
			if _, err := fmt.Sscanf(value, "%d", &settings.BreakPreset.Rest); err != nil {
				return Settings{}, fmt.Errorf("parsing break_rest_min: %w", err)
			}
		case constants.SettingBreakLabel:
			settings.BreakPreset.Label = value
		case constants.SettingTimezone:
			settings.Timezone = value
		}
	}
	return settings, nil
}

// SettingsToMap converts a Settings struct to a map of key-value pairs.
func SettingsToMap(settings Settings) map[string]string {
	return map[string]string{
		constants.SettingDailyLimitMin: fmt.Sprintf("%d", settings.DailyLimitMinutes),
		constants.SettingBufferPercent: strconv.FormatFloat(settings.BufferPercent, 'f', -1, 64),
		constants.SettingFocusMin:      fmt.Sprintf("%d", settings.BreakPreset.Focus),
		constants.SettingRestMin:       fmt.Sprintf("%d", settings.BreakPreset.Rest),
		constants.SettingBreakLabel:    settings.BreakPreset.Label,
		constants.SettingTimezone:      settings.Timezone,
	}
}

// ApplyDefaultSettings applies default values to missing settings.
// A zero buffer and zero rest are legitimate choices and are left alone.
func ApplyDefaultSettings(settings *Settings) {
	if settings.DailyLimitMinutes == 0 {
		settings.DailyLimitMinutes = constants.DefaultDailyLimitMin
	}
	if settings.BreakPreset.Focus == 0 {
		settings.BreakPreset.Focus = constants.DefaultFocusMin
	}
	if settings.BreakPreset.Label == "" {
		settings.BreakPreset.Label = constants.DefaultBreakLabel
	}
	if settings.Timezone == "" {
		settings.Timezone = constants.DefaultTimezone
	}
}
