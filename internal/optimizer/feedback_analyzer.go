package optimizer

import (
	"errors"
	"fmt"
	"math"

	"github.com/julianstephens/studyflow/internal/constants"
	"github.com/julianstephens/studyflow/internal/models"
	"github.com/julianstephens/studyflow/internal/storage"
)

// AdjustmentType names the setting a feedback label moved
type AdjustmentType string

const (
	AdjustBuffer     AdjustmentType = "buffer_percent"
	AdjustDailyLimit AdjustmentType = "daily_limit_minutes"
)

// Adjustment describes one tuning step applied for a rebuild
type Adjustment struct {
	Type           AdjustmentType       `json:"type"`
	Label          models.FeedbackLabel `json:"label"`
	Reason         string               `json:"reason"`
	CurrentValue   interface{}          `json:"current_value"`
	SuggestedValue interface{}          `json:"suggested_value"`
}

// FeedbackSource is the slice of storage the analyzer reads
type FeedbackSource interface {
	GetLatestFeedback() (models.Feedback, error)
}

// FeedbackAnalyzer turns the latest plan feedback into settings tweaks
type FeedbackAnalyzer struct {
	store FeedbackSource
}

// NewFeedbackAnalyzer creates a new FeedbackAnalyzer
func NewFeedbackAnalyzer(store FeedbackSource) *FeedbackAnalyzer {
	return &FeedbackAnalyzer{store: store}
}

// Tune returns a copy of settings adjusted by the latest feedback, along with
// the adjustments made. Stored settings are never touched.
func (fa *FeedbackAnalyzer) Tune(settings models.Settings) (models.Settings, []Adjustment, error) {
	feedback, err := fa.store.GetLatestFeedback()
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return settings, nil, nil
		}
		return settings, nil, fmt.Errorf("failed to get latest feedback: %w", err)
	}
	tuned, adjustments := Apply(settings, feedback.Label)
	return tuned, adjustments, nil
}

// Apply adjusts settings for a single feedback label.
func Apply(settings models.Settings, label models.FeedbackLabel) (models.Settings, []Adjustment) {
	tuned := settings
	var adjustments []Adjustment

	switch label {
	case models.FeedbackTooDense:
		next := roundBuffer(math.Min(constants.MaxBufferPercent, settings.BufferPercent+constants.FeedbackDenseBufferStep))
		if next != settings.BufferPercent {
			tuned.BufferPercent = next
			adjustments = append(adjustments, Adjustment{
				Type:           AdjustBuffer,
				Label:          label,
				Reason:         "last plan felt too dense, holding back more slot time",
				CurrentValue:   settings.BufferPercent,
				SuggestedValue: next,
			})
		}
	case models.FeedbackTooEasy:
		next := roundBuffer(math.Max(constants.FeedbackMinTunedBuffer, settings.BufferPercent-constants.FeedbackEasyBufferStep))
		if next != settings.BufferPercent {
			tuned.BufferPercent = next
			adjustments = append(adjustments, Adjustment{
				Type:           AdjustBuffer,
				Label:          label,
				Reason:         "last plan felt too easy, using more of each slot",
				CurrentValue:   settings.BufferPercent,
				SuggestedValue: next,
			})
		}
	case models.FeedbackNeedMoreTime:
		next := settings.DailyLimitMinutes + constants.FeedbackMoreTimeDailyStep
		if next > constants.MaxDailyLimitMin {
			next = constants.MaxDailyLimitMin
		}
		if next != settings.DailyLimitMinutes {
			tuned.DailyLimitMinutes = next
			adjustments = append(adjustments, Adjustment{
				Type:           AdjustDailyLimit,
				Label:          label,
				Reason:         "last plan ran out of time, raising the daily limit",
				CurrentValue:   settings.DailyLimitMinutes,
				SuggestedValue: next,
			})
		}
	}

	return tuned, adjustments
}

// roundBuffer keeps buffer steps free of float drift (0.15+0.1 != 0.25).
func roundBuffer(v float64) float64 {
	return math.Round(v*100) / 100
}
