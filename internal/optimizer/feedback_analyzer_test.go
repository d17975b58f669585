package optimizer

import (
	"errors"
	"fmt"
	"testing"

	"github.com/julianstephens/studyflow/internal/models"
	"github.com/julianstephens/studyflow/internal/storage"
)

type mockStore struct {
	feedback *models.Feedback
	err      error
}

func (m *mockStore) GetLatestFeedback() (models.Feedback, error) {
	if m.err != nil {
		return models.Feedback{}, m.err
	}
	if m.feedback == nil {
		return models.Feedback{}, fmt.Errorf("feedback %w", storage.ErrNotFound)
	}
	return *m.feedback, nil
}

func TestApply(t *testing.T) {
	tests := []struct {
		name        string
		label       models.FeedbackLabel
		buffer      float64
		daily       int
		wantBuffer  float64
		wantDaily   int
		wantAdjusts int
	}{
		{"too dense raises buffer", models.FeedbackTooDense, 0.15, 180, 0.25, 180, 1},
		{"too dense capped", models.FeedbackTooDense, 0.45, 180, 0.5, 180, 1},
		{"too dense at cap", models.FeedbackTooDense, 0.5, 180, 0.5, 180, 0},
		{"too easy lowers buffer", models.FeedbackTooEasy, 0.15, 180, 0.1, 180, 1},
		{"too easy floored", models.FeedbackTooEasy, 0.07, 180, 0.05, 180, 1},
		{"too easy below floor lifts to floor", models.FeedbackTooEasy, 0, 180, 0.05, 180, 1},
		{"need more time", models.FeedbackNeedMoreTime, 0.15, 180, 0.15, 210, 1},
		{"need more time capped", models.FeedbackNeedMoreTime, 0.15, 590, 0.15, 600, 1},
		{"evening focus untouched", models.FeedbackEveningFocus, 0.15, 180, 0.15, 180, 0},
		{"custom untouched", models.FeedbackCustom, 0.15, 180, 0.15, 180, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := models.DefaultSettings()
			settings.BufferPercent = tt.buffer
			settings.DailyLimitMinutes = tt.daily

			tuned, adjustments := Apply(settings, tt.label)
			if tuned.BufferPercent != tt.wantBuffer {
				t.Errorf("buffer = %v, want %v", tuned.BufferPercent, tt.wantBuffer)
			}
			if tuned.DailyLimitMinutes != tt.wantDaily {
				t.Errorf("daily limit = %d, want %d", tuned.DailyLimitMinutes, tt.wantDaily)
			}
			if len(adjustments) != tt.wantAdjusts {
				t.Errorf("got %d adjustments, want %d", len(adjustments), tt.wantAdjusts)
			}
			if settings.BufferPercent != tt.buffer || settings.DailyLimitMinutes != tt.daily {
				t.Error("input settings were modified")
			}
		})
	}
}

func TestTuneWithoutFeedback(t *testing.T) {
	fa := NewFeedbackAnalyzer(&mockStore{})
	settings := models.DefaultSettings()

	tuned, adjustments, err := fa.Tune(settings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tuned != settings {
		t.Errorf("settings changed without feedback: %+v", tuned)
	}
	if len(adjustments) != 0 {
		t.Errorf("expected no adjustments, got %d", len(adjustments))
	}
}

func TestTuneUsesLatestFeedback(t *testing.T) {
	fa := NewFeedbackAnalyzer(&mockStore{feedback: &models.Feedback{Label: models.FeedbackTooDense}})

	tuned, adjustments, err := fa.Tune(models.DefaultSettings())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tuned.BufferPercent != 0.25 {
		t.Errorf("buffer = %v, want 0.25", tuned.BufferPercent)
	}
	if len(adjustments) != 1 || adjustments[0].Type != AdjustBuffer {
		t.Errorf("unexpected adjustments: %+v", adjustments)
	}
}

func TestTunePropagatesStoreErrors(t *testing.T) {
	boom := errors.New("disk on fire")
	fa := NewFeedbackAnalyzer(&mockStore{err: boom})

	if _, _, err := fa.Tune(models.DefaultSettings()); !errors.Is(err, boom) {
		t.Errorf("expected wrapped store error, got %v", err)
	}
}
