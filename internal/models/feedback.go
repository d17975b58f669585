package models

import "time"

type FeedbackLabel string

const (
	FeedbackTooDense     FeedbackLabel = "too_dense"
	FeedbackTooEasy      FeedbackLabel = "too_easy"
	FeedbackNeedMoreTime FeedbackLabel = "need_more_time"
	FeedbackEveningFocus FeedbackLabel = "evening_focus"
	FeedbackCustom       FeedbackLabel = "custom"
)

// ValidFeedbackLabels lists the accepted labels in display order.
var ValidFeedbackLabels = []FeedbackLabel{
	FeedbackTooDense, FeedbackTooEasy, FeedbackNeedMoreTime, FeedbackEveningFocus, FeedbackCustom,
}

type Feedback struct {
	ID          string        `json:"id"`
	Label       FeedbackLabel `json:"label"`
	Note        string        `json:"note,omitempty"`
	PlanVersion int           `json:"plan_version,omitempty"`
	SubmittedAt time.Time     `json:"submitted_at"`
}
