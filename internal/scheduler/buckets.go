package scheduler

import (
	"math"
	"time"

	"github.com/julianstephens/studyflow/internal/models"
	"github.com/julianstephens/studyflow/internal/utils"
)

// segment is one slot materialized on a concrete date.
type segment struct {
	start time.Time
	end   time.Time
	used  int
}

func (s *segment) length() int {
	if !s.end.After(s.start) {
		return 0
	}
	return int(s.end.Sub(s.start) / time.Minute)
}

func (s *segment) capacity() int {
	return max(0, s.length()-s.used)
}

// dayBucket is the schedulable time on one calendar date.
type dayBucket struct {
	date           time.Time // midnight in the plan location
	segments       []*segment
	rawMinutes     int
	allowedMinutes int
	used           int
	cappedByLimit  bool
}

func (b *dayBucket) remaining() int {
	return max(0, b.allowedMinutes-b.used)
}

// hasCapacity reports whether any segment can still take a chunk.
func (b *dayBucket) hasCapacity() bool {
	if b.remaining() == 0 {
		return false
	}
	for _, seg := range b.segments {
		if seg.capacity() > 0 {
			return true
		}
	}
	return false
}

// buildBuckets expands weekly slots into one bucket per date from now through
// horizon inclusive. Segments on the first day never start before now.
// Dates with no matching slot are left out.
func buildBuckets(now, horizon time.Time, slots []models.FreeSlot, settings models.Settings, loc *time.Location) []*dayBucket {
	firstDay := utils.StartOfDay(now, loc)
	lastDay := utils.StartOfDay(horizon, loc)

	var buckets []*dayBucket
	for day := firstDay; !day.After(lastDay); day = day.AddDate(0, 0, 1) {
		bucket := &dayBucket{date: day}
		for _, slot := range slots {
			if slot.Weekday != day.Weekday() {
				continue
			}
			seg := &segment{
				start: utils.AtMinute(day, slot.StartMin, loc),
				end:   utils.AtMinute(day, slot.EndMin, loc),
			}
			if day.Equal(firstDay) && seg.start.Before(now) {
				seg.start = now
			}
			bucket.segments = append(bucket.segments, seg)
			bucket.rawMinutes += seg.length()
		}
		if len(bucket.segments) == 0 {
			continue
		}

		afterBuffer := int(math.Floor(float64(bucket.rawMinutes)*(1-settings.BufferPercent) + 1e-9))
		bucket.allowedMinutes = max(0, min(settings.DailyLimitMinutes, afterBuffer))
		bucket.cappedByLimit = settings.DailyLimitMinutes < afterBuffer
		buckets = append(buckets, bucket)
	}
	return buckets
}

// totalAllowed sums the allowed minutes across buckets.
func totalAllowed(buckets []*dayBucket) int {
	total := 0
	for _, b := range buckets {
		total += b.allowedMinutes
	}
	return total
}
