package scheduler

import (
	"sort"
	"time"

	"github.com/julianstephens/studyflow/internal/models"
	"github.com/julianstephens/studyflow/internal/utils"
)

const breakSubject = "Break"

// BreakRules controls when two sessions count as back to back and how long
// the rest between them is.
type BreakRules struct {
	ContiguousGapMinutes  int // gaps up to this are treated as contiguous
	LongFocusMinutes      int // combined focus at which the rest is extended
	LongFocusBonusMinutes int
}

func DefaultBreakRules() BreakRules {
	return BreakRules{
		ContiguousGapMinutes:  5,
		LongFocusMinutes:      90,
		LongFocusBonusMinutes: 5,
	}
}

// InsertBreaks puts a rest session between back-to-back sessions of the same
// day and pushes the rest of that day later by the rest length. Existing
// breaks in the input are discarded. The result is ordered by start.
func InsertBreaks(sessions []models.Session, preset models.BreakPreset, loc *time.Location, rules BreakRules, ids IDGenerator, version int) []models.Session {
	var focus []models.Session
	for _, s := range sessions {
		if !s.IsBreak() {
			focus = append(focus, s)
		}
	}
	sortByStart(focus)
	if preset.Rest <= 0 {
		return focus
	}

	byDay := make(map[string][]models.Session)
	var days []string
	for _, s := range focus {
		key := utils.DateKey(s.PlannedStart, loc)
		if _, ok := byDay[key]; !ok {
			days = append(days, key)
		}
		byDay[key] = append(byDay[key], s)
	}
	sort.Strings(days)

	gap := time.Duration(rules.ContiguousGapMinutes) * time.Minute
	out := make([]models.Session, 0, len(focus)*2)
	for _, day := range days {
		daySessions := byDay[day]
		var offset time.Duration
		for i, current := range daySessions {
			shifted := current
			shifted.PlannedStart = current.PlannedStart.Add(offset)
			shifted.PlannedEnd = current.PlannedEnd.Add(offset)
			out = append(out, shifted)

			if i+1 >= len(daySessions) {
				continue
			}
			next := daySessions[i+1]
			if next.PlannedStart.Sub(current.PlannedEnd) > gap {
				continue
			}

			rest := preset.Rest
			if current.Minutes+next.Minutes >= rules.LongFocusMinutes {
				rest += rules.LongFocusBonusMinutes
			}
			restDuration := time.Duration(rest) * time.Minute
			out = append(out, models.Session{
				ID:           ids.NewID(),
				Source:       models.SourceBreak,
				Subject:      breakSubject,
				Title:        preset.Label,
				PlannedStart: shifted.PlannedEnd,
				PlannedEnd:   shifted.PlannedEnd.Add(restDuration),
				Minutes:      rest,
				Status:       models.StatusPending,
				PlanVersion:  version,
				Break: &models.BreakSessionDetail{
					Label:          preset.Label,
					AfterSessionID: current.ID,
				},
			})
			offset += restDuration
		}
	}
	sortByStart(out)
	return out
}

func sortByStart(sessions []models.Session) {
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].PlannedStart.Before(sessions[j].PlannedStart)
	})
}
