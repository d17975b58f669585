package plans

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/julianstephens/studyflow/internal/constants"
	"github.com/julianstephens/studyflow/internal/models"
	"github.com/julianstephens/studyflow/internal/utils"
)

func statusMark(s models.Session) string {
	switch {
	case s.IsBreak():
		return " "
	case s.Status == models.StatusDone:
		return "✓"
	case s.Status == models.StatusSkipped:
		return "✗"
	default:
		return "·"
	}
}

// printPlan writes the sessions grouped by day, then unscheduled tasks and
// suggestions.
func printPlan(w io.Writer, plan models.PlanRecord, loc *time.Location, showIDs bool) {
	fmt.Fprintf(w, "Plan v%d (generated %s)\n", plan.PlanVersion, plan.GeneratedAt.In(loc).Format(constants.DateTimeFormat))

	if len(plan.Sessions) == 0 {
		fmt.Fprintln(w, "\n  No sessions scheduled")
	}

	day := ""
	for _, s := range plan.Sessions {
		start := s.PlannedStart.In(loc)
		if key := start.Format(constants.DateFormat); key != day {
			day = key
			fmt.Fprintf(w, "\n%s %s\n", start.Weekday().String()[:3], day)
		}
		label := s.Title
		if s.Subject != "" && !s.IsBreak() {
			label = s.Subject + " · " + s.Title
		}
		fmt.Fprintf(w, "  %s %s–%s  %s (%s)",
			statusMark(s),
			start.Format(constants.TimeFormat),
			s.PlannedEnd.In(loc).Format(constants.TimeFormat),
			label,
			utils.FormatMinutes(s.Minutes))
		if showIDs && !s.IsBreak() {
			fmt.Fprintf(w, "  [%s]", s.ID)
		}
		fmt.Fprintln(w)
		if criteria := s.SuccessCriteria(); len(criteria) > 0 && !s.IsBreak() {
			fmt.Fprintf(w, "      ↳ %s\n", strings.Join(criteria, " • "))
		}
	}

	if len(plan.UnscheduledTasks) > 0 {
		fmt.Fprintln(w, "\nUnscheduled:")
		for _, t := range plan.UnscheduledTasks {
			fmt.Fprintf(w, "  - %s (due %s, %s remaining)\n", t.DisplayName(),
				t.Deadline.In(loc).Format(constants.DateTimeFormat), utils.FormatMinutes(t.RemainingMinutes()))
		}
	}
	if len(plan.Suggestions) > 0 {
		fmt.Fprintln(w, "\nSuggestions:")
		for _, sg := range plan.Suggestions {
			fmt.Fprintf(w, "  - [%s] %s\n", sg.Type, sg.Message)
		}
	}
}
