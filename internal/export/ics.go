package export

import (
	"io"
	"strings"
	"unicode/utf8"

	ics "github.com/arran4/golang-ical"

	"github.com/julianstephens/studyflow/internal/constants"
	"github.com/julianstephens/studyflow/internal/models"
)

const (
	productID          = "-//StudyFlow//Planner 1.0//EN"
	defaultDescription = "Complete the session"
	uidSuffix          = "@studyflow"
)

var subjectPalette = []string{"#6EE7B7", "#93C5FD", "#FCD34D", "#FCA5A5", "#C4B5FD", "#F9A8D4"}

// SubjectPaletteIndex picks a stable palette slot from the first letter of
// each word in subject.
func SubjectPaletteIndex(subject string) int {
	sum := 0
	for _, word := range strings.Split(subject, " ") {
		if r, _ := utf8.DecodeRuneInString(word); r != utf8.RuneError {
			sum += int(r)
		}
	}
	return sum % len(subjectPalette)
}

// SubjectColor is the hex color for subject.
func SubjectColor(subject string) string {
	return subjectPalette[SubjectPaletteIndex(subject)]
}

// SessionUID is the iCalendar UID of a session.
func SessionUID(s models.Session) string {
	return s.ID + uidSuffix
}

// Summary is "subject · title".
func Summary(s models.Session) string {
	return s.Subject + " · " + s.Title
}

// Description joins the success criteria, or a default line when there are none.
func Description(s models.Session) string {
	criteria := s.SuccessCriteria()
	if len(criteria) == 0 {
		return defaultDescription
	}
	return strings.Join(criteria, " • ")
}

// Calendar renders every non-break session of plan as a VEVENT.
func Calendar(plan models.PlanRecord) *ics.Calendar {
	cal := ics.NewCalendar()
	cal.SetProductId(productID)
	cal.SetCalscale("GREGORIAN")
	cal.SetMethod(ics.MethodPublish)
	cal.SetXWRCalName(constants.AppName)

	for _, s := range plan.Sessions {
		if s.IsBreak() {
			continue
		}
		event := cal.AddEvent(SessionUID(s))
		event.SetDtStampTime(plan.GeneratedAt)
		event.SetStartAt(s.PlannedStart)
		event.SetEndAt(s.PlannedEnd)
		event.SetSummary(Summary(s))
		event.SetDescription(Description(s))
		event.SetProperty(ics.ComponentPropertyCategories, s.Subject)
		event.SetProperty(ics.ComponentProperty("COLOR"), SubjectColor(s.Subject))
	}
	return cal
}

// ICS serializes plan as an iCalendar document.
func ICS(plan models.PlanRecord) string {
	return Calendar(plan).Serialize()
}

// WriteICS writes the iCalendar document for plan to w.
func WriteICS(w io.Writer, plan models.PlanRecord) error {
	return Calendar(plan).SerializeTo(w)
}
