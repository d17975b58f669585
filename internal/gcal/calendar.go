package gcal

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/julianstephens/studyflow/internal/constants"
	"github.com/julianstephens/studyflow/internal/export"
	"github.com/julianstephens/studyflow/internal/logger"
	"github.com/julianstephens/studyflow/internal/models"
)

const (
	managedProperty = "studyflow_managed"
	defaultCalendar = "primary"
)

// Google event color ids matched to the export palette.
var paletteColorIDs = []string{"2", "9", "5", "4", "1", "3"}

// EventsAPI is the part of the Calendar API the syncer needs.
type EventsAPI interface {
	ListManaged(ctx context.Context, calendarID string, timeMin time.Time) ([]*calendar.Event, error)
	Insert(ctx context.Context, calendarID string, event *calendar.Event) (*calendar.Event, error)
	Patch(ctx context.Context, calendarID, eventID string, patch *calendar.Event) (*calendar.Event, error)
	Delete(ctx context.Context, calendarID, eventID string) error
}

type serviceEvents struct {
	srv *calendar.Service
}

// NewEventsAPI wraps an authenticated Calendar service.
func NewEventsAPI(srv *calendar.Service) EventsAPI {
	return &serviceEvents{srv: srv}
}

func (s *serviceEvents) ListManaged(ctx context.Context, calendarID string, timeMin time.Time) ([]*calendar.Event, error) {
	var out []*calendar.Event
	err := s.srv.Events.List(calendarID).
		TimeMin(timeMin.Format(time.RFC3339)).
		PrivateExtendedProperty(managedProperty+"=true").
		SingleEvents(true).
		Pages(ctx, func(page *calendar.Events) error {
			out = append(out, page.Items...)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to list calendar events: %w", err)
	}
	return out, nil
}

func (s *serviceEvents) Insert(ctx context.Context, calendarID string, event *calendar.Event) (*calendar.Event, error) {
	return s.srv.Events.Insert(calendarID, event).Context(ctx).Do()
}

func (s *serviceEvents) Patch(ctx context.Context, calendarID, eventID string, patch *calendar.Event) (*calendar.Event, error) {
	return s.srv.Events.Patch(calendarID, eventID, patch).Context(ctx).Do()
}

func (s *serviceEvents) Delete(ctx context.Context, calendarID, eventID string) error {
	return s.srv.Events.Delete(calendarID, eventID).Context(ctx).Do()
}

// FindCalendar resolves a calendar by its summary. An empty name is the
// primary calendar.
func FindCalendar(ctx context.Context, srv *calendar.Service, name string) (string, error) {
	if name == "" || name == defaultCalendar {
		return defaultCalendar, nil
	}
	list, err := srv.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to retrieve calendar list: %w", err)
	}
	for _, item := range list.Items {
		if item.Summary == name {
			return item.Id, nil
		}
	}
	return "", fmt.Errorf("calendar %q not found", name)
}

// SyncReport counts what a push changed.
type SyncReport struct {
	Created   int
	Updated   int
	Deleted   int
	Unchanged int
}

// Syncer mirrors the latest plan into one calendar.
type Syncer struct {
	api        EventsAPI
	calendarID string
}

func NewSyncer(api EventsAPI, calendarID string) *Syncer {
	if calendarID == "" {
		calendarID = defaultCalendar
	}
	return &Syncer{api: api, calendarID: calendarID}
}

// Push creates or patches one event per non-break session and deletes
// managed events from now on that no longer belong to the plan.
func (s *Syncer) Push(ctx context.Context, plan models.PlanRecord, now time.Time) (SyncReport, error) {
	var report SyncReport

	existing, err := s.api.ListManaged(ctx, s.calendarID, now)
	if err != nil {
		return report, err
	}
	bySession := make(map[string]*calendar.Event, len(existing))
	for _, ev := range existing {
		if id := sessionIDOf(ev); id != "" {
			bySession[id] = ev
		}
	}

	keep := make(map[string]bool)
	for _, session := range plan.Sessions {
		if session.IsBreak() || session.PlannedEnd.Before(now) {
			continue
		}
		keep[session.ID] = true
		target := SessionToEvent(session, plan.PlanVersion)

		current, ok := bySession[session.ID]
		if !ok {
			if _, err := s.api.Insert(ctx, s.calendarID, target); err != nil {
				return report, fmt.Errorf("failed to create event for session %s: %w", session.ID, err)
			}
			report.Created++
			continue
		}
		patch := EventPatch(current, target)
		if patch == nil {
			report.Unchanged++
			continue
		}
		if _, err := s.api.Patch(ctx, s.calendarID, current.Id, patch); err != nil {
			return report, fmt.Errorf("failed to update event for session %s: %w", session.ID, err)
		}
		report.Updated++
	}

	for id, ev := range bySession {
		if keep[id] {
			continue
		}
		if err := s.api.Delete(ctx, s.calendarID, ev.Id); err != nil {
			return report, fmt.Errorf("failed to delete stale event %s: %w", ev.Id, err)
		}
		report.Deleted++
	}

	logger.Info("Pushed plan to Google Calendar", "version", plan.PlanVersion,
		"created", report.Created, "updated", report.Updated, "deleted", report.Deleted)
	return report, nil
}

// SessionToEvent converts a session into a Calendar event tagged with its
// session id and plan version.
func SessionToEvent(session models.Session, version int) *calendar.Event {
	summary := export.Summary(session)
	if session.Status == models.StatusDone {
		summary = "✓ " + summary
	}
	return &calendar.Event{
		Summary:     summary,
		Description: export.Description(session),
		ColorId:     paletteColorIDs[export.SubjectPaletteIndex(session.Subject)],
		Start:       &calendar.EventDateTime{DateTime: session.PlannedStart.UTC().Format(time.RFC3339)},
		End:         &calendar.EventDateTime{DateTime: session.PlannedEnd.UTC().Format(time.RFC3339)},
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{
				managedProperty:                 "true",
				constants.GoogleSessionProperty: session.ID,
				constants.GoogleVersionProperty: strconv.Itoa(version),
			},
		},
	}
}

// EventPatch returns the fields of target that differ from existing, or nil
// when the event is already up to date.
func EventPatch(existing, target *calendar.Event) *calendar.Event {
	patch := &calendar.Event{}
	changed := false

	if existing.Summary != target.Summary {
		patch.Summary = target.Summary
		changed = true
	}
	if existing.Description != target.Description {
		patch.Description = target.Description
		changed = true
	}
	if existing.ColorId != target.ColorId {
		patch.ColorId = target.ColorId
		changed = true
	}
	if !sameInstant(existing.Start, target.Start) || !sameInstant(existing.End, target.End) {
		patch.Start = target.Start
		patch.End = target.End
		changed = true
	}
	if versionOf(existing) != versionOf(target) {
		patch.ExtendedProperties = target.ExtendedProperties
		changed = true
	}

	if !changed {
		return nil
	}
	return patch
}

func sameInstant(a, b *calendar.EventDateTime) bool {
	if a == nil || b == nil {
		return a == b
	}
	ta, errA := time.Parse(time.RFC3339, a.DateTime)
	tb, errB := time.Parse(time.RFC3339, b.DateTime)
	if errA != nil || errB != nil {
		return a.DateTime == b.DateTime
	}
	return ta.Equal(tb)
}

func sessionIDOf(ev *calendar.Event) string {
	if ev.ExtendedProperties == nil {
		return ""
	}
	return ev.ExtendedProperties.Private[constants.GoogleSessionProperty]
}

func versionOf(ev *calendar.Event) string {
	if ev.ExtendedProperties == nil {
		return ""
	}
	return ev.ExtendedProperties.Private[constants.GoogleVersionProperty]
}
