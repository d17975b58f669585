package gcal

import (
	"context"
	"fmt"
	"strconv"
	"testing"
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/julianstephens/studyflow/internal/constants"
	"github.com/julianstephens/studyflow/internal/models"
)

type fakeEvents struct {
	events  map[string]*calendar.Event
	nextID  int
	patched []string
	deleted []string
}

func newFakeEvents() *fakeEvents {
	return &fakeEvents{events: map[string]*calendar.Event{}}
}

func (f *fakeEvents) ListManaged(ctx context.Context, calendarID string, timeMin time.Time) ([]*calendar.Event, error) {
	var out []*calendar.Event
	for _, ev := range f.events {
		out = append(out, ev)
	}
	return out, nil
}

func (f *fakeEvents) Insert(ctx context.Context, calendarID string, event *calendar.Event) (*calendar.Event, error) {
	f.nextID++
	event.Id = fmt.Sprintf("ev%d", f.nextID)
	f.events[event.Id] = event
	return event, nil
}

func (f *fakeEvents) Patch(ctx context.Context, calendarID, eventID string, patch *calendar.Event) (*calendar.Event, error) {
	ev := f.events[eventID]
	if patch.Summary != "" {
		ev.Summary = patch.Summary
	}
	if patch.Start != nil {
		ev.Start, ev.End = patch.Start, patch.End
	}
	if patch.ExtendedProperties != nil {
		ev.ExtendedProperties = patch.ExtendedProperties
	}
	f.patched = append(f.patched, eventID)
	return ev, nil
}

func (f *fakeEvents) Delete(ctx context.Context, calendarID, eventID string) error {
	delete(f.events, eventID)
	f.deleted = append(f.deleted, eventID)
	return nil
}

var syncNow = time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC)

func syncSession(id string, hour int) models.Session {
	start := time.Date(2026, 3, 9, hour, 0, 0, 0, time.UTC)
	return models.Session{
		ID: id, Source: models.SourceTask, Subject: "Math", Title: "Quadratics",
		PlannedStart: start, PlannedEnd: start.Add(45 * time.Minute), Minutes: 45,
		Status: models.StatusPending,
		Task:   &models.TaskSessionDetail{TaskID: "t1", SuccessCriteria: []string{"Solve 10 exercises"}},
	}
}

func TestPushCreatesUpdatesAndDeletes(t *testing.T) {
	api := newFakeEvents()
	syncer := NewSyncer(api, "")

	v1 := models.PlanRecord{PlanVersion: 1, Sessions: []models.Session{
		syncSession("a", 18),
		syncSession("b", 19),
		{
			ID: "br", Source: models.SourceBreak, Subject: "Break", Minutes: 10,
			PlannedStart: time.Date(2026, 3, 9, 18, 45, 0, 0, time.UTC),
			PlannedEnd:   time.Date(2026, 3, 9, 18, 55, 0, 0, time.UTC),
			Break:        &models.BreakSessionDetail{AfterSessionID: "a"},
		},
	}}
	report, err := syncer.Push(context.Background(), v1, syncNow)
	if err != nil {
		t.Fatalf("Push failed: %v", err)
	}
	if report != (SyncReport{Created: 2}) {
		t.Errorf("first push = %+v", report)
	}

	report, err = syncer.Push(context.Background(), v1, syncNow)
	if err != nil {
		t.Fatal(err)
	}
	if report != (SyncReport{Unchanged: 2}) {
		t.Errorf("repeat push = %+v", report)
	}

	moved := syncSession("a", 20)
	v2 := models.PlanRecord{PlanVersion: 2, Sessions: []models.Session{moved, syncSession("c", 21)}}
	report, err = syncer.Push(context.Background(), v2, syncNow)
	if err != nil {
		t.Fatal(err)
	}
	if report != (SyncReport{Created: 1, Updated: 1, Deleted: 1}) {
		t.Errorf("second push = %+v", report)
	}
	if len(api.events) != 2 {
		t.Errorf("expected 2 events left, got %d", len(api.events))
	}
	for _, ev := range api.events {
		if got := versionOf(ev); got != strconv.Itoa(2) {
			t.Errorf("event %s still tagged with version %s", ev.Id, got)
		}
	}
}

func TestPushSkipsPastSessions(t *testing.T) {
	api := newFakeEvents()
	plan := models.PlanRecord{PlanVersion: 1, Sessions: []models.Session{syncSession("early", 6), syncSession("late", 19)}}

	report, err := NewSyncer(api, "primary").Push(context.Background(), plan, syncNow)
	if err != nil {
		t.Fatal(err)
	}
	if report.Created != 1 {
		t.Errorf("expected only the future session to be created, got %+v", report)
	}
}

func TestSessionToEvent(t *testing.T) {
	s := syncSession("a", 18)
	s.Status = models.StatusDone
	ev := SessionToEvent(s, 4)

	if ev.Summary != "✓ Math · Quadratics" {
		t.Errorf("summary = %q", ev.Summary)
	}
	if ev.Description != "Solve 10 exercises" {
		t.Errorf("description = %q", ev.Description)
	}
	if ev.Start.DateTime != "2026-03-09T18:00:00Z" || ev.End.DateTime != "2026-03-09T18:45:00Z" {
		t.Errorf("times = %s - %s", ev.Start.DateTime, ev.End.DateTime)
	}
	props := ev.ExtendedProperties.Private
	if props[constants.GoogleSessionProperty] != "a" || props[constants.GoogleVersionProperty] != "4" || props[managedProperty] != "true" {
		t.Errorf("unexpected properties %v", props)
	}
}

func TestEventPatch(t *testing.T) {
	target := SessionToEvent(syncSession("a", 18), 1)

	same := *target
	same.Start = &calendar.EventDateTime{DateTime: "2026-03-09T19:00:00+01:00"}
	if patch := EventPatch(&same, target); patch != nil {
		t.Errorf("equal instants in different zones should not patch: %+v", patch)
	}

	changed := *target
	changed.Summary = "old"
	patch := EventPatch(&changed, target)
	if patch == nil || patch.Summary != target.Summary || patch.Start != nil {
		t.Errorf("expected summary-only patch, got %+v", patch)
	}
}
