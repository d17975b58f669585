package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/studyflow/internal/models"
	"github.com/julianstephens/studyflow/internal/planner"
	"github.com/julianstephens/studyflow/internal/stats"
	"github.com/julianstephens/studyflow/internal/storage"
	"github.com/julianstephens/studyflow/internal/tui/components/plan"
	"github.com/julianstephens/studyflow/internal/tui/components/suggestions"
	"github.com/julianstephens/studyflow/internal/tui/components/tasklist"
	"github.com/julianstephens/studyflow/internal/tui/forms"
	"github.com/julianstephens/studyflow/internal/validation"
)

type SessionState int

const (
	StatePlan SessionState = iota
	StateTasks
	StateSuggestions
	StateEditing
	StateConfirmDelete
)

var tabTitles = []string{"Plan", "Tasks", "Suggestions"}

type Model struct {
	store            storage.Provider
	planner          *planner.Service
	loc              *time.Location
	now              func() time.Time
	state            SessionState
	keys             KeyMap
	help             help.Model
	planModel        plan.Model
	taskList         tasklist.Model
	suggestionsModel suggestions.Model
	form             *huh.Form
	taskForm         *forms.TaskFormModel
	editingTask      *models.Task
	taskToDeleteID   string
	status           string
	statusErr        bool
	generating       bool
	quitting         bool
	width            int
	height           int
	warning          string
}

type Option func(*Model)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Model) {
		m.now = now
	}
}

func NewModel(store storage.Provider, svc *planner.Service, loc *time.Location, opts ...Option) Model {
	m := Model{
		store:            store,
		planner:          svc,
		loc:              loc,
		now:              time.Now,
		state:            StatePlan,
		keys:             DefaultKeyMap(),
		help:             help.New(),
		planModel:        plan.New(0, 0, loc),
		suggestionsModel: suggestions.New(0, 0),
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.taskList = tasklist.New(nil, 0, 0, loc, m.now)
	m.refresh()
	return m
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help, m.keys.Generate}
	switch m.state {
	case StatePlan:
		keys = append(keys, m.keys.Done, m.keys.Skip, m.keys.Reset)
	case StateTasks:
		keys = append(keys, m.keys.Add, m.keys.Edit, m.keys.Delete, m.keys.Restore)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help, m.keys.Generate}
	navigation := []key.Binding{m.keys.Up, m.keys.Down, m.keys.Left, m.keys.Right}

	var actions []key.Binding
	switch m.state {
	case StatePlan:
		actions = []key.Binding{m.keys.Done, m.keys.Skip, m.keys.Reset}
	case StateTasks:
		actions = []key.Binding{m.keys.Add, m.keys.Edit, m.keys.Delete, m.keys.Restore}
	}

	return [][]key.Binding{global, navigation, actions}
}

func (m Model) Init() tea.Cmd {
	return nil
}

// refresh reloads tasks and the latest plan from the store.
func (m *Model) refresh() {
	tasks, err := m.store.GetAllTasksIncludingDeleted()
	if err != nil {
		m.setError(fmt.Errorf("failed to load tasks: %w", err))
		tasks = []models.Task{}
	}
	m.taskList.SetTasks(tasks)

	latest, err := m.store.GetLatestPlan()
	if err != nil {
		m.warning = ""
		return
	}
	m.planModel.SetPlan(latest)
	m.updatePlanDetails(latest)
}

// updatePlanDetails recomputes stats and conflicts for the suggestions tab.
func (m *Model) updatePlanDetails(p models.PlanRecord) {
	settings, err := m.store.GetSettings()
	if err != nil {
		settings = models.DefaultSettings()
	}
	active, err := m.store.GetAllTasks()
	if err != nil {
		m.warning = "⚠ Validation unavailable"
		return
	}

	validator := validation.New()
	report := validator.ValidatePlan(p, active, settings)
	taskReport := validator.ValidateTasks(active)
	report.Conflicts = append(report.Conflicts, taskReport.Conflicts...)

	m.suggestionsModel.SetPlan(p, stats.Compute(p, m.now(), m.loc), report)
	if report.HasConflicts() {
		m.warning = fmt.Sprintf("⚠ %d validation warning(s)", len(report.Conflicts))
	} else {
		m.warning = ""
	}
}

func (m *Model) setStatus(msg string) {
	m.status = msg
	m.statusErr = false
}

func (m *Model) setError(err error) {
	m.status = err.Error()
	m.statusErr = true
}
