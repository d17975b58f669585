package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/google/uuid"

	"github.com/julianstephens/studyflow/internal/models"
	"github.com/julianstephens/studyflow/internal/planner"
	"github.com/julianstephens/studyflow/internal/scheduler"
	"github.com/julianstephens/studyflow/internal/tui/components/plan"
	"github.com/julianstephens/studyflow/internal/tui/components/tasklist"
	"github.com/julianstephens/studyflow/internal/tui/forms"
	"github.com/julianstephens/studyflow/internal/validation"
)

type planGeneratedMsg struct {
	result planner.Result
	err    error
}

type sessionUpdatedMsg struct {
	session models.Session
	err     error
}

func (m Model) regenerate() tea.Cmd {
	svc := m.planner
	return func() tea.Msg {
		result, err := svc.Regenerate(context.Background())
		return planGeneratedMsg{result: result, err: err}
	}
}

func (m Model) setSessionStatus(id string, status models.SessionStatus) tea.Cmd {
	store, at := m.store, m.now()
	return func() tea.Msg {
		s, err := store.UpdateSessionStatus(id, status, at)
		return sessionUpdatedMsg{session: s, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m.state {
	case StateEditing:
		return m.updateForm(msg)
	case StateConfirmDelete:
		return m.updateConfirmDelete(msg)
	}

	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		// tabs, status line and help
		h := msg.Height - 6
		if h < 1 {
			h = 1
		}
		m.planModel.SetSize(msg.Width-4, h)
		m.taskList.SetSize(msg.Width-4, h)
		m.suggestionsModel.SetSize(msg.Width-4, h)
		return m, nil

	case planGeneratedMsg:
		m.generating = false
		if msg.err != nil {
			if errors.Is(msg.err, scheduler.ErrCannotPlan) {
				m.setError(fmt.Errorf("%v: add tasks and free slots first", msg.err))
			} else {
				m.setError(msg.err)
			}
			return m, nil
		}
		p := msg.result.Plan
		m.planModel.SetPlan(p)
		m.updatePlanDetails(p)
		status := fmt.Sprintf("Generated plan v%d: %d sessions, %d unscheduled", p.PlanVersion, len(p.Sessions), len(p.UnscheduledTasks))
		if n := len(msg.result.Adjustments); n > 0 {
			status += fmt.Sprintf(" (%d feedback adjustment(s))", n)
		}
		m.setStatus(status)
		return m, nil

	case sessionUpdatedMsg:
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.planModel.UpdateSession(msg.session)
		if latest, err := m.store.GetLatestPlan(); err == nil {
			m.updatePlanDetails(latest)
		}
		m.setStatus(fmt.Sprintf("%s marked %s", msg.session.Title, msg.session.Status))
		return m, nil

	case plan.SetStatusMsg:
		return m, m.setSessionStatus(msg.SessionID, msg.Status)

	case tasklist.AddTaskMsg:
		m.startTaskForm(nil)
		return m, m.form.Init()

	case tasklist.EditTaskMsg:
		task := msg.Task
		m.startTaskForm(&task)
		return m, m.form.Init()

	case tasklist.DeleteTaskMsg:
		m.taskToDeleteID = msg.ID
		m.state = StateConfirmDelete
		return m, nil

	case tasklist.RestoreTaskMsg:
		if err := m.store.RestoreTask(msg.ID); err != nil {
			m.setError(err)
		} else {
			m.setStatus("Task restored")
			m.refresh()
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Tab), key.Matches(msg, m.keys.Right):
			m.state = (m.state + 1) % SessionState(len(tabTitles))
			return m, nil
		case key.Matches(msg, m.keys.ShiftTab), key.Matches(msg, m.keys.Left):
			m.state = (m.state - 1 + SessionState(len(tabTitles))) % SessionState(len(tabTitles))
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Generate):
			if m.generating {
				return m, nil
			}
			m.generating = true
			m.setStatus("Regenerating plan...")
			return m, m.regenerate()
		}
	}

	switch m.state {
	case StatePlan:
		m.planModel, cmd = m.planModel.Update(msg)
	case StateTasks:
		m.taskList, cmd = m.taskList.Update(msg)
	case StateSuggestions:
		m.suggestionsModel, cmd = m.suggestionsModel.Update(msg)
	}
	return m, cmd
}

// startTaskForm opens the form for task, or a blank one when task is nil.
func (m *Model) startTaskForm(task *models.Task) {
	if task == nil {
		m.taskForm = forms.NewTaskFormModel()
		m.editingTask = nil
	} else {
		m.taskForm = forms.TaskFormFrom(*task, m.loc)
		m.editingTask = task
	}
	m.form = forms.NewTaskForm(m.taskForm, m.loc)
	m.state = StateEditing
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.state = StateTasks
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		if err := m.saveTaskForm(); err != nil {
			m.setError(err)
		} else {
			m.refresh()
		}
		m.state = StateTasks
	case huh.StateAborted:
		m.state = StateTasks
	}
	return m, cmd
}

func (m *Model) saveTaskForm() error {
	now := m.now()
	if m.editingTask == nil {
		task := models.Task{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now}
		if err := m.taskForm.Apply(&task, m.loc); err != nil {
			return err
		}
		if err := validation.ValidateNewTask(task, now); err != nil {
			return err
		}
		if err := m.store.AddTask(task); err != nil {
			return err
		}
		m.setStatus("Added " + task.DisplayName())
		return nil
	}

	task := *m.editingTask
	if err := m.taskForm.Apply(&task, m.loc); err != nil {
		return err
	}
	task.UpdatedAt = now
	if err := m.store.UpdateTask(task); err != nil {
		return err
	}
	m.setStatus("Updated " + task.DisplayName())
	return nil
}

func (m Model) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch keyMsg.String() {
	case "y", "Y":
		if err := m.store.DeleteTask(m.taskToDeleteID); err != nil {
			m.setError(err)
		} else {
			m.setStatus("Task deleted")
			m.refresh()
		}
		m.taskToDeleteID = ""
		m.state = StateTasks
	case "n", "N", "esc", "q":
		m.taskToDeleteID = ""
		m.state = StateTasks
	}
	return m, nil
}
