package tasklist

import (
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/studyflow/internal/constants"
	"github.com/julianstephens/studyflow/internal/models"
	"github.com/julianstephens/studyflow/internal/utils"
)

type AddTaskMsg struct{}

type DeleteTaskMsg struct {
	ID string
}

type EditTaskMsg struct {
	Task models.Task
}

type RestoreTaskMsg struct {
	ID string
}

type Item struct {
	Task models.Task
	loc  *time.Location
	now  time.Time
}

// urgency labels how close the deadline is, counted in calendar days.
func urgency(deadline, now time.Time, loc *time.Location) string {
	if !deadline.After(now) {
		return "overdue"
	}
	days := int(utils.StartOfDay(deadline, loc).Sub(utils.StartOfDay(now, loc)).Hours() / 24)
	switch days {
	case 0:
		return "due today"
	case 1:
		return "due tomorrow"
	default:
		return fmt.Sprintf("%d days left", days)
	}
}

func (i Item) Title() string {
	switch {
	case i.Task.DeletedAt != nil:
		return i.Task.DisplayName() + " (deleted)"
	case i.Task.RemainingMinutes() == 0:
		return "✓ " + i.Task.DisplayName()
	}
	return i.Task.DisplayName()
}

func (i Item) Description() string {
	desc := fmt.Sprintf("%s, %s | %s left of %s | difficulty %d",
		i.Task.Deadline.In(i.loc).Format(constants.DateTimeFormat),
		urgency(i.Task.Deadline, i.now, i.loc),
		utils.FormatMinutes(i.Task.RemainingMinutes()),
		utils.FormatMinutes(i.Task.EstimatedMinutes),
		i.Task.Difficulty)
	if i.Task.DeletedAt != nil {
		desc += " | 'r' to restore"
	}
	return desc
}

func (i Item) FilterValue() string { return i.Task.Subject + " " + i.Task.Title }

type KeyMap struct {
	Add     key.Binding
	Edit    key.Binding
	Delete  key.Binding
	Restore key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Restore: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "restore"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
	loc  *time.Location
	now  func() time.Time
}

// items orders tasks by deadline, deleted tasks last.
func items(tasks []models.Task, loc *time.Location, now time.Time) []list.Item {
	sorted := make([]models.Task, len(tasks))
	copy(sorted, tasks)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if (a.DeletedAt == nil) != (b.DeletedAt == nil) {
			return a.DeletedAt == nil
		}
		return a.Deadline.Before(b.Deadline)
	})
	out := make([]list.Item, len(sorted))
	for i, t := range sorted {
		out[i] = Item{Task: t, loc: loc, now: now}
	}
	return out
}

func New(tasks []models.Task, width, height int, loc *time.Location, now func() time.Time) Model {
	l := list.New(items(tasks, loc, now()), list.NewDefaultDelegate(), width, height)
	l.Title = "Tasks"
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Edit, keys.Delete, keys.Restore}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Edit, keys.Delete, keys.Restore}
	}

	return Model{list: l, keys: keys, loc: loc, now: now}
}

func (m *Model) SetTasks(tasks []models.Task) {
	m.list.SetItems(items(tasks, m.loc, m.now()))
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Add):
			return m, func() tea.Msg { return AddTaskMsg{} }
		case key.Matches(msg, m.keys.Edit):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return EditTaskMsg{Task: i.Task} }
			}
		case key.Matches(msg, m.keys.Delete):
			if i, ok := m.list.SelectedItem().(Item); ok && i.Task.DeletedAt == nil {
				return m, func() tea.Msg { return DeleteTaskMsg{ID: i.Task.ID} }
			}
		case key.Matches(msg, m.keys.Restore):
			if i, ok := m.list.SelectedItem().(Item); ok {
				if i.Task.DeletedAt != nil {
					return m, func() tea.Msg { return RestoreTaskMsg{ID: i.Task.ID} }
				}
			}
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		return "\n  Nothing to study yet.\n  Press 'a' to add a task."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
