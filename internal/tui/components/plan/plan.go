package plan

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/studyflow/internal/constants"
	"github.com/julianstephens/studyflow/internal/models"
	"github.com/julianstephens/studyflow/internal/utils"
)

var (
	doneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	skippedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Strikethrough(true)

	breakStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")).
			Italic(true)
)

// SetStatusMsg asks the parent to change a session's status.
type SetStatusMsg struct {
	SessionID string
	Status    models.SessionStatus
}

type Item struct {
	Session models.Session
	loc     *time.Location
}

func (i Item) Title() string {
	s := i.Session
	switch {
	case s.IsBreak():
		return breakStyle.Render("☕ " + s.Title)
	case s.Status == models.StatusDone:
		return doneStyle.Render("✓ " + sessionName(s))
	case s.Status == models.StatusSkipped:
		return skippedStyle.Render(sessionName(s))
	}
	return sessionName(s)
}

func (i Item) Description() string {
	s := i.Session
	start := s.PlannedStart.In(i.loc)
	desc := fmt.Sprintf("%s %s-%s | %s",
		start.Format("Mon "+constants.DateFormat),
		start.Format(constants.TimeFormat),
		s.PlannedEnd.In(i.loc).Format(constants.TimeFormat),
		utils.FormatMinutes(s.Minutes))
	if !s.IsBreak() {
		desc += " | " + string(s.Status)
	}
	return desc
}

func (i Item) FilterValue() string { return i.Session.Subject + " " + i.Session.Title }

func sessionName(s models.Session) string {
	if s.Subject == "" {
		return s.Title
	}
	return s.Subject + " · " + s.Title
}

type KeyMap struct {
	Done  key.Binding
	Skip  key.Binding
	Reset key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Done: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "mark done"),
		),
		Skip: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "skip"),
		),
		Reset: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "reset"),
		),
	}
}

type Model struct {
	list    list.Model
	keys    KeyMap
	loc     *time.Location
	Version int
}

func New(width, height int, loc *time.Location) Model {
	l := list.New(nil, list.NewDefaultDelegate(), width, height)
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Done, keys.Skip, keys.Reset}
	}
	return Model{list: l, keys: keys, loc: loc}
}

// SetPlan replaces the listed sessions, keeping the cursor where it was.
func (m *Model) SetPlan(plan models.PlanRecord) {
	cursor := m.list.Index()
	items := make([]list.Item, len(plan.Sessions))
	for i, s := range plan.Sessions {
		items[i] = Item{Session: s, loc: m.loc}
	}
	m.list.SetItems(items)
	if cursor < len(items) {
		m.list.Select(cursor)
	}
	m.Version = plan.PlanVersion
}

// UpdateSession swaps in a changed session.
func (m *Model) UpdateSession(s models.Session) {
	for i, it := range m.list.Items() {
		if item, ok := it.(Item); ok && item.Session.ID == s.ID {
			m.list.SetItem(i, Item{Session: s, loc: m.loc})
			return
		}
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		var status models.SessionStatus
		switch {
		case key.Matches(msg, m.keys.Done):
			status = models.StatusDone
		case key.Matches(msg, m.keys.Skip):
			status = models.StatusSkipped
		case key.Matches(msg, m.keys.Reset):
			status = models.StatusPending
		}
		if status != "" {
			if i, ok := m.list.SelectedItem().(Item); ok && !i.Session.IsBreak() {
				id := i.Session.ID
				return m, func() tea.Msg { return SetStatusMsg{SessionID: id, Status: status} }
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.Version == 0 {
		return "\n  No plan yet.\n  Press 'g' to generate one."
	}
	if len(m.list.Items()) == 0 {
		return fmt.Sprintf("\n  Plan v%d has no sessions.\n  Check the Suggestions tab.", m.Version)
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
