package suggestions

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/studyflow/internal/models"
	"github.com/julianstephens/studyflow/internal/stats"
	"github.com/julianstephens/studyflow/internal/utils"
	"github.com/julianstephens/studyflow/internal/validation"
)

var (
	headingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			MarginTop(1)

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Width(20)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

type Model struct {
	viewport viewport.Model
	plan     *models.PlanRecord
	stats    stats.Stats
	report   validation.ValidationResult
}

func New(width, height int) Model {
	return Model{viewport: viewport.New(width, height)}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.plan == nil {
		return "\n  Nothing to suggest until a plan exists."
	}
	return m.viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.viewport.Width = width
	m.viewport.Height = height
	m.Render()
}

// SetPlan refreshes the tab from a plan, its stats and its validation report.
func (m *Model) SetPlan(plan models.PlanRecord, st stats.Stats, report validation.ValidationResult) {
	m.plan = &plan
	m.stats = st
	m.report = report
	m.Render()
}

func (m *Model) Render() {
	if m.plan == nil {
		m.viewport.SetContent("")
		return
	}
	var b strings.Builder

	b.WriteString(headingStyle.Render(fmt.Sprintf("Plan v%d", m.plan.PlanVersion)))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Today: %s planned, %s done\n",
		utils.FormatMinutes(m.stats.Today.PlannedMinutes), utils.FormatMinutes(m.stats.Today.DoneMinutes))
	fmt.Fprintf(&b, "Week:  %s planned, %s done\n",
		utils.FormatMinutes(m.stats.Week.PlannedMinutes), utils.FormatMinutes(m.stats.Week.DoneMinutes))
	fmt.Fprintf(&b, "Completion: %.0f%% (%d/%d sessions)\n",
		m.stats.CompletionRate*100, m.stats.Done, m.stats.Tracked)

	b.WriteString(headingStyle.Render("Suggestions"))
	b.WriteString("\n")
	if len(m.plan.Suggestions) == 0 {
		b.WriteString(mutedStyle.Render("Everything fits."))
		b.WriteString("\n")
	}
	for _, s := range m.plan.Suggestions {
		b.WriteString(typeStyle.Render(string(s.Type)))
		b.WriteString(s.Message)
		b.WriteString("\n")
	}

	if len(m.plan.UnscheduledTasks) > 0 {
		b.WriteString(headingStyle.Render("Unscheduled"))
		b.WriteString("\n")
		for _, t := range m.plan.UnscheduledTasks {
			fmt.Fprintf(&b, "- %s (%s left)\n", t.DisplayName(), utils.FormatMinutes(t.RemainingMinutes()))
		}
	}

	if m.report.HasConflicts() {
		b.WriteString(headingStyle.Render("Conflicts"))
		b.WriteString("\n")
		b.WriteString(m.report.FormatReport())
	}

	m.viewport.SetContent(b.String())
}
