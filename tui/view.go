package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"mtasks/internal/domain/entity"
	"mtasks/internal/domain/service"
	"mtasks/internal/domain/valueobject"
	"mtasks/tui/style"
)

// View renders the UI
func (m Model) View() string {
	title := style.TitleStyle.Render("mtasks")

	var body string
	switch {
	case m.closed && !m.state.SignedIn():
		body = style.HelpStyle.Render("Subscription closed.")
	case !m.state.SignedIn() && !m.state.Loading:
		body = style.TaskStyle.Render("Not signed in. Run 'mtasks auth login' and start again.")
	case m.state.Loading:
		body = style.HelpStyle.Render("Loading tasks...")
	default:
		body = lipgloss.JoinVertical(lipgloss.Left,
			m.renderFilters(),
			m.renderList(),
			"",
			m.renderStats(),
		)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		body,
		m.statusMessage(),
		m.renderHelp(),
	)
}

// renderFilters shows the active filter of every dimension
func (m Model) renderFilters() string {
	category := valueobject.CategoryAll.String()
	if m.filter.ConstrainsCategory() {
		category = m.filter.Category.String()
	}
	priority := valueobject.PriorityAll.String()
	if m.filter.ConstrainsPriority() {
		priority = m.filter.Priority.String()
	}
	show := "all"
	if m.filter.Completed != nil {
		show = "pending"
		if *m.filter.Completed {
			show = "done"
		}
	}

	parts := []string{
		"Category: " + category,
		"Priority: " + priority,
		"Show: " + show,
	}
	if m.searching {
		parts = append(parts, m.search.View())
	} else if m.filter.SearchQuery != "" {
		parts = append(parts, fmt.Sprintf("Search: %q", m.filter.SearchQuery))
	}
	return style.FilterStyle.Render(strings.Join(parts, "  "))
}

// renderList renders the window of visible tasks
func (m Model) renderList() string {
	if len(m.visible) == 0 {
		if len(m.state.Tasks) == 0 {
			return style.HelpStyle.Render("No tasks yet. Add one with 'mtasks task create'.")
		}
		return style.HelpStyle.Render("No tasks match the current filters.")
	}

	end := m.offset + m.listHeight()
	if end > len(m.visible) {
		end = len(m.visible)
	}

	now := m.now()
	rows := make([]string, 0, end-m.offset)
	for i := m.offset; i < end; i++ {
		rows = append(rows, m.renderTask(m.visible[i], i == m.cursor, now))
	}
	return strings.Join(rows, "\n")
}

func (m Model) renderTask(task *entity.Task, selected bool, now time.Time) string {
	check := "[ ]"
	if task.Completed() {
		check = "[x]"
	}
	cursor := "  "
	if selected {
		cursor = "> "
	}
	dot := style.PriorityDot(m.container.Palette.Color(task.Priority()))

	text := task.Title()
	if done, total := task.SubTaskProgress(); total > 0 {
		text += fmt.Sprintf(" (%d/%d)", done, total)
	}

	var textStyle lipgloss.Style
	switch {
	case selected:
		textStyle = style.SelectedStyle
	case task.Completed():
		textStyle = style.CompletedStyle
	default:
		textStyle = style.TaskStyle
	}

	row := cursor + check + " " + dot + " " + textStyle.Render(text)
	if due := task.DueDate(); due != nil {
		if service.IsOverdueAt(task, now) {
			row += " " + style.OverdueStyle.Render("overdue "+formatDay(*due, now))
		} else {
			row += " " + style.HelpStyle.Render("due "+formatDay(*due, now))
		}
	}
	if m.width > 0 {
		row = lipgloss.NewStyle().MaxWidth(m.width).Render(row)
	}
	return row
}

// renderStats renders the statistics of all tasks, ignoring filters
func (m Model) renderStats() string {
	stats := service.ComputeStatistics(m.state.Tasks, m.now())
	line := fmt.Sprintf("%d tasks · %d done · %d pending · %.0f%% complete",
		stats.Total, stats.Completed, stats.Pending, stats.CompletionRate*100)
	if stats.OverdueCount > 0 {
		line += fmt.Sprintf(" · %d overdue", stats.OverdueCount)
	}
	return style.StatsStyle.Render(line)
}

// renderHelp renders the help text
func (m Model) renderHelp() string {
	if m.searching {
		return style.HelpStyle.Render("enter: keep search • esc: clear search")
	}
	return m.help.View(keys)
}

// statusMessage returns the last action or subscription error, if any
func (m Model) statusMessage() string {
	switch {
	case m.status != "":
		return style.ErrorStyle.Render(m.status)
	case m.state.Err != nil:
		return style.ErrorStyle.Render("Sync problem: " + m.state.Err.Error())
	}
	return ""
}

func formatDay(t, now time.Time) string {
	t = t.In(now.Location())
	if t.Year() != now.Year() {
		return t.Format("Jan 2 2006")
	}
	return t.Format("Mon Jan 2")
}
