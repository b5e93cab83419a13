package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"mtasks/internal/application/adapter"
	"mtasks/internal/domain/entity"
)

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.updateScroll()
		return m, nil

	case stateMsg:
		m.state = adapter.State(msg)
		m.refresh()
		return m, waitForState(m.updates)

	case closedMsg:
		m.closed = true
		return m, nil

	case tickMsg:
		m.refresh()
		return m, doTick()

	case actionMsg:
		if msg.err != nil {
			m.status = describeError(msg.verb, msg.err)
		}
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateKeys(msg)
	}

	return m, nil
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	confirming := m.pendingDelete
	m.pendingDelete = ""
	m.status = ""

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Up):
		m.moveUp()

	case key.Matches(msg, keys.Down):
		m.moveDown()

	case key.Matches(msg, keys.Toggle):
		return m, m.toggleSelected()

	case key.Matches(msg, keys.Delete):
		task := m.selected()
		if task == nil {
			return m, nil
		}
		if confirming != task.ID() {
			m.pendingDelete = task.ID()
			m.status = fmt.Sprintf("Press %s again to delete %q", keys.Delete.Help().Key, task.Title())
			return m, nil
		}
		return m, m.deleteSelected()

	case key.Matches(msg, keys.Search):
		m.searching = true
		return m, m.search.Focus()

	case key.Matches(msg, keys.FilterCategory):
		m.filter.Category = nextCategory(m.filter.Category)
		m.refresh()

	case key.Matches(msg, keys.FilterPriority):
		m.filter.Priority = nextPriority(m.filter.Priority)
		m.refresh()

	case key.Matches(msg, keys.FilterCompletion):
		m.filter.Completed = nextCompletion(m.filter.Completed)
		m.refresh()

	case msg.Type == tea.KeyEsc:
		m.filter.SearchQuery = ""
		m.search.SetValue("")
		m.refresh()
	}

	return m, nil
}

// updateSearch feeds keys to the search input. The list filters as the
// query is typed; enter keeps the query and esc drops it.
func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.searching = false
		m.search.Blur()
		return m, nil
	case tea.KeyEsc:
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.filter.SearchQuery = ""
		m.refresh()
		return m, nil
	case tea.KeyCtrlC:
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.filter.SearchQuery = m.search.Value()
	m.refresh()
	return m, cmd
}

// moveUp moves the cursor to the task above
func (m *Model) moveUp() {
	if m.cursor > 0 {
		m.cursor--
		m.updateScroll()
	}
}

// moveDown moves the cursor to the task below
func (m *Model) moveDown() {
	if m.cursor < len(m.visible)-1 {
		m.cursor++
		m.updateScroll()
	}
}

// toggleSelected flips completion of the task under the cursor. The list
// itself changes when the subscription delivers the new snapshot.
func (m Model) toggleSelected() tea.Cmd {
	task := m.selected()
	if task == nil {
		return nil
	}
	ctx, uc, id := m.ctx, m.container.ToggleTaskUseCase, task.ID()
	return func() tea.Msg {
		_, err := uc.Execute(ctx, id)
		return actionMsg{verb: "toggle", err: err}
	}
}

// deleteSelected removes the task under the cursor
func (m Model) deleteSelected() tea.Cmd {
	task := m.selected()
	if task == nil {
		return nil
	}
	ctx, uc, id := m.ctx, m.container.DeleteTaskUseCase, task.ID()
	return func() tea.Msg {
		return actionMsg{verb: "delete", err: uc.Execute(ctx, id)}
	}
}

func describeError(verb string, err error) string {
	switch {
	case errors.Is(err, entity.ErrNotAuthenticated):
		return fmt.Sprintf("Cannot %s: signed out", verb)
	case errors.Is(err, entity.ErrTaskNotFound):
		return fmt.Sprintf("Cannot %s: task no longer exists", verb)
	default:
		return fmt.Sprintf("Failed to %s: %v", verb, err)
	}
}
