package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"mtasks/internal/application/adapter"
	"mtasks/internal/di"
	"mtasks/internal/domain/entity"
	"mtasks/internal/domain/service"
	"mtasks/internal/domain/valueobject"
)

// Model represents the TUI state
type Model struct {
	ctx       context.Context
	container *di.Container
	updates   <-chan adapter.State

	state   adapter.State
	visible []*entity.Task
	filter  valueobject.TaskFilter

	search    textinput.Model
	searching bool
	help      help.Model

	cursor        int
	offset        int // first visible row
	pendingDelete string
	status        string
	closed        bool

	now    func() time.Time
	width  int
	height int
}

// NewModel creates a new TUI model fed by updates
func NewModel(ctx context.Context, container *di.Container, updates <-chan adapter.State) Model {
	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "search title or description"
	search.CharLimit = 100

	return Model{
		ctx:       ctx,
		container: container,
		updates:   updates,
		state:     adapter.State{Loading: true},
		search:    search,
		help:      help.New(),
		now:       time.Now,
	}
}

// stateMsg carries a new subscription state
type stateMsg adapter.State

// closedMsg is sent once the subscription ends
type closedMsg struct{}

// actionMsg reports the outcome of a toggle or delete
type actionMsg struct {
	verb string
	err  error
}

// tickMsg is sent when the ticker fires
type tickMsg time.Time

// waitForState returns a command that blocks for the next state
func waitForState(updates <-chan adapter.State) tea.Cmd {
	return func() tea.Msg {
		state, ok := <-updates
		if !ok {
			return closedMsg{}
		}
		return stateMsg(state)
	}
}

// doTick returns a command that waits for a tick. Overdue markers depend on
// the clock, so the list is re-derived every minute.
func doTick() tea.Cmd {
	return tea.Tick(time.Minute, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForState(m.updates), doTick())
}

// refresh re-derives the visible list from the current state and filter
func (m *Model) refresh() {
	selectedID := ""
	if t := m.selected(); t != nil {
		selectedID = t.ID()
	}

	m.visible = service.SortTasks(service.FilterTasks(m.state.Tasks, m.filter))

	// keep the cursor on the same task when it is still visible
	if selectedID != "" {
		for i, t := range m.visible {
			if t.ID() == selectedID {
				m.cursor = i
				break
			}
		}
	}
	m.clampCursor()
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.visible) {
		m.cursor = len(m.visible) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.updateScroll()
}

// selected returns the task under the cursor
func (m Model) selected() *entity.Task {
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		return nil
	}
	return m.visible[m.cursor]
}

// listHeight is the number of task rows that fit on screen
func (m Model) listHeight() int {
	if m.height == 0 {
		return len(m.visible)
	}
	// title, filter bar, blank, stats, status, help
	h := m.height - 7
	if h < 1 {
		h = 1
	}
	return h
}

// updateScroll keeps the cursor inside the visible window
func (m *Model) updateScroll() {
	h := m.listHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	} else if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}

	maxOffset := len(m.visible) - h
	if maxOffset < 0 {
		maxOffset = 0
	}
	if m.offset > maxOffset {
		m.offset = maxOffset
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

// nextCategory cycles All, Work, Personal, Urgent
func nextCategory(c valueobject.Category) valueobject.Category {
	order := append([]valueobject.Category{valueobject.CategoryAll}, valueobject.Categories...)
	return order[(indexOf(order, c)+1)%len(order)]
}

// nextPriority cycles All, High, Medium, Low
func nextPriority(p valueobject.Priority) valueobject.Priority {
	order := append([]valueobject.Priority{valueobject.PriorityAll}, valueobject.Priorities...)
	return order[(indexOf(order, p)+1)%len(order)]
}

// nextCompletion cycles all, pending, done
func nextCompletion(c *bool) *bool {
	switch {
	case c == nil:
		v := false
		return &v
	case !*c:
		v := true
		return &v
	default:
		return nil
	}
}

// indexOf treats an unset value as the first entry
func indexOf[T comparable](order []T, v T) int {
	for i, o := range order {
		if o == v {
			return i
		}
	}
	return 0
}
