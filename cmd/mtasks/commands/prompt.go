package commands

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

var errPromptCancelled = errors.New("cancelled")

// promptModel is a one-field bubbletea form
type promptModel struct {
	input     textinput.Model
	label     string
	submitted bool
	cancelled bool
}

func newPromptModel(label string, secret bool) promptModel {
	input := textinput.New()
	input.Prompt = ""
	input.CharLimit = 256
	if secret {
		input.EchoMode = textinput.EchoPassword
		input.EchoCharacter = '•'
	}
	input.Focus()
	return promptModel{input: input, label: label}
}

func (m promptModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEnter:
			m.submitted = true
			return m, tea.Quit
		case tea.KeyCtrlC, tea.KeyEsc:
			m.cancelled = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m promptModel) View() string {
	if m.submitted || m.cancelled {
		return ""
	}
	return fmt.Sprintf("%s %s\n", m.label, m.input.View())
}

// prompt reads one line from the terminal. Secret input is masked.
func prompt(label string, secret bool) (string, error) {
	final, err := tea.NewProgram(newPromptModel(label, secret)).Run()
	if err != nil {
		return "", err
	}
	m := final.(promptModel)
	if m.cancelled {
		return "", errPromptCancelled
	}
	return m.input.Value(), nil
}
