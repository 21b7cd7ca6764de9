package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// ErrCancelled is returned when the user abandons a prompt.
var ErrCancelled = errors.New("cancelled by user")

type promptModel struct {
	input     textinput.Model
	label     string
	submitted bool
	cancelled bool
}

func newPromptModel(label string, secret bool) promptModel {
	ti := textinput.New()
	ti.Prompt = "› "
	ti.CharLimit = 256
	if secret {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}
	ti.Focus()
	return promptModel{input: ti, label: label}
}

func (m promptModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type {
		case tea.KeyEnter:
			m.submitted = true
			return m, tea.Quit
		case tea.KeyEsc, tea.KeyCtrlC:
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
	return StyleHeader.Render(m.label) + "\n" + m.input.View() + "\n" + StyleHelp.Render("enter to confirm · esc to cancel") + "\n"
}

// PromptSecret asks for a value without echoing it.
func PromptSecret(label string) (string, error) {
	return runPrompt(newPromptModel(label, true))
}

// PromptText asks for a single line of text.
func PromptText(label string) (string, error) {
	return runPrompt(newPromptModel(label, false))
}

func runPrompt(m promptModel) (string, error) {
	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return "", fmt.Errorf("running prompt: %w", err)
	}
	pm, ok := final.(promptModel)
	if !ok || pm.cancelled || !pm.submitted {
		return "", ErrCancelled
	}
	return pm.input.Value(), nil
}
