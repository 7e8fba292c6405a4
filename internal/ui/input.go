package ui

import (
	"fmt"
	"os"

	"emperror.dev/errors"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// GetInput prompts on stderr and returns the entered line. With secret set the
// input is masked, which is how tokens and secret keys are read.
func GetInput(prompt, placeholder string, secret bool) (string, error) {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Focus()
	// Access tokens can be long
	ti.CharLimit = 0
	ti.Width = 60

	if secret {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}

	p := tea.NewProgram(inputModel{textInput: ti, prompt: prompt}, tea.WithOutput(os.Stderr))
	final, err := p.Run()
	if err != nil {
		return "", errors.WrapIf(err, "prompt")
	}

	if m, ok := final.(inputModel); ok && m.complete {
		return m.textInput.Value(), nil
	}
	return "", errors.WithStack(ErrCancelled)
}

type inputModel struct {
	textInput textinput.Model
	prompt    string
	complete  bool
	quitting  bool
}

func (m inputModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m inputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			m.complete = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m inputModel) View() string {
	switch {
	case m.complete:
		return ""
	case m.quitting:
		return quitTextStyle.Render("Cancelled.") + "\n"
	}
	return fmt.Sprintf("\n%s\n\n%s\n\n", titleStyle.Render(m.prompt), m.textInput.View())
}
