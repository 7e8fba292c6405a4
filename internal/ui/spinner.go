package ui

import (
	"context"
	"fmt"
	"os"

	"emperror.dev/errors"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// ErrCancelled is returned when the user interrupts a prompt or a running task.
var ErrCancelled = errors.Sentinel("cancelled by user")

type taskDoneMsg struct {
	err error
}

type spinnerModel struct {
	spinner  spinner.Model
	text     string
	run      func() tea.Msg
	cancel   context.CancelFunc
	err      error
	quitting bool
}

func (m spinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.run)
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.cancel()
			m.err = errors.WithStack(ErrCancelled)
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case taskDoneMsg:
		m.err = msg.err
		m.quitting = true
		return m, tea.Quit

	default:
		return m, nil
	}
}

func (m spinnerModel) View() string {
	if m.quitting {
		return ""
	}
	return fmt.Sprintf("%s %s", m.spinner.View(), textStyle.Render(m.text))
}

// Spin runs task while drawing a spinner on stderr. Ctrl+C cancels the
// context handed to task and returns ErrCancelled.
func Spin(ctx context.Context, text string, task func(ctx context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	m := spinnerModel{
		spinner: s,
		text:    text,
		cancel:  cancel,
		run: func() tea.Msg {
			return taskDoneMsg{err: task(ctx)}
		},
	}

	p := tea.NewProgram(m, tea.WithOutput(os.Stderr))
	final, err := p.Run()
	if err != nil {
		return errors.WrapIf(err, "spinner")
	}

	fm, ok := final.(spinnerModel)
	if !ok {
		return errors.New("internal error: invalid model type")
	}
	return fm.err
}
