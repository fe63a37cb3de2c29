package display

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// SpinnerShouldShow returns true if the spinner should be displayed.
// The spinner is hidden for quiet mode, machine-readable output, or non-TTY
// (piped) output.
func SpinnerShouldShow(quiet, structured, nonTTY bool) bool {
	return !quiet && !structured && !nonTTY
}

// SpinnerRun shows a spinner labeled label on w while fetch runs, and
// returns fetch's error once it finishes.
func SpinnerRun(w io.Writer, label string, fetch func() error) error {
	p := tea.NewProgram(newSpinnerModel(label), tea.WithOutput(w), tea.WithInput(nil))

	var fetchErr error
	done := make(chan struct{})
	go func() {
		fetchErr = fetch()
		p.Send(spinnerDoneMsg{err: fetchErr})
		close(done)
	}()

	_, err := p.Run()
	<-done
	if err != nil {
		return fmt.Errorf("running spinner: %w", err)
	}
	return fetchErr
}

// spinnerDoneMsg is sent to the model when the fetch completes.
type spinnerDoneMsg struct{ err error }

type spinnerModel struct {
	spinner  spinner.Model
	label    string
	quitting bool
}

func newSpinnerModel(label string) spinnerModel {
	s := spinner.New()
	s.Spinner = spinner.MiniDot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return spinnerModel{spinner: s, label: label}
}

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinnerDoneMsg:
		m.quitting = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.quitting = true
			return m, tea.Quit
		}
	}

	return m, nil
}

func (m spinnerModel) View() string {
	// The spinner is transient progress UI.
	if m.quitting {
		return ""
	}
	return m.spinner.View() + " " + m.label
}
