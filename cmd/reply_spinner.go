package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type awaitResultMsg[T any] struct {
	value T
	err   error
}

// awaitModel spins while a reply is outstanding and keeps the result.
type awaitModel[T any] struct {
	spinner spinner.Model
	label   string
	started time.Time
	call    tea.Cmd
	result  awaitResultMsg[T]
	done    bool
}

func (m awaitModel[T]) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.call)
}

func (m awaitModel[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case awaitResultMsg[T]:
		m.result = msg
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m awaitModel[T]) View() string {
	if m.done {
		return ""
	}

	elapsed := time.Since(m.started).Truncate(time.Second)
	if elapsed < time.Second {
		return fmt.Sprintf("%s %s", m.spinner.View(), m.label)
	}
	return fmt.Sprintf("%s %s %s", m.spinner.View(), m.label, elapsed)
}

// awaitReply shows "Waiting for <name>..." on output, in the agent's avatar
// color, until call returns.
func awaitReply[T any](ctx context.Context, output io.Writer, agentName, color string, call func(context.Context) (T, error)) (T, error) {
	var zero T

	model := awaitModel[T]{
		spinner: spinner.New(
			spinner.WithSpinner(spinner.MiniDot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color(color))),
		),
		label:   fmt.Sprintf("Waiting for %s...", agentName),
		started: time.Now(),
		call: func() tea.Msg {
			value, err := call(ctx)
			return awaitResultMsg[T]{value: value, err: err}
		},
	}

	p := tea.NewProgram(model, tea.WithInput(nil), tea.WithOutput(output), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return zero, err
	}

	finished, ok := final.(awaitModel[T])
	if !ok {
		return zero, fmt.Errorf("unexpected final spinner model type %T", final)
	}

	return finished.result.value, finished.result.err
}
