package chat

import (
	"errors"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var ErrUnexpectedRenderModel = errors.New("unexpected final bubbletea model type")

type frameMsg struct{}

// frame renders a single view and quits. A positive width wraps the result
// to the terminal.
type frame struct {
	view   func(styles) string
	styles styles
	width  int
	output string
}

func (f frame) Init() tea.Cmd {
	return func() tea.Msg { return frameMsg{} }
}

func (f frame) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if _, ok := msg.(frameMsg); !ok {
		return f, nil
	}

	f.output = f.view(f.styles)
	if f.width > 0 {
		f.output = lipgloss.NewStyle().Width(f.width).Render(f.output)
	}
	return f, tea.Quit
}

func (f frame) View() string {
	return f.output
}

func run(opts RenderOptions, view func(styles) string) (string, error) {
	p := tea.NewProgram(
		frame{view: view, styles: newStyles(), width: opts.Width},
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
	)

	final, err := p.Run()
	if err != nil {
		return "", err
	}

	rendered, ok := final.(frame)
	if !ok {
		return "", ErrUnexpectedRenderModel
	}

	return rendered.output, nil
}
