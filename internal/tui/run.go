package tui

import (
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"promoreel/internal/compose"
)

// Run creates a bubbletea program, launches workFn in a goroutine and blocks
// until the display exits. workFn receives a reporter wired to the program; an
// error returned before the render reported completion shuts the display down.
func Run(out io.Writer, model RenderModel, workFn func(reporter compose.Reporter) error) (compose.Result, error) {
	p := tea.NewProgram(model, tea.WithOutput(out))

	go func() {
		// Let bubbletea render the initial frame first.
		time.Sleep(50 * time.Millisecond)
		if err := workFn(NewReporter(p.Send)); err != nil {
			// A render failure already reached the model through Complete;
			// this only matters for errors raised before execution started.
			p.Send(ErrorMsg{Err: err})
		}
	}()

	finalModel, err := p.Run()
	if err != nil {
		return compose.Result{}, err
	}
	m, ok := finalModel.(RenderModel)
	if !ok {
		return compose.Result{}, nil
	}
	if m.Err() != nil {
		return m.Result(), m.Err()
	}
	return m.Result(), nil
}
