package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"promoreel/internal/compose"
)

// Reporter adapts bubbletea message sending to the compose.Reporter interface
// so the render service stays unaware of the display layer.
type Reporter struct {
	send func(tea.Msg)
}

// NewReporter wraps a send callback, typically tea.Program.Send.
func NewReporter(send func(tea.Msg)) *Reporter {
	return &Reporter{send: send}
}

// Start implements compose.Reporter.
func (r *Reporter) Start(job compose.Job) {
	r.send(StartMsg{Job: job})
}

// Progress implements compose.Reporter.
func (r *Reporter) Progress(fraction float64) {
	r.send(ProgressMsg{Fraction: fraction})
}

// Complete implements compose.Reporter.
func (r *Reporter) Complete(result compose.Result) {
	r.send(DoneMsg{Result: result})
}

var _ compose.Reporter = (*Reporter)(nil)
