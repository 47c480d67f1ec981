// Package tui renders a single-job progress display for interactive renders.
// Non-interactive callers use the plain reporter in the CLI instead.
package tui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"promoreel/internal/compose"
)

const tickInterval = 150 * time.Millisecond

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

type tickMsg time.Time

// RenderModel is a bubbletea model showing one render's progress bar and
// elapsed time.
type RenderModel struct {
	title string
	bar   progress.Model

	job      compose.Job
	fraction float64
	started  time.Time
	result   compose.Result
	finished bool
	err      error

	tick int
}

// NewRenderModel creates a progress model titled after the output file.
func NewRenderModel(title string) RenderModel {
	return RenderModel{
		title:   title,
		bar:     progress.New(progress.WithDefaultGradient()),
		started: time.Now(),
	}
}

func scheduleTick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init satisfies the tea.Model interface.
func (m RenderModel) Init() tea.Cmd {
	return scheduleTick()
}

// Update satisfies the tea.Model interface.
func (m RenderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.tick++
		if m.finished {
			return m, nil
		}
		return m, scheduleTick()

	case StartMsg:
		m.job = msg.Job
		m.started = time.Now()
		return m, nil

	case ProgressMsg:
		if msg.Fraction > m.fraction {
			m.fraction = msg.Fraction
		}
		return m, nil

	case DoneMsg:
		m.result = msg.Result
		m.finished = true
		if msg.Result.Err == nil {
			m.fraction = 1
		}
		return m, tea.Quit

	case ErrorMsg:
		m.err = msg.Err
		m.finished = true
		return m, tea.Quit

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.finished = true
			return m, tea.Quit
		}
	}
	return m, nil
}

// View satisfies the tea.Model interface.
func (m RenderModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n"
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render(m.title))
	b.WriteByte('\n')

	if m.job.TotalSeconds > 0 {
		fmt.Fprintf(&b, "%s\n", faintStyle.Render(fmt.Sprintf("%.0fs of video -> %s", m.job.TotalSeconds, filepath.Base(m.job.OutputPath))))
	}

	b.WriteString(m.bar.ViewAs(m.fraction))
	b.WriteByte('\n')

	switch {
	case m.finished && m.result.Err != nil:
		fmt.Fprintf(&b, "%s %v\n", errorStyle.Render("failed:"), m.result.Err)
	case m.finished:
		fmt.Fprintf(&b, "%s %s in %s\n",
			successStyle.Render("done:"), m.result.OutputPath, m.result.Elapsed.Round(time.Second))
	default:
		spinner := spinnerFrames[m.tick%len(spinnerFrames)]
		fmt.Fprintf(&b, "%s %s\n", activeStyle.Render(spinner), "rendering...")
	}

	return b.String()
}

// Finished reports whether the model has reached a terminal state.
func (m RenderModel) Finished() bool { return m.finished }

// Err returns any fatal error outside the render itself.
func (m RenderModel) Err() error { return m.err }

// Result returns the render outcome once finished.
func (m RenderModel) Result() compose.Result { return m.result }
