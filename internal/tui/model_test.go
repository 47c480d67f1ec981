package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	"promoreel/internal/compose"
)

func TestProgressMsgNeverRegresses(t *testing.T) {
	m := NewRenderModel("reel.mp4")

	updated, _ := m.Update(ProgressMsg{Fraction: 0.6})
	m = updated.(RenderModel)
	updated, _ = m.Update(ProgressMsg{Fraction: 0.4})
	m = updated.(RenderModel)

	if m.fraction != 0.6 {
		t.Errorf("expected fraction to stay at 0.6, got %v", m.fraction)
	}
}

func TestStartMsgCarriesJob(t *testing.T) {
	m := NewRenderModel("reel.mp4")

	updated, _ := m.Update(StartMsg{Job: compose.Job{OutputPath: "out/reel.mp4", TotalSeconds: 25}})
	m = updated.(RenderModel)

	if m.job.TotalSeconds != 25 {
		t.Errorf("expected job total 25, got %v", m.job.TotalSeconds)
	}
	if !strings.Contains(m.View(), "25s of video") {
		t.Errorf("view missing job summary:\n%s", m.View())
	}
}

func TestDoneMsgQuits(t *testing.T) {
	m := NewRenderModel("reel.mp4")

	result := compose.Result{OutputPath: "out/reel.mp4", Elapsed: 3 * time.Second}
	updated, cmd := m.Update(DoneMsg{Result: result})
	m = updated.(RenderModel)

	if !m.Finished() {
		t.Error("expected Finished() after DoneMsg")
	}
	if cmd == nil {
		t.Error("expected tea.Quit command")
	}
	if m.fraction != 1 {
		t.Errorf("successful render should pin the bar at 1, got %v", m.fraction)
	}
	if !strings.Contains(m.View(), "out/reel.mp4") {
		t.Errorf("view missing output path:\n%s", m.View())
	}
}

func TestDoneMsgWithRenderError(t *testing.T) {
	m := NewRenderModel("reel.mp4")

	updated, _ := m.Update(DoneMsg{Result: compose.Result{Err: errors.New("exit status 1")}})
	m = updated.(RenderModel)

	if !m.Finished() {
		t.Error("expected Finished() after failed DoneMsg")
	}
	if !strings.Contains(m.View(), "exit status 1") {
		t.Errorf("view missing failure reason:\n%s", m.View())
	}
}

func TestErrorMsgQuits(t *testing.T) {
	m := NewRenderModel("reel.mp4")

	updated, cmd := m.Update(ErrorMsg{Err: errors.New("boom")})
	m = updated.(RenderModel)

	if !m.Finished() || m.Err() == nil {
		t.Error("expected terminal error state after ErrorMsg")
	}
	if cmd == nil {
		t.Error("expected tea.Quit command")
	}
	if !strings.Contains(m.View(), "boom") {
		t.Errorf("view missing error:\n%s", m.View())
	}
}
