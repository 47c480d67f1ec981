package probe

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"testing"

	"promoreel/internal/proc"
)

type fakeRunner struct {
	stdout string
	stderr string
	err    error

	lastCommand string
	lastArgs    []string
}

func (f *fakeRunner) Run(_ context.Context, command string, args []string, _ proc.RunOptions) (proc.RunResult, error) {
	f.lastCommand = command
	f.lastArgs = args
	return proc.RunResult{Stdout: []byte(f.stdout), Stderr: []byte(f.stderr)}, f.err
}

func TestDurationParsesSeconds(t *testing.T) {
	runner := &fakeRunner{stdout: "12.480000\n"}
	p := New("/usr/bin/ffprobe", runner)

	seconds, err := p.Duration(context.Background(), "/tmp/voice.mp3")
	if err != nil {
		t.Fatalf("Duration error: %v", err)
	}
	if seconds != 12.48 {
		t.Fatalf("expected 12.48, got %v", seconds)
	}
	if runner.lastCommand != "/usr/bin/ffprobe" {
		t.Fatalf("unexpected command %q", runner.lastCommand)
	}
	joined := strings.Join(runner.lastArgs, " ")
	if !strings.Contains(joined, "format=duration") {
		t.Fatalf("expected duration query, got %q", joined)
	}
}

func TestDurationExecFailure(t *testing.T) {
	runner := &fakeRunner{err: errors.New("exit status 1"), stderr: "no such file"}
	p := New("ffprobe", runner)

	_, err := p.Duration(context.Background(), "/missing.mp3")
	if !errors.Is(err, ErrDurationUnknown) {
		t.Fatalf("expected ErrDurationUnknown, got %v", err)
	}
	if !strings.Contains(err.Error(), "no such file") {
		t.Fatalf("expected stderr in error, got %v", err)
	}
}

func TestDurationNonNumeric(t *testing.T) {
	runner := &fakeRunner{stdout: "N/A\n"}
	p := New("ffprobe", runner)

	if _, err := p.Duration(context.Background(), "/tmp/x.png"); !errors.Is(err, ErrDurationUnknown) {
		t.Fatalf("expected ErrDurationUnknown, got %v", err)
	}
}

func TestDurationEmptyOutput(t *testing.T) {
	runner := &fakeRunner{}
	p := New("ffprobe", runner)

	if _, err := p.Duration(context.Background(), "/tmp/x.wav"); !errors.Is(err, ErrDurationUnknown) {
		t.Fatalf("expected ErrDurationUnknown, got %v", err)
	}
}

func TestDurationOrDefaultFallsBack(t *testing.T) {
	runner := &fakeRunner{err: errors.New("boom")}
	p := New("ffprobe", runner)

	var buf bytes.Buffer
	logger := log.New(&buf, "", 0)

	seconds := p.DurationOrDefault(context.Background(), "/tmp/x.mp3", logger)
	if seconds != DefaultDurationSeconds {
		t.Fatalf("expected default %v, got %v", DefaultDurationSeconds, seconds)
	}
	if !strings.Contains(buf.String(), "warning") {
		t.Fatalf("expected a logged warning, got %q", buf.String())
	}
}

func TestDurationOrDefaultUsesProbe(t *testing.T) {
	runner := &fakeRunner{stdout: "9.0"}
	p := New("ffprobe", runner)

	if seconds := p.DurationOrDefault(context.Background(), "/tmp/x.mp3", nil); seconds != 9.0 {
		t.Fatalf("expected probed 9.0, got %v", seconds)
	}
}
