package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"promoreel/internal/proc"
)

// State tracks one render through its lifecycle.
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
	StateTimedOut  State = "timed_out"
)

// Limits bounds the encoder process. The timeout grows with content length up
// to a fixed ceiling.
type Limits struct {
	TimeoutBase      time.Duration
	TimeoutPerSecond time.Duration
	TimeoutCeiling   time.Duration
	MinOutputBytes   int64
}

// DefaultLimits mirrors the render config defaults.
func DefaultLimits() Limits {
	return Limits{
		TimeoutBase:      120 * time.Second,
		TimeoutPerSecond: 4 * time.Second,
		TimeoutCeiling:   30 * time.Minute,
		MinOutputBytes:   1024,
	}
}

// TimeoutFor computes the wall-clock bound for a render of the given content
// length.
func (l Limits) TimeoutFor(totalSeconds float64) time.Duration {
	timeout := l.TimeoutBase + time.Duration(totalSeconds*float64(l.TimeoutPerSecond))
	if l.TimeoutCeiling > 0 && timeout > l.TimeoutCeiling {
		timeout = l.TimeoutCeiling
	}
	return timeout
}

// Executor owns one encoder process per Execute call. It holds no shared
// mutable state between renders beyond the filesystem, so distinct executors
// may run concurrently if the caller bounds parallelism.
type Executor struct {
	FFmpegPath string
	Runner     proc.Runner
	Limits     Limits
	Logger     *log.Logger

	// OnProgress receives fractional progress as diagnostic lines arrive.
	OnProgress ProgressFunc

	// LogSink, when set, receives a copy of the full diagnostic stream.
	LogSink io.Writer

	mu    sync.Mutex
	state State
}

// State returns the executor's current lifecycle state.
func (e *Executor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == "" {
		return StateIdle
	}
	return e.state
}

func (e *Executor) setState(s State) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}

// Execute runs the encoder with the built argument list and verifies the
// output. totalSeconds is the planned content length, used for the timeout
// bound and progress fractions.
func (e *Executor) Execute(ctx context.Context, args []string, outputPath string, totalSeconds float64) error {
	if e.Runner == nil {
		e.Runner = proc.CmdRunner{}
	}
	if e.FFmpegPath == "" {
		return errors.New("ffmpeg path not set")
	}
	if e.Limits == (Limits{}) {
		e.Limits = DefaultLimits()
	}

	timeout := e.Limits.TimeoutFor(totalSeconds)
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	progress := newProgressWriter(totalSeconds, e.OnProgress)
	stderr := io.Writer(progress)
	if e.LogSink != nil {
		stderr = io.MultiWriter(progress, e.LogSink)
	}

	e.setState(StateRunning)
	e.logf("rendering %s (timeout %s)", outputPath, timeout)

	start := time.Now()
	_, err := e.Runner.Run(runCtx, e.FFmpegPath, args, proc.RunOptions{Stderr: stderr})
	if err != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			e.setState(StateTimedOut)
			_ = os.Remove(outputPath)
			return &TimeoutError{
				Elapsed: time.Since(start).Round(time.Second).String(),
				Tail:    progress.Tail(),
			}
		}
		e.setState(StateFailed)
		_ = os.Remove(outputPath)
		return &FailedError{Cause: err, Tail: progress.Tail()}
	}

	if err := e.verifyOutput(outputPath); err != nil {
		e.setState(StateFailed)
		return err
	}

	e.setState(StateSucceeded)
	e.logf("rendered %s in %s", outputPath, time.Since(start).Round(time.Millisecond))
	return nil
}

// verifyOutput refuses to call a render successful on a missing or trivially
// small file, regardless of the exit code.
func (e *Executor) verifyOutput(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &VerifyError{Path: path, Size: -1}
		}
		return fmt.Errorf("stat output: %w", err)
	}
	if info.Size() < e.Limits.MinOutputBytes {
		return &VerifyError{Path: path, Size: info.Size()}
	}
	return nil
}

func (e *Executor) logf(format string, args ...any) {
	if e.Logger != nil {
		e.Logger.Printf(format, args...)
	}
}
