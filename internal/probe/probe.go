// Package probe queries asset play durations through ffprobe. Probing is
// best-effort: callers that can tolerate an unknown duration should use
// DurationOrDefault rather than treating a probe failure as fatal.
package probe

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"promoreel/internal/proc"
)

// ErrDurationUnknown wraps any probe failure: the external query erroring,
// producing no output, or producing a non-numeric value.
var ErrDurationUnknown = errors.New("duration unknown")

// DefaultDurationSeconds is substituted when a probe fails and the caller
// opted into best-effort behaviour.
const DefaultDurationSeconds = 30.0

// Prober runs ffprobe through a Runner.
type Prober struct {
	FFprobePath string
	Runner      proc.Runner
}

// New returns a Prober bound to the given ffprobe binary.
func New(ffprobePath string, runner proc.Runner) *Prober {
	if runner == nil {
		runner = proc.CmdRunner{}
	}
	return &Prober{FFprobePath: ffprobePath, Runner: runner}
}

// Duration returns the play duration of the asset at path in seconds. Any
// failure is reported as ErrDurationUnknown with the underlying cause wrapped.
func (p *Prober) Duration(ctx context.Context, path string) (float64, error) {
	args := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	}

	result, err := p.Runner.Run(ctx, p.FFprobePath, args, proc.RunOptions{})
	if err != nil {
		stderr := strings.TrimSpace(string(result.Stderr))
		if stderr != "" {
			return 0, fmt.Errorf("%w: ffprobe: %v (stderr: %s)", ErrDurationUnknown, err, stderr)
		}
		return 0, fmt.Errorf("%w: ffprobe: %v", ErrDurationUnknown, err)
	}

	raw := strings.TrimSpace(string(result.Stdout))
	if raw == "" {
		return 0, fmt.Errorf("%w: ffprobe produced no output for %s", ErrDurationUnknown, path)
	}

	seconds, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: parse %q: %v", ErrDurationUnknown, raw, err)
	}
	if seconds <= 0 {
		return 0, fmt.Errorf("%w: non-positive duration %v for %s", ErrDurationUnknown, seconds, path)
	}
	return seconds, nil
}

// DurationOrDefault probes the asset and falls back to DefaultDurationSeconds
// on failure, logging a warning. The render pipeline never aborts on a probe
// failure.
func (p *Prober) DurationOrDefault(ctx context.Context, path string, logger *log.Logger) float64 {
	seconds, err := p.Duration(ctx, path)
	if err != nil {
		if logger != nil {
			logger.Printf("warning: probe %s: %v; using default %.0fs", path, err, DefaultDurationSeconds)
		}
		return DefaultDurationSeconds
	}
	return seconds
}
