// Package tools locates the external encoder binaries. Paths may be forced via
// the PROMOREEL_FFMPEG / PROMOREEL_FFPROBE environment variables (loaded from
// .env by the CLI); otherwise PATH lookup applies.
package tools

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"promoreel/internal/proc"
)

// Status describes a resolved tool.
type Status struct {
	Name    string
	Path    string
	Version string
}

// FFmpeg resolves the ffmpeg binary.
func FFmpeg() (string, error) {
	return lookup("ffmpeg", "PROMOREEL_FFMPEG")
}

// FFprobe resolves the ffprobe binary.
func FFprobe() (string, error) {
	return lookup("ffprobe", "PROMOREEL_FFPROBE")
}

func lookup(name, envVar string) (string, error) {
	if override := strings.TrimSpace(os.Getenv(envVar)); override != "" {
		if _, err := os.Stat(override); err != nil {
			return "", fmt.Errorf("%s override %q: %w", name, override, err)
		}
		return override, nil
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("locate %s: %w", name, err)
	}
	return path, nil
}

// Check resolves a tool and reports its version line, for the check command.
func Check(ctx context.Context, runner proc.Runner, name, envVar string) (Status, error) {
	if runner == nil {
		runner = proc.CmdRunner{}
	}
	path, err := lookup(name, envVar)
	if err != nil {
		return Status{Name: name}, err
	}

	status := Status{Name: name, Path: path}
	result, err := runner.Run(ctx, path, []string{"-version"}, proc.RunOptions{})
	if err != nil {
		return status, fmt.Errorf("%s -version: %w", name, err)
	}
	status.Version = firstLine(string(result.Stdout))
	return status, nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
