package render

import (
	"fmt"
	"sort"
	"strings"
)

// BindingMismatchError reports a pre-flight invariant violation: the filter
// graph and the declared input list disagree about indices. It indicates a
// planning bug and is raised before any process is spawned.
type BindingMismatchError struct {
	// Unreferenced lists declared input indices the graph never mentions.
	Unreferenced []int

	// Undeclared lists indices the graph references without a declared input.
	Undeclared []int
}

func (e *BindingMismatchError) Error() string {
	var parts []string
	if len(e.Unreferenced) > 0 {
		parts = append(parts, fmt.Sprintf("inputs declared but never referenced: %s", joinInts(e.Unreferenced)))
	}
	if len(e.Undeclared) > 0 {
		parts = append(parts, fmt.Sprintf("graph references undeclared inputs: %s", joinInts(e.Undeclared)))
	}
	if len(parts) == 0 {
		parts = append(parts, "input bindings do not match filter graph")
	}
	return "binding mismatch: " + strings.Join(parts, "; ")
}

func joinInts(values []int) string {
	sort.Ints(values)
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return strings.Join(parts, ", ")
}

// TimeoutError reports a render that exceeded its wall-clock bound. The
// process has already been killed when this is returned.
type TimeoutError struct {
	Elapsed string
	Tail    []string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("render timed out after %s", e.Elapsed)
}

// DiagnosticTail returns the retained trailing diagnostic lines.
func (e *TimeoutError) DiagnosticTail() []string { return e.Tail }

// FailedError reports a non-zero encoder exit.
type FailedError struct {
	Cause error
	Tail  []string
}

func (e *FailedError) Error() string {
	return fmt.Sprintf("render failed: %v", e.Cause)
}

func (e *FailedError) Unwrap() error { return e.Cause }

// DiagnosticTail returns the retained trailing diagnostic lines.
func (e *FailedError) DiagnosticTail() []string { return e.Tail }

// VerifyError reports an output file that is missing or trivially small after
// a zero exit code. Never treated as success.
type VerifyError struct {
	Path string
	Size int64
}

func (e *VerifyError) Error() string {
	if e.Size < 0 {
		return fmt.Sprintf("output verification failed: %s does not exist", e.Path)
	}
	return fmt.Sprintf("output verification failed: %s is only %d bytes", e.Path, e.Size)
}
