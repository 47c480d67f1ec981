package tui

import "promoreel/internal/compose"

// StartMsg announces the render job once its plan is known.
type StartMsg struct {
	Job compose.Job
}

// ProgressMsg carries the encoder's fractional progress in [0,1].
type ProgressMsg struct {
	Fraction float64
}

// DoneMsg signals that the render finished, successfully or not.
type DoneMsg struct {
	Result compose.Result
}

// ErrorMsg signals a fatal error outside the render itself.
type ErrorMsg struct {
	Err error
}
