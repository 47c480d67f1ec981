package render

import (
	"bytes"
	"regexp"
	"strconv"
	"sync"
)

// timePattern matches ffmpeg's periodic status line, e.g. "time=00:00:12.48".
var timePattern = regexp.MustCompile(`time=(\d+):(\d{2}):(\d{2}(?:\.\d+)?)`)

const tailLines = 40

// ProgressFunc receives fractional progress in [0,1] as status lines arrive.
// Delivery is best effort and never gates completion.
type ProgressFunc func(fraction float64)

// progressWriter tees the encoder's diagnostic stream: it parses elapsed-time
// markers into fractional progress and retains a bounded tail of lines for
// error reporting. ffmpeg terminates status updates with \r, so both \r and
// \n split lines.
type progressWriter struct {
	totalSeconds float64
	onProgress   ProgressFunc

	mu      sync.Mutex
	partial bytes.Buffer
	tail    []string
}

func newProgressWriter(totalSeconds float64, onProgress ProgressFunc) *progressWriter {
	return &progressWriter{
		totalSeconds: totalSeconds,
		onProgress:   onProgress,
	}
}

func (w *progressWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, b := range p {
		if b == '\n' || b == '\r' {
			w.flushLineLocked()
			continue
		}
		w.partial.WriteByte(b)
	}
	return len(p), nil
}

func (w *progressWriter) flushLineLocked() {
	line := w.partial.String()
	w.partial.Reset()
	if line == "" {
		return
	}

	w.tail = append(w.tail, line)
	if len(w.tail) > tailLines {
		w.tail = w.tail[len(w.tail)-tailLines:]
	}

	if w.onProgress == nil || w.totalSeconds <= 0 {
		return
	}
	if elapsed, ok := parseElapsed(line); ok {
		fraction := elapsed / w.totalSeconds
		if fraction > 1 {
			fraction = 1
		}
		w.onProgress(fraction)
	}
}

// Tail returns a copy of the retained trailing lines, flushing any partial
// line first.
func (w *progressWriter) Tail() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.partial.Len() > 0 {
		w.flushLineLocked()
	}
	tail := make([]string, len(w.tail))
	copy(tail, w.tail)
	return tail
}

func parseElapsed(line string) (float64, bool) {
	match := timePattern.FindStringSubmatch(line)
	if match == nil {
		return 0, false
	}
	hours, err1 := strconv.ParseFloat(match[1], 64)
	minutes, err2 := strconv.ParseFloat(match[2], 64)
	seconds, err3 := strconv.ParseFloat(match[3], 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, false
	}
	return hours*3600 + minutes*60 + seconds, true
}
