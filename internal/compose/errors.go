package compose

import "fmt"

// InputNotFoundError reports a missing image or audio file. Fatal, no retry;
// the caller supplied a bad path.
type InputNotFoundError struct {
	Path string
}

func (e *InputNotFoundError) Error() string {
	return fmt.Sprintf("input not found: %s", e.Path)
}
