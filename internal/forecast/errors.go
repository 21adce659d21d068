package forecast

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument marks a structurally invalid request to the engine,
// such as a non-positive horizon or a sub-horizon longer than the window.
var ErrInvalidArgument = errors.New("invalid argument")

// ValidationError reports a malformed entry or adjustment.
type ValidationError struct {
	ID     string // entry or adjustment target, if known
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("entry %s: invalid %s %q: %s", e.ID, e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
