package capture

import "fmt"

// Canonical acquisition failure names, mirroring the DOMException names a
// browser raises from getUserMedia.
// Reference: https://developer.mozilla.org/en-US/docs/Web/API/MediaDevices/getUserMedia#exceptions
const (
	AbortError           = "AbortError"
	NotAllowedError      = "NotAllowedError"
	NotFoundError        = "NotFoundError"
	NotReadableError     = "NotReadableError"
	OverconstrainedError = "OverconstrainedError"
	TypeError            = "TypeError"
)

// NamedError is an acquisition failure carrying one of the canonical names
// above, or a source-specific name for anything else.
type NamedError struct {
	Name   string
	Reason string
}

func (e *NamedError) Error() string {
	if e.Reason == "" {
		return e.Name
	}
	return fmt.Sprintf("%s: %s", e.Name, e.Reason)
}

// NewNamedError builds a NamedError with a formatted reason.
func NewNamedError(name, format string, args ...interface{}) *NamedError {
	return &NamedError{Name: name, Reason: fmt.Sprintf(format, args...)}
}
