// Package permissions exposes the platform permission state for capture
// devices and a priming helper that raises the permission prompt ahead of
// the first real acquisition.
package permissions

// Name identifies a capture permission. Microphone and camera are tracked
// independently.
type Name string

const (
	Microphone Name = "microphone"
	Camera     Name = "camera"
)

// State is the coarse permission state the platform reports.
// Reference: https://developer.mozilla.org/en-US/docs/Web/API/PermissionStatus/state
type State string

const (
	Granted State = "granted"
	Denied  State = "denied"
	Prompt  State = "prompt"
)

// Query is the consumed platform capability that answers permission lookups.
type Query interface {
	QueryPermissionState(name Name) (State, error)
}
