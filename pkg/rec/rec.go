// Package rec defines the recorder capability consumed by the recording
// session: an Engine turns a live MediaStream into a stream of encoded data
// chunks plus lifecycle events, modelled after
// https://developer.mozilla.org/en-US/docs/Web/API/MediaRecorder
package rec

import (
	"time"

	"github.com/pion/mediarecorder/pkg/capture"
)

// State represents a recorder's state.
// Reference: https://developer.mozilla.org/en-US/docs/Web/API/MediaRecorder/state
type State string

const (
	// StateInactive means the recorder has not been started, or has been
	// stopped and will never produce data again.
	StateInactive State = "inactive"
	// StateRecording means the recorder is consuming its stream and will
	// periodically emit data chunks.
	StateRecording State = "recording"
	// StatePaused means recording is suspended but the recorder still owns
	// its stream and may be resumed.
	StatePaused State = "paused"
)

// Chunk is an opaque unit of encoded media data emitted while recording.
type Chunk struct {
	Data []byte
	// Type is the MIME type the recorder reports for its output, empty if
	// the recorder does not know.
	Type string
}

// Options configures a recorder at construction.
type Options struct {
	MIMEType           string
	AudioBitsPerSecond int
	VideoBitsPerSecond int

	// Timeslice is the requested interval between data-available events.
	// Zero lets the recorder buffer until stop.
	Timeslice time.Duration
}

// Handlers carries the lifecycle callbacks a recorder fires. They are bound
// once, at construction; a recorder never allows reattaching handlers to a
// live instance.
type Handlers struct {
	// OnDataAvailable fires for every emitted chunk, including the final
	// flush that precedes OnStop.
	OnDataAvailable func(Chunk)
	// OnStart fires once recording has actually begun.
	OnStart func()
	// OnStop fires after the recorder has gone inactive and flushed every
	// remaining chunk.
	OnStop func()
	// OnError fires when the recorder fails; the recorder is inactive
	// afterwards and OnStop will not fire.
	OnError func(error)
}

// Recorder is a single-use recording of one stream. A stopped Recorder is
// never restarted; callers construct a fresh one from the Engine instead.
type Recorder interface {
	Start() error
	Stop() error
	Pause() error
	Resume() error
	State() State
}

// Engine constructs recorders and answers capability queries. It is the
// injection point for a platform's actual recording implementation.
type Engine interface {
	// NewRecorder binds a recorder to the given stream with its handlers
	// subscribed atomically. The returned recorder is inactive.
	NewRecorder(stream capture.MediaStream, opts Options, h Handlers) (Recorder, error)

	// IsTypeSupported reports whether the engine can produce the given
	// MIME type.
	IsTypeSupported(mimeType string) bool
}
