package mediarecorder

import (
	"github.com/pion/logging"

	"github.com/pion/mediarecorder/pkg/blob"
	"github.com/pion/mediarecorder/pkg/capture"
	"github.com/pion/mediarecorder/pkg/prop"
	"github.com/pion/mediarecorder/pkg/rec"
)

// SessionOptions stores parameters used by a Session.
type SessionOptions struct {
	audio  func(*prop.Media)
	video  func(*prop.Media)
	screen bool

	customStream capture.MediaStream

	onStart func()
	onStop  func(url string, b *blob.Blob)

	blobType string
	recorder rec.Options

	stopStreamOnStop    bool
	stopStreamOnStopSet bool

	loggerFactory logging.LoggerFactory
}

// Option is a type of Session functional option.
type Option func(*SessionOptions)

// WithAudio requests an audio track with default properties.
func WithAudio() Option {
	return func(o *SessionOptions) {
		o.audio = func(*prop.Media) {}
	}
}

// WithAudioConstraints requests an audio track with the given properties.
func WithAudioConstraints(constraints func(*prop.Media)) Option {
	return func(o *SessionOptions) {
		o.audio = constraints
	}
}

// WithVideo requests a video track with default properties.
func WithVideo() Option {
	return func(o *SessionOptions) {
		o.video = func(*prop.Media) {}
	}
}

// WithVideoConstraints requests a video track with the given properties.
func WithVideoConstraints(constraints func(*prop.Media)) Option {
	return func(o *SessionOptions) {
		o.video = constraints
	}
}

// WithScreen requests a display surface instead of a camera. Combine with
// WithAudio to mix a separately acquired audio track into the display
// stream.
func WithScreen() Option {
	return func(o *SessionOptions) {
		o.screen = true
	}
}

// WithCustomStream supplies an externally acquired stream. The session
// adopts it without calling the capture source and never stops its tracks
// implicitly; pass WithStopStreamOnStop(true) to change that.
func WithCustomStream(stream capture.MediaStream) Option {
	return func(o *SessionOptions) {
		o.customStream = stream
	}
}

// WithOnStart registers a callback invoked once recording has begun.
func WithOnStart(cb func()) Option {
	return func(o *SessionOptions) {
		o.onStart = cb
	}
}

// WithOnStop registers a callback invoked exactly once per completed
// recording, with the blob URL and the finalized blob.
func WithOnStop(cb func(url string, b *blob.Blob)) Option {
	return func(o *SessionOptions) {
		o.onStop = cb
	}
}

// WithBlobType forces the MIME type of the finalized blob, overriding both
// the recorder's reported chunk type and the audio/video defaults.
func WithBlobType(mimeType string) Option {
	return func(o *SessionOptions) {
		o.blobType = mimeType
	}
}

// WithRecorderOptions passes options through to every recorder the session
// constructs.
func WithRecorderOptions(opts rec.Options) Option {
	return func(o *SessionOptions) {
		o.recorder = opts
	}
}

// WithStopStreamOnStop controls whether stopping the recording also stops
// the underlying stream's tracks. The default is true for streams the
// session acquired itself and false for custom streams.
func WithStopStreamOnStop(stop bool) Option {
	return func(o *SessionOptions) {
		o.stopStreamOnStop = stop
		o.stopStreamOnStopSet = true
	}
}

// WithLoggerFactory routes the session's logs through the given factory.
func WithLoggerFactory(factory logging.LoggerFactory) Option {
	return func(o *SessionOptions) {
		o.loggerFactory = factory
	}
}
