package capture

// TrackKind tells whether a track carries audio or video.
type TrackKind string

const (
	AudioTrack TrackKind = "audio"
	VideoTrack TrackKind = "video"
)

// ReadyState represents a track's liveness.
// Reference: https://w3c.github.io/mediacapture-main/#dom-mediastreamtrackstate
type ReadyState string

const (
	// TrackLive means the track is connected to its source and producing data.
	TrackLive ReadyState = "live"
	// TrackEnded means the track's source is gone for good. An ended track
	// never goes back to live.
	TrackEnded ReadyState = "ended"
)

// Track represents a single audio or video channel within a MediaStream.
// Reference: https://w3c.github.io/mediacapture-main/#mediastreamtrack
type Track interface {
	ID() string
	Kind() TrackKind

	// Enabled reports whether the track produces data. A disabled audio
	// track is what a user perceives as muted.
	Enabled() bool
	SetEnabled(enabled bool)

	ReadyState() ReadyState

	// Stop permanently disconnects the track from its source and moves it
	// to the ended state.
	Stop()

	// OnEnded registers a handler that fires once the track transitions to
	// ended, whether by Stop or by the source going away.
	OnEnded(handler func(error))
}
