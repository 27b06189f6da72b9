// Package capturetest provides a scripted capture source for testing.
package capturetest

import (
	"io"
	"sync"

	"github.com/google/uuid"

	"github.com/pion/mediarecorder/pkg/capture"
	"github.com/pion/mediarecorder/pkg/prop"
)

// Track is an in-memory capture.Track whose liveness is fully scripted.
type Track struct {
	id   string
	kind capture.TrackKind

	mu      sync.Mutex
	enabled bool
	state   capture.ReadyState
	onEnded func(error)
}

// NewTrack returns a live, enabled track of the given kind.
func NewTrack(kind capture.TrackKind) *Track {
	return &Track{
		id:      uuid.NewString(),
		kind:    kind,
		enabled: true,
		state:   capture.TrackLive,
	}
}

func (t *Track) ID() string              { return t.id }
func (t *Track) Kind() capture.TrackKind { return t.kind }

func (t *Track) Enabled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.enabled
}

func (t *Track) SetEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = enabled
}

func (t *Track) ReadyState() capture.ReadyState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Stop ends the track and fires the OnEnded handler with io.EOF, the way a
// cleanly closed source reports itself.
func (t *Track) Stop() {
	t.end(io.EOF)
}

// EndWith simulates the source going away with the given error.
func (t *Track) EndWith(err error) {
	t.end(err)
}

func (t *Track) end(err error) {
	t.mu.Lock()
	if t.state == capture.TrackEnded {
		t.mu.Unlock()
		return
	}
	t.state = capture.TrackEnded
	handler := t.onEnded
	t.mu.Unlock()

	if handler != nil {
		handler(err)
	}
}

func (t *Track) OnEnded(handler func(error)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onEnded = handler
}

// Source is a capture.Source whose behavior is controlled by its exported
// fields. The zero value acquires one track per requested kind and supports
// display capture.
type Source struct {
	// UserMediaErr, when set, makes every GetUserMedia call fail with it.
	UserMediaErr error
	// DisplayErr, when set, makes every GetDisplayMedia call fail with it.
	DisplayErr error
	// NoDisplay marks display capture as unsupported.
	NoDisplay bool
	// Supported overrides the advertised constraint keys.
	Supported []string

	mu          sync.Mutex
	userCalls   int
	screenCalls int
	lastAudio   prop.Media
	lastVideo   prop.Media
	tracks      []*Track
}

var defaultSupported = []string{
	"deviceId", "width", "height", "frameRate",
	"channelCount", "latency", "sampleRate", "sampleSize",
}

func (s *Source) GetUserMedia(constraints capture.MediaStreamConstraints) (capture.MediaStream, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.userCalls++
	if s.UserMediaErr != nil {
		return nil, s.UserMediaErr
	}

	var tracks []capture.Track
	if constraints.Audio != nil {
		s.lastAudio = prop.Media{}
		constraints.Audio(&s.lastAudio)
		tracks = append(tracks, s.newTrack(capture.AudioTrack))
	}
	if constraints.Video != nil {
		s.lastVideo = prop.Media{}
		constraints.Video(&s.lastVideo)
		tracks = append(tracks, s.newTrack(capture.VideoTrack))
	}

	return capture.NewMediaStream(tracks...)
}

func (s *Source) GetDisplayMedia(constraints capture.MediaStreamConstraints) (capture.MediaStream, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.screenCalls++
	if s.DisplayErr != nil {
		return nil, s.DisplayErr
	}

	return capture.NewMediaStream(s.newTrack(capture.VideoTrack))
}

func (s *Source) newTrack(kind capture.TrackKind) *Track {
	t := NewTrack(kind)
	s.tracks = append(s.tracks, t)
	return t
}

func (s *Source) SupportedConstraints() []string {
	if s.Supported != nil {
		return s.Supported
	}
	return defaultSupported
}

func (s *Source) EnumerateDevices() []capture.MediaDeviceInfo {
	return []capture.MediaDeviceInfo{
		{DeviceID: "audiotest", Kind: capture.AudioInput, Label: "AudioTest"},
		{DeviceID: "videotest", Kind: capture.VideoInput, Label: "VideoTest"},
	}
}

func (s *Source) DisplayMediaSupported() bool {
	return !s.NoDisplay
}

// UserMediaCalls reports how many times GetUserMedia has been invoked.
func (s *Source) UserMediaCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userCalls
}

// DisplayMediaCalls reports how many times GetDisplayMedia has been invoked.
func (s *Source) DisplayMediaCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.screenCalls
}

// LastAudio returns the audio properties requested by the most recent
// GetUserMedia call.
func (s *Source) LastAudio() prop.Media {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAudio
}

// LastVideo returns the video properties requested by the most recent
// GetUserMedia call.
func (s *Source) LastVideo() prop.Media {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastVideo
}

// Tracks returns every track this source has handed out, in order.
func (s *Source) Tracks() []*Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Track, len(s.tracks))
	copy(out, s.tracks)
	return out
}
