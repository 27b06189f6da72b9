// Package mediarecorder turns the event-driven capture and recorder
// capabilities of a platform into a declarative recording session: consumers
// read the current status and drive a small set of actions (start, pause,
// resume, stop, mute, clear) instead of juggling recorder callbacks
// themselves.
package mediarecorder

import (
	"errors"
	"sync"

	"github.com/pion/logging"

	internallog "github.com/pion/mediarecorder/internal/logging"
	"github.com/pion/mediarecorder/pkg/blob"
	"github.com/pion/mediarecorder/pkg/capture"
	"github.com/pion/mediarecorder/pkg/prop"
	"github.com/pion/mediarecorder/pkg/rec"
)

var nop = func() error { return nil }

// Session is a recording session controller. It exclusively owns its stream
// (unless one was supplied by the caller) and its recorder; both are only
// ever mutated through the session's own actions.
type Session struct {
	source   capture.Source
	engine   rec.Engine
	opts     SessionOptions
	registry *blob.Registry
	log      logging.LeveledLogger

	mu         sync.Mutex
	status     Status
	errKind    ErrorKind
	stream     capture.MediaStream
	ownsStream bool
	recorder   rec.Recorder

	// chunks accumulates data-available events for the active recording.
	// At stop time the accumulated set moves to finalChunks, which is what
	// finalize consumes; late flush chunks emitted between the stop request
	// and the recorder's stop event land there directly. Clearing chunks at
	// stop can therefore never produce an empty output.
	chunks      []rec.Chunk
	finalChunks []rec.Chunk

	outBlob *blob.Blob
	blobURL string

	audioMuted bool
	premute    map[string]bool
}

// NewSession builds a session around the given capture source and recorder
// engine. A nil engine marks the runtime as unsupported: the session is
// returned with its error field set and every action refuses to run.
// Requesting screen capture from a source that cannot provide it is the one
// hard fault and fails construction outright.
func NewSession(source capture.Source, engine rec.Engine, opts ...Option) (*Session, error) {
	var so SessionOptions
	for _, o := range opts {
		o(&so)
	}

	var log logging.LeveledLogger
	if so.loggerFactory != nil {
		log = so.loggerFactory.NewLogger("mediarecorder")
	} else {
		log = internallog.NewLogger("mediarecorder")
	}

	s := &Session{
		source:   source,
		engine:   engine,
		opts:     so,
		registry: blob.NewRegistry(),
		log:      log,
		status:   StatusIdle,
	}

	if engine == nil {
		s.errKind = UnsupportedRuntime
		return s, nil
	}

	if source == nil && so.customStream == nil {
		return nil, errors.New("mediarecorder: a capture source is required")
	}

	if so.screen {
		if ds, ok := source.(capture.DisplaySource); ok && !ds.DisplayMediaSupported() {
			return nil, ErrScreenCaptureUnsupported
		}
	}

	s.warnUnsupportedConstraints()
	if so.recorder.MIMEType != "" && !engine.IsTypeSupported(so.recorder.MIMEType) {
		s.log.Warnf("recorder does not support MIME type %q, recording may fall back to a default", so.recorder.MIMEType)
	}

	if so.customStream != nil {
		s.stream = so.customStream
		s.ownsStream = false
	}

	return s, nil
}

// warnUnsupportedConstraints checks every requested constraint key against
// what the source advertises. Unsupported keys are observational only; the
// source will ignore them rather than fail.
func (s *Session) warnUnsupportedConstraints() {
	if s.source == nil {
		return
	}

	supported := make(map[string]bool)
	for _, key := range s.source.SupportedConstraints() {
		supported[key] = true
	}

	check := func(kind string, build func(*prop.Media)) {
		if build == nil {
			return
		}
		var p prop.Media
		build(&p)
		for _, key := range p.ConstraintKeys() {
			if !supported[key] {
				s.log.Warnf("%s constraint %q is not supported by this source", kind, key)
			}
		}
	}

	check("audio", s.opts.audio)
	check("video", s.opts.video)
}

// AcquireStream acquires (or re-acquires) the session's stream from its
// configuration. With a custom stream configured it simply adopts it.
// Status moves through acquiring_media and always lands back on idle;
// failures are stored in the session's error field.
func (s *Session) AcquireStream() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.errKind == UnsupportedRuntime {
		return ErrUnsupported
	}

	if s.opts.customStream != nil {
		s.stream = s.opts.customStream
		s.ownsStream = false
		return nil
	}

	return s.acquireLocked()
}

// acquireLocked runs one acquisition cycle. Callers hold s.mu.
func (s *Session) acquireLocked() error {
	if err := s.status.Update(StatusAcquiringMedia, nop); err != nil {
		return err
	}

	stream, err := s.acquire()

	// Failure does not get its own state; the error field carries it.
	_ = s.status.Update(StatusIdle, nop)

	if err != nil {
		s.errKind = acquisitionErrorKind(err)
		s.log.Errorf("failed to acquire stream: %v", err)
		return err
	}

	for _, t := range stream.GetTracks() {
		track := t
		track.OnEnded(func(err error) {
			s.log.Debugf("track %s ended: %v", track.ID(), err)
		})
	}

	s.stream = stream
	s.ownsStream = true
	return nil
}

func (s *Session) acquire() (capture.MediaStream, error) {
	if s.source == nil {
		return nil, capture.NewNamedError(capture.NotFoundError, "no capture source configured")
	}

	if s.opts.screen {
		video := s.opts.video
		if video == nil {
			video = func(*prop.Media) {}
		}
		display, err := s.source.GetDisplayMedia(capture.MediaStreamConstraints{Video: video, Screen: true})
		if err != nil {
			return nil, err
		}

		// Display surfaces carry no audio; a requested audio track is
		// acquired separately and mixed into the display stream.
		if s.opts.audio != nil {
			audioStream, err := s.source.GetUserMedia(capture.MediaStreamConstraints{Audio: s.opts.audio})
			if err != nil {
				for _, t := range display.GetTracks() {
					t.Stop()
				}
				return nil, err
			}
			for _, t := range audioStream.GetAudioTracks() {
				display.AddTrack(t)
			}
		}

		return display, nil
	}

	if s.opts.audio == nil && s.opts.video == nil {
		return nil, capture.NewNamedError(capture.TypeError, "at least one of audio and video must be requested")
	}

	return s.source.GetUserMedia(capture.MediaStreamConstraints{
		Audio: s.opts.audio,
		Video: s.opts.video,
	})
}

// Start begins a new recording cycle. The session's error field is cleared,
// a stream is acquired if none is live, and a fresh recorder is constructed
// with its handlers bound atomically. Any prior recorder is discarded, never
// stacked; its remaining events are ignored.
func (s *Session) Start() error {
	s.mu.Lock()
	if s.errKind == UnsupportedRuntime {
		s.mu.Unlock()
		return ErrUnsupported
	}

	s.errKind = NoError

	old := s.recorder
	s.recorder = nil
	s.chunks = nil
	s.finalChunks = nil
	if old != nil {
		// Restarting mid-cycle. Reset to idle so the fresh cycle walks the
		// normal transitions.
		_ = s.status.Update(StatusIdle, nop)
	}
	s.mu.Unlock()

	if old != nil && old.State() != rec.StateInactive {
		// Best effort teardown; the stale recorder's events are dropped.
		if err := old.Stop(); err != nil {
			s.log.Warnf("failed to stop discarded recorder: %v", err)
		}
	}

	s.mu.Lock()

	if s.stream == nil && s.opts.customStream != nil {
		s.stream = s.opts.customStream
		s.ownsStream = false
	}

	if s.stream == nil || allTracksEnded(s.stream) {
		if err := s.acquireLocked(); err != nil {
			s.mu.Unlock()
			return err
		}
	}

	var r rec.Recorder
	handlers := rec.Handlers{
		OnDataAvailable: func(c rec.Chunk) { s.onData(r, c) },
		OnStart: func() {
			if s.opts.onStart != nil {
				s.opts.onStart()
			}
		},
		OnStop:  func() { s.finalize(r) },
		OnError: func(err error) { s.onRecorderError(r, err) },
	}

	r, err := s.engine.NewRecorder(s.stream, s.opts.recorder, handlers)
	if err != nil {
		s.errKind = RecorderError
		s.log.Errorf("failed to create recorder: %v", err)
		s.mu.Unlock()
		return err
	}

	if err := s.status.Update(StatusRecording, nop); err != nil {
		s.mu.Unlock()
		return err
	}
	s.recorder = r
	s.mu.Unlock()

	// The start event may fire synchronously inside Start, so the lock must
	// not be held here.
	if err := r.Start(); err != nil {
		s.mu.Lock()
		s.errKind = RecorderError
		s.recorder = nil
		_ = s.status.Update(StatusIdle, nop)
		s.mu.Unlock()
		s.log.Errorf("failed to start recorder: %v", err)
		return err
	}

	return nil
}

// allTracksEnded reports whether the stream has no live track left. An empty
// stream counts as ended so a fresh acquisition replaces it.
func allTracksEnded(stream capture.MediaStream) bool {
	for _, t := range stream.GetTracks() {
		if t.ReadyState() != capture.TrackEnded {
			return false
		}
	}
	return true
}

// Pause suspends the active recording. It is a no-op unless the recorder is
// currently recording, and it never changes the session's status.
func (s *Session) Pause() error {
	s.mu.Lock()
	r := s.recorder
	s.mu.Unlock()

	if r == nil || r.State() != rec.StateRecording {
		return nil
	}
	return r.Pause()
}

// Resume continues a paused recording. It is a no-op unless the recorder is
// currently paused, and it never changes the session's status.
func (s *Session) Resume() error {
	s.mu.Lock()
	r := s.recorder
	s.mu.Unlock()

	if r == nil || r.State() != rec.StatePaused {
		return nil
	}
	return r.Resume()
}

// Stop requests the end of the active recording. The recorder's own stop
// event finalizes the output asynchronously; until it arrives the status
// reads stopping. Stopping without an active recorder is a no-op.
func (s *Session) Stop() error {
	s.mu.Lock()
	if s.errKind == UnsupportedRuntime {
		s.mu.Unlock()
		return ErrUnsupported
	}

	r := s.recorder
	if r == nil || r.State() == rec.StateInactive {
		s.mu.Unlock()
		return nil
	}

	if err := s.status.Update(StatusStopping, nop); err != nil {
		s.mu.Unlock()
		return err
	}

	// Move the accumulated chunks out of the live buffer. finalize consumes
	// this snapshot (plus any late flush chunks), so clearing the live
	// buffer here cannot empty the output.
	s.finalChunks = s.chunks
	s.chunks = nil

	stream := s.stream
	stopTracks := s.stopStreamOnStopLocked()
	s.mu.Unlock()

	err := r.Stop()

	if stopTracks && stream != nil {
		for _, t := range stream.GetTracks() {
			t.Stop()
		}
	}

	return err
}

// stopStreamOnStopLocked resolves the track-teardown policy: an explicit
// WithStopStreamOnStop wins; otherwise the session only stops streams it
// acquired itself.
func (s *Session) stopStreamOnStopLocked() bool {
	if s.opts.stopStreamOnStopSet {
		return s.opts.stopStreamOnStop
	}
	return s.ownsStream
}

// onData appends a chunk emitted by recorder r. Chunks from a discarded
// recorder are dropped.
func (s *Session) onData(r rec.Recorder, c rec.Chunk) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.recorder != r {
		return
	}

	switch s.status {
	case StatusRecording:
		s.chunks = append(s.chunks, c)
	case StatusStopping:
		// The recorder's final flush arrives after stop was requested.
		s.finalChunks = append(s.finalChunks, c)
	}
}

// finalize handles recorder r's stop event: it assembles the output blob
// from the chunk snapshot taken at stop time, mints a fresh URL for it, and
// moves the session to stopped.
func (s *Session) finalize(r rec.Recorder) {
	s.mu.Lock()

	if s.recorder != r {
		s.mu.Unlock()
		return
	}

	chunks := s.finalChunks
	s.finalChunks = nil

	b := blob.Assemble(chunks, s.defaultBlobType())
	if s.opts.blobType != "" {
		b.Type = s.opts.blobType
	}

	url := s.registry.CreateURL(b)
	s.outBlob = b
	s.blobURL = url
	s.recorder = nil
	_ = s.status.Update(StatusStopped, nop)

	onStop := s.opts.onStop
	s.mu.Unlock()

	if onStop != nil {
		onStop(url, b)
	}
}

func (s *Session) defaultBlobType() string {
	if s.opts.video != nil || s.opts.screen {
		return "video/mp4"
	}
	return "audio/wav"
}

// onRecorderError handles recorder r's error event: the recording is over,
// partial chunks are discarded, and the session reports recorder_error.
func (s *Session) onRecorderError(r rec.Recorder, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.recorder != r {
		return
	}

	s.log.Errorf("recorder failed: %v", err)
	s.errKind = RecorderError
	s.recorder = nil
	s.chunks = nil
	s.finalChunks = nil
	_ = s.status.Update(StatusIdle, nop)
}

// MuteAudio disables every audio track of the current stream. The recorder
// keeps running; muted stretches simply record silence.
func (s *Session) MuteAudio() {
	s.setAudioMuted(true)
}

// UnmuteAudio restores each audio track to the enabled state it had when
// MuteAudio was called.
func (s *Session) UnmuteAudio() {
	s.setAudioMuted(false)
}

func (s *Session) setAudioMuted(muted bool) {
	s.mu.Lock()
	if s.audioMuted == muted {
		s.mu.Unlock()
		return
	}
	s.audioMuted = muted
	stream := s.stream
	if muted {
		s.premute = make(map[string]bool)
	}
	premute := s.premute
	s.mu.Unlock()

	if stream == nil {
		return
	}

	for _, t := range stream.GetAudioTracks() {
		if muted {
			premute[t.ID()] = t.Enabled()
			t.SetEnabled(false)
			continue
		}

		enabled, ok := premute[t.ID()]
		if !ok {
			enabled = true
		}
		t.SetEnabled(enabled)
	}
}

// ClearBlobURL revokes the current output reference and forgets the blob.
// The status is left untouched.
func (s *Session) ClearBlobURL() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.blobURL != "" {
		s.registry.Revoke(s.blobURL)
	}
	s.blobURL = ""
	s.outBlob = nil
}

// StopMediaStream stops every track of the current stream, independent of
// the recorder's state. The status is left untouched.
func (s *Session) StopMediaStream() {
	s.mu.Lock()
	stream := s.stream
	s.mu.Unlock()

	if stream == nil {
		return
	}
	for _, t := range stream.GetTracks() {
		t.Stop()
	}
}

// Status returns the session's current status.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Err returns the session's current error kind, NoError if none.
func (s *Session) Err() ErrorKind {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errKind
}

// MediaBlobURL returns the resolvable reference to the last finalized
// recording, empty if there is none.
func (s *Session) MediaBlobURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blobURL
}

// Blob returns the last finalized recording, nil if there is none.
func (s *Session) Blob() *blob.Blob {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outBlob
}

// PreviewStream returns the live stream, nil before acquisition. Callers
// must not mutate track state directly; use MuteAudio and UnmuteAudio.
func (s *Session) PreviewStream() capture.MediaStream {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stream
}

// AudioMuted reports whether the session has muted its audio tracks.
func (s *Session) AudioMuted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.audioMuted
}

// Registry exposes the blob registry so finished recordings can be resolved
// from their URLs.
func (s *Session) Registry() *blob.Registry {
	return s.registry
}
