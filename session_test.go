package mediarecorder

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pion/mediarecorder/pkg/blob"
	"github.com/pion/mediarecorder/pkg/capture"
	"github.com/pion/mediarecorder/pkg/capture/capturetest"
	"github.com/pion/mediarecorder/pkg/prop"
	"github.com/pion/mediarecorder/pkg/rec"
	"github.com/pion/mediarecorder/pkg/rec/rectest"
)

func newAudioSession(t *testing.T, engine *rectest.Engine, opts ...Option) (*Session, *capturetest.Source) {
	t.Helper()

	src := &capturetest.Source{}
	opts = append([]Option{WithAudio()}, opts...)
	s, err := NewSession(src, engine, opts...)
	require.NoError(t, err)
	return s, src
}

func TestAcquireStreamYieldsRequestedKinds(t *testing.T) {
	src := &capturetest.Source{}
	s, err := NewSession(src, &rectest.Engine{}, WithAudio(), WithVideo())
	require.NoError(t, err)

	require.NoError(t, s.AcquireStream())

	assert.Equal(t, StatusIdle, s.Status())
	assert.Equal(t, NoError, s.Err())

	stream := s.PreviewStream()
	require.NotNil(t, stream)
	assert.Len(t, stream.GetAudioTracks(), 1)
	assert.Len(t, stream.GetVideoTracks(), 1)
}

func TestAcquireStreamPermissionDenied(t *testing.T) {
	src := &capturetest.Source{
		UserMediaErr: capture.NewNamedError(capture.NotAllowedError, "user dismissed the prompt"),
	}
	s, err := NewSession(src, &rectest.Engine{}, WithAudio())
	require.NoError(t, err)

	require.Error(t, s.AcquireStream())

	assert.Equal(t, PermissionDenied, s.Err())
	assert.Equal(t, StatusIdle, s.Status())
	assert.Nil(t, s.PreviewStream())
}

func TestAcquireStreamUnknownNameSurfacedVerbatim(t *testing.T) {
	src := &capturetest.Source{
		UserMediaErr: &capture.NamedError{Name: "SecurityError"},
	}
	s, err := NewSession(src, &rectest.Engine{}, WithAudio())
	require.NoError(t, err)

	require.Error(t, s.AcquireStream())
	assert.Equal(t, ErrorKind("SecurityError"), s.Err())
}

func TestAcquireStreamWithoutConstraints(t *testing.T) {
	s, err := NewSession(&capturetest.Source{}, &rectest.Engine{})
	require.NoError(t, err)

	require.Error(t, s.Start())
	assert.Equal(t, NoConstraints, s.Err())
	assert.Equal(t, StatusIdle, s.Status())
}

func TestAcquireStreamAdoptsCustomStream(t *testing.T) {
	track := capturetest.NewTrack(capture.AudioTrack)
	stream, err := capture.NewMediaStream(track)
	require.NoError(t, err)

	src := &capturetest.Source{}
	s, err := NewSession(src, &rectest.Engine{}, WithCustomStream(stream))
	require.NoError(t, err)

	require.NoError(t, s.AcquireStream())
	assert.Same(t, stream, s.PreviewStream())
	assert.Zero(t, src.UserMediaCalls())
}

func TestScreenCaptureMergesSeparateAudio(t *testing.T) {
	src := &capturetest.Source{}
	s, err := NewSession(src, &rectest.Engine{}, WithScreen(), WithAudio())
	require.NoError(t, err)

	require.NoError(t, s.AcquireStream())

	stream := s.PreviewStream()
	require.NotNil(t, stream)
	assert.Len(t, stream.GetVideoTracks(), 1)
	assert.Len(t, stream.GetAudioTracks(), 1)
	assert.Equal(t, 1, src.DisplayMediaCalls())
	assert.Equal(t, 1, src.UserMediaCalls())
}

func TestScreenCaptureAudioFailureReleasesDisplay(t *testing.T) {
	src := &capturetest.Source{
		UserMediaErr: capture.NewNamedError(capture.NotReadableError, "microphone busy"),
	}
	s, err := NewSession(src, &rectest.Engine{}, WithScreen(), WithAudio())
	require.NoError(t, err)

	require.Error(t, s.AcquireStream())
	assert.Equal(t, MediaInUse, s.Err())

	// the display track handed out before the audio failure must not leak
	tracks := src.Tracks()
	require.Len(t, tracks, 1)
	assert.Equal(t, capture.TrackEnded, tracks[0].ReadyState())
}

func TestScreenCaptureUnsupportedIsFatal(t *testing.T) {
	src := &capturetest.Source{NoDisplay: true}
	_, err := NewSession(src, &rectest.Engine{}, WithScreen())
	require.ErrorIs(t, err, ErrScreenCaptureUnsupported)
}

func TestNilEngineMarksRuntimeUnsupported(t *testing.T) {
	s, err := NewSession(&capturetest.Source{}, nil, WithAudio())
	require.NoError(t, err)

	assert.Equal(t, UnsupportedRuntime, s.Err())
	assert.ErrorIs(t, s.AcquireStream(), ErrUnsupported)
	assert.ErrorIs(t, s.Start(), ErrUnsupported)
	assert.ErrorIs(t, s.Stop(), ErrUnsupported)
}

func TestStartAutoAcquires(t *testing.T) {
	engine := &rectest.Engine{}
	s, src := newAudioSession(t, engine)

	require.NoError(t, s.Start())

	assert.Equal(t, StatusRecording, s.Status())
	assert.Equal(t, 1, src.UserMediaCalls())
	require.NotNil(t, engine.Last())
	assert.Equal(t, rec.StateRecording, engine.Last().State())
}

func TestStartReacquiresEndedStream(t *testing.T) {
	engine := &rectest.Engine{}
	s, src := newAudioSession(t, engine)

	require.NoError(t, s.AcquireStream())
	for _, tr := range src.Tracks() {
		tr.Stop()
	}

	require.NoError(t, s.Start())
	assert.Equal(t, 2, src.UserMediaCalls())
	assert.Equal(t, StatusRecording, s.Status())
}

func TestStartClearsPreviousError(t *testing.T) {
	engine := &rectest.Engine{}
	src := &capturetest.Source{
		UserMediaErr: capture.NewNamedError(capture.NotFoundError, "no mic"),
	}
	s, err := NewSession(src, engine, WithAudio())
	require.NoError(t, err)

	require.Error(t, s.Start())
	assert.Equal(t, NoSpecifiedMediaFound, s.Err())

	src.UserMediaErr = nil
	require.NoError(t, s.Start())
	assert.Equal(t, NoError, s.Err())
	assert.Equal(t, StatusRecording, s.Status())
}

func TestStartInvokesOnStart(t *testing.T) {
	engine := &rectest.Engine{}
	var started int
	s, _ := newAudioSession(t, engine, WithOnStart(func() { started++ }))

	require.NoError(t, s.Start())
	assert.Equal(t, 1, started)
}

func TestPauseResumeAreStateGatedNoOps(t *testing.T) {
	engine := &rectest.Engine{}
	s, _ := newAudioSession(t, engine)

	// without a recorder both are no-ops
	require.NoError(t, s.Pause())
	require.NoError(t, s.Resume())
	assert.Equal(t, StatusIdle, s.Status())

	require.NoError(t, s.Start())
	r := engine.Last()

	// resume while recording is a no-op
	require.NoError(t, s.Resume())
	assert.Equal(t, rec.StateRecording, r.State())

	require.NoError(t, s.Pause())
	assert.Equal(t, rec.StatePaused, r.State())
	// pause and resume are invisible to the status observer
	assert.Equal(t, StatusRecording, s.Status())

	// pause while paused is a no-op
	require.NoError(t, s.Pause())
	assert.Equal(t, rec.StatePaused, r.State())

	require.NoError(t, s.Resume())
	assert.Equal(t, rec.StateRecording, r.State())
	assert.Equal(t, StatusRecording, s.Status())
}

func TestStopWithoutRecorderIsNoOp(t *testing.T) {
	s, _ := newAudioSession(t, &rectest.Engine{})

	require.NoError(t, s.Stop())
	assert.Equal(t, StatusIdle, s.Status())
	assert.Equal(t, NoError, s.Err())
}

func TestStopFinalizesAudioRecording(t *testing.T) {
	engine := &rectest.Engine{}

	var stops int
	var stopURL string
	var stopBlob *blob.Blob
	s, _ := newAudioSession(t, engine, WithOnStop(func(url string, b *blob.Blob) {
		stops++
		stopURL = url
		stopBlob = b
	}))

	require.NoError(t, s.Start())
	r := engine.Last()
	r.EmitChunk(rec.Chunk{Data: []byte("first")})
	r.EmitChunk(rec.Chunk{Data: []byte("second")})

	require.NoError(t, s.Stop())

	assert.Equal(t, StatusStopped, s.Status())
	require.NotEmpty(t, s.MediaBlobURL())

	b := s.Blob()
	require.NotNil(t, b)
	assert.Equal(t, []byte("firstsecond"), b.Data)
	assert.Equal(t, "audio/wav", b.Type)

	assert.Equal(t, 1, stops)
	assert.Equal(t, s.MediaBlobURL(), stopURL)
	assert.Same(t, b, stopBlob)

	resolved, ok := s.Registry().Resolve(s.MediaBlobURL())
	require.True(t, ok)
	assert.Same(t, b, resolved)
}

func TestDeferredStopKeepsLateFlushChunks(t *testing.T) {
	engine := &rectest.Engine{DeferStop: true}
	s, _ := newAudioSession(t, engine)

	require.NoError(t, s.Start())
	r := engine.Last()
	r.EmitChunk(rec.Chunk{Data: []byte("body")})

	require.NoError(t, s.Stop())
	assert.Equal(t, StatusStopping, s.Status())
	assert.Empty(t, s.MediaBlobURL())

	// the recorder's final flush arrives after the stop request but before
	// the stop event
	r.EmitChunk(rec.Chunk{Data: []byte("-tail")})
	r.FireStop()

	assert.Equal(t, StatusStopped, s.Status())
	b := s.Blob()
	require.NotNil(t, b)
	assert.Equal(t, []byte("body-tail"), b.Data)
}

func TestBlobTypePolicy(t *testing.T) {
	t.Run("VideoDefault", func(t *testing.T) {
		engine := &rectest.Engine{}
		src := &capturetest.Source{}
		s, err := NewSession(src, engine, WithVideo())
		require.NoError(t, err)

		require.NoError(t, s.Start())
		engine.Last().EmitChunk(rec.Chunk{Data: []byte("v")})
		require.NoError(t, s.Stop())

		assert.Equal(t, "video/mp4", s.Blob().Type)
	})

	t.Run("ChunkTypeWins", func(t *testing.T) {
		engine := &rectest.Engine{}
		s, _ := newAudioSession(t, engine)

		require.NoError(t, s.Start())
		engine.Last().EmitChunk(rec.Chunk{Data: []byte("a"), Type: "audio/webm"})
		require.NoError(t, s.Stop())

		assert.Equal(t, "audio/webm", s.Blob().Type)
	})

	t.Run("ExplicitOverrideWinsOverChunkType", func(t *testing.T) {
		engine := &rectest.Engine{}
		s, _ := newAudioSession(t, engine, WithBlobType("audio/ogg"))

		require.NoError(t, s.Start())
		engine.Last().EmitChunk(rec.Chunk{Data: []byte("a"), Type: "audio/webm"})
		require.NoError(t, s.Stop())

		assert.Equal(t, "audio/ogg", s.Blob().Type)
	})
}

func TestRepeatedCyclesMintDistinctURLs(t *testing.T) {
	engine := &rectest.Engine{}
	s, _ := newAudioSession(t, engine)

	require.NoError(t, s.Start())
	engine.Last().EmitChunk(rec.Chunk{Data: []byte("one")})
	require.NoError(t, s.Stop())
	first := s.MediaBlobURL()
	require.NotEmpty(t, first)

	require.NoError(t, s.Start())
	engine.Last().EmitChunk(rec.Chunk{Data: []byte("two")})
	require.NoError(t, s.Stop())
	second := s.MediaBlobURL()
	require.NotEmpty(t, second)

	assert.NotEqual(t, first, second)
	assert.Equal(t, []byte("two"), s.Blob().Data)
}

func TestDoubleStartDiscardsFirstCycle(t *testing.T) {
	engine := &rectest.Engine{}
	s, _ := newAudioSession(t, engine)

	require.NoError(t, s.Start())
	first := engine.Last()
	first.EmitChunk(rec.Chunk{Data: []byte("leak")})

	require.NoError(t, s.Start())
	recorders := engine.Recorders()
	require.Len(t, recorders, 2)
	assert.Equal(t, rec.StateInactive, recorders[0].State())

	second := recorders[1]
	// late events from the discarded recorder are dropped
	first.EmitChunk(rec.Chunk{Data: []byte("stale")})

	second.EmitChunk(rec.Chunk{Data: []byte("fresh")})
	require.NoError(t, s.Stop())

	assert.Equal(t, []byte("fresh"), s.Blob().Data)
}

func TestRecorderErrorEvent(t *testing.T) {
	engine := &rectest.Engine{}
	s, _ := newAudioSession(t, engine)

	require.NoError(t, s.Start())
	engine.Last().EmitChunk(rec.Chunk{Data: []byte("partial")})
	engine.Last().Fail(errors.New("encoder crashed"))

	assert.Equal(t, StatusIdle, s.Status())
	assert.Equal(t, RecorderError, s.Err())
	assert.Nil(t, s.Blob())

	// no active recorder left, stop is a no-op
	require.NoError(t, s.Stop())
	assert.Equal(t, StatusIdle, s.Status())
}

func TestNewRecorderFailure(t *testing.T) {
	engine := &rectest.Engine{NewRecorderErr: errors.New("no encoder available")}
	s, _ := newAudioSession(t, engine)

	require.Error(t, s.Start())
	assert.Equal(t, RecorderError, s.Err())
	assert.Equal(t, StatusIdle, s.Status())
}

func TestStopReleasesOwnedStreamByDefault(t *testing.T) {
	engine := &rectest.Engine{}
	s, src := newAudioSession(t, engine)

	require.NoError(t, s.Start())
	require.NoError(t, s.Stop())

	for _, tr := range src.Tracks() {
		assert.Equal(t, capture.TrackEnded, tr.ReadyState())
	}
}

func TestStopKeepsStreamWhenConfigured(t *testing.T) {
	engine := &rectest.Engine{}
	s, src := newAudioSession(t, engine, WithStopStreamOnStop(false))

	require.NoError(t, s.Start())
	require.NoError(t, s.Stop())

	for _, tr := range src.Tracks() {
		assert.Equal(t, capture.TrackLive, tr.ReadyState())
	}
}

func TestStopNeverReleasesCustomStreamImplicitly(t *testing.T) {
	track := capturetest.NewTrack(capture.AudioTrack)
	stream, err := capture.NewMediaStream(track)
	require.NoError(t, err)

	engine := &rectest.Engine{}
	s, err := NewSession(&capturetest.Source{}, engine, WithCustomStream(stream))
	require.NoError(t, err)

	require.NoError(t, s.Start())
	require.NoError(t, s.Stop())

	assert.Equal(t, capture.TrackLive, track.ReadyState())
}

func TestStopReleasesCustomStreamWhenAsked(t *testing.T) {
	track := capturetest.NewTrack(capture.AudioTrack)
	stream, err := capture.NewMediaStream(track)
	require.NoError(t, err)

	engine := &rectest.Engine{}
	s, err := NewSession(&capturetest.Source{}, engine,
		WithCustomStream(stream), WithStopStreamOnStop(true))
	require.NoError(t, err)

	require.NoError(t, s.Start())
	require.NoError(t, s.Stop())

	assert.Equal(t, capture.TrackEnded, track.ReadyState())
}

func TestClearBlobURL(t *testing.T) {
	engine := &rectest.Engine{}
	s, _ := newAudioSession(t, engine)

	require.NoError(t, s.Start())
	engine.Last().EmitChunk(rec.Chunk{Data: []byte("x")})
	require.NoError(t, s.Stop())

	url := s.MediaBlobURL()
	require.NotEmpty(t, url)

	s.ClearBlobURL()
	assert.Empty(t, s.MediaBlobURL())
	assert.Nil(t, s.Blob())
	assert.Equal(t, StatusStopped, s.Status())

	_, ok := s.Registry().Resolve(url)
	assert.False(t, ok)
}

func TestMuteUnmuteRestoresPerTrackState(t *testing.T) {
	enabled := capturetest.NewTrack(capture.AudioTrack)
	disabled := capturetest.NewTrack(capture.AudioTrack)
	disabled.SetEnabled(false)
	video := capturetest.NewTrack(capture.VideoTrack)

	stream, err := capture.NewMediaStream(enabled, disabled, video)
	require.NoError(t, err)

	s, err := NewSession(&capturetest.Source{}, &rectest.Engine{}, WithCustomStream(stream))
	require.NoError(t, err)
	require.NoError(t, s.AcquireStream())

	s.MuteAudio()
	assert.True(t, s.AudioMuted())
	assert.False(t, enabled.Enabled())
	assert.False(t, disabled.Enabled())
	assert.True(t, video.Enabled())

	s.UnmuteAudio()
	assert.False(t, s.AudioMuted())
	assert.True(t, enabled.Enabled())
	assert.False(t, disabled.Enabled())
}

func TestStopMediaStreamEndsTracksWithoutStatusChange(t *testing.T) {
	engine := &rectest.Engine{}
	s, src := newAudioSession(t, engine)

	require.NoError(t, s.AcquireStream())
	s.StopMediaStream()

	assert.Equal(t, StatusIdle, s.Status())
	for _, tr := range src.Tracks() {
		assert.Equal(t, capture.TrackEnded, tr.ReadyState())
	}
}

func TestUnsupportedConstraintKeysAreWarningsOnly(t *testing.T) {
	src := &capturetest.Source{Supported: []string{"sampleRate"}}
	factory := &recordingLoggerFactory{}

	s, err := NewSession(src, &rectest.Engine{},
		WithAudioConstraints(func(p *prop.Media) {
			p.SampleRate = 48000
			p.ChannelCount = 2
		}),
		WithLoggerFactory(factory))
	require.NoError(t, err)

	require.NoError(t, s.AcquireStream())
	assert.Equal(t, NoError, s.Err())

	require.Len(t, factory.warnings, 1)
	assert.Contains(t, factory.warnings[0], "channelCount")
}

func TestUnsupportedMIMETypeIsWarningOnly(t *testing.T) {
	engine := &rectest.Engine{SupportedTypes: []string{"audio/webm"}}
	factory := &recordingLoggerFactory{}

	s, err := NewSession(&capturetest.Source{}, engine,
		WithAudio(),
		WithRecorderOptions(rec.Options{MIMEType: "audio/flac"}),
		WithLoggerFactory(factory))
	require.NoError(t, err)

	require.NoError(t, s.Start())
	assert.Equal(t, StatusRecording, s.Status())
	require.Len(t, factory.warnings, 1)
	assert.Contains(t, factory.warnings[0], "audio/flac")
}
