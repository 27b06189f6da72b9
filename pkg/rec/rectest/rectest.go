// Package rectest provides a scripted recorder engine for testing.
package rectest

import (
	"errors"
	"fmt"
	"sync"

	"github.com/pion/mediarecorder/pkg/capture"
	"github.com/pion/mediarecorder/pkg/rec"
)

// Engine is a rec.Engine whose recorders are driven by the test. The zero
// value supports every MIME type and fires stop events synchronously.
type Engine struct {
	// NewRecorderErr, when set, makes every NewRecorder call fail with it.
	NewRecorderErr error
	// SupportedTypes restricts IsTypeSupported; nil means everything is
	// supported.
	SupportedTypes []string
	// DeferStop holds back the stop event when a recorder is stopped; the
	// test releases it later with Recorder.FireStop. This mimics the
	// asynchronous onstop a real recorder delivers.
	DeferStop bool

	mu        sync.Mutex
	recorders []*Recorder
}

func (e *Engine) NewRecorder(stream capture.MediaStream, opts rec.Options, h rec.Handlers) (rec.Recorder, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.NewRecorderErr != nil {
		return nil, e.NewRecorderErr
	}

	r := &Recorder{
		stream:    stream,
		opts:      opts,
		handlers:  h,
		state:     rec.StateInactive,
		deferStop: e.DeferStop,
	}
	e.recorders = append(e.recorders, r)
	return r, nil
}

func (e *Engine) IsTypeSupported(mimeType string) bool {
	if e.SupportedTypes == nil {
		return true
	}
	for _, t := range e.SupportedTypes {
		if t == mimeType {
			return true
		}
	}
	return false
}

// Recorders returns every recorder the engine has constructed, in order.
func (e *Engine) Recorders() []*Recorder {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*Recorder, len(e.recorders))
	copy(out, e.recorders)
	return out
}

// Last returns the most recently constructed recorder, or nil.
func (e *Engine) Last() *Recorder {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.recorders) == 0 {
		return nil
	}
	return e.recorders[len(e.recorders)-1]
}

// Recorder is a scripted rec.Recorder. Chunks are injected by the test via
// EmitChunk; a stopped recorder flushes nothing on its own.
type Recorder struct {
	stream   capture.MediaStream
	opts     rec.Options
	handlers rec.Handlers

	mu          sync.Mutex
	state       rec.State
	deferStop   bool
	stopPending bool
}

func (r *Recorder) Start() error {
	r.mu.Lock()
	if r.state != rec.StateInactive {
		r.mu.Unlock()
		return fmt.Errorf("invalid state: recorder is %s", r.state)
	}
	r.state = rec.StateRecording
	onStart := r.handlers.OnStart
	r.mu.Unlock()

	if onStart != nil {
		onStart()
	}
	return nil
}

func (r *Recorder) Stop() error {
	r.mu.Lock()
	if r.state == rec.StateInactive {
		r.mu.Unlock()
		return errors.New("invalid state: recorder is inactive")
	}
	r.state = rec.StateInactive
	deferred := r.deferStop
	if deferred {
		r.stopPending = true
	}
	onStop := r.handlers.OnStop
	r.mu.Unlock()

	if !deferred && onStop != nil {
		onStop()
	}
	return nil
}

func (r *Recorder) Pause() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != rec.StateRecording {
		return fmt.Errorf("invalid state: recorder is %s", r.state)
	}
	r.state = rec.StatePaused
	return nil
}

func (r *Recorder) Resume() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != rec.StatePaused {
		return fmt.Errorf("invalid state: recorder is %s", r.state)
	}
	r.state = rec.StateRecording
	return nil
}

func (r *Recorder) State() rec.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Options returns the options the recorder was constructed with.
func (r *Recorder) Options() rec.Options {
	return r.opts
}

// Stream returns the stream the recorder was bound to.
func (r *Recorder) Stream() capture.MediaStream {
	return r.stream
}

// EmitChunk delivers a data-available event. Real recorders only emit
// between start and stop, but the flush that accompanies stop arrives after
// the recorder has gone inactive, so no state check is made here.
func (r *Recorder) EmitChunk(c rec.Chunk) {
	r.mu.Lock()
	onData := r.handlers.OnDataAvailable
	r.mu.Unlock()

	if onData != nil {
		onData(c)
	}
}

// FireStop delivers a deferred stop event.
func (r *Recorder) FireStop() {
	r.mu.Lock()
	if !r.stopPending {
		r.mu.Unlock()
		return
	}
	r.stopPending = false
	onStop := r.handlers.OnStop
	r.mu.Unlock()

	if onStop != nil {
		onStop()
	}
}

// Fail delivers an error event and moves the recorder to inactive.
func (r *Recorder) Fail(err error) {
	r.mu.Lock()
	r.state = rec.StateInactive
	onError := r.handlers.OnError
	r.mu.Unlock()

	if onError != nil {
		onError(err)
	}
}
