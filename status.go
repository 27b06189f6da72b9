package mediarecorder

import "fmt"

// Status represents a recording session's externally visible state. Pausing
// and resuming happen inside the recorder and are deliberately invisible
// here; only the error field tells success and failure apart.
type Status string

const (
	// StatusIdle means no acquisition or recording is in flight. Failed
	// acquisitions land back here with the session's error field set.
	StatusIdle Status = "idle"
	// StatusAcquiringMedia means a stream acquisition is in flight.
	StatusAcquiringMedia Status = "acquiring_media"
	// StatusRecording means a recorder is bound to a live stream and
	// consuming it.
	StatusRecording Status = "recording"
	// StatusStopping means stop has been requested and the session is
	// waiting for the recorder's asynchronous stop event.
	StatusStopping Status = "stopping"
	// StatusStopped means the last recording has been finalized into a
	// blob. A stopped session can start a fresh recording cycle.
	StatusStopped Status = "stopped"
)

// Update updates current status, s, to next. If f fails to execute,
// s will stay unchanged. Otherwise, s will be updated to next.
func (s *Status) Update(next Status, f func() error) error {
	type checkFunc func() error
	m := map[Status]checkFunc{
		StatusIdle:           s.toIdle,
		StatusAcquiringMedia: s.toAcquiringMedia,
		StatusRecording:      s.toRecording,
		StatusStopping:       s.toStopping,
		StatusStopped:        s.toStopped,
	}

	err := m[next]()
	if err != nil {
		return err
	}

	err = f()
	if err == nil {
		*s = next
	}
	return err
}

func (s *Status) toIdle() error {
	return nil
}

func (s *Status) toAcquiringMedia() error {
	if *s != StatusIdle && *s != StatusStopped {
		return fmt.Errorf("invalid status: cannot acquire media while %s", *s)
	}
	return nil
}

func (s *Status) toRecording() error {
	if *s != StatusIdle && *s != StatusStopped {
		return fmt.Errorf("invalid status: cannot start recording while %s", *s)
	}
	return nil
}

func (s *Status) toStopping() error {
	if *s != StatusRecording {
		return fmt.Errorf("invalid status: cannot stop while %s", *s)
	}
	return nil
}

func (s *Status) toStopped() error {
	if *s != StatusStopping {
		return fmt.Errorf("invalid status: cannot finalize while %s", *s)
	}
	return nil
}
