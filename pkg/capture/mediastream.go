package capture

import "sync"

// MediaStream is a collection of live tracks.
// Reference: https://w3c.github.io/mediacapture-main/#dom-mediastream
type MediaStream interface {
	// GetAudioTracks implements https://w3c.github.io/mediacapture-main/#dom-mediastream-getaudiotracks
	GetAudioTracks() []Track
	// GetVideoTracks implements https://w3c.github.io/mediacapture-main/#dom-mediastream-getvideotracks
	GetVideoTracks() []Track
	// GetTracks implements https://w3c.github.io/mediacapture-main/#dom-mediastream-gettracks
	GetTracks() []Track
	// AddTrack implements https://w3c.github.io/mediacapture-main/#dom-mediastream-addtrack
	AddTrack(t Track)
	// RemoveTrack implements https://w3c.github.io/mediacapture-main/#dom-mediastream-removetrack
	RemoveTrack(t Track)
}

type mediaStream struct {
	tracks map[string]Track
	l      sync.RWMutex
}

const trackKindAny TrackKind = ""

// NewMediaStream creates a MediaStream from the given tracks. Tracks with
// duplicate IDs are only added once.
func NewMediaStream(tracks ...Track) (MediaStream, error) {
	m := mediaStream{tracks: make(map[string]Track)}

	for _, track := range tracks {
		id := track.ID()
		if _, ok := m.tracks[id]; !ok {
			m.tracks[id] = track
		}
	}

	return &m, nil
}

func (m *mediaStream) GetAudioTracks() []Track {
	return m.queryTracks(AudioTrack)
}

func (m *mediaStream) GetVideoTracks() []Track {
	return m.queryTracks(VideoTrack)
}

func (m *mediaStream) GetTracks() []Track {
	return m.queryTracks(trackKindAny)
}

// queryTracks returns all tracks that are the same kind as t.
// If t is the empty kind, queryTracks will return all the tracks.
func (m *mediaStream) queryTracks(t TrackKind) []Track {
	m.l.RLock()
	defer m.l.RUnlock()

	result := make([]Track, 0)
	for _, track := range m.tracks {
		if track.Kind() == t || t == trackKindAny {
			result = append(result, track)
		}
	}

	return result
}

func (m *mediaStream) AddTrack(t Track) {
	m.l.Lock()
	defer m.l.Unlock()

	id := t.ID()
	if _, ok := m.tracks[id]; ok {
		return
	}

	m.tracks[id] = t
}

func (m *mediaStream) RemoveTrack(t Track) {
	m.l.Lock()
	defer m.l.Unlock()

	delete(m.tracks, t.ID())
}
