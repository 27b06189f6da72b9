package permissions

import (
	"errors"

	"github.com/pion/logging"

	internallog "github.com/pion/mediarecorder/internal/logging"
	"github.com/pion/mediarecorder/pkg/capture"
	"github.com/pion/mediarecorder/pkg/prop"
)

const storeKey = "mediarecorder.permissionState"

// Primer raises the platform permission prompt ahead of a real recording by
// requesting combined audio+video access and immediately releasing whatever
// was granted. The resulting coarse state is persisted in the injected Store
// so later calls can answer even when the platform query fails.
type Primer struct {
	source capture.Source
	query  Query
	store  Store
	log    logging.LeveledLogger
}

// NewPrimer builds a Primer. query may be nil when the platform has no
// permission query capability; Prime then relies on the persisted state.
func NewPrimer(source capture.Source, query Query, store Store) *Primer {
	return &Primer{
		source: source,
		query:  query,
		store:  store,
		log:    internallog.NewLogger("permissions"),
	}
}

// Prime triggers the permission prompt, releases any granted tracks, and
// returns the combined microphone+camera state. The state is persisted; when
// the platform query fails the previously persisted value is returned,
// defaulting to Prompt if none exists.
func (p *Primer) Prime() State {
	constraints := capture.MediaStreamConstraints{
		Audio: func(*prop.Media) {},
		Video: func(*prop.Media) {},
	}

	stream, err := p.source.GetUserMedia(constraints)
	if err == nil {
		for _, t := range stream.GetTracks() {
			t.Stop()
		}
	} else {
		p.log.Warnf("priming acquisition failed: %v", err)
	}

	state, err := p.queryCombined()
	if err != nil {
		p.log.Warnf("permission query failed, using persisted state: %v", err)
		return p.persisted()
	}

	if err := p.store.Put(storeKey, string(state)); err != nil {
		p.log.Warnf("failed to persist permission state: %v", err)
	}
	return state
}

// queryCombined collapses the independent microphone and camera states into
// one: denied wins over everything, granted requires both.
func (p *Primer) queryCombined() (State, error) {
	if p.query == nil {
		return "", errors.New("permissions: no query capability")
	}

	mic, err := p.query.QueryPermissionState(Microphone)
	if err != nil {
		return "", err
	}
	cam, err := p.query.QueryPermissionState(Camera)
	if err != nil {
		return "", err
	}

	switch {
	case mic == Denied || cam == Denied:
		return Denied, nil
	case mic == Granted && cam == Granted:
		return Granted, nil
	default:
		return Prompt, nil
	}
}

func (p *Primer) persisted() State {
	value, err := p.store.Get(storeKey)
	if err != nil {
		return Prompt
	}
	return State(value)
}
