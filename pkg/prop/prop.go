// Package prop describes the properties a caller may request from a media
// track, in the spirit of https://w3c.github.io/mediacapture-main/#dom-mediatracksettings
package prop

import (
	"reflect"
	"time"
)

// Media stores the requested properties for an audio or a video track.
type Media struct {
	DeviceID string `key:"deviceId"`
	Video
	Audio
}

// Video represents a video track's properties.
type Video struct {
	Width     int     `key:"width"`
	Height    int     `key:"height"`
	FrameRate float32 `key:"frameRate"`
}

// Audio represents an audio track's properties.
type Audio struct {
	ChannelCount int           `key:"channelCount"`
	Latency      time.Duration `key:"latency"`
	SampleRate   int           `key:"sampleRate"`
	SampleSize   int           `key:"sampleSize"`
}

// Merge merges all the field values from o to p, except zero values.
func (p *Media) Merge(o Media) {
	rp := reflect.ValueOf(p).Elem()
	ro := reflect.ValueOf(o)

	// merge b fields to a recursively
	var merge func(a, b reflect.Value)
	merge = func(a, b reflect.Value) {
		numFields := a.NumField()
		for i := 0; i < numFields; i++ {
			fieldA := a.Field(i)
			fieldB := b.Field(i)

			// if a is a struct, b is also a struct. Then,
			// we recursively merge them
			if fieldA.Kind() == reflect.Struct {
				merge(fieldA, fieldB)
				continue
			}

			if fieldB.IsZero() {
				continue
			}

			fieldA.Set(fieldB)
		}
	}

	merge(rp, ro)
}

// ConstraintKeys returns the wire names of every property that has been set
// to a non-zero value. The names follow the W3C supported-constraints
// vocabulary so they can be checked against what a capture source advertises.
func (p *Media) ConstraintKeys() []string {
	var keys []string

	var walk func(v reflect.Value)
	walk = func(v reflect.Value) {
		t := v.Type()
		for i := 0; i < v.NumField(); i++ {
			field := v.Field(i)
			if field.Kind() == reflect.Struct {
				walk(field)
				continue
			}

			if field.IsZero() {
				continue
			}

			keys = append(keys, t.Field(i).Tag.Get("key"))
		}
	}

	walk(reflect.ValueOf(*p))
	return keys
}
