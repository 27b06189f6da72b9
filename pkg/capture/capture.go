// Package capture defines the stream acquisition capability consumed by the
// recording session: a Source hands out MediaStreams for microphones,
// cameras and display surfaces, modelled after
// https://developer.mozilla.org/en-US/docs/Web/API/MediaDevices
package capture

import "github.com/pion/mediarecorder/pkg/prop"

// MediaStreamConstraints describes which kinds of media are requested and,
// optionally, the properties each track should have. A nil Audio/Video
// builder means that kind is not requested.
type MediaStreamConstraints struct {
	Audio func(*prop.Media)
	Video func(*prop.Media)

	// Screen requests a display surface instead of a camera. Audio, when
	// also set, is acquired separately and merged into the display stream
	// by the caller.
	Screen bool
}

// Source provides access to connected media input devices like cameras and
// microphones, as well as screen sharing.
type Source interface {
	// GetUserMedia prompts the user for permission to use a media input and
	// produces a MediaStream with tracks of the requested kinds.
	// Reference: https://developer.mozilla.org/en-US/docs/Web/API/MediaDevices/getUserMedia
	GetUserMedia(constraints MediaStreamConstraints) (MediaStream, error)

	// GetDisplayMedia prompts the user to select and grant permission to
	// capture the contents of a display or portion thereof.
	// Reference: https://developer.mozilla.org/en-US/docs/Web/API/MediaDevices/getDisplayMedia
	GetDisplayMedia(constraints MediaStreamConstraints) (MediaStream, error)

	// SupportedConstraints lists the constraint keys this source understands.
	// Keys outside this set are ignored by the source, not rejected.
	SupportedConstraints() []string

	// EnumerateDevices lists the available media input devices.
	EnumerateDevices() []MediaDeviceInfo
}

// DisplaySource is implemented by sources that can actually capture a
// display surface. A Source whose GetDisplayMedia always fails should not
// implement it.
type DisplaySource interface {
	Source
	DisplayMediaSupported() bool
}
