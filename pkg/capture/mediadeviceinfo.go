package capture

// MediaDeviceType enumerates the kinds of input devices a Source can expose.
type MediaDeviceType int

const (
	// VideoInput is a camera or another video capture device.
	VideoInput MediaDeviceType = iota + 1
	// AudioInput is a microphone or another audio capture device.
	AudioInput
	// Screen is a capturable display surface.
	Screen
)

// MediaDeviceInfo describes a single media input device.
// Reference: https://w3c.github.io/mediacapture-main/#dom-mediadeviceinfo
type MediaDeviceInfo struct {
	DeviceID string
	Kind     MediaDeviceType
	Label    string
}
