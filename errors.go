package mediarecorder

import (
	"errors"

	"github.com/pion/mediarecorder/pkg/capture"
)

// ErrorKind is the machine-readable error key a session exposes alongside
// its status. The empty value means no error.
type ErrorKind string

const (
	NoError                 ErrorKind = ""
	MediaAborted            ErrorKind = "media_aborted"
	PermissionDenied        ErrorKind = "permission_denied"
	NoSpecifiedMediaFound   ErrorKind = "no_specified_media_found"
	MediaInUse              ErrorKind = "media_in_use"
	InvalidMediaConstraints ErrorKind = "invalid_media_constraints"
	NoConstraints           ErrorKind = "no_constraints"
	RecorderError           ErrorKind = "recorder_error"
	UnsupportedRuntime      ErrorKind = "unsupported_runtime"
)

// ErrUnsupported is returned by every session action when the runtime has
// no recording capability at all.
var ErrUnsupported = errors.New("mediarecorder: recording is not supported in this runtime")

// ErrScreenCaptureUnsupported is the one hard fault: screen capture was
// requested from a source that cannot provide it.
var ErrScreenCaptureUnsupported = errors.New("mediarecorder: screen capture is not supported by this source")

// acquisitionErrorKind maps a stream acquisition failure to its ErrorKind.
// Unrecognized names are surfaced verbatim so the consumer still sees what
// the platform reported.
func acquisitionErrorKind(err error) ErrorKind {
	var named *capture.NamedError
	if !errors.As(err, &named) {
		return ErrorKind(err.Error())
	}

	switch named.Name {
	case capture.AbortError:
		return MediaAborted
	case capture.NotAllowedError:
		return PermissionDenied
	case capture.NotFoundError:
		return NoSpecifiedMediaFound
	case capture.NotReadableError:
		return MediaInUse
	case capture.OverconstrainedError:
		return InvalidMediaConstraints
	case capture.TypeError:
		return NoConstraints
	default:
		return ErrorKind(named.Name)
	}
}
