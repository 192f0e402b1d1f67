package gesture

import (
	"context"
	"errors"
)

// ErrUnavailable reports that the camera or detection model cannot be used.
var ErrUnavailable = errors.New("camera unavailable")

// Frame is one captured video frame. Frames are owned by whoever read them
// and must be closed.
type Frame interface {
	Size() (width, height int)
	Close() error
}

// Video is a started capture stream.
type Video interface {
	Read(ctx context.Context) (Frame, error)
	// Stop releases the device. It is safe to call more than once.
	Stop() error
}

// Camera starts video capture.
type Camera interface {
	StartVideo(ctx context.Context) (Video, error)
}

// Model runs detection over frames.
type Model interface {
	Detect(ctx context.Context, frame Frame) ([]Detection, error)
	Close() error
}

// Detector loads a detection model.
type Detector interface {
	Load(ctx context.Context) (Model, error)
}
