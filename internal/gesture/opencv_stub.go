//go:build !gocv

package gesture

import (
	"context"
	"fmt"
)

// CameraConfig selects the capture device.
type CameraConfig struct {
	Device int
}

// DetectorConfig configures the cascade detector.
type DetectorConfig struct {
	CascadePath string
	MinSize     int
}

// NewCamera returns the capture device. This build has no OpenCV support, so
// the camera always reports ErrUnavailable.
func NewCamera(cfg CameraConfig) Camera {
	return unsupported{}
}

// NewDetector returns the hand detector. This build has no OpenCV support.
func NewDetector(cfg DetectorConfig) Detector {
	return unsupported{}
}

type unsupported struct{}

func (unsupported) StartVideo(context.Context) (Video, error) {
	return nil, fmt.Errorf("%w: built without OpenCV (rebuild with -tags gocv)", ErrUnavailable)
}

func (unsupported) Load(context.Context) (Model, error) {
	return nil, fmt.Errorf("%w: built without OpenCV (rebuild with -tags gocv)", ErrUnavailable)
}
