//go:build gocv

package gesture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"
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

// NewCamera returns an OpenCV capture device.
func NewCamera(cfg CameraConfig) Camera {
	return cvCamera{device: cfg.Device}
}

// NewDetector returns a Haar cascade hand detector.
func NewDetector(cfg DetectorConfig) Detector {
	return cascadeDetector{path: cfg.CascadePath, minSize: cfg.MinSize}
}

type cvFrame struct {
	mat gocv.Mat
}

func (f *cvFrame) Size() (int, int) { return f.mat.Cols(), f.mat.Rows() }

func (f *cvFrame) Close() error { return f.mat.Close() }

type cvCamera struct {
	device int
}

func (c cvCamera) StartVideo(context.Context) (Video, error) {
	vc, err := gocv.OpenVideoCapture(c.device)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if !vc.IsOpened() {
		_ = vc.Close()
		return nil, fmt.Errorf("%w: device %d did not open", ErrUnavailable, c.device)
	}
	return &cvVideo{capture: vc}, nil
}

type cvVideo struct {
	mu      sync.Mutex
	capture *gocv.VideoCapture
}

func (v *cvVideo) Read(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.capture == nil {
		return nil, errors.New("video stopped")
	}
	mat := gocv.NewMat()
	if ok := v.capture.Read(&mat); !ok || mat.Empty() {
		_ = mat.Close()
		return nil, errors.New("failed to read frame")
	}
	return &cvFrame{mat: mat}, nil
}

func (v *cvVideo) Stop() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.capture == nil {
		return nil
	}
	err := v.capture.Close()
	v.capture = nil
	return err
}

type cascadeDetector struct {
	path    string
	minSize int
}

func (d cascadeDetector) Load(context.Context) (Model, error) {
	classifier := gocv.NewCascadeClassifier()
	if !classifier.Load(d.path) {
		_ = classifier.Close()
		return nil, fmt.Errorf("%w: failed to load cascade %s", ErrUnavailable, d.path)
	}
	return &cascadeModel{classifier: classifier, minSize: d.minSize}, nil
}

// cascadeModel serializes access; the classifier is not safe for concurrent use.
type cascadeModel struct {
	mu         sync.Mutex
	classifier gocv.CascadeClassifier
	minSize    int
}

func (m *cascadeModel) Detect(ctx context.Context, frame Frame) ([]Detection, error) {
	f, ok := frame.(*cvFrame)
	if !ok {
		return nil, fmt.Errorf("unexpected frame type %T", frame)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	size := image.Pt(m.minSize, m.minSize)
	// minNeighbors 0 returns the ungrouped windows used for scoring.
	raw := m.classifier.DetectMultiScaleWithParams(f.mat, 1.1, 0, 0, size, image.Point{})
	rects := m.classifier.DetectMultiScaleWithParams(f.mat, 1.1, 3, 0, size, image.Point{})
	detections := make([]Detection, 0, len(rects))
	for _, r := range rects {
		detections = append(detections, Detection{
			Box: BBox{
				X:      float64(r.Min.X),
				Y:      float64(r.Min.Y),
				Width:  float64(r.Dx()),
				Height: float64(r.Dy()),
			},
			Confidence: neighbourConfidence(r, raw),
			Label:      "hand",
		})
	}
	return detections, nil
}

func (m *cascadeModel) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.classifier.Close()
}
