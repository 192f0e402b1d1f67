package gesture

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultFPS             = 30
	defaultMaxInFlight     = 2
	defaultMaxReadFailures = 30
)

// PipelineConfig tunes the capture loop.
type PipelineConfig struct {
	FPS             int
	MaxInFlight     int
	MaxReadFailures int
}

func (c PipelineConfig) withDefaults() PipelineConfig {
	if c.FPS <= 0 {
		c.FPS = defaultFPS
	}
	if c.MaxInFlight <= 0 {
		c.MaxInFlight = defaultMaxInFlight
	}
	if c.MaxReadFailures <= 0 {
		c.MaxReadFailures = defaultMaxReadFailures
	}
	return c
}

// Reading is the detection result for one frame. A Reading with Err set ends
// the stream.
type Reading struct {
	Seq         uint64
	Detections  []Detection
	FrameWidth  int
	FrameHeight int
	Err         error
}

// Pipeline owns the camera and the model for one capture session.
type Pipeline struct {
	detector Detector
	camera   Camera
	cfg      PipelineConfig
	logger   *zap.Logger

	mu       sync.Mutex
	running  bool
	model    Model
	video    Video
	cancel   context.CancelFunc
	done     chan struct{}
	readings chan Reading

	latest atomic.Uint64

	deliverMu sync.Mutex
	delivered uint64
}

// NewPipeline wires a detector and a camera.
func NewPipeline(detector Detector, camera Camera, cfg PipelineConfig, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		detector: detector,
		camera:   camera,
		cfg:      cfg.withDefaults(),
		logger:   logger,
	}
}

// Start loads the model, opens the camera and begins capturing. Anything
// acquired before a failure is released before Start returns.
func (p *Pipeline) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return errors.New("capture already running")
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("capture start cancelled: %w", err)
	}
	model, err := p.detector.Load(ctx)
	if err != nil {
		return unavailable("failed to load model", err)
	}
	if err := ctx.Err(); err != nil {
		if cerr := model.Close(); cerr != nil {
			p.logger.Warn("failed to close model", zap.Error(cerr))
		}
		return fmt.Errorf("capture start cancelled: %w", err)
	}
	video, err := p.camera.StartVideo(ctx)
	if err != nil {
		if cerr := model.Close(); cerr != nil {
			p.logger.Warn("failed to close model", zap.Error(cerr))
		}
		return unavailable("failed to start video", err)
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	p.model = model
	p.video = video
	p.cancel = cancel
	p.done = make(chan struct{})
	p.readings = make(chan Reading, 1)
	p.latest.Store(0)
	p.deliverMu.Lock()
	p.delivered = 0
	p.deliverMu.Unlock()
	p.running = true

	go p.run(runCtx, model, video, p.readings, p.done)
	p.logger.Info("capture started", zap.Int("fps", p.cfg.FPS), zap.Int("max_in_flight", p.cfg.MaxInFlight))
	return nil
}

// Readings returns the stream of the current capture session. It is closed
// when the capture loop exits.
func (p *Pipeline) Readings() <-chan Reading {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.readings
}

// Running reports whether a capture session holds the camera.
func (p *Pipeline) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Stop cancels the capture loop, waits for in-flight detections and releases
// the camera and the model. Stopping a stopped pipeline is a no-op.
func (p *Pipeline) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return nil
	}
	p.running = false
	p.cancel()
	<-p.done

	var errs []error
	if err := p.video.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("failed to stop video: %w", err))
	}
	if err := p.model.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close model: %w", err))
	}
	p.video = nil
	p.model = nil
	p.logger.Info("capture stopped")
	return errors.Join(errs...)
}

func (p *Pipeline) run(ctx context.Context, model Model, video Video, out chan Reading, done chan struct{}) {
	defer close(done)
	defer close(out)

	g := new(errgroup.Group)
	g.SetLimit(p.cfg.MaxInFlight)
	defer func() {
		_ = g.Wait()
	}()

	ticker := time.NewTicker(time.Second / time.Duration(p.cfg.FPS))
	defer ticker.Stop()

	var seq uint64
	failures := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		frame, err := video.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			failures++
			p.logger.Debug("frame read failed", zap.Int("failures", failures), zap.Error(err))
			if failures >= p.cfg.MaxReadFailures {
				p.deliver(out, Reading{Err: fmt.Errorf("failed to read video: %w", err)})
				return
			}
			continue
		}
		failures = 0

		seq++
		frameSeq := seq
		if !g.TryGo(func() error {
			p.detect(ctx, model, frame, frameSeq, out)
			return nil
		}) {
			// Detection is saturated; drop the frame instead of queueing it.
			if cerr := frame.Close(); cerr != nil {
				p.logger.Debug("failed to close dropped frame", zap.Error(cerr))
			}
		}
	}
}

func (p *Pipeline) detect(ctx context.Context, model Model, frame Frame, seq uint64, out chan Reading) {
	defer func() {
		if cerr := frame.Close(); cerr != nil {
			p.logger.Debug("failed to close frame", zap.Error(cerr))
		}
	}()
	storeMax(&p.latest, seq)

	detections, err := model.Detect(ctx, frame)
	if err != nil {
		if ctx.Err() == nil {
			p.logger.Debug("detection failed", zap.Uint64("seq", seq), zap.Error(err))
		}
		return
	}
	if seq < p.latest.Load() {
		p.logger.Debug("stale detection dropped", zap.Uint64("seq", seq))
		return
	}
	width, height := frame.Size()
	p.deliver(out, Reading{
		Seq:         seq,
		Detections:  detections,
		FrameWidth:  width,
		FrameHeight: height,
	})
}

// deliver keeps only the newest reading when the consumer lags behind. A
// reading older than one already delivered is dropped.
func (p *Pipeline) deliver(out chan Reading, r Reading) {
	p.deliverMu.Lock()
	defer p.deliverMu.Unlock()
	if r.Err == nil {
		if r.Seq <= p.delivered {
			p.logger.Debug("stale reading dropped", zap.Uint64("seq", r.Seq), zap.Uint64("delivered", p.delivered))
			return
		}
		p.delivered = r.Seq
	}
	for {
		select {
		case out <- r:
			return
		default:
		}
		select {
		case <-out:
		default:
		}
	}
}

func storeMax(v *atomic.Uint64, n uint64) {
	for {
		cur := v.Load()
		if n <= cur || v.CompareAndSwap(cur, n) {
			return
		}
	}
}

func unavailable(msg string, err error) error {
	if errors.Is(err, ErrUnavailable) {
		return fmt.Errorf("%s: %w", msg, err)
	}
	return fmt.Errorf("%s: %w: %w", msg, ErrUnavailable, err)
}
