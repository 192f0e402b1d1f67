// Package tui provides the Bubble Tea quiz interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/verte-zerg/quizgest/internal/clock"
	"github.com/verte-zerg/quizgest/internal/gesture"
	"github.com/verte-zerg/quizgest/internal/model"
	"github.com/verte-zerg/quizgest/internal/quiz"
)

const confettiInterval = 150 * time.Millisecond

// Capture is the camera side of gesture mode. The context passed to Start
// bounds startup only; Stop ends a running capture.
type Capture interface {
	Start(ctx context.Context) error
	Stop() error
	Readings() <-chan gesture.Reading
}

// Options configures a quiz model.
type Options struct {
	Config    model.Config
	Questions []quiz.Question
	// Capture is required in gesture mode.
	Capture Capture
	Logger  *zap.Logger
	// TickInterval is the countdown step, one second unless overridden.
	TickInterval time.Duration
}

type cameraState int

const (
	cameraOff cameraState = iota
	cameraLoading
	cameraOn
	cameraFailed
)

type cameraStartedMsg struct {
	gen      int
	err      error
	readings <-chan gesture.Reading
}

type readingMsg struct {
	gen     int
	reading gesture.Reading
	ok      bool
}

// Model implements the Bubble Tea quiz UI.
type Model struct {
	config    model.Config
	session   *quiz.Session
	manual    *quiz.ManualInput
	gestures  *gesture.Input
	capture   Capture
	logger    *zap.Logger
	sessionID string

	countdown     *clock.Task
	confetti      *clock.Task
	confettiFrame int

	keys     keyMap
	help     help.Model
	progress progress.Model
	spinner  spinner.Model

	width  int
	height int
	cursor int

	started    bool
	camera     cameraState
	cameraGen  int
	cameraErr  string
	// cancelStart aborts a camera start still in flight.
	cancelStart context.CancelFunc
	readings   <-chan gesture.Reading
	reading    gesture.Reading
	hasReading bool
}

// NewModel constructs a quiz TUI model.
func NewModel(opts Options) (*Model, error) {
	if opts.Config.Mode == model.ModeGesture && opts.Capture == nil {
		return nil, errors.New("gesture mode needs a capture source")
	}
	session, err := quiz.NewSession(opts.Questions, opts.Config.Seconds)
	if err != nil {
		return nil, fmt.Errorf("failed to create quiz session: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	interval := opts.TickInterval
	if interval <= 0 {
		interval = time.Second
	}
	m := &Model{
		config:    opts.Config,
		session:   session,
		manual:    quiz.NewManualInput(),
		gestures:  gesture.NewInput(opts.Config.Gesture.MinConfidence),
		capture:   opts.Capture,
		logger:    logger.With(zap.Stringer("mode", opts.Config.Mode)),
		countdown: clock.New(interval),
		confetti:  clock.New(confettiInterval),
		keys:      newKeyMap(),
		help:      help.New(),
		progress:  progress.New(progress.WithDefaultGradient()),
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
	m.keys.Camera.SetEnabled(opts.Config.Mode == model.ModeGesture)
	return m, nil
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	if m.config.Mode == model.ModeGesture {
		return nil
	}
	m.started = true
	return m.startRun()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = max(10, min(60, contentWidth(m.width)))
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case clock.TickMsg:
		if ok, next := m.countdown.Accept(msg); ok {
			before := m.mark()
			m.session.Tick()
			return m, tea.Batch(next, m.afterChange(before))
		}
		if ok, next := m.confetti.Accept(msg); ok {
			m.confettiFrame++
			return m, next
		}
		return m, nil
	case spinner.TickMsg:
		if m.camera != cameraLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case cameraStartedMsg:
		return m.handleCameraStarted(msg)
	case readingMsg:
		return m.handleReading(msg)
	default:
		return m, nil
	}
}

// Close stops every task and releases the camera. It is safe to call more
// than once.
func (m *Model) Close() {
	m.countdown.Stop()
	m.confetti.Stop()
	m.abortStart()
	m.releaseCamera()
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.Close()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Camera):
		return m.toggleQuiz()
	case key.Matches(msg, m.keys.Restart):
		if !m.started {
			return m, nil
		}
		m.logger.Info("quiz restarted", zap.String("session", m.sessionID))
		return m, m.startRun()
	}

	if !m.started || m.session.Completed() {
		return m, nil
	}
	options := m.session.Current().Options
	switch {
	case key.Matches(msg, m.keys.Up):
		m.choose((m.cursor + len(options) - 1) % len(options))
	case key.Matches(msg, m.keys.Down):
		m.choose((m.cursor + 1) % len(options))
	case key.Matches(msg, m.keys.Pick):
		m.choose(int(msg.Runes[0] - '1'))
	case key.Matches(msg, m.keys.Next):
		if !m.manual.Confirm(m.session.Selected()) {
			return m, nil
		}
	default:
		return m, nil
	}
	return m, m.consume(m.manual)
}

func (m *Model) choose(pos int) {
	options := m.session.Current().Options
	if pos < 0 || pos >= len(options) {
		return
	}
	m.cursor = pos
	m.manual.Choose(options[pos].ID)
}

// startRun resets the session and restarts the countdown.
func (m *Model) startRun() tea.Cmd {
	m.session.Restart()
	m.sessionID = uuid.NewString()
	m.gestures.Reset()
	m.cursor = 0
	m.confetti.Stop()
	m.confettiFrame = 0
	m.logger.Info("quiz started",
		zap.String("session", m.sessionID),
		zap.Int("questions", m.session.Count()),
		zap.Int("seconds", m.session.Seconds()),
	)
	return m.countdown.Start()
}

type mark struct {
	index     int
	completed bool
}

func (m *Model) mark() mark {
	return mark{index: m.session.Index(), completed: m.session.Completed()}
}

func (m *Model) consume(in quiz.Input) tea.Cmd {
	before := m.mark()
	if applied, _ := m.session.Consume(in); applied == 0 {
		return nil
	}
	m.syncCursor()
	return m.afterChange(before)
}

// afterChange keeps the tasks in step with the session after any transition.
func (m *Model) afterChange(before mark) tea.Cmd {
	if m.session.Completed() && !before.completed {
		m.countdown.Stop()
		m.logger.Info("quiz finished",
			zap.String("session", m.sessionID),
			zap.Int("score", m.session.Score()),
			zap.Int("questions", m.session.Count()),
			zap.Bool("celebration", m.session.Celebration()),
		)
		if m.session.Celebration() {
			return m.confetti.Start()
		}
		return nil
	}
	if m.session.Index() == before.index {
		return nil
	}
	m.gestures.Reset()
	m.cursor = 0
	m.logger.Debug("question advanced",
		zap.String("session", m.sessionID),
		zap.Int("index", m.session.Index()),
		zap.Int("score", m.session.Score()),
	)
	return m.countdown.Start()
}

func (m *Model) syncCursor() {
	selected := m.session.Selected()
	for i, opt := range m.session.Current().Options {
		if opt.ID == selected {
			m.cursor = i
			return
		}
	}
}

func (m *Model) toggleQuiz() (tea.Model, tea.Cmd) {
	if m.config.Mode != model.ModeGesture {
		return m, nil
	}
	if m.started {
		m.stopQuiz()
		return m, nil
	}
	m.started = true
	return m, tea.Batch(m.startRun(), m.startCamera())
}

// stopQuiz ends the run. A camera still loading is cancelled; if it opens
// anyway, handleCameraStarted releases it because the generation moved on.
func (m *Model) stopQuiz() {
	m.started = false
	m.countdown.Stop()
	m.confetti.Stop()
	if m.camera == cameraLoading {
		m.abortStart()
	} else {
		m.releaseCamera()
	}
	m.cameraGen++
	m.camera = cameraOff
	m.cameraErr = ""
	m.hasReading = false
	m.logger.Info("quiz stopped", zap.String("session", m.sessionID))
}

func (m *Model) startCamera() tea.Cmd {
	m.cameraGen++
	gen := m.cameraGen
	m.camera = cameraLoading
	m.cameraErr = ""
	m.hasReading = false
	m.abortStart()
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelStart = cancel
	capture := m.capture
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		if err := capture.Start(ctx); err != nil {
			return cameraStartedMsg{gen: gen, err: err}
		}
		return cameraStartedMsg{gen: gen, readings: capture.Readings()}
	})
}

func (m *Model) handleCameraStarted(msg cameraStartedMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.cameraGen {
		if msg.err == nil {
			m.releaseCamera()
		}
		return m, nil
	}
	m.abortStart()
	if msg.err != nil {
		m.camera = cameraFailed
		m.cameraErr = cameraErrorText(msg.err)
		m.logger.Warn("camera unavailable", zap.Error(msg.err))
		return m, nil
	}
	m.camera = cameraOn
	m.readings = msg.readings
	return m, waitForReading(msg.gen, msg.readings)
}

func (m *Model) handleReading(msg readingMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.cameraGen || m.camera != cameraOn {
		return m, nil
	}
	if !msg.ok || msg.reading.Err != nil {
		err := msg.reading.Err
		if err == nil {
			err = errors.New("capture stopped")
		}
		m.logger.Error("capture ended", zap.Error(err))
		m.releaseCamera()
		m.camera = cameraFailed
		m.cameraErr = "Camera stream ended. Press s twice to reconnect."
		return m, nil
	}
	if m.hasReading && msg.reading.Seq <= m.reading.Seq {
		return m, waitForReading(msg.gen, m.readings)
	}
	m.reading = msg.reading
	m.hasReading = true
	if slot, changed := m.gestures.Observe(msg.reading.Detections, m.session.Current().Options); changed {
		m.logger.Debug("gesture slot changed", zap.Int("slot", int(slot)), zap.Uint64("seq", msg.reading.Seq))
	}
	return m, tea.Batch(m.consume(m.gestures), waitForReading(msg.gen, m.readings))
}

func (m *Model) releaseCamera() {
	if m.capture == nil {
		return
	}
	if err := m.capture.Stop(); err != nil {
		m.logger.Warn("failed to release camera", zap.Error(err))
	}
}

func (m *Model) abortStart() {
	if m.cancelStart != nil {
		m.cancelStart()
		m.cancelStart = nil
	}
}

func waitForReading(gen int, ch <-chan gesture.Reading) tea.Cmd {
	return func() tea.Msg {
		r, ok := <-ch
		return readingMsg{gen: gen, reading: r, ok: ok}
	}
}

func cameraErrorText(err error) string {
	if errors.Is(err, gesture.ErrUnavailable) {
		return "Camera unavailable: please enable your camera."
	}
	return fmt.Sprintf("Camera error: %v", err)
}
