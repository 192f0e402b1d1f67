package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap/zaptest"

	"github.com/verte-zerg/quizgest/internal/clock"
	"github.com/verte-zerg/quizgest/internal/gesture"
	"github.com/verte-zerg/quizgest/internal/model"
	"github.com/verte-zerg/quizgest/internal/quiz"
)

type fakeCapture struct {
	startErr error
	// block makes Start wait for its context to end.
	block    bool
	readings chan gesture.Reading
	starts   int
	stops    int
}

func (c *fakeCapture) Start(ctx context.Context) error {
	c.starts++
	if c.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return c.startErr
}

func (c *fakeCapture) Stop() error {
	c.stops++
	return nil
}

func (c *fakeCapture) Readings() <-chan gesture.Reading { return c.readings }

func newTestModel(t *testing.T, mode model.Mode, capture Capture) *Model {
	t.Helper()
	m, err := NewModel(Options{
		Config:       model.Config{Mode: mode, Seconds: 2},
		Questions:    quiz.DefaultQuestions(),
		Capture:      capture,
		Logger:       zaptest.NewLogger(t),
		TickInterval: time.Millisecond,
	})
	if err != nil {
		t.Fatalf("new model: %v", err)
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// run executes cmd and every command batched inside it.
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		return []tea.Msg{msg}
	}
	var msgs []tea.Msg
	for _, c := range batch {
		msgs = append(msgs, run(c)...)
	}
	return msgs
}

func press(m *Model, msgs ...tea.Msg) {
	for _, msg := range msgs {
		m.Update(msg)
	}
}

func TestManualQuizPerfectRun(t *testing.T) {
	m := newTestModel(t, model.ModeManual, nil)
	m.Init()

	// Paris, 4, JavaScript, Mars.
	for _, pick := range []string{"3", "2", "3", "2"} {
		press(m, runes(pick), tea.KeyMsg{Type: tea.KeyEnter})
	}
	if !m.session.Completed() || m.session.Score() != 4 || !m.session.Celebration() {
		t.Fatalf("expected perfect finished run, got score %d", m.session.Score())
	}
	if m.countdown.Running() {
		t.Fatalf("countdown still running after finish")
	}
	if !m.confetti.Running() {
		t.Fatalf("expected confetti on a perfect run")
	}
	view := m.View()
	for _, want := range []string{"Quiz Finished!", "Your score: 4 / 4", "Perfect Score!"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}

	press(m, runes("r"))
	if m.session.Completed() || m.session.Score() != 0 || m.confetti.Running() || !m.countdown.Running() {
		t.Fatalf("restart did not reset the run")
	}
}

func TestManualNextNeedsSelection(t *testing.T) {
	m := newTestModel(t, model.ModeManual, nil)
	m.Init()
	press(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.session.Index() != 0 {
		t.Fatalf("next advanced without a selection")
	}
	press(m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyDown})
	if m.session.Selected() != 2 || m.cursor != 2 {
		t.Fatalf("expected Paris selected, got %d", m.session.Selected())
	}
	press(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.session.Index() != 1 || m.session.Score() != 1 {
		t.Fatalf("unexpected state: index=%d score=%d", m.session.Index(), m.session.Score())
	}
	if !strings.Contains(m.View(), "Correct!") {
		t.Fatalf("expected correct feedback in view")
	}
}

func TestCountdownExpiresQuestion(t *testing.T) {
	m := newTestModel(t, model.ModeManual, nil)
	m.Init()
	msg, ok := m.countdown.Start()().(clock.TickMsg)
	if !ok {
		t.Fatalf("expected a countdown tick")
	}

	press(m, msg, msg)
	if m.session.Remaining() != 0 || m.session.Index() != 0 {
		t.Fatalf("unexpected state before expiry: remaining=%d index=%d", m.session.Remaining(), m.session.Index())
	}
	press(m, msg)
	if m.session.Index() != 1 || m.session.Remaining() != 2 {
		t.Fatalf("expected expiry to advance: index=%d remaining=%d", m.session.Index(), m.session.Remaining())
	}
	press(m, msg)
	if m.session.Remaining() != 2 {
		t.Fatalf("stale tick from the previous question was applied")
	}
}

func TestGestureQuizChecksWithoutAdvancing(t *testing.T) {
	capture := &fakeCapture{readings: make(chan gesture.Reading, 1)}
	m := newTestModel(t, model.ModeGesture, capture)
	if cmd := m.Init(); cmd != nil {
		t.Fatalf("gesture quiz must wait for start")
	}
	if !strings.Contains(m.View(), "Press s to start") {
		t.Fatalf("expected start screen")
	}

	press(m, runes("s"))
	if !m.started || m.camera != cameraLoading {
		t.Fatalf("expected camera loading after start")
	}
	press(m, cameraStartedMsg{gen: m.cameraGen, readings: capture.readings})
	if m.camera != cameraOn {
		t.Fatalf("expected camera on")
	}

	paris := gesture.Reading{
		Seq:         1,
		Detections:  []gesture.Detection{{Box: gesture.BBox{X: 10, Y: 10, Width: 90, Height: 180}, Confidence: 0.9}},
		FrameWidth:  640,
		FrameHeight: 480,
	}
	press(m, readingMsg{gen: m.cameraGen, reading: paris, ok: true})
	if m.session.Feedback() != quiz.FeedbackCorrect || m.session.Index() != 0 || m.session.Score() != 0 {
		t.Fatalf("gesture must only preview: feedback=%v index=%d", m.session.Feedback(), m.session.Index())
	}
	if !strings.Contains(m.View(), "Correct Answer!") {
		t.Fatalf("expected gesture feedback in view")
	}

	press(m, runes("1"))
	paris.Seq = 2
	press(m, readingMsg{gen: m.cameraGen, reading: paris, ok: true})
	if m.session.Selected() != 0 {
		t.Fatalf("held gesture re-triggered a check")
	}

	press(m, runes("n"))
	if m.session.Index() != 1 || m.session.Score() != 0 {
		t.Fatalf("explicit next did not submit: index=%d score=%d", m.session.Index(), m.session.Score())
	}

	press(m, runes("s"))
	if m.started || capture.stops != 1 {
		t.Fatalf("stop did not release the camera: stops=%d", capture.stops)
	}
	before := m.session.Feedback()
	paris.Seq = 3
	press(m, readingMsg{gen: m.cameraGen - 1, reading: paris, ok: true})
	if m.session.Selected() != quiz.NoAnswer || m.session.Feedback() != before || m.hasReading {
		t.Fatalf("reading after stop changed the quiz")
	}
}

func TestGestureCameraFailureKeepsQuizUsable(t *testing.T) {
	capture := &fakeCapture{startErr: gesture.ErrUnavailable}
	m := newTestModel(t, model.ModeGesture, capture)
	m.Init()
	press(m, runes("s"))
	press(m, cameraStartedMsg{gen: m.cameraGen, err: errors.Join(errors.New("load"), gesture.ErrUnavailable)})
	if m.camera != cameraFailed {
		t.Fatalf("expected failed camera")
	}
	if !strings.Contains(m.View(), "enable your camera") {
		t.Fatalf("expected camera message in view:\n%s", m.View())
	}
	press(m, runes("3"), tea.KeyMsg{Type: tea.KeyEnter})
	if m.session.Index() != 1 || m.session.Score() != 1 {
		t.Fatalf("quiz not usable after camera failure")
	}
}

func TestGestureStreamEndReleasesCamera(t *testing.T) {
	capture := &fakeCapture{readings: make(chan gesture.Reading)}
	m := newTestModel(t, model.ModeGesture, capture)
	m.Init()
	press(m, runes("s"))
	press(m, cameraStartedMsg{gen: m.cameraGen, readings: capture.readings})
	press(m, readingMsg{gen: m.cameraGen, reading: gesture.Reading{Err: errors.New("device lost")}, ok: true})
	if m.camera != cameraFailed || capture.stops != 1 {
		t.Fatalf("expected released camera after stream error, stops=%d", capture.stops)
	}
}

func TestQuitClosesCamera(t *testing.T) {
	capture := &fakeCapture{readings: make(chan gesture.Reading)}
	m := newTestModel(t, model.ModeGesture, capture)
	m.Init()
	press(m, runes("s"))
	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
	if capture.stops != 1 || m.countdown.Running() {
		t.Fatalf("quit did not tear down: stops=%d", capture.stops)
	}
}

func TestNewModelNeedsCaptureInGestureMode(t *testing.T) {
	_, err := NewModel(Options{
		Config:    model.Config{Mode: model.ModeGesture, Seconds: 30},
		Questions: quiz.DefaultQuestions(),
	})
	if err == nil {
		t.Fatalf("expected error without capture")
	}
}

func TestGestureStopWhileCameraLoading(t *testing.T) {
	capture := &fakeCapture{block: true, readings: make(chan gesture.Reading)}
	m := newTestModel(t, model.ModeGesture, capture)
	m.Init()

	_, cmd := m.Update(runes("s"))
	if m.camera != cameraLoading {
		t.Fatalf("expected camera loading")
	}
	loadingGen := m.cameraGen
	done := make(chan []tea.Msg, 1)
	go func() { done <- run(cmd) }()

	press(m, runes("s"))
	if m.started || m.camera != cameraOff || m.countdown.Running() {
		t.Fatalf("stop ignored while loading: started=%v camera=%d", m.started, m.camera)
	}

	var started *cameraStartedMsg
	select {
	case msgs := <-done:
		for _, msg := range msgs {
			if sm, ok := msg.(cameraStartedMsg); ok {
				started = &sm
			}
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("camera start was not cancelled")
	}
	if started == nil || !errors.Is(started.err, context.Canceled) {
		t.Fatalf("expected cancelled start, got %+v", started)
	}
	press(m, *started)
	if capture.stops != 0 || m.camera != cameraOff {
		t.Fatalf("cancelled start changed the camera: stops=%d camera=%d", capture.stops, m.camera)
	}

	// A start that still succeeded after the stop is released.
	press(m, cameraStartedMsg{gen: loadingGen, readings: capture.readings})
	if capture.stops != 1 || m.camera != cameraOff {
		t.Fatalf("late camera not released: stops=%d camera=%d", capture.stops, m.camera)
	}
}

func TestGestureIgnoresOlderReading(t *testing.T) {
	capture := &fakeCapture{readings: make(chan gesture.Reading, 1)}
	m := newTestModel(t, model.ModeGesture, capture)
	m.Init()
	press(m, runes("s"))
	press(m, cameraStartedMsg{gen: m.cameraGen, readings: capture.readings})

	reading := func(seq uint64, height float64) readingMsg {
		return readingMsg{gen: m.cameraGen, ok: true, reading: gesture.Reading{
			Seq:         seq,
			Detections:  []gesture.Detection{{Box: gesture.BBox{Width: 80, Height: height}, Confidence: 0.9}},
			FrameWidth:  640,
			FrameHeight: 480,
		}}
	}
	press(m, reading(5, 180))
	if m.session.Selected() != 2 {
		t.Fatalf("expected Paris checked, got %d", m.session.Selected())
	}
	press(m, reading(4, 50))
	if m.session.Selected() != 2 || m.reading.Seq != 5 {
		t.Fatalf("older reading applied: selected=%d seq=%d", m.session.Selected(), m.reading.Seq)
	}
}
