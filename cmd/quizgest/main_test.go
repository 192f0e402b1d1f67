package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/verte-zerg/quizgest/internal/config"
	"github.com/verte-zerg/quizgest/internal/model"
	"github.com/verte-zerg/quizgest/internal/quiz"
)

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_STATE_HOME", dir)

	var lines []string
	for _, line := range strings.Split(defaultConfigTemplate(), "\n") {
		if strings.HasPrefix(line, "# ") && strings.Contains(line, " = ") {
			line = strings.TrimPrefix(line, "# ")
		}
		lines = append(lines, line)
	}
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Quiz.Seconds == nil || *cfg.Quiz.Seconds != defaultSeconds {
		t.Fatalf("unexpected seconds: %v", cfg.Quiz.Seconds)
	}
	if cfg.Gesture.Cascade == nil || *cfg.Gesture.Cascade != config.DefaultCascadePath() {
		t.Fatalf("unexpected cascade: %v", cfg.Gesture.Cascade)
	}
	if cfg.Gesture.MinConfidence == nil || *cfg.Gesture.MinConfidence != defaultMinConfidence {
		t.Fatalf("unexpected min-confidence: %v", cfg.Gesture.MinConfidence)
	}
	if cfg.Log.Level == nil || *cfg.Log.Level != defaultLogLevel {
		t.Fatalf("unexpected log level: %v", cfg.Log.Level)
	}
}

func TestValidateConfig(t *testing.T) {
	gestureCfg := model.GestureConfig{
		Cascade:       "hand.xml",
		FPS:           defaultFPS,
		MaxInFlight:   defaultMaxInFlight,
		MinConfidence: defaultMinConfidence,
	}
	cases := []struct {
		name string
		cfg  model.Config
		ok   bool
	}{
		{"manual", model.Config{Mode: model.ModeManual, Seconds: 30}, true},
		{"zero seconds", model.Config{Mode: model.ModeManual}, false},
		{"manual ignores gesture settings", model.Config{Mode: model.ModeManual, Seconds: 5, Gesture: model.GestureConfig{FPS: -1}}, true},
		{"gesture", model.Config{Mode: model.ModeGesture, Seconds: 30, Gesture: gestureCfg}, true},
	}
	bad := []func(*model.GestureConfig){
		func(g *model.GestureConfig) { g.Device = -1 },
		func(g *model.GestureConfig) { g.Cascade = "" },
		func(g *model.GestureConfig) { g.FPS = 0 },
		func(g *model.GestureConfig) { g.MaxInFlight = 0 },
		func(g *model.GestureConfig) { g.MinConfidence = 1.5 },
	}
	for _, mutate := range bad {
		g := gestureCfg
		mutate(&g)
		cases = append(cases, struct {
			name string
			cfg  model.Config
			ok   bool
		}{"invalid gesture", model.Config{Mode: model.ModeGesture, Seconds: 30, Gesture: g}, false})
	}

	for _, tc := range cases {
		err := validateConfig(tc.cfg)
		if tc.ok && err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%s: expected error for %+v", tc.name, tc.cfg)
		}
	}
}

func TestWriteQuestionsMarksAnswers(t *testing.T) {
	var buf bytes.Buffer
	if err := writeQuestions(&buf, quiz.DefaultQuestions()); err != nil {
		t.Fatalf("write questions: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"1. What is the capital of France?",
		"   * 3) Paris",
		"     1) Berlin",
		"   * 2) Mars",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}
