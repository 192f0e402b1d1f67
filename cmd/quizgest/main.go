// Package main provides the CLI entrypoint for quizgest.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/verte-zerg/quizgest/internal/config"
	"github.com/verte-zerg/quizgest/internal/gesture"
	"github.com/verte-zerg/quizgest/internal/logging"
	"github.com/verte-zerg/quizgest/internal/model"
	"github.com/verte-zerg/quizgest/internal/quiz"
	"github.com/verte-zerg/quizgest/internal/tui"
)

const (
	defaultSeconds       = 30
	defaultLogLevel      = "info"
	defaultDevice        = 0
	defaultMinSize       = 40
	defaultFPS           = 30
	defaultMaxInFlight   = 2
	defaultMinConfidence = 0.5

	logMaxSizeMB  = 5
	logMaxBackups = 3
	logMaxAgeDays = 14
)

var (
	quizSeconds int
	logLevel    string
	logFile     string

	gestureDevice        int
	gestureCascade       string
	gestureMinSize       int
	gestureFPS           int
	gestureMaxInFlight   int
	gestureMinConfidence float64
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "quizgest",
		Short:         "Timed terminal quiz answered with keys or hand gestures",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runManualCmd,
	}

	rootCmd.PersistentFlags().IntVar(&quizSeconds, "seconds", defaultSeconds, "seconds per question")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", defaultLogLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", config.DefaultLogPath(), "log file path (empty disables logging)")

	rootCmd.AddCommand(newGestureCmd())
	rootCmd.AddCommand(newQuestionsCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func newGestureCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gesture",
		Short: "Answer with hand gestures in front of the camera",
		Args:  cobra.NoArgs,
		RunE:  runGestureCmd,
	}
	cmd.Flags().IntVar(&gestureDevice, "device", defaultDevice, "camera device index")
	cmd.Flags().StringVar(&gestureCascade, "cascade", config.DefaultCascadePath(), "hand cascade classifier (XML)")
	cmd.Flags().IntVar(&gestureMinSize, "min-size", defaultMinSize, "smallest hand box in pixels")
	cmd.Flags().IntVar(&gestureFPS, "fps", defaultFPS, "frames captured per second")
	cmd.Flags().IntVar(&gestureMaxInFlight, "max-in-flight", defaultMaxInFlight, "concurrent detections before frames are dropped")
	cmd.Flags().Float64Var(&gestureMinConfidence, "min-confidence", defaultMinConfidence, "ignore detections below this confidence (0-1)")
	return cmd
}

func runManualCmd(cmd *cobra.Command, _ []string) error {
	if _, err := loadFileConfig(cmd); err != nil {
		return err
	}
	cfg := model.Config{Mode: model.ModeManual, Seconds: quizSeconds}
	if err := validateConfig(cfg); err != nil {
		return err
	}
	return runQuiz(cfg, model.LogConfig{Level: logLevel, File: logFile}, nil)
}

func runGestureCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadFileConfig(cmd)
	if err != nil {
		return err
	}
	applyConfig(cmd, "device", &gestureDevice, fileCfg.Gesture.Device)
	applyConfig(cmd, "cascade", &gestureCascade, fileCfg.Gesture.Cascade)
	applyConfig(cmd, "min-size", &gestureMinSize, fileCfg.Gesture.MinSize)
	applyConfig(cmd, "fps", &gestureFPS, fileCfg.Gesture.FPS)
	applyConfig(cmd, "max-in-flight", &gestureMaxInFlight, fileCfg.Gesture.MaxInFlight)
	applyConfig(cmd, "min-confidence", &gestureMinConfidence, fileCfg.Gesture.MinConfidence)

	cfg := model.Config{
		Mode:    model.ModeGesture,
		Seconds: quizSeconds,
		Gesture: model.GestureConfig{
			Device:        gestureDevice,
			Cascade:       gestureCascade,
			MinSize:       gestureMinSize,
			FPS:           gestureFPS,
			MaxInFlight:   gestureMaxInFlight,
			MinConfidence: gestureMinConfidence,
		},
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}
	return runQuiz(cfg, model.LogConfig{Level: logLevel, File: logFile}, func(logger *zap.Logger) tui.Capture {
		detector := gesture.NewDetector(gesture.DetectorConfig{
			CascadePath: cfg.Gesture.Cascade,
			MinSize:     cfg.Gesture.MinSize,
		})
		camera := gesture.NewCamera(gesture.CameraConfig{Device: cfg.Gesture.Device})
		return gesture.NewPipeline(detector, camera, gesture.PipelineConfig{
			FPS:         cfg.Gesture.FPS,
			MaxInFlight: cfg.Gesture.MaxInFlight,
		}, logger.Named("capture"))
	})
}

// loadFileConfig reads the config file and applies the values shared by every
// quiz command.
func loadFileConfig(cmd *cobra.Command) (config.FileConfig, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return config.FileConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyConfig(cmd, "seconds", &quizSeconds, fileCfg.Quiz.Seconds)
	applyConfig(cmd, "log-level", &logLevel, fileCfg.Log.Level)
	applyConfig(cmd, "log-file", &logFile, fileCfg.Log.File)
	return fileCfg, nil
}

func runQuiz(cfg model.Config, logCfg model.LogConfig, newCapture func(*zap.Logger) tui.Capture) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("quizgest needs an interactive terminal")
	}

	logger, err := logging.New(logging.Config{
		Path:       logCfg.File,
		Level:      logCfg.Level,
		MaxSizeMB:  logMaxSizeMB,
		MaxBackups: logMaxBackups,
		MaxAgeDays: logMaxAgeDays,
	})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	var capture tui.Capture
	if newCapture != nil {
		capture = newCapture(logger)
	}
	m, err := tui.NewModel(tui.Options{
		Config:    cfg,
		Questions: quiz.DefaultQuestions(),
		Capture:   capture,
		Logger:    logger,
	})
	if err != nil {
		return err
	}
	defer m.Close()

	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		logger.Error("tui exited", zap.Error(err))
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newQuestionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "questions",
		Short: "List the built-in questions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return writeQuestions(cmd.OutOrStdout(), quiz.DefaultQuestions())
		},
	}
}

func writeQuestions(w io.Writer, questions []quiz.Question) error {
	for i, q := range questions {
		if _, err := fmt.Fprintf(w, "%d. %s\n", i+1, q.Prompt); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		for pos, opt := range q.Options {
			mark := " "
			if opt.ID == q.Answer {
				mark = "*"
			}
			if _, err := fmt.Fprintf(w, "   %s %d) %s\n", mark, pos+1, opt.Label); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		}
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

// applyConfig copies a config value into target unless the flag was set.
func applyConfig[T any](cmd *cobra.Command, name string, target, value *T) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# quizgest configuration
# Uncomment a value to enable it. CLI flags override config values.

[quiz]
# seconds = %d              # Seconds per question

[gesture]
# device = %d               # Camera device index
# cascade = %q              # Hand cascade classifier (XML)
# min-size = %d             # Smallest hand box in pixels
# fps = %d                  # Frames captured per second
# max-in-flight = %d         # Concurrent detections before frames are dropped
# min-confidence = %.2f     # Ignore detections below this confidence (0-1)

[log]
# level = %q                # debug, info, warn or error
# file = %q                 # Empty disables logging
`,
		defaultSeconds,
		defaultDevice,
		config.DefaultCascadePath(),
		defaultMinSize,
		defaultFPS,
		defaultMaxInFlight,
		defaultMinConfidence,
		defaultLogLevel,
		config.DefaultLogPath(),
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.Seconds <= 0 {
		return fmt.Errorf("--seconds must be > 0")
	}
	if cfg.Mode != model.ModeGesture {
		return nil
	}
	if cfg.Gesture.Device < 0 {
		return fmt.Errorf("--device must be >= 0")
	}
	if cfg.Gesture.Cascade == "" {
		return fmt.Errorf("--cascade must not be empty")
	}
	if cfg.Gesture.MinSize < 0 {
		return fmt.Errorf("--min-size must be >= 0")
	}
	if cfg.Gesture.FPS <= 0 {
		return fmt.Errorf("--fps must be > 0")
	}
	if cfg.Gesture.MaxInFlight <= 0 {
		return fmt.Errorf("--max-in-flight must be > 0")
	}
	if cfg.Gesture.MinConfidence < 0 || cfg.Gesture.MinConfidence > 1 {
		return fmt.Errorf("--min-confidence must be between 0 and 1")
	}
	return nil
}
