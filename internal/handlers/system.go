package handlers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// SystemController executes system-level commands: volume, screen
// capture, power. The spoken form is normalised to a fixed command
// set so new phrasings only need a table entry.
type SystemController struct {
	runner     CommandRunner
	captureDir string
	allowPower bool
}

// SystemOption configures a SystemController.
type SystemOption func(*SystemController)

// WithCaptureDir sets the directory screenshots are written to.
func WithCaptureDir(dir string) SystemOption {
	return func(s *SystemController) { s.captureDir = dir }
}

// WithPowerCommands enables shutdown and restart handling.
func WithPowerCommands(allow bool) SystemOption {
	return func(s *SystemController) { s.allowPower = allow }
}

// NewSystemController creates a SystemController.
func NewSystemController(runner CommandRunner, opts ...SystemOption) *SystemController {
	s := &SystemController{
		runner:     runner,
		captureDir: filepath.Join(os.TempDir(), "supriya-captures"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes the system command named by the argument.
func (s *SystemController) Run(ctx context.Context, argument string) error {
	command := strings.TrimSpace(strings.ToLower(argument))
	log.Info().Str("command", command).Msg("[Handlers] System command")

	switch command {
	case "mute":
		return s.volume(ctx, "mute")
	case "unmute":
		return s.volume(ctx, "unmute")
	case "volume up":
		return s.volume(ctx, "up")
	case "volume down":
		return s.volume(ctx, "down")
	case "brightness up":
		return s.brightness(ctx, "+10%")
	case "brightness down":
		return s.brightness(ctx, "10%-")
	case "clipboard":
		return s.clipboard(ctx)
	case "screenshot":
		return s.screenshot(ctx)
	case "webcam":
		return s.webcam(ctx)
	case "lock":
		return s.lock(ctx)
	case "shutdown", "restart":
		if !s.allowPower {
			return fmt.Errorf("system: %q is disabled by configuration", command)
		}
		return s.power(ctx, command)
	default:
		return fmt.Errorf("system: unknown command %q", command)
	}
}

func (s *SystemController) volume(ctx context.Context, action string) error {
	if runtime.GOOS != "linux" {
		return fmt.Errorf("system: volume control not supported on %s", runtime.GOOS)
	}
	args := map[string][]string{
		"mute":   {"set-sink-mute", "@DEFAULT_SINK@", "1"},
		"unmute": {"set-sink-mute", "@DEFAULT_SINK@", "0"},
		"up":     {"set-sink-volume", "@DEFAULT_SINK@", "+10%"},
		"down":   {"set-sink-volume", "@DEFAULT_SINK@", "-10%"},
	}[action]
	if err := s.runner.Run(ctx, "pactl", args...); err != nil {
		return fmt.Errorf("system: volume %s: %w", action, err)
	}
	return nil
}

func (s *SystemController) brightness(ctx context.Context, step string) error {
	if runtime.GOOS != "linux" {
		return fmt.Errorf("system: brightness control not supported on %s", runtime.GOOS)
	}
	if err := s.runner.Run(ctx, "brightnessctl", "set", step); err != nil {
		return fmt.Errorf("system: brightness: %w", err)
	}
	return nil
}

// clipboard reads the current selection and logs it so the reply can
// reference what the user copied.
func (s *SystemController) clipboard(ctx context.Context) error {
	var out string
	var err error
	switch runtime.GOOS {
	case "darwin":
		out, err = s.runner.Output(ctx, "pbpaste")
	case "linux":
		out, err = s.runner.Output(ctx, "xclip", "-selection", "clipboard", "-o")
	default:
		return fmt.Errorf("system: clipboard not supported on %s", runtime.GOOS)
	}
	if err != nil {
		return fmt.Errorf("system: clipboard: %w", err)
	}
	log.Info().Str("content", strings.TrimSpace(out)).Msg("[Handlers] Clipboard contents")
	return nil
}

func (s *SystemController) screenshot(ctx context.Context) error {
	if err := os.MkdirAll(s.captureDir, 0o755); err != nil {
		return fmt.Errorf("system: capture dir: %w", err)
	}
	path := filepath.Join(s.captureDir, time.Now().Format("20060102-150405")+".png")

	var err error
	switch runtime.GOOS {
	case "darwin":
		err = s.runner.Run(ctx, "screencapture", path)
	case "linux":
		err = s.runner.Run(ctx, "import", "-window", "root", path)
	default:
		return fmt.Errorf("system: screenshot not supported on %s", runtime.GOOS)
	}
	if err != nil {
		return fmt.Errorf("system: screenshot: %w", err)
	}
	log.Info().Str("path", path).Msg("[Handlers] Screenshot saved")
	return nil
}

func (s *SystemController) webcam(ctx context.Context) error {
	if err := os.MkdirAll(s.captureDir, 0o755); err != nil {
		return fmt.Errorf("system: capture dir: %w", err)
	}
	path := filepath.Join(s.captureDir, time.Now().Format("20060102-150405")+".jpg")
	if runtime.GOOS != "linux" {
		return fmt.Errorf("system: webcam capture not supported on %s", runtime.GOOS)
	}
	if err := s.runner.Run(ctx, "fswebcam", "-r", "1280x720", "--no-banner", path); err != nil {
		return fmt.Errorf("system: webcam: %w", err)
	}
	log.Info().Str("path", path).Msg("[Handlers] Webcam capture saved")
	return nil
}

func (s *SystemController) lock(ctx context.Context) error {
	switch runtime.GOOS {
	case "darwin":
		return s.runner.Run(ctx, "pmset", "displaysleepnow")
	case "linux":
		return s.runner.Run(ctx, "loginctl", "lock-session")
	default:
		return fmt.Errorf("system: lock not supported on %s", runtime.GOOS)
	}
}

func (s *SystemController) power(ctx context.Context, action string) error {
	var err error
	switch action {
	case "shutdown":
		err = s.runner.Run(ctx, "systemctl", "poweroff")
	case "restart":
		err = s.runner.Run(ctx, "systemctl", "reboot")
	}
	if err != nil {
		return fmt.Errorf("system: %s: %w", action, err)
	}
	return nil
}
