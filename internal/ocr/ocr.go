package ocr

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/teemow/shiftclaim/internal/instrumentation"
	"github.com/teemow/shiftclaim/internal/logging"
)

// Region is a screen rectangle in points.
type Region struct {
	X, Y, Width, Height int
}

// DefaultRegion covers the message pane of a chat window placed at the top
// left of the main display.
var DefaultRegion = Region{X: 100, Y: 100, Width: 800, Height: 600}

// ParseRegion parses "x,y,width,height".
func ParseRegion(s string) (Region, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return Region{}, errors.Errorf("invalid region %q: want x,y,width,height", s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Region{}, errors.Wrapf(err, "invalid region %q", s)
		}
		v[i] = n
	}
	r := Region{X: v[0], Y: v[1], Width: v[2], Height: v[3]}
	if r.X < 0 || r.Y < 0 || r.Width <= 0 || r.Height <= 0 {
		return Region{}, errors.Errorf("invalid region %q: negative origin or empty size", s)
	}
	return r, nil
}

// String formats r the way screencapture -R expects.
func (r Region) String() string {
	return fmt.Sprintf("%d,%d,%d,%d", r.X, r.Y, r.Width, r.Height)
}

// Config holds the capture configuration
type Config struct {
	// App is brought to the front before each capture. Empty skips activation.
	App string
	// Region is the screen area to read.
	Region Region
	// SettleDelay is the pause between activation and screenshot.
	SettleDelay time.Duration
	// TesseractPath is the path to the tesseract executable
	TesseractPath string
	// ScreencapturePath is the path to the screencapture executable
	ScreencapturePath string
	// Languages are the languages to use for OCR (e.g., "eng")
	Languages string
}

// DefaultConfig returns the default capture configuration
func DefaultConfig() Config {
	return Config{
		App:               "WhatsApp",
		Region:            DefaultRegion,
		SettleDelay:       time.Second,
		TesseractPath:     "tesseract",
		ScreencapturePath: "screencapture",
		Languages:         "eng",
	}
}

// Runner executes a command and returns its stdout.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ExecRunner runs commands with os/exec. Stderr is folded into the error.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, errors.Wrapf(err, "%s failed (stderr: %s)", name, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// Capturer screenshots a region and returns the recognized text.
type Capturer struct {
	config  Config
	run     Runner
	sleep   func(ctx context.Context, d time.Duration) error
	metrics *instrumentation.Metrics
	logger  *slog.Logger
}

// NewCapturer returns a Capturer. A nil run uses ExecRunner.
func NewCapturer(config Config, run Runner, logger *slog.Logger) *Capturer {
	if run == nil {
		run = ExecRunner
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Capturer{
		config: config,
		run:    run,
		sleep:  sleepContext,
		logger: logger.With(logging.Service(instrumentation.ServiceOCR)),
	}
}

// WithMetrics records capture outcomes on m.
func (c *Capturer) WithMetrics(m *instrumentation.Metrics) *Capturer {
	c.metrics = m
	return c
}

// Capture activates the app, screenshots the region and runs OCR on it.
func (c *Capturer) Capture(ctx context.Context) (string, error) {
	text, err := c.capture(ctx)
	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
	}
	c.metrics.RecordCapture(ctx, instrumentation.ServiceOCR, status)
	return text, err
}

func (c *Capturer) capture(ctx context.Context) (string, error) {
	if c.config.App != "" {
		if err := c.Activate(ctx); err != nil {
			return "", err
		}
		if err := c.sleep(ctx, c.config.SettleDelay); err != nil {
			return "", err
		}
	}

	tmpFile, err := os.CreateTemp("", "shiftclaim_*.png")
	if err != nil {
		return "", errors.Wrap(err, "failed to create temp file")
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)
	tmpFile.Close()

	if _, err := c.run(ctx, c.config.ScreencapturePath, "-x", "-R", c.config.Region.String(), tmpPath); err != nil {
		return "", errors.Wrap(err, "screen capture failed")
	}

	args := []string{tmpPath, "stdout"}
	if c.config.Languages != "" {
		args = append(args, "-l", c.config.Languages)
	}
	out, err := c.run(ctx, c.config.TesseractPath, args...)
	if err != nil {
		return "", errors.Wrap(err, "tesseract command failed")
	}

	text := strings.TrimSpace(string(out))
	c.logger.DebugContext(ctx, "screen text recognized", logging.Text(text))
	return text, nil
}

// Activate brings the configured app to the front.
func (c *Capturer) Activate(ctx context.Context) error {
	script := fmt.Sprintf("tell application %q to activate", c.config.App)
	if _, err := c.run(ctx, "osascript", "-e", script); err != nil {
		return errors.Wrapf(err, "failed to activate %s", c.config.App)
	}
	logging.WithOperation(c.logger, "activate").DebugContext(ctx, "app brought to front",
		slog.String("app", c.config.App))
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
