// Package capture holds the local text sources and the log-only replier used
// for dry runs and demos.
package capture

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/teemow/shiftclaim/internal/instrumentation"
	"github.com/teemow/shiftclaim/internal/logging"
)

// FileSource returns the content of a file whenever it changed since the
// previous capture, and empty text otherwise.
type FileSource struct {
	path    string
	metrics *instrumentation.Metrics

	mu      sync.Mutex
	modTime time.Time
	size    int64
}

// NewFileSource watches path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// WithMetrics records capture outcomes on m.
func (s *FileSource) WithMetrics(m *instrumentation.Metrics) *FileSource {
	s.metrics = m
	return s
}

// Capture reads the file if it changed.
func (s *FileSource) Capture(ctx context.Context) (string, error) {
	text, err := s.read()
	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
	}
	s.metrics.RecordCapture(ctx, instrumentation.ServiceFile, status)
	return text, err
}

func (s *FileSource) read() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, err := os.Stat(s.path)
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", s.path, err)
	}
	if info.ModTime().Equal(s.modTime) && info.Size() == s.size {
		return "", nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", s.path, err)
	}
	s.modTime, s.size = info.ModTime(), info.Size()
	return strings.TrimSpace(string(data)), nil
}

// StaticSource yields its messages one per capture, then empty text.
type StaticSource struct {
	mu       sync.Mutex
	messages []string
}

// NewStaticSource returns a source that replays messages in order.
func NewStaticSource(messages ...string) *StaticSource {
	return &StaticSource{messages: messages}
}

// Capture returns the next message.
func (s *StaticSource) Capture(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.messages) == 0 {
		return "", nil
	}
	next := s.messages[0]
	s.messages = s.messages[1:]
	return next, nil
}

// LogReplier logs replies instead of sending them.
type LogReplier struct {
	logger *slog.Logger

	mu   sync.Mutex
	sent []string
}

// NewLogReplier returns a LogReplier writing to logger.
func NewLogReplier(logger *slog.Logger) *LogReplier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogReplier{logger: logger}
}

// Send logs text.
func (r *LogReplier) Send(ctx context.Context, text string) error {
	r.mu.Lock()
	r.sent = append(r.sent, text)
	r.mu.Unlock()

	r.logger.InfoContext(ctx, "reply (dry run)", logging.Text(text))
	return nil
}

// Sent returns the replies logged so far.
func (r *LogReplier) Sent() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.sent...)
}
