package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/teemow/shiftclaim/internal/calendar"
	"github.com/teemow/shiftclaim/internal/claim"
	"github.com/teemow/shiftclaim/internal/google"
	"github.com/teemow/shiftclaim/internal/instrumentation"
	"github.com/teemow/shiftclaim/internal/intent"
	"github.com/teemow/shiftclaim/internal/interval"
)

// Schedule reads and writes one calendar.
type Schedule interface {
	claim.ScheduleReader
	claim.ScheduleWriter
}

// ServerContext holds the context for the MCP server
type ServerContext struct {
	ctx           context.Context
	cancel        context.CancelFunc
	config        claim.Config
	calendarID    string
	tokenProvider google.TokenProvider
	schedules     map[string]Schedule // Maps account name to calendar client
	replier       claim.Replier
	classifier    *intent.Classifier
	parser        *interval.Parser
	metrics       *instrumentation.Metrics
	auditLogger   *instrumentation.AuditLogger
	logger        *slog.Logger
	claimed       atomic.Bool
	mu            sync.RWMutex
	shutdown      bool
}

// Option configures a ServerContext.
type Option func(*ServerContext)

// WithTokenProvider sets where calendar tokens come from.
func WithTokenProvider(p google.TokenProvider) Option {
	return func(sc *ServerContext) { sc.tokenProvider = p }
}

// WithCalendarID selects the calendar for every account.
func WithCalendarID(id string) Option {
	return func(sc *ServerContext) { sc.calendarID = id }
}

// WithReplier sets the chat the claim tool replies to.
func WithReplier(r claim.Replier) Option {
	return func(sc *ServerContext) { sc.replier = r }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(sc *ServerContext) { sc.metrics = m }
}

// WithAuditLogger sets the tool audit logger.
func WithAuditLogger(al *instrumentation.AuditLogger) Option {
	return func(sc *ServerContext) { sc.auditLogger = al }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(sc *ServerContext) { sc.logger = l }
}

// NewServerContext creates a new server context
func NewServerContext(ctx context.Context, cfg claim.Config, opts ...Option) (*ServerContext, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	shutdownCtx, cancel := context.WithCancel(ctx)
	sc := &ServerContext{
		ctx:        shutdownCtx,
		cancel:     cancel,
		config:     cfg,
		calendarID: calendar.DefaultCalendarID,
		schedules:  make(map[string]Schedule),
		classifier: intent.Default(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(sc)
	}
	if sc.tokenProvider == nil {
		sc.tokenProvider = google.NewFileTokenProvider()
	}
	sc.parser = interval.NewParser(loc, interval.WithLogger(sc.logger))

	return sc, nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Config returns the watcher configuration.
func (sc *ServerContext) Config() claim.Config {
	return sc.config
}

// Classifier returns the cancellation classifier.
func (sc *ServerContext) Classifier() *intent.Classifier {
	return sc.classifier
}

// Parser returns the interval parser for the configured zone.
func (sc *ServerContext) Parser() *interval.Parser {
	return sc.parser
}

// Metrics returns the metrics recorder, which may be nil.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	return sc.metrics
}

// AuditLogger returns the tool audit logger, which may be nil.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	return sc.auditLogger
}

// TokenProvider returns the calendar token provider.
func (sc *ServerContext) TokenProvider() google.TokenProvider {
	return sc.tokenProvider
}

// Logger returns the logger.
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// Replier returns the chat replier, or nil when none is configured.
func (sc *ServerContext) Replier() claim.Replier {
	return sc.replier
}

// ScheduleForAccount returns the calendar for account, creating the client on
// first use.
func (sc *ServerContext) ScheduleForAccount(account string) (Schedule, error) {
	if account == "" {
		account = google.DefaultAccount
	}

	sc.mu.RLock()
	s, ok := sc.schedules[account]
	sc.mu.RUnlock()
	if ok {
		return s, nil
	}

	client, err := calendar.NewClient(sc.ctx, sc.tokenProvider,
		calendar.WithAccount(account),
		calendar.WithCalendarID(sc.calendarID),
		calendar.WithMetrics(sc.metrics),
	)
	if err != nil {
		return nil, err
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()
	if existing, ok := sc.schedules[account]; ok {
		return existing, nil
	}
	sc.schedules[account] = client
	return client, nil
}

// SetScheduleForAccount installs a schedule for account.
func (sc *ServerContext) SetScheduleForAccount(account string, s Schedule) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.schedules[account] = s
}

// TryClaim reserves the single claim a server may make. It returns false
// once a claim was attempted, whether or not it went through.
func (sc *ServerContext) TryClaim() bool {
	return sc.claimed.CompareAndSwap(false, true)
}

// Claimed reports whether the server already attempted its claim.
func (sc *ServerContext) Claimed() bool {
	return sc.claimed.Load()
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	sc.schedules = make(map[string]Schedule)

	return nil
}
