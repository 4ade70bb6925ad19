package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/shiftclaim/internal/calendar"
	"github.com/teemow/shiftclaim/internal/capture"
	"github.com/teemow/shiftclaim/internal/claim"
	"github.com/teemow/shiftclaim/internal/google"
	"github.com/teemow/shiftclaim/internal/instrumentation"
	"github.com/teemow/shiftclaim/internal/logging"
	"github.com/teemow/shiftclaim/internal/ocr"
	"github.com/teemow/shiftclaim/internal/server"
	sigcli "github.com/teemow/shiftclaim/internal/signal"
)

const (
	sourceSignal = "signal"
	sourceOCR    = "ocr"
	sourceFile   = "file"
	sourceStatic = "static"

	replySignal = "signal"
	replyLog    = "log"
)

// watchOptions holds the flags of the watch command.
type watchOptions struct {
	source string
	reply  string

	pollInterval time.Duration
	timezone     string
	calendarID   string
	account      string
	replyText    string
	eventTitle   string
	maxCycles    int

	signalUser      string
	signalGroup     string
	signalRecipient string
	signalTimeout   time.Duration

	file      string
	messages  []string
	ocrRegion string
	ocrApp    string

	metricsEnabled bool
	metricsAddr    string
	debug          bool

	// signalOpts are passed to every signal-cli client. Tests inject a runner here.
	signalOpts []sigcli.Option
}

func (o watchOptions) config() claim.Config {
	return claim.Config{
		PollInterval: o.pollInterval,
		Timezone:     o.timezone,
		ReplyText:    o.replyText,
		EventTitle:   o.eventTitle,
		MaxCycles:    o.maxCycles,
	}
}

func newWatchCmd() *cobra.Command {
	defaults := claim.DefaultConfig()
	opts := watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the chat and claim the first cancelled shift you are free for",
		Long: `Poll a chat source for messages that cancel an office hours shift.
When a message names a time range that does not clash with your Google Calendar,
shiftclaim replies in the chat and adds the slot to your calendar, then exits.

Sources:
  - signal: messages received by signal-cli for --signal-user (default)
  - ocr:    a screenshot of --ocr-region read with tesseract (macOS)
  - file:   the content of --file whenever it changes
  - static: each --message once, in order (dry run)

Replies:
  - signal: sent with signal-cli to --signal-group or --signal-recipient
  - log:    written to the log only (dry run for the chat side)

The calendar must be authorized first with 'shiftclaim auth'.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.source, "source", sourceSignal, "Chat source: signal, ocr, file or static")
	f.StringVar(&opts.reply, "reply", replySignal, "Reply channel: signal or log")
	f.DurationVar(&opts.pollInterval, "poll-interval", defaults.PollInterval, "Delay between two polls. Can also use SHIFTCLAIM_POLL_INTERVAL env var.")
	f.StringVar(&opts.timezone, "timezone", defaults.Timezone, "IANA time zone message times are read in. Can also use SHIFTCLAIM_TIMEZONE env var.")
	f.StringVar(&opts.calendarID, "calendar", calendar.DefaultCalendarID, "Google Calendar ID to check and write to")
	f.StringVar(&opts.account, "account", google.DefaultAccount, "Google account name to use")
	f.StringVar(&opts.replyText, "reply-text", defaults.ReplyText, "Text sent to the chat when a shift is claimed. Can also use SHIFTCLAIM_REPLY_TEXT env var.")
	f.StringVar(&opts.eventTitle, "event-title", defaults.EventTitle, "Title of the calendar entry created for a claimed shift. Can also use SHIFTCLAIM_EVENT_TITLE env var.")
	f.IntVar(&opts.maxCycles, "max-cycles", defaults.MaxCycles, "Stop after this many polls (0: no limit). Can also use SHIFTCLAIM_MAX_CYCLES env var.")
	f.StringVar(&opts.signalUser, "signal-user", os.Getenv("SIGNAL_USER_ID"), "Signal account (phone number) used by signal-cli. Can also use SIGNAL_USER_ID env var.")
	f.StringVar(&opts.signalGroup, "signal-group", "", "Signal group to watch and reply to")
	f.StringVar(&opts.signalRecipient, "signal-recipient", "", "Signal number to reply to when no group is set")
	f.DurationVar(&opts.signalTimeout, "signal-receive-timeout", sigcli.DefaultReceiveTimeout, "How long each poll waits for new Signal messages")
	f.StringVar(&opts.file, "file", "", "File to read messages from (source 'file')")
	f.StringArrayVar(&opts.messages, "message", nil, "Message to replay, repeatable (source 'static')")
	f.StringVar(&opts.ocrRegion, "ocr-region", ocr.DefaultRegion.String(), "Screen region to read as x,y,width,height (source 'ocr')")
	f.StringVar(&opts.ocrApp, "ocr-app", ocr.DefaultConfig().App, "Application brought to the front before each screenshot; empty to skip (source 'ocr')")
	f.BoolVar(&opts.metricsEnabled, "metrics-enabled", false, "Serve metrics and health probes on a dedicated port. Can also use METRICS_ENABLED env var.")
	f.StringVar(&opts.metricsAddr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address. Can also use METRICS_ADDR env var.")
	f.BoolVar(&opts.debug, "debug", false, "Enable debug logging")

	return cmd
}

func runWatch(opts watchOptions) error {
	// Setup graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := logging.New(os.Stderr, opts.debug)
	slog.SetDefault(logger)

	if !opts.metricsEnabled && os.Getenv("METRICS_ENABLED") == "true" {
		opts.metricsEnabled = true
	}
	if addr := os.Getenv("METRICS_ADDR"); addr != "" && opts.metricsAddr == server.DefaultMetricsAddr {
		opts.metricsAddr = addr
	}

	cfg := opts.config()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version
	provider, err := instrumentation.NewProvider(ctx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Warn("instrumentation shutdown failed", logging.Err(err))
		}
	}()
	metrics := provider.Metrics()

	capturer, err := buildCapturer(opts, metrics, logger)
	if err != nil {
		return err
	}
	replier, err := buildReplier(opts, logger)
	if err != nil {
		return err
	}

	cal, err := calendar.NewClient(ctx, google.NewFileTokenProvider(),
		calendar.WithCalendarID(opts.calendarID),
		calendar.WithAccount(opts.account),
		calendar.WithMetrics(metrics),
	)
	if err != nil {
		if errors.Is(err, google.ErrNoToken) {
			return fmt.Errorf("calendar account %q is not authorized, run 'shiftclaim auth --account %s' first", opts.account, opts.account)
		}
		return fmt.Errorf("failed to create calendar client: %w", err)
	}

	orch, err := claim.New(cfg, claim.Deps{
		Capturer: capturer,
		Schedule: cal,
		Writer:   cal,
		Replier:  replier,
		Metrics:  metrics,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	if err := metrics.ObserveSession(func() (bool, int) {
		s := orch.Snapshot()
		return s.Phase == claim.PhaseDone, s.Cycles
	}); err != nil {
		return err
	}

	if opts.metricsEnabled && provider.Enabled() {
		stop, err := startMetricsServer(opts.metricsAddr, provider, orch, logger)
		if err != nil {
			return err
		}
		defer stop()
	}

	logger.Info("shiftclaim starting",
		slog.String("version", version),
		slog.String("source", opts.source),
		slog.String("reply", opts.reply),
		slog.String("calendar", opts.calendarID),
		logging.Account(opts.account),
		logging.UserHash(opts.signalUser))

	sess, err := orch.Run(ctx)
	switch {
	case errors.Is(err, context.Canceled):
		logger.Info("stopped", logging.Cycle(sess.Cycles), logging.Phase(sess.Phase.String()))
		return nil
	case err != nil:
		return err
	case sess.Phase == claim.PhaseDone:
		fmt.Fprintf(os.Stdout, "Shift secured: %s\n", sess.Claimed)
	default:
		logger.Info("stopped without a claim", logging.Cycle(sess.Cycles), logging.Outcome(string(sess.Last)))
	}
	return nil
}

func newSignalClient(opts watchOptions) (*sigcli.Client, error) {
	if opts.signalUser == "" {
		return nil, fmt.Errorf("--signal-user is required for signal-cli (or set SIGNAL_USER_ID)")
	}
	clientOpts := opts.signalOpts
	if opts.signalTimeout > 0 {
		clientOpts = append([]sigcli.Option{sigcli.WithReceiveTimeout(opts.signalTimeout)}, clientOpts...)
	}
	return sigcli.NewClient(opts.signalUser, clientOpts...)
}

// buildCapturer returns the chat source selected by --source.
func buildCapturer(opts watchOptions, metrics *instrumentation.Metrics, logger *slog.Logger) (claim.Capturer, error) {
	switch opts.source {
	case sourceSignal:
		client, err := newSignalClient(opts)
		if err != nil {
			return nil, err
		}
		return sigcli.NewCapturer(client, opts.signalGroup).WithMetrics(metrics), nil
	case sourceOCR:
		region, err := ocr.ParseRegion(opts.ocrRegion)
		if err != nil {
			return nil, err
		}
		config := ocr.DefaultConfig()
		config.Region = region
		config.App = opts.ocrApp
		return ocr.NewCapturer(config, nil, logger).WithMetrics(metrics), nil
	case sourceFile:
		if opts.file == "" {
			return nil, fmt.Errorf("--file is required with --source file")
		}
		return capture.NewFileSource(opts.file).WithMetrics(metrics), nil
	case sourceStatic:
		if len(opts.messages) == 0 {
			return nil, fmt.Errorf("--message is required with --source static")
		}
		return capture.NewStaticSource(opts.messages...), nil
	default:
		return nil, fmt.Errorf("unsupported source %q (supported: signal, ocr, file, static)", opts.source)
	}
}

// buildReplier returns the reply channel selected by --reply.
func buildReplier(opts watchOptions, logger *slog.Logger) (claim.Replier, error) {
	switch opts.reply {
	case replySignal:
		client, err := newSignalClient(opts)
		if err != nil {
			return nil, err
		}
		return sigcli.NewReplier(client, opts.signalGroup, opts.signalRecipient)
	case replyLog:
		return capture.NewLogReplier(logger), nil
	default:
		return nil, fmt.Errorf("unsupported reply channel %q (supported: signal, log)", opts.reply)
	}
}

// startMetricsServer binds addr and serves metrics and health probes for
// sessions. The returned func shuts the server down.
func startMetricsServer(addr string, provider *instrumentation.Provider, sessions server.SessionSource, logger *slog.Logger) (func(), error) {
	metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    addr,
		InstrumentationProvider: provider,
		Health:                  server.NewHealthChecker(nil, sessions),
		Logger:                  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics server: %w", err)
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics server failed to start: %w", err)
	}
	go func() {
		if err := metricsServer.Serve(ln); err != nil {
			logger.Error("metrics server stopped", logging.Err(err))
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := metricsServer.Shutdown(ctx); err != nil {
			logger.Warn("metrics server shutdown failed", logging.Err(err))
		}
	}, nil
}
