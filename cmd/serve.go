package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/shiftclaim/internal/calendar"
	"github.com/teemow/shiftclaim/internal/claim"
	"github.com/teemow/shiftclaim/internal/instrumentation"
	"github.com/teemow/shiftclaim/internal/logging"
	"github.com/teemow/shiftclaim/internal/server"
	"github.com/teemow/shiftclaim/internal/tools/google_tools"
	"github.com/teemow/shiftclaim/internal/tools/shift_tools"
)

const replyNone = "none"

// serveOptions holds the flags of the serve command.
type serveOptions struct {
	debug      bool
	yolo       bool
	timezone   string
	calendarID string
	replyText  string
	eventTitle string

	reply           string
	signalUser      string
	signalGroup     string
	signalRecipient string
}

func newServeCmd() *cobra.Command {
	defaults := claim.DefaultConfig()
	opts := serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server over stdio to provide the
shift tools to AI assistants: classify a message, extract its time range and
check it against Google Calendar.

Safety Mode:
  By default, the server operates in read-only mode.
  Use --yolo to enable shift_claim, which replies in the chat and writes
  to the calendar. Claiming needs a reply channel (--reply signal or log).

Token Refresh:
  GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET env vars are used to refresh
  saved calendar tokens. Without them, tokens stop working after ~1 hour.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts)
		},
	}

	cmd.Flags().BoolVar(&opts.debug, "debug", false, "Enable debug logging (written to stderr)")
	cmd.Flags().BoolVar(&opts.yolo, "yolo", false, "Enable write operations (chat reply and calendar entry). Default is read-only mode.")
	cmd.Flags().StringVar(&opts.timezone, "timezone", defaults.Timezone, "IANA time zone message times are read in. Can also use SHIFTCLAIM_TIMEZONE env var.")
	cmd.Flags().StringVar(&opts.calendarID, "calendar", calendar.DefaultCalendarID, "Google Calendar ID to check and write to")
	cmd.Flags().StringVar(&opts.replyText, "reply-text", defaults.ReplyText, "Text sent to the chat when a shift is claimed")
	cmd.Flags().StringVar(&opts.eventTitle, "event-title", defaults.EventTitle, "Title of the calendar entry created for a claimed shift")
	cmd.Flags().StringVar(&opts.reply, "reply", replyNone, "Reply channel for shift_claim: signal, log or none")
	cmd.Flags().StringVar(&opts.signalUser, "signal-user", os.Getenv("SIGNAL_USER_ID"), "Signal account used by signal-cli. Can also use SIGNAL_USER_ID env var.")
	cmd.Flags().StringVar(&opts.signalGroup, "signal-group", "", "Signal group to reply to")
	cmd.Flags().StringVar(&opts.signalRecipient, "signal-recipient", "", "Signal number to reply to when no group is set")

	return cmd
}

func runServe(opts serveOptions) error {
	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// stdout carries the MCP stream; everything else goes to stderr.
	logger := logging.New(os.Stderr, opts.debug)
	slog.SetDefault(logger)

	cfg := claim.DefaultConfig()
	cfg.Timezone = opts.timezone
	cfg.ReplyText = opts.replyText
	cfg.EventTitle = opts.eventTitle

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			logger.Debug("instrumentation shutdown failed", logging.Err(err))
		}
	}()

	scOpts := []server.Option{
		server.WithCalendarID(opts.calendarID),
		server.WithLogger(logger),
	}
	if provider.Enabled() {
		scOpts = append(scOpts,
			server.WithMetrics(provider.Metrics()),
			server.WithAuditLogger(instrumentation.NewAuditLogger(logger, instrConfig.AuditLogging)),
		)
	}
	if opts.reply != replyNone {
		replier, err := buildReplier(watchOptions{
			reply:           opts.reply,
			signalUser:      opts.signalUser,
			signalGroup:     opts.signalGroup,
			signalRecipient: opts.signalRecipient,
		}, logger)
		if err != nil {
			return err
		}
		scOpts = append(scOpts, server.WithReplier(replier))
	}

	serverContext, err := server.NewServerContext(shutdownCtx, cfg, scOpts...)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		if err := serverContext.Shutdown(); err != nil {
			logger.Debug("server context shutdown failed", logging.Err(err))
		}
	}()

	mcpSrv := newMCPServer()

	// readOnly is the inverse of yolo
	readOnly := !opts.yolo
	if readOnly {
		logger.Info("starting server in read-only mode (use --yolo to enable shift_claim)")
	} else {
		logger.Info("starting server with write operations enabled (--yolo flag is set)",
			slog.String("reply", opts.reply))
	}

	if err := registerAllTools(mcpSrv, serverContext, readOnly); err != nil {
		return err
	}

	return runStdioServer(shutdownCtx, mcpSrv)
}

func newMCPServer() *mcpserver.MCPServer {
	return mcpserver.NewMCPServer("shiftclaim", version,
		mcpserver.WithToolCapabilities(true),
	)
}

func runStdioServer(ctx context.Context, mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	select {
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("server stopped with error: %w", err)
		}
	case <-ctx.Done():
		// ServeStdio handles SIGTERM itself; give it a moment to finish.
		select {
		case <-serverDone:
		case <-time.After(server.DefaultShutdownTimeout):
		}
	}
	return nil
}

// registerAllTools registers all MCP tools
func registerAllTools(mcpSrv *mcpserver.MCPServer, ctx *server.ServerContext, readOnly bool) error {
	type toolRegistration struct {
		name     string
		register func() error
	}

	registrations := []toolRegistration{
		{
			name: "Shift",
			register: func() error {
				return shift_tools.RegisterShiftTools(mcpSrv, ctx, readOnly)
			},
		},
		{
			name: "Google",
			register: func() error {
				return google_tools.RegisterGoogleTools(mcpSrv, ctx)
			},
		},
	}

	for _, reg := range registrations {
		if err := reg.register(); err != nil {
			return fmt.Errorf("failed to register %s tools: %w", reg.name, err)
		}
	}

	return nil
}
