// Package logging provides structured logging utilities for shiftclaim.
//
// This package centralizes logging patterns so that every component of the
// watcher (capture sources, the orchestrator, the calendar adapter and the
// MCP tools) logs with the same attribute names, using the standard
// library's slog package.
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithOperation(slog.Default(), "claim.cycle")
//	logger.Info("cycle finished",
//	    logging.Outcome("conflict"),
//	    logging.Status(logging.StatusSuccess))
//
// Chat text and phone numbers are personal data. Use Excerpt and
// AnonymizeNumber before attaching them to a log record.
package logging
