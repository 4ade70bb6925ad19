// Package cmd implements the command-line interface for shiftclaim.
//
// This package provides the following commands:
//   - watch: Poll the chat and claim the first free cancelled shift
//   - check: Classify and extract a single message without side effects
//   - serve: Start the MCP server to provide tools for AI assistants
//   - auth: Authorize Google Calendar access for an account
//   - generate-docs: Generate markdown documentation for all MCP tools
//   - version: Display version information
//
// The watch command is the default command when no subcommand is specified.
package cmd
