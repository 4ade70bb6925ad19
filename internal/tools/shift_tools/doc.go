// Package shift_tools exposes the shift claim pipeline as MCP tools.
//
// The read-only tools classify a message, extract its time range and check
// the range against a Google Calendar. shift_claim replies to the chat and
// books the slot; it is registered only when write access is enabled.
package shift_tools
