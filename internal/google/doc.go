// Package google provides OAuth2 authentication and token management for the
// Google Calendar API.
//
// Tokens are stored as JSON, one file per named account, in the user cache
// directory (for example ~/.cache/shiftclaim/google-default.token). The
// TokenProvider interface lets the calendar client be built from any token
// source, which keeps it testable.
package google
