package signal

import (
	"fmt"
	"strings"
	"time"
)

// Message is one text message taken off the signal-cli queue.
type Message struct {
	Sender string
	// Group is the group name, empty for direct messages.
	Group  string
	Body   string
	SentAt time.Time
}

// InGroup reports whether m was posted to the named group. Names compare
// case-insensitively; an empty name matches every message.
func (m Message) InGroup(name string) bool {
	return name == "" || strings.EqualFold(m.Group, name)
}

// Group is a group the account belongs to.
type Group struct {
	ID   string
	Name string
}

// SignalError is a failed signal-cli call.
type SignalError struct {
	Op     string
	UserID string
	// Stderr is what signal-cli printed, if it ran at all.
	Stderr string
	Err    error
}

func (e *SignalError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "signal %s", e.Op)
	if e.UserID != "" {
		fmt.Fprintf(&b, " (user: %s)", e.UserID)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		fmt.Fprintf(&b, " (stderr: %s)", s)
	}
	return b.String()
}

func (e *SignalError) Unwrap() error {
	return e.Err
}
