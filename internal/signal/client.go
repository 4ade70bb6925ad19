package signal

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultReceiveTimeout bounds one receive call. It stays short so a poll
// cycle is not held up by an idle chat.
const DefaultReceiveTimeout = 2 * time.Second

// Runner executes a command and returns its stdout and stderr.
type Runner func(ctx context.Context, name string, args ...string) (stdout, stderr string, err error)

// ExecRunner runs commands with os/exec.
func ExecRunner(ctx context.Context, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	return stdout.String(), stderr.String(), err
}

// Client provides access to Signal messaging operations via signal-cli
type Client struct {
	userID         string // The phone number registered with signal-cli (e.g., "+15551234567")
	run            Runner
	receiveTimeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithRunner replaces the command runner. The signal-cli installation check
// is skipped when a runner is supplied.
func WithRunner(r Runner) Option {
	return func(c *Client) {
		c.run = r
	}
}

// WithReceiveTimeout sets how long one receive call waits for messages.
func WithReceiveTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.receiveTimeout = d
		}
	}
}

// NewClient creates a new Signal client for the specified phone number
// The phone number must be already registered with signal-cli
func NewClient(userID string, opts ...Option) (*Client, error) {
	if userID == "" {
		return nil, fmt.Errorf("userID cannot be empty")
	}

	// Validate that the phone number starts with + (required by signal-cli)
	if !strings.HasPrefix(userID, "+") {
		return nil, fmt.Errorf("userID must be a phone number starting with + (e.g., +15551234567)")
	}

	c := &Client{
		userID:         userID,
		receiveTimeout: DefaultReceiveTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.run == nil {
		if _, err := exec.LookPath("signal-cli"); err != nil {
			return nil, &SignalError{
				Op:     "initialize",
				UserID: userID,
				Err:    fmt.Errorf("signal-cli not found in PATH. Please install signal-cli: https://github.com/AsamK/signal-cli"),
			}
		}
		c.run = ExecRunner
	}

	return c, nil
}

// UserID returns the phone number associated with this client
func (c *Client) UserID() string {
	return c.userID
}

func (c *Client) runCommand(ctx context.Context, args ...string) (string, string, error) {
	return c.run(ctx, "signal-cli", append([]string{"-u", c.userID}, args...)...)
}

// SendMessage sends a text message to a Signal user
func (c *Client) SendMessage(ctx context.Context, recipient, message string) error {
	if recipient == "" {
		return &SignalError{Op: "send", UserID: c.userID, Err: fmt.Errorf("recipient cannot be empty")}
	}
	if message == "" {
		return &SignalError{Op: "send", UserID: c.userID, Err: fmt.Errorf("message cannot be empty")}
	}
	if !strings.HasPrefix(recipient, "+") {
		return &SignalError{
			Op:     "send",
			UserID: c.userID,
			Err:    fmt.Errorf("recipient must be a phone number starting with + (e.g., +15551234567)"),
		}
	}

	// signal-cli -u USER_ID send RECIPIENT -m MESSAGE
	_, stderr, err := c.runCommand(ctx, "send", recipient, "-m", message)
	if err != nil {
		return &SignalError{
			Op:     "send",
			UserID: c.userID,
			Stderr: stderr,
			Err:    fmt.Errorf("failed to send message: %w", err),
		}
	}

	return nil
}

// SendGroupMessage sends a text message to the group with the given name
func (c *Client) SendGroupMessage(ctx context.Context, groupName, message string) error {
	if groupName == "" {
		return &SignalError{Op: "sendGroup", UserID: c.userID, Err: fmt.Errorf("groupName cannot be empty")}
	}
	if message == "" {
		return &SignalError{Op: "sendGroup", UserID: c.userID, Err: fmt.Errorf("message cannot be empty")}
	}

	groupID, err := c.groupID(ctx, groupName)
	if err != nil {
		return &SignalError{Op: "sendGroup", UserID: c.userID, Err: err}
	}

	// signal-cli -u USER_ID send -g GROUP_ID -m MESSAGE
	_, stderr, err := c.runCommand(ctx, "send", "-g", groupID, "-m", message)
	if err != nil {
		return &SignalError{
			Op:     "sendGroup",
			UserID: c.userID,
			Stderr: stderr,
			Err:    fmt.Errorf("failed to send group message: %w", err),
		}
	}

	return nil
}

func (c *Client) groupID(ctx context.Context, groupName string) (string, error) {
	groups, err := c.ListGroups(ctx)
	if err != nil {
		return "", err
	}
	for _, g := range groups {
		if strings.EqualFold(g.Name, groupName) {
			return g.ID, nil
		}
	}
	return "", fmt.Errorf("group %q not found", groupName)
}

var (
	groupIDPattern   = regexp.MustCompile(`Id:\s*(\S+)`)
	groupNamePattern = regexp.MustCompile(`Name:\s*(.*?)\s*(?:\s(?:Description|Active|Blocked|Members|Pending members|Requesting members|Admins|Message expiration|Link):|$)`)
)

// ListGroups returns a list of all groups the user is a member of
func (c *Client) ListGroups(ctx context.Context) ([]Group, error) {
	stdout, stderr, err := c.runCommand(ctx, "listGroups")
	if err != nil {
		return nil, &SignalError{
			Op:     "listGroups",
			UserID: c.userID,
			Stderr: stderr,
			Err:    fmt.Errorf("failed to list groups: %w", err),
		}
	}

	return parseGroups(stdout), nil
}

// parseGroups accepts both the one-line-per-group output of current
// signal-cli releases and the older one-field-per-line layout.
func parseGroups(output string) []Group {
	groups := []Group{}
	var current *Group

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if m := groupIDPattern.FindStringSubmatch(line); m != nil && strings.HasPrefix(line, "Id:") {
			if current != nil {
				groups = append(groups, *current)
			}
			current = &Group{ID: m[1]}
		}
		if current == nil {
			continue
		}
		if idx := strings.Index(line, "Name:"); idx >= 0 && current.Name == "" {
			if m := groupNamePattern.FindStringSubmatch(line[idx:]); m != nil {
				current.Name = m[1]
			}
		}
	}

	if current != nil {
		groups = append(groups, *current)
	}
	return groups
}

// Receive drains the messages queued for the account, waiting at most the
// receive timeout. An empty slice means nothing arrived.
func (c *Client) Receive(ctx context.Context) ([]Message, error) {
	secs := int(c.receiveTimeout.Round(time.Second).Seconds())
	if secs < 1 {
		secs = 1
	}

	// signal-cli -u USER_ID receive --timeout TIMEOUT
	stdout, stderr, err := c.runCommand(ctx, "receive", "--timeout", strconv.Itoa(secs))

	// Check for timeout (not an error, just no messages)
	if err != nil && strings.Contains(strings.ToLower(stderr), "timeout") {
		return nil, nil
	}
	if err != nil {
		return nil, &SignalError{
			Op:     "receive",
			UserID: c.userID,
			Stderr: stderr,
			Err:    fmt.Errorf("failed to receive message: %w", err),
		}
	}

	return parseReceiveOutput(stdout), nil
}

// bodyEnd lists the envelope fields signal-cli prints after a message
// body. Any other line following "Body:" belongs to a multi-line body.
var bodyEnd = []string{
	"Envelope from:",
	"Timestamp:",
	"Server timestamp:",
	"Message timestamp:",
	"Group info:",
	"Quote:",
	"Mentions:",
	"Attachments:",
	"Reaction:",
	"Sticker:",
	"Expires in:",
	"Profile key update",
	"With profile key",
}

func endsBody(line string) bool {
	for _, prefix := range bodyEnd {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}

// parseReceiveOutput splits signal-cli receive output into messages. Each
// envelope starts with an "Envelope from:" line; envelopes without a body
// (receipts, typing indicators) are dropped.
func parseReceiveOutput(output string) []Message {
	var (
		messages []Message
		current  *Message
		inGroup  bool
		body     []string
		inBody   bool
	)

	flush := func() {
		if current == nil {
			return
		}
		current.Body = strings.TrimSpace(strings.Join(body, "\n"))
		if current.Body != "" {
			messages = append(messages, *current)
		}
	}

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if inBody {
			if !endsBody(line) {
				body = append(body, line)
				continue
			}
			inBody = false
		}

		switch {
		case line == "":
		case strings.HasPrefix(line, "Envelope from:"):
			// Envelope from: "Name" +11234567890 (device: 1) to +15551234567
			flush()
			current = &Message{}
			inGroup = false
			body = nil
			if parts := strings.SplitN(line, "+", 2); len(parts) > 1 {
				if fields := strings.Fields(parts[1]); len(fields) > 0 {
					current.Sender = "+" + fields[0]
				}
			}
		case current == nil:
		case strings.HasPrefix(line, "Timestamp:"):
			current.SentAt = parseTimestamp(strings.TrimPrefix(line, "Timestamp:"))
		case strings.HasPrefix(line, "Body:"):
			body = []string{strings.TrimSpace(strings.TrimPrefix(line, "Body:"))}
			inBody = true
		case strings.HasPrefix(line, "Group info:"):
			inGroup = true
		case inGroup && strings.HasPrefix(line, "Name:"):
			current.Group = strings.TrimSpace(strings.TrimPrefix(line, "Name:"))
		}
	}
	flush()

	return messages
}

// parseTimestamp reads the leading epoch milliseconds of a signal-cli
// timestamp field such as "1760540000000 (2026-10-15T14:53:20.000Z)".
func parseTimestamp(field string) time.Time {
	fields := strings.Fields(field)
	if len(fields) == 0 {
		return time.Time{}
	}
	ms, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
