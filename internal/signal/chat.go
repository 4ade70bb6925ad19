package signal

import (
	"context"
	"fmt"
	"strings"

	"github.com/teemow/shiftclaim/internal/instrumentation"
)

// Capturer returns the text posted to one group since the last capture.
type Capturer struct {
	client  *Client
	group   string
	metrics *instrumentation.Metrics
}

// NewCapturer watches group. An empty group accepts every message.
func NewCapturer(client *Client, group string) *Capturer {
	return &Capturer{client: client, group: group}
}

// WithMetrics records capture outcomes on m.
func (c *Capturer) WithMetrics(m *instrumentation.Metrics) *Capturer {
	c.metrics = m
	return c
}

// Capture joins the bodies of the newly received messages, one per line.
func (c *Capturer) Capture(ctx context.Context) (string, error) {
	messages, err := c.client.Receive(ctx)
	if err != nil {
		c.metrics.RecordCapture(ctx, instrumentation.ServiceSignal, instrumentation.StatusError)
		return "", err
	}
	c.metrics.RecordCapture(ctx, instrumentation.ServiceSignal, instrumentation.StatusSuccess)

	var bodies []string
	for _, m := range messages {
		if !m.InGroup(c.group) {
			continue
		}
		bodies = append(bodies, m.Body)
	}
	return strings.Join(bodies, "\n"), nil
}

// Replier posts to a group, or to a single recipient when no group is set.
type Replier struct {
	client    *Client
	group     string
	recipient string
}

// NewReplier returns a Replier. One of group and recipient must be set.
func NewReplier(client *Client, group, recipient string) (*Replier, error) {
	if group == "" && recipient == "" {
		return nil, fmt.Errorf("signal reply needs a group or a recipient")
	}
	return &Replier{client: client, group: group, recipient: recipient}, nil
}

// Send posts text.
func (r *Replier) Send(ctx context.Context, text string) error {
	if r.group != "" {
		return r.client.SendGroupMessage(ctx, r.group, text)
	}
	return r.client.SendMessage(ctx, r.recipient, text)
}
