package calendar

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/teemow/shiftclaim/internal/availability"
	"github.com/teemow/shiftclaim/internal/google"
	"github.com/teemow/shiftclaim/internal/instrumentation"
	"github.com/teemow/shiftclaim/internal/interval"
)

// DefaultCalendarID is the calendar used when none is configured.
const DefaultCalendarID = "primary"

// Client wraps the Google Calendar service
type Client struct {
	svc        *calendar.Service
	calendarID string
	account    string
	metrics    *instrumentation.Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithCalendarID selects the calendar to read and write.
func WithCalendarID(id string) Option {
	return func(c *Client) {
		if id != "" {
			c.calendarID = id
		}
	}
}

// WithAccount selects the token account.
func WithAccount(account string) Option {
	return func(c *Client) {
		if account != "" {
			c.account = account
		}
	}
}

// WithMetrics records API call metrics on m.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient creates a Calendar client authenticated with the token the
// provider holds for the configured account.
func NewClient(ctx context.Context, tokenProvider google.TokenProvider, opts ...Option) (*Client, error) {
	if tokenProvider == nil {
		return nil, fmt.Errorf("token provider cannot be nil")
	}

	c := newClient(opts)
	token, err := tokenProvider.GetTokenForAccount(ctx, c.account)
	if err != nil {
		return nil, fmt.Errorf("failed to get Google OAuth token for account %s: %w", c.account, err)
	}

	client := oauth2.NewClient(ctx, google.OAuthConfig().TokenSource(ctx, token))

	// Force HTTP/1.1 by disabling HTTP/2
	transport := client.Transport.(*oauth2.Transport)
	transport.Base = &http.Transport{
		ForceAttemptHTTP2: false,
	}

	svc, err := calendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}
	c.svc = svc
	return c, nil
}

// NewClientWithService wraps an already configured service.
func NewClientWithService(svc *calendar.Service, opts ...Option) *Client {
	c := newClient(opts)
	c.svc = svc
	return c
}

func newClient(opts []Option) *Client {
	c := &Client{
		calendarID: DefaultCalendarID,
		account:    google.DefaultAccount,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CalendarID returns the calendar this client reads and writes.
func (c *Client) CalendarID() string {
	return c.calendarID
}

// BusyInWindow lists the events overlapping [start, end) as busy intervals.
// Cancelled and free-marked events are skipped.
func (c *Client) BusyInWindow(ctx context.Context, start, end time.Time) (busy []availability.BusyInterval, err error) {
	ctx, done := c.observe(ctx, instrumentation.OperationList)
	defer func() { done(err) }()

	var out []availability.BusyInterval
	call := c.svc.Events.List(c.calendarID).
		TimeMin(start.Format(time.RFC3339)).
		TimeMax(end.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx)

	err = call.Pages(ctx, func(events *calendar.Events) error {
		for _, event := range events.Items {
			if b, ok := toBusyInterval(event); ok {
				out = append(out, b)
			}
		}
		return nil
	})
	if err != nil {
		return nil, newAPIError("list events", err)
	}
	return out, nil
}

// CreateBusy inserts a timed event covering iv, stamped with the interval's
// zone.
func (c *Client) CreateBusy(ctx context.Context, iv interval.TimeInterval, title string) (err error) {
	ctx, done := c.observe(ctx, instrumentation.OperationCreate)
	defer func() { done(err) }()

	if iv.IsZero() {
		return fmt.Errorf("cannot create an event for an empty interval")
	}

	zone := iv.Location().String()
	event := &calendar.Event{
		Summary: title,
		Start: &calendar.EventDateTime{
			DateTime: iv.Start().Format(time.RFC3339),
			TimeZone: zone,
		},
		End: &calendar.EventDateTime{
			DateTime: iv.End().Format(time.RFC3339),
			TimeZone: zone,
		},
	}

	if _, err = c.svc.Events.Insert(c.calendarID, event).Context(ctx).Do(); err != nil {
		return newAPIError("create event", err)
	}
	return nil
}

func (c *Client) observe(ctx context.Context, operation string) (context.Context, func(error)) {
	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceCalendar, operation)
	start := time.Now()
	return ctx, func(err error) {
		status := instrumentation.StatusSuccess
		if err != nil {
			status = instrumentation.StatusError
			instrumentation.SetSpanError(span, err)
		} else {
			instrumentation.SetSpanSuccess(span)
		}
		span.End()
		c.metrics.RecordGoogleAPIOperation(ctx, instrumentation.ServiceCalendar, operation, status, time.Since(start))
	}
}
