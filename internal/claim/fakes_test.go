package claim

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/teemow/shiftclaim/internal/availability"
	"github.com/teemow/shiftclaim/internal/interval"
)

// scriptedCapturer returns texts in order and repeats the last one.
type scriptedCapturer struct {
	mu    sync.Mutex
	texts []string
	errs  []error
	calls int
}

func (c *scriptedCapturer) Capture(context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.calls
	c.calls++
	if i < len(c.errs) && c.errs[i] != nil {
		return "", c.errs[i]
	}
	if len(c.texts) == 0 {
		return "", nil
	}
	if i >= len(c.texts) {
		i = len(c.texts) - 1
	}
	return c.texts[i], nil
}

func (c *scriptedCapturer) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

type window struct{ start, end time.Time }

type created struct {
	iv    interval.TimeInterval
	title string
}

type fakeCalendar struct {
	busy      []availability.BusyInterval
	queryErr  error
	createErr error

	windows []window
	created []created
}

func (f *fakeCalendar) BusyInWindow(_ context.Context, start, end time.Time) ([]availability.BusyInterval, error) {
	f.windows = append(f.windows, window{start, end})
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.busy, nil
}

func (f *fakeCalendar) CreateBusy(_ context.Context, iv interval.TimeInterval, title string) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, created{iv, title})
	return nil
}

type fakeReplier struct {
	err  error
	sent []string
}

func (r *fakeReplier) Send(_ context.Context, text string) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, text)
	return nil
}

type authError struct{}

func (authError) Error() string { return "token revoked" }
func (authError) Fatal() bool   { return true }

var errFlaky = errors.New("503 backend error")
