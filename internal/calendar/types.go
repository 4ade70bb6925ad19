package calendar

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"

	"github.com/teemow/shiftclaim/internal/availability"
)

// Event statuses and transparency values the adapter cares about.
const (
	statusCancelled  = "cancelled"
	transparencyFree = "transparent"
)

// APIError wraps a failed Calendar API call.
type APIError struct {
	Op   string
	Code int
	Err  error
}

func (e *APIError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("calendar %s failed (HTTP %d): %v", e.Op, e.Code, e.Err)
	}
	return fmt.Sprintf("calendar %s failed: %v", e.Op, e.Err)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Fatal reports whether the failure is an authorization problem that will
// not resolve by retrying.
func (e *APIError) Fatal() bool {
	if e.Code == http.StatusUnauthorized || e.Code == http.StatusForbidden {
		return true
	}
	var re *oauth2.RetrieveError
	return errors.As(e.Err, &re)
}

func newAPIError(op string, err error) *APIError {
	apiErr := &APIError{Op: op, Err: err}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		apiErr.Code = gerr.Code
	}
	return apiErr
}

// toBusyInterval converts an event into a busy interval. All-day events keep
// zero endpoints so they never conflict with a timed slot. The second result
// is false for events that do not occupy time.
func toBusyInterval(event *calendar.Event) (availability.BusyInterval, bool) {
	if event == nil || event.Status == statusCancelled || event.Transparency == transparencyFree {
		return availability.BusyInterval{}, false
	}
	return availability.BusyInterval{
		Start: parseEventTime(event.Start),
		End:   parseEventTime(event.End),
		Label: event.Summary,
	}, true
}

func parseEventTime(edt *calendar.EventDateTime) time.Time {
	if edt == nil || edt.DateTime == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, edt.DateTime)
	if err != nil {
		return time.Time{}
	}
	return t
}
