package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/teemow/shiftclaim/internal/claim"
	"github.com/teemow/shiftclaim/internal/google"
	"github.com/teemow/shiftclaim/internal/interval"
)

var (
	_ claim.ScheduleReader = (*Client)(nil)
	_ claim.ScheduleWriter = (*Client)(nil)
)

type fakeAPI struct {
	mu       sync.Mutex
	events   []*calendar.Event
	status   int
	inserted []*calendar.Event
	queries  []string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.status != 0 {
		w.WriteHeader(f.status)
		fmt.Fprintf(w, `{"error":{"code":%d,"message":"denied"}}`, f.status)
		return
	}

	switch r.Method {
	case http.MethodGet:
		f.queries = append(f.queries, r.URL.RawQuery)
		_ = json.NewEncoder(w).Encode(&calendar.Events{Items: f.events})
	case http.MethodPost:
		var ev calendar.Event
		if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		ev.Id = "created"
		f.inserted = append(f.inserted, &ev)
		_ = json.NewEncoder(w).Encode(&ev)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newTestClient(t *testing.T, api *fakeAPI) *Client {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	svc, err := calendar.NewService(context.Background(),
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL+"/"),
	)
	require.NoError(t, err)
	return NewClientWithService(svc)
}

func timed(summary, start, end string) *calendar.Event {
	return &calendar.Event{
		Summary: summary,
		Start:   &calendar.EventDateTime{DateTime: start},
		End:     &calendar.EventDateTime{DateTime: end},
	}
}

func TestBusyInWindow(t *testing.T) {
	api := &fakeAPI{events: []*calendar.Event{
		timed("Lecture", "2026-10-15T15:00:00-04:00", "2026-10-15T15:30:00-04:00"),
		timed("", "2026-10-15T16:00:00-04:00", "2026-10-15T17:00:00-04:00"),
		{Summary: "Holiday", Start: &calendar.EventDateTime{Date: "2026-10-15"}, End: &calendar.EventDateTime{Date: "2026-10-16"}},
		{Summary: "Gone", Status: "cancelled", Start: &calendar.EventDateTime{DateTime: "2026-10-15T14:00:00-04:00"}, End: &calendar.EventDateTime{DateTime: "2026-10-15T15:00:00-04:00"}},
		{Summary: "Reminder", Transparency: "transparent", Start: &calendar.EventDateTime{DateTime: "2026-10-15T14:00:00-04:00"}, End: &calendar.EventDateTime{DateTime: "2026-10-15T15:00:00-04:00"}},
	}}
	c := newTestClient(t, api)

	start := time.Date(2026, 10, 15, 18, 0, 0, 0, time.UTC)
	busy, err := c.BusyInWindow(context.Background(), start, start.Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, busy, 3)

	assert.Equal(t, "Lecture", busy[0].Label)
	assert.True(t, busy[0].Concrete())
	assert.Equal(t, 30*time.Minute, busy[0].End.Sub(busy[0].Start))
	assert.Empty(t, busy[1].Label)
	assert.Equal(t, "Holiday", busy[2].Label)
	assert.False(t, busy[2].Concrete(), "all-day events carry no timestamps")

	require.Len(t, api.queries, 1)
	assert.Contains(t, api.queries[0], "singleEvents=true")
	assert.Contains(t, api.queries[0], "orderBy=startTime")
	assert.Contains(t, api.queries[0], "timeMin=2026-10-15T18%3A00%3A00Z")
}

func TestCreateBusy(t *testing.T) {
	api := &fakeAPI{}
	c := newTestClient(t, api)

	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	iv, err := interval.New(
		time.Date(2026, 10, 15, 14, 0, 0, 0, loc),
		time.Date(2026, 10, 15, 16, 0, 0, 0, loc),
	)
	require.NoError(t, err)

	require.NoError(t, c.CreateBusy(context.Background(), iv, "TA Office Hours (Covered)"))
	require.Len(t, api.inserted, 1)

	ev := api.inserted[0]
	assert.Equal(t, "TA Office Hours (Covered)", ev.Summary)
	assert.Equal(t, "2026-10-15T14:00:00-04:00", ev.Start.DateTime)
	assert.Equal(t, "2026-10-15T16:00:00-04:00", ev.End.DateTime)
	assert.Equal(t, "America/New_York", ev.Start.TimeZone)
}

func TestCreateBusy_EmptyInterval(t *testing.T) {
	c := newTestClient(t, &fakeAPI{})
	assert.Error(t, c.CreateBusy(context.Background(), interval.TimeInterval{}, "x"))
}

func TestAPIErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantFatal bool
	}{
		{"unauthorized", http.StatusUnauthorized, true},
		{"forbidden", http.StatusForbidden, true},
		{"not found", http.StatusNotFound, false},
		{"bad request", http.StatusBadRequest, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, &fakeAPI{status: tt.status})
			now := time.Now()
			_, err := c.BusyInWindow(context.Background(), now, now.Add(time.Hour))
			require.Error(t, err)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.Code)
			assert.Equal(t, tt.wantFatal, claim.IsFatal(err))
		})
	}
}

func TestAPIError_RetrieveErrorIsFatal(t *testing.T) {
	err := newAPIError("list events", fmt.Errorf("refresh: %w", &oauth2.RetrieveError{ErrorCode: "invalid_grant"}))
	assert.True(t, err.Fatal())
	assert.Contains(t, err.Error(), "calendar list events failed")

	err = newAPIError("list events", errors.New("connection reset"))
	assert.False(t, err.Fatal())
}

func TestNewClient_NoToken(t *testing.T) {
	_, err := NewClient(context.Background(), nil)
	assert.Error(t, err)

	_, err = NewClient(context.Background(), google.StaticTokenProvider{}, WithAccount("work"))
	assert.ErrorIs(t, err, google.ErrNoToken)
}

func TestNewClient_Options(t *testing.T) {
	c, err := NewClient(context.Background(),
		google.StaticTokenProvider{Token: &oauth2.Token{AccessToken: "x"}},
		WithCalendarID("team@example.com"),
	)
	require.NoError(t, err)
	assert.Equal(t, "team@example.com", c.CalendarID())

	c, err = NewClient(context.Background(),
		google.StaticTokenProvider{Token: &oauth2.Token{AccessToken: "x"}},
		WithCalendarID(""),
	)
	require.NoError(t, err)
	assert.Equal(t, DefaultCalendarID, c.CalendarID())
}
