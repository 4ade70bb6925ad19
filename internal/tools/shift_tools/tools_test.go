package shift_tools

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/shiftclaim/internal/availability"
	"github.com/teemow/shiftclaim/internal/claim"
	"github.com/teemow/shiftclaim/internal/google"
	"github.com/teemow/shiftclaim/internal/interval"
	"github.com/teemow/shiftclaim/internal/server"
)

const (
	cancelMessage = "Hey all, cancelling my office hours today, 2 to 4. Sorry!"
	morning       = "2026-10-15T09:00:00-04:00"
)

type fakeSchedule struct {
	mu        sync.Mutex
	busy      []availability.BusyInterval
	listErr   error
	createErr error
	created   []interval.TimeInterval
	titles    []string
}

func (f *fakeSchedule) BusyInWindow(_ context.Context, start, end time.Time) ([]availability.BusyInterval, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.busy, nil
}

func (f *fakeSchedule) CreateBusy(_ context.Context, iv interval.TimeInterval, title string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, iv)
	f.titles = append(f.titles, title)
	return nil
}

type fakeReplier struct {
	err  error
	sent []string
}

func (f *fakeReplier) Send(_ context.Context, text string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, text)
	return nil
}

func newServerContext(t *testing.T, schedule server.Schedule, opts ...server.Option) *server.ServerContext {
	t.Helper()
	cfg := claim.Config{
		PollInterval: time.Second,
		Timezone:     "America/New_York",
		ReplyText:    claim.DefaultReplyText,
		EventTitle:   claim.DefaultEventTitle,
	}
	opts = append([]server.Option{server.WithTokenProvider(google.StaticTokenProvider{})}, opts...)
	sc, err := server.NewServerContext(context.Background(), cfg, opts...)
	require.NoError(t, err)
	if schedule != nil {
		sc.SetScheduleForAccount(google.DefaultAccount, schedule)
	}
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func request(args map[string]interface{}) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func decode(t *testing.T, res *mcp.CallToolResult, v any) {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	require.NoError(t, json.Unmarshal([]byte(tc.Text), v), tc.Text)
}

func errorText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.True(t, res.IsError)
	return res.Content[0].(mcp.TextContent).Text
}

func TestRegisterShiftTools(t *testing.T) {
	tests := []struct {
		name      string
		readOnly  bool
		wantClaim bool
	}{
		{"read only", true, false},
		{"with write access", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mcpserver.NewMCPServer("test", "0.0.0", mcpserver.WithToolCapabilities(true))
			require.NoError(t, RegisterShiftTools(s, newServerContext(t, nil), tt.readOnly))

			resp := s.HandleMessage(context.Background(), json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
			data, err := json.Marshal(resp)
			require.NoError(t, err)

			for _, name := range []string{"shift_classify_message", "shift_extract_interval", "shift_check_availability"} {
				assert.Contains(t, string(data), name)
			}
			if tt.wantClaim {
				assert.Contains(t, string(data), "shift_claim\"")
			} else {
				assert.NotContains(t, string(data), "shift_claim\"")
			}
		})
	}
}

func TestHandleClassify(t *testing.T) {
	sc := newServerContext(t, nil)

	res, err := handleClassify(context.Background(), request(map[string]interface{}{"text": cancelMessage}), sc)
	require.NoError(t, err)
	var sig signalResult
	decode(t, res, &sig)
	assert.True(t, sig.Detected)
	assert.Equal(t, "cancel", sig.Action)
	assert.Equal(t, "office hours", sig.Topic)

	res, err = handleClassify(context.Background(), request(map[string]interface{}{"text": "see you at office hours"}), sc)
	require.NoError(t, err)
	decode(t, res, &sig)
	assert.False(t, sig.Detected)

	res, err = handleClassify(context.Background(), request(nil), sc)
	require.NoError(t, err)
	assert.Equal(t, "text is required", errorText(t, res))
}

func TestHandleExtract(t *testing.T) {
	sc := newServerContext(t, nil)

	res, err := handleExtract(context.Background(), request(map[string]interface{}{
		"text": "can't do 5pm to 2pm, so 2 to 4 instead",
		"now":  morning,
	}), sc)
	require.NoError(t, err)

	var out extractResult
	decode(t, res, &out)
	require.True(t, out.Found)
	assert.Equal(t, "2026-10-15T14:00:00-04:00", out.Interval.Start)
	assert.Equal(t, "2026-10-15T16:00:00-04:00", out.Interval.End)
	assert.Equal(t, "2h0m0s", out.Interval.Duration)
	assert.Equal(t, "America/New_York", out.Interval.TimeZone)
	require.Len(t, out.Rejected, 1)
	assert.Contains(t, out.Rejected[0].Text, "5pm to 2pm")

	res, err = handleExtract(context.Background(), request(map[string]interface{}{"text": "no times here"}), sc)
	require.NoError(t, err)
	out = extractResult{}
	decode(t, res, &out)
	assert.False(t, out.Found)
	assert.Nil(t, out.Interval)

	res, err = handleExtract(context.Background(), request(map[string]interface{}{"text": "2 to 4", "now": "today"}), sc)
	require.NoError(t, err)
	assert.Contains(t, errorText(t, res), "RFC 3339")
}

func TestHandleCheckAvailability(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	schedule := &fakeSchedule{busy: []availability.BusyInterval{{
		Start: time.Date(2026, 10, 15, 15, 0, 0, 0, loc),
		End:   time.Date(2026, 10, 15, 15, 30, 0, 0, loc),
		Label: "Lecture",
	}}}
	sc := newServerContext(t, schedule)

	res, err := handleCheckAvailability(context.Background(), request(map[string]interface{}{
		"text": cancelMessage,
		"now":  morning,
	}), sc)
	require.NoError(t, err)
	var out availabilityResult
	decode(t, res, &out)
	assert.Equal(t, "conflict", out.Verdict)
	require.NotNil(t, out.Conflict)
	assert.Equal(t, "Lecture", out.Conflict.Label)

	res, err = handleCheckAvailability(context.Background(), request(map[string]interface{}{
		"start": "2026-10-15T15:30:00-04:00",
		"end":   "2026-10-15T17:00:00-04:00",
	}), sc)
	require.NoError(t, err)
	out = availabilityResult{}
	decode(t, res, &out)
	assert.Equal(t, "free", out.Verdict, "touching ranges do not conflict")
	assert.Nil(t, out.Conflict)
}

func TestHandleCheckAvailability_Errors(t *testing.T) {
	tests := []struct {
		name     string
		schedule *fakeSchedule
		args     map[string]interface{}
		wantMsg  string
	}{
		{"nothing to check", &fakeSchedule{}, map[string]interface{}{}, "either text or start and end are required"},
		{"half range", &fakeSchedule{}, map[string]interface{}{"start": morning}, "start and end must be given together"},
		{"reversed range", &fakeSchedule{}, map[string]interface{}{"start": "2026-10-15T17:00:00Z", "end": "2026-10-15T16:00:00Z"}, "start"},
		{"no range in text", &fakeSchedule{}, map[string]interface{}{"text": "cancelling office hours"}, "no usable time range"},
		{"calendar down", &fakeSchedule{listErr: errors.New("HTTP 500")}, map[string]interface{}{"text": "2 to 4"}, "Failed to query calendar"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := handleCheckAvailability(context.Background(), request(tt.args), newServerContext(t, tt.schedule))
			require.NoError(t, err)
			assert.Contains(t, errorText(t, res), tt.wantMsg)
		})
	}
}

func TestHandleCheckAvailability_NoToken(t *testing.T) {
	res, err := handleCheckAvailability(context.Background(), request(map[string]interface{}{"text": "2 to 4"}), newServerContext(t, nil))
	require.NoError(t, err)
	assert.Contains(t, errorText(t, res), "no Google OAuth token")
}

func TestHandleClaim(t *testing.T) {
	schedule := &fakeSchedule{}
	replier := &fakeReplier{}
	sc := newServerContext(t, schedule, server.WithReplier(replier))

	res, err := handleClaim(context.Background(), request(map[string]interface{}{
		"text": cancelMessage,
		"now":  morning,
	}), sc)
	require.NoError(t, err)
	assert.False(t, res.IsError)

	var out claimResult
	decode(t, res, &out)
	assert.Equal(t, "claimed", out.Outcome)
	assert.True(t, out.ReplySent)
	assert.Equal(t, []string{claim.DefaultReplyText}, replier.sent)
	require.Len(t, schedule.created, 1)
	assert.Equal(t, claim.DefaultEventTitle, schedule.titles[0])
	assert.Equal(t, 14, schedule.created[0].Start().Hour())
}

func TestHandleClaim_OnlyOnce(t *testing.T) {
	schedule := &fakeSchedule{}
	replier := &fakeReplier{}
	sc := newServerContext(t, schedule, server.WithReplier(replier))
	args := map[string]interface{}{"text": cancelMessage, "now": morning}

	res, err := handleClaim(context.Background(), request(args), sc)
	require.NoError(t, err)
	require.False(t, res.IsError)

	res, err = handleClaim(context.Background(), request(args), sc)
	require.NoError(t, err)
	assert.Contains(t, errorText(t, res), "already claimed a shift")
	assert.Len(t, replier.sent, 1)
	assert.Len(t, schedule.created, 1)
}

func TestHandleClaim_FailedClaimIsFinal(t *testing.T) {
	schedule := &fakeSchedule{}
	sc := newServerContext(t, schedule, server.WithReplier(&fakeReplier{err: errors.New("signal down")}))
	args := map[string]interface{}{"text": cancelMessage, "now": morning}

	res, err := handleClaim(context.Background(), request(args), sc)
	require.NoError(t, err)
	require.True(t, res.IsError)

	res, err = handleClaim(context.Background(), request(args), sc)
	require.NoError(t, err)
	assert.Contains(t, errorText(t, res), "already claimed a shift")
	assert.Empty(t, schedule.created)
}

func TestHandleClaim_NotClaimed(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	tests := []struct {
		name        string
		text        string
		busy        []availability.BusyInterval
		wantOutcome string
	}{
		{"no cancellation", "office hours as usual 2 to 4", nil, "no_signal"},
		{"no range", "cancelling office hours today", nil, "unparseable"},
		{"conflict", cancelMessage, []availability.BusyInterval{{
			Start: time.Date(2026, 10, 15, 13, 0, 0, 0, loc),
			End:   time.Date(2026, 10, 15, 14, 30, 0, 0, loc),
		}}, "conflict"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schedule := &fakeSchedule{busy: tt.busy}
			replier := &fakeReplier{}
			sc := newServerContext(t, schedule, server.WithReplier(replier))

			res, err := handleClaim(context.Background(), request(map[string]interface{}{"text": tt.text, "now": morning}), sc)
			require.NoError(t, err)
			var out claimResult
			decode(t, res, &out)
			assert.Equal(t, tt.wantOutcome, out.Outcome)
			assert.Empty(t, replier.sent)
			assert.Empty(t, schedule.created)
		})
	}
}

func TestHandleClaim_Failures(t *testing.T) {
	t.Run("reply fails", func(t *testing.T) {
		schedule := &fakeSchedule{}
		sc := newServerContext(t, schedule, server.WithReplier(&fakeReplier{err: errors.New("signal down")}))

		res, err := handleClaim(context.Background(), request(map[string]interface{}{"text": cancelMessage, "now": morning}), sc)
		require.NoError(t, err)
		assert.True(t, res.IsError)
		var out claimResult
		decode(t, res, &out)
		assert.Equal(t, "claim_failed", out.Outcome)
		assert.False(t, out.ReplySent)
		assert.Empty(t, schedule.created)
	})

	t.Run("create fails", func(t *testing.T) {
		schedule := &fakeSchedule{createErr: errors.New("quota")}
		replier := &fakeReplier{}
		sc := newServerContext(t, schedule, server.WithReplier(replier))

		res, err := handleClaim(context.Background(), request(map[string]interface{}{"text": cancelMessage, "now": morning}), sc)
		require.NoError(t, err)
		var out claimResult
		decode(t, res, &out)
		assert.Equal(t, "claim_failed", out.Outcome)
		assert.True(t, out.ReplySent)
		assert.Len(t, replier.sent, 1)
	})

	t.Run("no replier", func(t *testing.T) {
		res, err := handleClaim(context.Background(), request(map[string]interface{}{"text": cancelMessage}), newServerContext(t, &fakeSchedule{}))
		require.NoError(t, err)
		assert.Contains(t, errorText(t, res), "no chat replier configured")
	})
}
