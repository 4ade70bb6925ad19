package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/shiftclaim/internal/claim"
	"github.com/teemow/shiftclaim/internal/interval"
)

type fakeSessions struct {
	mu   sync.Mutex
	sess claim.Session
}

func (f *fakeSessions) Snapshot() claim.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sess
}

func (f *fakeSessions) set(s claim.Session) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sess = s
}

func serve(t *testing.T, h http.Handler) (int, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestLivenessHandler(t *testing.T) {
	h := NewHealthChecker(nil, nil)
	h.SetReady(false)

	code, body := serve(t, h.LivenessHandler())
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
}

func TestReadinessHandler(t *testing.T) {
	h := NewHealthChecker(nil, nil)
	assert.True(t, h.IsReady())

	code, body := serve(t, h.ReadinessHandler())
	assert.Equal(t, http.StatusOK, code)
	assert.NotContains(t, body["checks"], "watcher")

	h.SetReady(false)
	code, body = serve(t, h.ReadinessHandler())
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "not ready", body["status"])
}

func TestReadinessHandler_FollowsWatcherPhase(t *testing.T) {
	sessions := &fakeSessions{sess: claim.Session{Phase: claim.PhaseWaiting}}
	h := NewHealthChecker(nil, sessions)

	code, body := serve(t, h.ReadinessHandler())
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["checks"].(map[string]any)["watcher"])

	sessions.set(claim.Session{Phase: claim.PhaseDone})
	code, body = serve(t, h.ReadinessHandler())
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "done", body["checks"].(map[string]any)["watcher"])
}

func TestReadinessHandler_ShuttingDown(t *testing.T) {
	sc, err := NewServerContext(context.Background(), testConfig())
	require.NoError(t, err)
	require.NoError(t, sc.Shutdown())

	code, body := serve(t, NewHealthChecker(sc, nil).ReadinessHandler())
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "shutting down", body["checks"].(map[string]any)["shutdown"])
}

func TestDetailedHealthHandler(t *testing.T) {
	loc := time.FixedZone("EDT", -4*3600)
	iv, err := interval.New(
		time.Date(2026, 10, 15, 14, 0, 0, 0, loc),
		time.Date(2026, 10, 15, 16, 0, 0, 0, loc),
	)
	require.NoError(t, err)

	sessions := &fakeSessions{sess: claim.Session{
		Phase:   claim.PhaseDone,
		Cycles:  7,
		Last:    claim.OutcomeClaimed,
		Claimed: iv,
	}}

	code, body := serve(t, NewHealthChecker(nil, sessions).DetailedHealthHandler())
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "done", body["status"])
	assert.Equal(t, "done", body["phase"])
	assert.EqualValues(t, 7, body["cycles"])
	assert.Equal(t, "claimed", body["last_outcome"])
	assert.Equal(t, iv.String(), body["claimed"])
	assert.NotEmpty(t, body["uptime"])
}

func TestDetailedHealthHandler_NotReady(t *testing.T) {
	h := NewHealthChecker(nil, nil)
	h.SetReady(false)

	code, body := serve(t, h.DetailedHealthHandler())
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "not ready", body["status"])
	assert.NotContains(t, body, "phase")
}
