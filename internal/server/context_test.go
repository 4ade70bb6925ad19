package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/shiftclaim/internal/availability"
	"github.com/teemow/shiftclaim/internal/claim"
	"github.com/teemow/shiftclaim/internal/google"
	"github.com/teemow/shiftclaim/internal/interval"
)

func testConfig() claim.Config {
	return claim.Config{
		PollInterval: time.Second,
		Timezone:     "America/New_York",
		ReplyText:    claim.DefaultReplyText,
		EventTitle:   claim.DefaultEventTitle,
	}
}

type nopSchedule struct{}

func (nopSchedule) BusyInWindow(context.Context, time.Time, time.Time) ([]availability.BusyInterval, error) {
	return nil, nil
}

func (nopSchedule) CreateBusy(context.Context, interval.TimeInterval, string) error {
	return nil
}

func TestNewServerContext(t *testing.T) {
	sc, err := NewServerContext(context.Background(), testConfig(),
		WithTokenProvider(google.StaticTokenProvider{}))
	require.NoError(t, err)

	assert.NotNil(t, sc.Classifier())
	assert.Equal(t, "America/New_York", sc.Parser().Location().String())
	assert.Nil(t, sc.Replier())
	assert.Nil(t, sc.Metrics())
	assert.NotNil(t, sc.Logger())
	assert.Equal(t, claim.DefaultReplyText, sc.Config().ReplyText)

	bad := testConfig()
	bad.Timezone = "Mars/Olympus"
	_, err = NewServerContext(context.Background(), bad)
	assert.Error(t, err)
}

func TestServerContext_ScheduleForAccount(t *testing.T) {
	sc, err := NewServerContext(context.Background(), testConfig(),
		WithTokenProvider(google.StaticTokenProvider{}))
	require.NoError(t, err)

	_, err = sc.ScheduleForAccount("")
	assert.True(t, errors.Is(err, google.ErrNoToken), "got %v", err)

	sc.SetScheduleForAccount(google.DefaultAccount, nopSchedule{})
	s, err := sc.ScheduleForAccount("")
	require.NoError(t, err)
	assert.Equal(t, nopSchedule{}, s)
}

func TestServerContext_TryClaim(t *testing.T) {
	sc, err := NewServerContext(context.Background(), testConfig())
	require.NoError(t, err)

	assert.False(t, sc.Claimed())
	assert.True(t, sc.TryClaim())
	assert.True(t, sc.Claimed())
	assert.False(t, sc.TryClaim())
}

func TestServerContext_Shutdown(t *testing.T) {
	sc, err := NewServerContext(context.Background(), testConfig())
	require.NoError(t, err)
	sc.SetScheduleForAccount("work", nopSchedule{})

	assert.False(t, sc.IsShutdown())
	require.NoError(t, sc.Shutdown())
	require.NoError(t, sc.Shutdown())
	assert.True(t, sc.IsShutdown())
	assert.ErrorIs(t, sc.Context().Err(), context.Canceled)
}
