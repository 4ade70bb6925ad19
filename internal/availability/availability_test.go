package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/shiftclaim/internal/interval"
)

var day = time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)

func at(h, m int) time.Time {
	return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
}

func candidate(t *testing.T) interval.TimeInterval {
	t.Helper()
	iv, err := interval.New(at(14, 0), at(16, 0))
	require.NoError(t, err)
	return iv
}

func TestCheck(t *testing.T) {
	iv := candidate(t)

	tests := []struct {
		name      string
		busy      []BusyInterval
		want      Verdict
		wantLabel string
	}{
		{"empty schedule", nil, Free, ""},
		{"contained", []BusyInterval{{at(15, 0), at(15, 30), "Lab"}}, Conflict, "Lab"},
		{"touching after", []BusyInterval{{at(16, 0), at(17, 0), "Seminar"}}, Free, ""},
		{"touching before", []BusyInterval{{at(13, 0), at(14, 0), "Lunch"}}, Free, ""},
		{"overlapping start", []BusyInterval{{at(13, 30), at(14, 1), "Lunch"}}, Conflict, "Lunch"},
		{"covering", []BusyInterval{{at(9, 0), at(18, 0), "Workshop"}}, Conflict, "Workshop"},
		{"untitled", []BusyInterval{{at(15, 0), at(15, 30), ""}}, Conflict, "No Title"},
		{"all-day entry skipped", []BusyInterval{{Label: "Holiday"}}, Free, ""},
		{"missing end skipped", []BusyInterval{{Start: at(15, 0), Label: "Open"}}, Free, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Check(iv, tt.busy)
			assert.Equal(t, tt.want, d.Verdict)
			assert.Equal(t, tt.wantLabel, d.Label())
			assert.Equal(t, tt.want == Free, d.Free())
		})
	}
}

func TestCheckFirstConflictWins(t *testing.T) {
	busy := []BusyInterval{
		{Label: "All day"},
		{at(10, 0), at(11, 0), "Morning"},
		{at(15, 0), at(15, 30), "First"},
		{at(14, 0), at(16, 0), "Second"},
	}

	d := Check(candidate(t), busy)
	require.Equal(t, Conflict, d.Verdict)
	assert.Equal(t, "First", d.Label())
	assert.Equal(t, `conflict with "First" (15:00-15:30)`, d.String())
}

func TestCheckDoesNotAliasInput(t *testing.T) {
	busy := []BusyInterval{{at(15, 0), at(15, 30), "Lab"}}
	d := Check(candidate(t), busy)
	busy[0].Label = "changed"
	assert.Equal(t, "Lab", d.Label())
}

func TestDecisionStringFree(t *testing.T) {
	assert.Equal(t, "free", Check(candidate(t), nil).String())
}
