package claim

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/shiftclaim/internal/availability"
	"github.com/teemow/shiftclaim/internal/intent"
	"github.com/teemow/shiftclaim/internal/interval"
)

func TestEvaluate(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	now := time.Date(2026, 10, 15, 9, 0, 0, 0, loc)
	at := func(h, m int) time.Time { return time.Date(2026, 10, 15, h, m, 0, 0, loc) }

	busy := &fakeCalendar{busy: []availability.BusyInterval{{Start: at(9, 0), End: at(10, 0), Label: "Standup"}}}

	tests := []struct {
		name     string
		text     string
		schedule ScheduleReader
		want     Outcome
	}{
		{"no signal", "lunch at 12 to 1?", busy, OutcomeNoSignal},
		{"unparseable", "office hours cancelled", busy, OutcomeUnparseable},
		{"free", "skipping OH 2-4", busy, OutcomeFree},
		{"conflict", "office hours cancelled 9:30-11", busy, OutcomeConflict},
		{"query failed", "office hours cancelled 2-4", &fakeCalendar{queryErr: errFlaky}, OutcomeQueryFailed},
		{"no schedule", "office hours cancelled 9:30-11", nil, OutcomeFree},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &Evaluator{
				Classifier: intent.Default(),
				Parser:     interval.NewParser(loc),
				Schedule:   tt.schedule,
			}
			res := e.Evaluate(context.Background(), tt.text, now)
			assert.Equal(t, tt.want, res.Outcome)
			if tt.want == OutcomeConflict {
				assert.Equal(t, "Standup", res.Decision.Label())
			}
			if tt.want == OutcomeQueryFailed {
				assert.ErrorIs(t, res.Err, errFlaky)
			}
		})
	}
}
