package shift_tools

import (
	"time"

	"github.com/teemow/shiftclaim/internal/availability"
	"github.com/teemow/shiftclaim/internal/intent"
	"github.com/teemow/shiftclaim/internal/interval"
)

type signalResult struct {
	Detected bool   `json:"detected"`
	Action   string `json:"action,omitempty"`
	Word     string `json:"word,omitempty"`
	Topic    string `json:"topic,omitempty"`
}

func toSignalResult(s intent.Signal) signalResult {
	return signalResult{Detected: s.Detected, Action: s.Action, Word: s.Word, Topic: s.Topic}
}

type intervalResult struct {
	Start    string `json:"start"`
	End      string `json:"end"`
	Duration string `json:"duration"`
	TimeZone string `json:"timeZone"`
}

func toIntervalResult(iv interval.TimeInterval) *intervalResult {
	if iv.IsZero() {
		return nil
	}
	return &intervalResult{
		Start:    iv.Start().Format(time.RFC3339),
		End:      iv.End().Format(time.RFC3339),
		Duration: iv.Duration().String(),
		TimeZone: iv.Location().String(),
	}
}

type rejectedCandidate struct {
	Text   string `json:"text"`
	Reason string `json:"reason"`
}

type extractResult struct {
	Found    bool                `json:"found"`
	Interval *intervalResult     `json:"interval,omitempty"`
	Rejected []rejectedCandidate `json:"rejected,omitempty"`
}

type conflictResult struct {
	Label string `json:"label"`
	Start string `json:"start"`
	End   string `json:"end"`
}

type availabilityResult struct {
	Interval *intervalResult `json:"interval"`
	Verdict  string          `json:"verdict"`
	Conflict *conflictResult `json:"conflict,omitempty"`
}

func toAvailabilityResult(iv interval.TimeInterval, d availability.Decision) availabilityResult {
	res := availabilityResult{
		Interval: toIntervalResult(iv),
		Verdict:  d.Verdict.String(),
	}
	if !d.Free() && d.Busy != nil {
		res.Conflict = &conflictResult{
			Label: d.Label(),
			Start: d.Busy.Start.Format(time.RFC3339),
			End:   d.Busy.End.Format(time.RFC3339),
		}
	}
	return res
}

type claimResult struct {
	Outcome   string          `json:"outcome"`
	Signal    signalResult    `json:"signal"`
	Interval  *intervalResult `json:"interval,omitempty"`
	Conflict  *conflictResult `json:"conflict,omitempty"`
	ReplySent bool            `json:"replySent"`
	Error     string          `json:"error,omitempty"`
}
