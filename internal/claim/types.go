package claim

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/teemow/shiftclaim/internal/availability"
	"github.com/teemow/shiftclaim/internal/interval"
)

// Capturer returns the chat text visible right now. An error is treated as
// "nothing to read" for that cycle.
type Capturer interface {
	Capture(ctx context.Context) (string, error)
}

// ScheduleReader lists the busy slots overlapping [start, end).
type ScheduleReader interface {
	BusyInWindow(ctx context.Context, start, end time.Time) ([]availability.BusyInterval, error)
}

// ScheduleWriter books iv on the schedule.
type ScheduleWriter interface {
	CreateBusy(ctx context.Context, iv interval.TimeInterval, title string) error
}

// Replier posts text to the chat the cancellation came from.
type Replier interface {
	Send(ctx context.Context, text string) error
}

// Phase is the lifecycle state of a run.
type Phase int

const (
	PhaseWaiting Phase = iota
	PhaseDone
)

func (p Phase) String() string {
	if p == PhaseDone {
		return "done"
	}
	return "waiting"
}

// Session is the state threaded through a run. It is created by Run and
// returned when the run ends.
type Session struct {
	Phase     Phase
	Cycles    int
	StartedAt time.Time
	// Claimed is the interval a claim was attempted for, zero otherwise.
	Claimed interval.TimeInterval
	// Last is the outcome of the most recent cycle.
	Last Outcome
}

// Outcome classifies what happened in one cycle.
type Outcome string

const (
	OutcomeNoSignal    Outcome = "no_signal"
	OutcomeUnparseable Outcome = "unparseable"
	OutcomeQueryFailed Outcome = "query_failed"
	OutcomeConflict    Outcome = "conflict"
	OutcomeFree        Outcome = "free"
	OutcomeClaimed     Outcome = "claimed"
	OutcomeClaimFailed Outcome = "claim_failed"
)

// Fatal is implemented by errors that make further polling pointless, such
// as a revoked calendar authorization.
type Fatal interface {
	Fatal() bool
}

// IsFatal reports whether any error in err's chain reports itself fatal.
func IsFatal(err error) bool {
	var f Fatal
	return errors.As(err, &f) && f.Fatal()
}

// ClaimError reports a claim that did not complete. ReplySent tells whether
// the chat already saw the reply; the calendar entry is never created
// without it.
type ClaimError struct {
	Op        string
	Interval  interval.TimeInterval
	ReplySent bool
	Err       error
}

func (e *ClaimError) Error() string {
	return fmt.Sprintf("claim %s failed for %s (reply sent: %t): %v", e.Op, e.Interval, e.ReplySent, e.Err)
}

func (e *ClaimError) Unwrap() error {
	return e.Err
}
