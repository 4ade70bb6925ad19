// Package availability decides whether a candidate interval is free against
// a snapshot of busy intervals from a schedule.
package availability

import (
	"fmt"
	"time"

	"github.com/teemow/shiftclaim/internal/interval"
)

// BusyInterval is an occupied slot read from a schedule. A zero Start or End
// means the source had no concrete timestamp for it (for example an all-day
// entry), and such entries never conflict.
type BusyInterval struct {
	Start time.Time
	End   time.Time
	Label string
}

// Concrete reports whether both endpoints are known.
func (b BusyInterval) Concrete() bool {
	return !b.Start.IsZero() && !b.End.IsZero()
}

// Overlaps reports whether b intersects iv using half-open semantics, so
// ranges that only touch do not overlap.
func (b BusyInterval) Overlaps(iv interval.TimeInterval) bool {
	return iv.Start().Before(b.End) && iv.End().After(b.Start)
}

// Verdict is the outcome of a check.
type Verdict int

const (
	Free Verdict = iota
	Conflict
)

func (v Verdict) String() string {
	if v == Conflict {
		return "conflict"
	}
	return "free"
}

// Decision is the result of Check. Busy is set only for Conflict.
type Decision struct {
	Verdict Verdict
	Busy    *BusyInterval
}

// Free reports whether the candidate can be claimed.
func (d Decision) Free() bool { return d.Verdict == Free }

// Label names the conflicting entry, or "" when free.
func (d Decision) Label() string {
	if d.Busy == nil {
		return ""
	}
	if d.Busy.Label == "" {
		return "No Title"
	}
	return d.Busy.Label
}

func (d Decision) String() string {
	if d.Busy == nil {
		return d.Verdict.String()
	}
	return fmt.Sprintf("%s with %q (%s-%s)", d.Verdict, d.Label(),
		d.Busy.Start.Format("15:04"), d.Busy.End.Format("15:04"))
}

// Check walks busy in the given order and returns a Conflict for the first
// concrete entry overlapping iv. iv is not re-validated.
func Check(iv interval.TimeInterval, busy []BusyInterval) Decision {
	for i := range busy {
		b := busy[i]
		if !b.Concrete() {
			continue
		}
		if b.Overlaps(iv) {
			return Decision{Verdict: Conflict, Busy: &b}
		}
	}
	return Decision{Verdict: Free}
}
