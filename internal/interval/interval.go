package interval

import (
	"errors"
	"fmt"
	"time"
)

// ErrReversed is returned when an interval does not end after it starts.
var ErrReversed = errors.New("interval end is not after start")

// TimeInterval is a half-open range [Start, End) with Start strictly before
// End. Both endpoints share one location. The zero value is the empty
// interval and is never returned by New.
type TimeInterval struct {
	start time.Time
	end   time.Time
}

// New validates and builds a TimeInterval. The end is moved into the start's
// location.
func New(start, end time.Time) (TimeInterval, error) {
	if !start.Before(end) {
		return TimeInterval{}, fmt.Errorf("%w: %s >= %s", ErrReversed,
			start.Format(time.Kitchen), end.Format(time.Kitchen))
	}
	return TimeInterval{start: start, end: end.In(start.Location())}, nil
}

// Start returns the inclusive start.
func (iv TimeInterval) Start() time.Time { return iv.start }

// End returns the exclusive end.
func (iv TimeInterval) End() time.Time { return iv.end }

// Location returns the zone both endpoints are expressed in.
func (iv TimeInterval) Location() *time.Location { return iv.start.Location() }

// Duration returns End - Start.
func (iv TimeInterval) Duration() time.Duration { return iv.end.Sub(iv.start) }

// IsZero reports whether iv is the empty interval.
func (iv TimeInterval) IsZero() bool { return iv.start.IsZero() && iv.end.IsZero() }

// String renders the interval as "2006-01-02 15:04-15:04 MST".
func (iv TimeInterval) String() string {
	if iv.IsZero() {
		return "<none>"
	}
	return fmt.Sprintf("%s %s-%s %s",
		iv.start.Format("2006-01-02"),
		iv.start.Format("15:04"),
		iv.end.Format("15:04"),
		iv.start.Format("MST"))
}
