package interval

import (
	"errors"
	"fmt"
	"time"
)

// Meridiem is the am/pm marker written next to an hour, if any.
type Meridiem int

const (
	MeridiemNone Meridiem = iota
	MeridiemAM
	MeridiemPM
)

func (m Meridiem) String() string {
	switch m {
	case MeridiemAM:
		return "am"
	case MeridiemPM:
		return "pm"
	default:
		return ""
	}
}

// ErrInvalidClock is returned for clock readings that name no time of day.
var ErrInvalidClock = errors.New("invalid clock time")

// Clock is one endpoint of a candidate as written in the text.
type Clock struct {
	Hour     int
	Minute   int
	Meridiem Meridiem
}

func (c Clock) String() string {
	return fmt.Sprintf("%d:%02d%s", c.Hour, c.Minute, c.Meridiem)
}

func (c Clock) validate() error {
	if c.Minute < 0 || c.Minute > 59 {
		return fmt.Errorf("%w: minute %d", ErrInvalidClock, c.Minute)
	}
	if c.Meridiem != MeridiemNone {
		if c.Hour < 1 || c.Hour > 12 {
			return fmt.Errorf("%w: %d%s", ErrInvalidClock, c.Hour, c.Meridiem)
		}
		return nil
	}
	if c.Hour < 0 || c.Hour > 23 {
		return fmt.Errorf("%w: hour %d", ErrInvalidClock, c.Hour)
	}
	return nil
}

// explicit converts a marked 12-hour reading to a 24-hour hour.
func explicit(hour int, m Meridiem) int {
	switch {
	case m == MeridiemAM && hour == 12:
		return 0
	case m == MeridiemPM && hour != 12:
		return hour + 12
	default:
		return hour
	}
}

// MeridiemPolicy maps the two written endpoints to 24-hour hours.
type MeridiemPolicy func(start, end Clock) (startHour, endHour int, err error)

// DaytimeShift reads unmarked hours the way a daytime shift is usually
// written:
//
//   - 8 to 11 are morning and 1 to 7 are afternoon or evening;
//   - 12 is noon;
//   - 0 and 13 to 23 are already on the 24-hour clock;
//   - an unmarked end of 8 to 11 stays in the morning only when the start
//     is a morning hour no later than it, otherwise it moves to the evening;
//   - an unmarked start follows a marked end ("9 to 10pm", "7 to 9am") when
//     that keeps the range forward.
//
// Explicit am/pm markers always win.
func DaytimeShift(start, end Clock) (int, int, error) {
	if err := start.validate(); err != nil {
		return 0, 0, err
	}
	if err := end.validate(); err != nil {
		return 0, 0, err
	}

	sh := resolveStart(start)
	eh := resolveEnd(end, sh)

	if start.Meridiem == MeridiemNone && start.Hour >= 1 && start.Hour <= 11 {
		switch end.Meridiem {
		case MeridiemPM:
			if pm := start.Hour + 12; pm < eh {
				sh = pm
			}
		case MeridiemAM:
			sh = start.Hour
		}
	}
	return sh, eh, nil
}

func resolveStart(c Clock) int {
	switch {
	case c.Meridiem != MeridiemNone:
		return explicit(c.Hour, c.Meridiem)
	case c.Hour == 0 || c.Hour >= 12:
		return c.Hour
	case c.Hour >= 8:
		return c.Hour
	default:
		return c.Hour + 12
	}
}

func resolveEnd(c Clock, startHour int) int {
	switch {
	case c.Meridiem != MeridiemNone:
		return explicit(c.Hour, c.Meridiem)
	case c.Hour == 0 || c.Hour >= 12:
		return c.Hour
	case c.Hour >= 8:
		if startHour < 12 && startHour <= c.Hour {
			return c.Hour
		}
		return c.Hour + 12
	default:
		return c.Hour + 12
	}
}

// DatePolicy picks the calendar day, as midnight in loc, that both
// endpoints are placed on.
type DatePolicy func(now time.Time, loc *time.Location) time.Time

// SameDay places every interval on the current date in loc. A time that has
// already passed today stays on today; a chat message about a shift is taken
// to mean the shift of the day it was written.
func SameDay(now time.Time, loc *time.Location) time.Time {
	y, m, d := now.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// SelectionPolicy chooses one interval from the ordered candidates. resolve
// turns a candidate into an interval or explains why it cannot be one.
type SelectionPolicy func(cands []Candidate, resolve func(Candidate) (TimeInterval, error)) (TimeInterval, []Rejection, bool)

// Rejection records a candidate that did not produce an interval.
type Rejection struct {
	Candidate Candidate
	Err       error
}

// FirstValid returns the first candidate that resolves. Candidates after the
// winner are never evaluated.
func FirstValid(cands []Candidate, resolve func(Candidate) (TimeInterval, error)) (TimeInterval, []Rejection, bool) {
	var rejected []Rejection
	for _, c := range cands {
		iv, err := resolve(c)
		if err != nil {
			rejected = append(rejected, Rejection{Candidate: c, Err: err})
			continue
		}
		return iv, rejected, true
	}
	return TimeInterval{}, rejected, false
}
