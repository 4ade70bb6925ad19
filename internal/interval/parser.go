package interval

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/teemow/shiftclaim/internal/logging"
)

// rangePattern matches "H[:MM][am|pm] (to|-) H[:MM][am|pm]". Markers are
// captured per endpoint so "5pm to 2pm" is seen as reversed instead of
// being re-read.
var rangePattern = regexp.MustCompile(
	`(?i)\b(\d{1,2})(?::(\d{2}))?(?:\s*([ap])\.?m\b\.?)?` +
		`\s*(?:to|till|until|-|–|—)\s*` +
		`(\d{1,2})(?::(\d{2}))?(?:\s*([ap])\.?m\b\.?)?`)

// Candidate is one range-shaped substring of the input.
type Candidate struct {
	Text   string
	Offset int
	Start  Clock
	End    Clock
}

// Parser extracts TimeIntervals from text. A Parser is safe for concurrent
// use once built.
type Parser struct {
	loc       *time.Location
	meridiem  MeridiemPolicy
	date      DatePolicy
	selection SelectionPolicy
	logger    *slog.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithMeridiemPolicy replaces DaytimeShift.
func WithMeridiemPolicy(p MeridiemPolicy) Option {
	return func(ps *Parser) { ps.meridiem = p }
}

// WithDatePolicy replaces SameDay.
func WithDatePolicy(p DatePolicy) Option {
	return func(ps *Parser) { ps.date = p }
}

// WithSelectionPolicy replaces FirstValid.
func WithSelectionPolicy(p SelectionPolicy) Option {
	return func(ps *Parser) { ps.selection = p }
}

// WithLogger sets the logger used for rejected candidates.
func WithLogger(logger *slog.Logger) Option {
	return func(ps *Parser) { ps.logger = logger }
}

// NewParser returns a Parser placing intervals in loc. A nil loc means UTC.
func NewParser(loc *time.Location, opts ...Option) *Parser {
	if loc == nil {
		loc = time.UTC
	}
	p := &Parser{
		loc:       loc,
		meridiem:  DaytimeShift,
		date:      SameDay,
		selection: FirstValid,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Location returns the zone intervals are placed in.
func (p *Parser) Location() *time.Location { return p.loc }

// Extract returns the interval selected from text relative to now, and
// false when the text holds no usable range.
func (p *Parser) Extract(text string, now time.Time) (TimeInterval, bool) {
	iv, rejected, ok := p.Parse(text, now)
	for _, r := range rejected {
		p.logger.Debug("time range candidate rejected",
			logging.Operation("interval.extract"),
			slog.String("candidate", r.Candidate.Text),
			logging.Err(r.Err))
	}
	return iv, ok
}

// Parse is Extract with the rejected candidates reported to the caller.
func (p *Parser) Parse(text string, now time.Time) (TimeInterval, []Rejection, bool) {
	day := p.date(now, p.loc)
	resolve := func(c Candidate) (TimeInterval, error) {
		return p.resolve(c, day)
	}
	return p.selection(Candidates(text), resolve)
}

func (p *Parser) resolve(c Candidate, day time.Time) (TimeInterval, error) {
	sh, eh, err := p.meridiem(c.Start, c.End)
	if err != nil {
		return TimeInterval{}, err
	}
	y, m, d := day.Date()
	start := time.Date(y, m, d, sh, c.Start.Minute, 0, 0, p.loc)
	end := time.Date(y, m, d, eh, c.End.Minute, 0, 0, p.loc)
	return New(start, end)
}

// Candidates returns every range-shaped substring of text in order of
// appearance. A match glued to another number, as in a phone number or the
// tail of a date like 2026-10-15, is not a candidate.
func Candidates(text string) []Candidate {
	var out []Candidate
	for _, loc := range rangePattern.FindAllStringSubmatchIndex(text, -1) {
		if loc[1] < len(text) {
			if r, _ := utf8.DecodeRuneInString(text[loc[1]:]); unicode.IsDigit(r) {
				continue
			}
		}
		if continuesNumber(text[:loc[0]]) {
			continue
		}
		group := func(i int) string {
			if loc[2*i] < 0 {
				return ""
			}
			return text[loc[2*i]:loc[2*i+1]]
		}
		out = append(out, Candidate{
			Text:   strings.TrimSpace(text[loc[0]:loc[1]]),
			Offset: loc[0],
			Start:  clock(group(1), group(2), group(3)),
			End:    clock(group(4), group(5), group(6)),
		})
	}
	return out
}

// continuesNumber reports whether prefix ends in a digit followed by a
// date separator, so the text after it is part of the same number.
func continuesNumber(prefix string) bool {
	sep, n := utf8.DecodeLastRuneInString(prefix)
	if n == 0 || !strings.ContainsRune("-/.", sep) {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(prefix[:len(prefix)-n])
	return unicode.IsDigit(r)
}

func clock(hour, minute, marker string) Clock {
	c := Clock{}
	c.Hour, _ = strconv.Atoi(hour)
	if minute != "" {
		c.Minute, _ = strconv.Atoi(minute)
	}
	switch strings.ToLower(marker) {
	case "a":
		c.Meridiem = MeridiemAM
	case "p":
		c.Meridiem = MeridiemPM
	}
	return c
}
