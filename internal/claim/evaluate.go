package claim

import (
	"context"
	"log/slog"
	"time"

	"github.com/teemow/shiftclaim/internal/availability"
	"github.com/teemow/shiftclaim/internal/intent"
	"github.com/teemow/shiftclaim/internal/interval"
	"github.com/teemow/shiftclaim/internal/logging"
)

// Result describes how one piece of text was handled.
type Result struct {
	Outcome  Outcome
	Signal   intent.Signal
	Interval interval.TimeInterval
	Decision availability.Decision
	Err      error
}

// Evaluator runs the side-effect free part of a cycle: classify, extract
// and check. With a nil Schedule every extracted interval is reported as
// OutcomeFree without consulting a calendar.
type Evaluator struct {
	Classifier *intent.Classifier
	Parser     *interval.Parser
	Schedule   ScheduleReader
	Logger     *slog.Logger
}

// Evaluate handles text as if it had been captured at now.
func (e *Evaluator) Evaluate(ctx context.Context, text string, now time.Time) Result {
	logger := e.Logger
	if logger == nil {
		logger = slog.Default()
	}

	res := Result{Signal: e.Classifier.Detect(text)}
	if !res.Signal.Detected {
		res.Outcome = OutcomeNoSignal
		return res
	}
	logger.Info("cancellation detected",
		slog.String("action", res.Signal.Word),
		slog.String("topic", res.Signal.Topic))

	iv, ok := e.Parser.Extract(text, now)
	if !ok {
		res.Outcome = OutcomeUnparseable
		logger.Info("could not understand the time range", logging.Text(text))
		return res
	}
	res.Interval = iv

	if e.Schedule == nil {
		res.Outcome = OutcomeFree
		return res
	}

	busy, err := e.Schedule.BusyInWindow(ctx, iv.Start(), iv.End())
	if err != nil {
		res.Outcome = OutcomeQueryFailed
		res.Err = err
		return res
	}

	res.Decision = availability.Check(iv, busy)
	if res.Decision.Free() {
		res.Outcome = OutcomeFree
	} else {
		res.Outcome = OutcomeConflict
	}
	return res
}
