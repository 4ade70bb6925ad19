package claim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"

	"github.com/teemow/shiftclaim/internal/instrumentation"
	"github.com/teemow/shiftclaim/internal/intent"
	"github.com/teemow/shiftclaim/internal/interval"
	"github.com/teemow/shiftclaim/internal/logging"
)

// Deps are the collaborators of an Orchestrator. Capturer, Schedule, Writer
// and Replier are required.
type Deps struct {
	Capturer Capturer
	Schedule ScheduleReader
	Writer   ScheduleWriter
	Replier  Replier

	// Classifier defaults to intent.Default().
	Classifier *intent.Classifier
	// Parser defaults to a parser in the configured time zone.
	Parser *interval.Parser
	// Metrics may be nil.
	Metrics *instrumentation.Metrics
	// Logger defaults to slog.Default().
	Logger *slog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// Orchestrator drives the watch-and-claim loop.
type Orchestrator struct {
	cfg       Config
	evaluator *Evaluator
	capturer  Capturer
	claimer   Claimer
	metrics   *instrumentation.Metrics
	logger    *slog.Logger
	now       func() time.Time

	snapshot atomic.Pointer[Session]
	started  atomic.Bool
}

// ErrAlreadyRun is returned by Run on an Orchestrator that has run before.
var ErrAlreadyRun = errors.New("orchestrator already ran")

// New validates cfg and deps and returns an Orchestrator.
func New(cfg Config, deps Deps) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	switch {
	case deps.Capturer == nil:
		return nil, errors.New("capturer is required")
	case deps.Schedule == nil:
		return nil, errors.New("schedule reader is required")
	case deps.Writer == nil:
		return nil, errors.New("schedule writer is required")
	case deps.Replier == nil:
		return nil, errors.New("replier is required")
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logging.WithService(logger, "claim")

	classifier := deps.Classifier
	if classifier == nil {
		classifier = intent.Default()
	}
	parser := deps.Parser
	if parser == nil {
		loc, err := cfg.Location()
		if err != nil {
			return nil, err
		}
		parser = interval.NewParser(loc, interval.WithLogger(logger))
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	o := &Orchestrator{
		cfg: cfg,
		evaluator: &Evaluator{
			Classifier: classifier,
			Parser:     parser,
			Schedule:   deps.Schedule,
			Logger:     logger,
		},
		capturer: deps.Capturer,
		claimer: Claimer{
			Replier:    deps.Replier,
			Writer:     deps.Writer,
			ReplyText:  cfg.ReplyText,
			EventTitle: cfg.EventTitle,
			Metrics:    deps.Metrics,
		},
		metrics: deps.Metrics,
		logger:  logger,
		now:     now,
	}
	o.snapshot.Store(&Session{Phase: PhaseWaiting})
	return o, nil
}

// Snapshot returns a copy of the current session. It is safe to call from
// other goroutines while Run is active.
func (o *Orchestrator) Snapshot() Session {
	return *o.snapshot.Load()
}

// Run polls until a slot is claimed, a fatal error occurs, MaxCycles is
// reached or ctx is done. It returns the final session.
//
// A claim whose reply or calendar entry failed still ends the run; the
// returned error is a *ClaimError describing which half went through.
// An Orchestrator runs at most once.
func (o *Orchestrator) Run(ctx context.Context) (Session, error) {
	if !o.started.CompareAndSwap(false, true) {
		return o.Snapshot(), ErrAlreadyRun
	}
	sess := Session{Phase: PhaseWaiting, StartedAt: o.now()}
	o.publish(sess)

	o.logger.Info("watching for cancelled shifts",
		logging.Phase(sess.Phase.String()),
		slog.Duration("poll_interval", o.cfg.PollInterval),
		slog.String("timezone", o.cfg.Timezone))

	for sess.Phase == PhaseWaiting {
		if o.cfg.MaxCycles > 0 && sess.Cycles >= o.cfg.MaxCycles {
			o.logger.Info("cycle limit reached", logging.Cycle(sess.Cycles))
			return sess, nil
		}
		if sess.Cycles > 0 {
			if err := o.pause(ctx); err != nil {
				return sess, err
			}
		}

		var res Result
		sess, res = o.step(ctx, sess)
		o.publish(sess)

		switch {
		case res.Outcome == OutcomeClaimed:
			o.logger.Info("shift secured",
				slog.String("interval", res.Interval.String()),
				logging.Cycle(sess.Cycles))
		case res.Outcome == OutcomeClaimFailed:
			return sess, res.Err
		case res.Outcome == OutcomeQueryFailed && IsFatal(res.Err):
			return sess, fmt.Errorf("schedule unavailable: %w", res.Err)
		}
	}
	return sess, nil
}

// pause blocks for one full poll interval counted from now, so a slow cycle
// never eats into the gap before the next capture.
func (o *Orchestrator) pause(ctx context.Context) error {
	gap := rate.NewLimiter(rate.Every(o.cfg.PollInterval), 1)
	gap.Allow()
	if err := gap.Wait(ctx); err != nil {
		// Wait fails early when the gap ends past the deadline; nothing can
		// happen before then either.
		<-ctx.Done()
		return ctx.Err()
	}
	return nil
}

// step runs one cycle and returns the next session.
func (o *Orchestrator) step(ctx context.Context, sess Session) (Session, Result) {
	sess.Cycles++
	start := time.Now()

	ctx, span := instrumentation.StartCycleSpan(ctx, sess.Cycles)
	defer span.End()

	logger := o.logger.With(logging.Cycle(sess.Cycles))
	res := o.cycle(ctx, logger)

	if res.Outcome == OutcomeClaimed || res.Outcome == OutcomeClaimFailed {
		sess.Phase = PhaseDone
		sess.Claimed = res.Interval
	}
	sess.Last = res.Outcome

	span.SetAttributes(
		attribute.String(instrumentation.SpanAttrOutcome, string(res.Outcome)),
		attribute.String(instrumentation.SpanAttrPhase, sess.Phase.String()),
	)
	if res.Err != nil {
		instrumentation.SetSpanError(span, res.Err)
	} else {
		instrumentation.SetSpanSuccess(span)
	}
	o.metrics.RecordCycle(ctx, string(res.Outcome), time.Since(start))
	return sess, res
}

func (o *Orchestrator) cycle(ctx context.Context, logger *slog.Logger) Result {
	text, err := o.capturer.Capture(ctx)
	if err != nil {
		logger.Warn("capture failed, treating as empty text", logging.Err(err))
		text = ""
	}

	ev := *o.evaluator
	ev.Logger = logger
	res := ev.Evaluate(ctx, text, o.now())

	switch res.Outcome {
	case OutcomeNoSignal:
		logger.Debug("no cancellation in captured text", logging.Outcome(string(res.Outcome)))
		return res
	case OutcomeUnparseable:
		return res
	case OutcomeQueryFailed:
		logger.Warn("schedule query failed, not claiming",
			slog.String("interval", res.Interval.String()),
			logging.Err(res.Err))
		return res
	case OutcomeConflict:
		logger.Info("slot conflicts with existing entry",
			slog.String("interval", res.Interval.String()),
			slog.String("conflict", res.Decision.Label()))
		return res
	}

	logger.Info("slot is free, claiming", slog.String("interval", res.Interval.String()))
	if err := o.claimer.Claim(ctx, res.Interval); err != nil {
		res.Outcome = OutcomeClaimFailed
		res.Err = err
		logger.Error("claim failed", logging.Err(err))
		return res
	}
	res.Outcome = OutcomeClaimed
	return res
}

func (o *Orchestrator) publish(sess Session) {
	o.snapshot.Store(&sess)
}
