package claim

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/teemow/shiftclaim/internal/instrumentation"
	"github.com/teemow/shiftclaim/internal/interval"
)

// Claimer performs the two side effects of taking a slot: the chat reply,
// then the calendar entry. Neither half is retried, and the entry is never
// created when the reply failed.
type Claimer struct {
	Replier    Replier
	Writer     ScheduleWriter
	ReplyText  string
	EventTitle string
	// Metrics may be nil.
	Metrics *instrumentation.Metrics
}

// Claim replies and books iv. A failure is returned as *ClaimError.
func (c Claimer) Claim(ctx context.Context, iv interval.TimeInterval) error {
	err := c.act(ctx, instrumentation.ActionReply, iv, func(ctx context.Context) error {
		return c.Replier.Send(ctx, c.ReplyText)
	})
	if err != nil {
		return &ClaimError{Op: instrumentation.ActionReply, Interval: iv, Err: err}
	}

	err = c.act(ctx, instrumentation.ActionCreate, iv, func(ctx context.Context) error {
		return c.Writer.CreateBusy(ctx, iv, c.EventTitle)
	})
	if err != nil {
		return &ClaimError{Op: instrumentation.ActionCreate, Interval: iv, ReplySent: true, Err: err}
	}
	return nil
}

// act runs one half of a claim inside its own span and counts the result.
func (c Claimer) act(ctx context.Context, action string, iv interval.TimeInterval, fn func(context.Context) error) error {
	ctx, span := instrumentation.StartClaimSpan(ctx, action,
		attribute.String(instrumentation.SpanAttrInterval, iv.String()))
	defer span.End()

	if err := fn(ctx); err != nil {
		instrumentation.SetSpanError(span, err)
		c.Metrics.RecordClaimAction(ctx, action, instrumentation.StatusError)
		return err
	}
	instrumentation.SetSpanSuccess(span)
	c.Metrics.RecordClaimAction(ctx, action, instrumentation.StatusSuccess)
	return nil
}
