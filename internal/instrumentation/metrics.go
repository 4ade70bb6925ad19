package instrumentation

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys.
const (
	attrStatus    = "status"
	attrOperation = "operation"
	attrService   = "service"
	attrOutcome   = "outcome"
	attrAction    = "action"
	attrSource    = "source"
	attrTool      = "tool"
)

// Metrics records observability metrics. A nil *Metrics and the zero value
// both record nothing, so callers never need to check for instrumentation.
type Metrics struct {
	meter metric.Meter

	// Watcher metrics
	cyclesTotal       metric.Int64Counter
	cycleDuration     metric.Float64Histogram
	claimActionsTotal metric.Int64Counter
	capturesTotal     metric.Int64Counter

	// Google API metrics
	googleAPIOperationsTotal   metric.Int64Counter
	googleAPIOperationDuration metric.Float64Histogram

	// MCP Tool metrics
	toolInvocationsTotal metric.Int64Counter
	toolDuration         metric.Float64Histogram
}

// NewMetrics creates a new Metrics instance with all instruments created on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{meter: meter}
	var err error

	m.cyclesTotal, err = meter.Int64Counter(
		"claim_cycles_total",
		metric.WithDescription("Total number of polling cycles by outcome"),
		metric.WithUnit("{cycle}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create claim_cycles_total counter: %w", err)
	}

	m.cycleDuration, err = meter.Float64Histogram(
		"claim_cycle_duration_seconds",
		metric.WithDescription("Polling cycle duration in seconds, excluding the wait between cycles"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create claim_cycle_duration_seconds histogram: %w", err)
	}

	m.claimActionsTotal, err = meter.Int64Counter(
		"claim_actions_total",
		metric.WithDescription("Total number of claim side effects by action and status"),
		metric.WithUnit("{action}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create claim_actions_total counter: %w", err)
	}

	m.capturesTotal, err = meter.Int64Counter(
		"capture_total",
		metric.WithDescription("Total number of text captures by source and status"),
		metric.WithUnit("{capture}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create capture_total counter: %w", err)
	}

	m.googleAPIOperationsTotal, err = meter.Int64Counter(
		"google_api_operations_total",
		metric.WithDescription("Total number of Google API operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create google_api_operations_total counter: %w", err)
	}

	m.googleAPIOperationDuration, err = meter.Float64Histogram(
		"google_api_operation_duration_seconds",
		metric.WithDescription("Google API operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create google_api_operation_duration_seconds histogram: %w", err)
	}

	m.toolInvocationsTotal, err = meter.Int64Counter(
		"mcp_tool_invocations_total",
		metric.WithDescription("Total number of MCP tool invocations"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_invocations_total counter: %w", err)
	}

	m.toolDuration, err = meter.Float64Histogram(
		"mcp_tool_duration_seconds",
		metric.WithDescription("MCP tool execution duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_duration_seconds histogram: %w", err)
	}

	return m, nil
}

// RecordCycle records one polling cycle and its outcome.
func (m *Metrics) RecordCycle(ctx context.Context, outcome string, duration time.Duration) {
	if m == nil || m.cyclesTotal == nil || m.cycleDuration == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String(attrOutcome, outcome))
	m.cyclesTotal.Add(ctx, 1, attrs)
	m.cycleDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordClaimAction records one half of a claim: the reply or the calendar entry.
func (m *Metrics) RecordClaimAction(ctx context.Context, action, status string) {
	if m == nil || m.claimActionsTotal == nil {
		return
	}

	m.claimActionsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrAction, action),
		attribute.String(attrStatus, status),
	))
}

// RecordCapture records a text capture attempt from source.
func (m *Metrics) RecordCapture(ctx context.Context, source, status string) {
	if m == nil || m.capturesTotal == nil {
		return
	}

	m.capturesTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrSource, source),
		attribute.String(attrStatus, status),
	))
}

// RecordGoogleAPIOperation records a Google API operation with service, operation,
// status, and duration.
//
// Parameters:
//   - service: Google service name (calendar)
//   - operation: Operation type (list, create)
//   - status: Result status ("success" or "error")
//   - duration: Time taken for the operation
func (m *Metrics) RecordGoogleAPIOperation(ctx context.Context, service, operation, status string, duration time.Duration) {
	if m == nil || m.googleAPIOperationsTotal == nil || m.googleAPIOperationDuration == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrService, service),
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	)
	m.googleAPIOperationsTotal.Add(ctx, 1, attrs)
	m.googleAPIOperationDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordToolInvocation records an MCP tool invocation with tool name, status, and duration.
func (m *Metrics) RecordToolInvocation(ctx context.Context, toolName, status string, duration time.Duration) {
	if m == nil || m.toolInvocationsTotal == nil || m.toolDuration == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrTool, toolName),
		attribute.String(attrStatus, status),
	)
	m.toolInvocationsTotal.Add(ctx, 1, attrs)
	m.toolDuration.Record(ctx, duration.Seconds(), attrs)
}

// ObserveSession reports the state of a running watcher on every collection
// as claim_session_cycles and claim_session_done (1 once a claim was
// attempted). state is called from the collection goroutine.
func (m *Metrics) ObserveSession(state func() (done bool, cycles int)) error {
	if m == nil || m.meter == nil {
		return nil
	}

	cycles, err := m.meter.Int64ObservableGauge(
		"claim_session_cycles",
		metric.WithDescription("Polling cycles run by the current watcher"),
		metric.WithUnit("{cycle}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create claim_session_cycles gauge: %w", err)
	}
	done, err := m.meter.Int64ObservableGauge(
		"claim_session_done",
		metric.WithDescription("1 once the watcher attempted a claim, 0 while waiting"),
	)
	if err != nil {
		return fmt.Errorf("failed to create claim_session_done gauge: %w", err)
	}

	_, err = m.meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		d, n := state()
		o.ObserveInt64(cycles, int64(n))
		if d {
			o.ObserveInt64(done, 1)
		} else {
			o.ObserveInt64(done, 0)
		}
		return nil
	}, cycles, done)
	if err != nil {
		return fmt.Errorf("failed to register session callback: %w", err)
	}
	return nil
}
