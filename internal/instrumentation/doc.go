// Package instrumentation provides OpenTelemetry metrics and tracing for the
// shiftclaim watcher and its MCP tools.
//
// # Metrics
//
// Watcher metrics:
//   - claim_cycles_total: Counter of polling cycles by outcome
//   - claim_cycle_duration_seconds: Histogram of polling cycle durations
//   - claim_actions_total: Counter of claim side effects (reply, create) by status
//   - capture_total: Counter of text captures by source and status
//
// Google API metrics:
//   - google_api_operations_total: Counter of Google API operations by service, operation, status
//   - google_api_operation_duration_seconds: Histogram of Google API operation durations
//
// MCP tool metrics:
//   - mcp_tool_invocations_total: Counter of MCP tool invocations by tool name and status
//   - mcp_tool_duration_seconds: Histogram of MCP tool execution durations
//
// # Tracing
//
// Spans are created for each polling cycle (claim.cycle), for Google API
// calls (google.<service>.<operation>) and for MCP tool invocations
// (tool.<name>).
//
// # Configuration
//
// Instrumentation is configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: prometheus, otlp or stdout (default: prometheus)
//   - TRACING_EXPORTER: otlp, stdout or none (default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: shiftclaim)
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	provider.Metrics().RecordCycle(ctx, "conflict", time.Since(start))
package instrumentation
