// Package server holds the long-lived state shared by the tool server and the
// watcher, plus the HTTP side channel that exposes Prometheus metrics and
// health probes.
//
// ServerContext builds calendar clients lazily per account and owns the
// classifier and interval parser configured for the user's time zone.
//
// HealthChecker reports liveness and readiness. When attached to a running
// watcher through a SessionSource, readiness follows the session phase: the
// process is ready while it is still waiting for a shift to claim.
package server
