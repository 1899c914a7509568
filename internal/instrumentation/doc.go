// Package instrumentation provides OpenTelemetry-based metrics and tracing
// for the scheduler: HTTP request metrics, calendar provider operation
// metrics, OAuth refresh counters, and booking outcome counters, exported
// via Prometheus, OTLP, or stdout.
package instrumentation
