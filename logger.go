package rengine

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/rengine/rengine/internal/infrastructure/monitoring"
)

// Public re-exports of the observability surface: a host registers
// observers through the root package without reaching into
// internal/infrastructure/monitoring.
type (
	EngineObserver  = monitoring.EngineObserver
	ActionOutcome   = monitoring.ActionOutcome
	ExecutionTrace  = monitoring.ExecutionTrace
	TraceEntry      = monitoring.TraceEntry
	StructuredLogger = monitoring.StructuredLogger
	TracingObserver = monitoring.TracingObserver
)

// NewStructuredLogger wraps a zerolog.Logger as an EngineObserver.
func NewStructuredLogger(log zerolog.Logger) *StructuredLogger {
	return monitoring.NewStructuredLogger(log)
}

// NewTracingObserver wraps an OpenTelemetry tracer as an EngineObserver,
// emitting one span per fired activation.
func NewTracingObserver(ctx context.Context, tracer trace.Tracer) *TracingObserver {
	return monitoring.NewTracingObserver(ctx, tracer)
}

// NewExecutionTrace builds a standalone bounded ring buffer of recent
// engine events; AddObserver(trace.AsObserver()) wires it in.
func NewExecutionTrace(capacity int) *ExecutionTrace {
	return monitoring.NewExecutionTrace(capacity)
}
