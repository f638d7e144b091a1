package monitoring

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/rengine/rengine/internal/domain"
)

// TracingObserver emits an OpenTelemetry span per fired activation, keyed
// under a per-cycle parent span the caller is expected to hold open for the
// duration of a FireAll call.
type TracingObserver struct {
	NoopObserver
	tracer trace.Tracer
	ctx    context.Context
}

func NewTracingObserver(ctx context.Context, tracer trace.Tracer) *TracingObserver {
	return &TracingObserver{tracer: tracer, ctx: ctx}
}

func (t *TracingObserver) OnActivationFired(a *domain.Activation, outcome *ActionOutcome) {
	_, span := t.tracer.Start(t.ctx, "activation.fire",
		trace.WithAttributes(
			attribute.String("rule.name", a.RuleName),
			attribute.Int64("activation.id", int64(a.ID)),
			attribute.Int("rule.salience", a.Salience),
			attribute.Int("actions.run", outcome.ActionsRun),
		),
	)
	if outcome.Err != nil {
		span.RecordError(outcome.Err)
	}
	span.End()
}
