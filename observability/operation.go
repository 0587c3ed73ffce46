package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/imagefeed/logger"
)

// Operation tracks one traced and measured unit of work.
type Operation struct {
	name    string
	start   time.Time
	span    trace.Span
	metrics *Metrics
	ctx     context.Context
}

// StartOperation starts a span named name. metrics may be nil. Loggers
// built from the returned context carry the trace and span IDs.
func StartOperation(ctx context.Context, metrics *Metrics, name string, attrs ...attribute.KeyValue) (context.Context, *Operation) {
	ctx, span := StartSpan(ctx, name, trace.WithAttributes(attrs...))
	if traceID, spanID := TraceIDs(ctx); traceID != "" {
		ctx = logger.ContextWithTrace(ctx, traceID, spanID)
	}
	return ctx, &Operation{name: name, start: time.Now(), span: span, metrics: metrics, ctx: ctx}
}

// End finishes the span and records the operation with status "ok" or "error".
func (o *Operation) End(err error) {
	status := "ok"
	if err != nil {
		status = "error"
		SetSpanError(o.ctx, err)
	}
	o.span.SetAttributes(AttrStatus.String(status))
	o.span.End()
	o.metrics.RecordOperation(o.ctx, o.name, status, time.Since(o.start))
}

// Duration returns the time since the operation started.
func (o *Operation) Duration() time.Duration {
	return time.Since(o.start)
}
