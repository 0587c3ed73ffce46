// Package observability wires OpenTelemetry tracing and metrics.
//
// When disabled, instruments and spans come from the global no-op
// providers, so callers never branch on whether telemetry is on:
//
//	comp := observability.NewComponent(cfg.Observability, info)
//	metrics, _ := observability.NewMetrics(observability.Meter("imagefeed"))
//
//	ctx, op := observability.StartOperation(ctx, metrics, "gallery.submit")
//	defer func() { op.End(err) }()
package observability
