// Package observability wires OpenTelemetry tracing and metrics.
//
// Setup installs OTLP/HTTP tracer and meter providers when enabled and
// returns a shutdown function; when disabled the global no-op providers stay
// in place and every instrument is free.
//
//	shutdown, err := observability.Setup(ctx, cfg, observability.ServiceInfo{Name: "voicemap"})
//	defer shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter("voicemap"))
//	ctx, span := observability.StartSpan(ctx, "explorer.recluster")
//	defer span.End()
package observability
