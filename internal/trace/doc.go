// Package trace records spans for a formatting run.
//
// A run opens a ScopeRun span, each file a ScopeFile span beneath it, and the
// dispatcher a ScopeTier span for every strategy it attempts. Tracing is off
// unless enabled with --trace or --trace-level:
//
//	reindent fmt --trace=- --trace-level=tier src/
//
// Tracers travel through the driver via context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopeFile, path, parentID)
//	defer span.End("")
//
// Stream tracers write each event as it happens; ring tracers keep the most
// recent events in memory for a dump after a failure.
package trace
