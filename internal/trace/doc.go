// Package trace provides the tracing subsystem shared by the latrt runtime and
// its tooling.
//
// The runtime library emits one point event per primitive call (printInt,
// readString, ...) and the conformance runner wraps every test case in a span,
// so a stuck or misbehaving program can be diagnosed after the fact.
//
// # Usage
//
// Enable tracing via command-line flags:
//
//	latrt check --trace=- --trace-level=case tests/good
//	latrt call --trace=calls.ndjson --trace-level=call readInt
//
// # Architecture
//
//   - Nop: zero-overhead tracer used when tracing is disabled
//   - StreamTracer: immediate write to output (file/stderr)
//   - RingTracer: circular buffer, dumped when the runtime hits a fatal error
//   - MultiTracer: combines multiple tracers
//
// # Levels
//
//   - LevelOff: no tracing
//   - LevelError: only crash dumps
//   - LevelCase: driver and per-test-case events
//   - LevelCall: runtime primitive calls
//   - LevelDebug: everything including scanner detail
//
// # Context Propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopeCase, "core001.lat", parentID)
//	defer span.End("")
package trace
