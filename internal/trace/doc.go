// Package trace provides the tracing subsystem of odrtab.
//
// Tracing is how the tool logs: every command runs under a Tracer taken from
// its context, and the checker reports its progress as spans and point
// events.
//
// # Usage
//
//	odrtab check --trace=- --trace-level=detail a.o b.o
//
// # Tracers
//
//   - Nop: zero-overhead tracer used when tracing is off
//   - StreamTracer: writes every event immediately (file or stderr)
//   - RingTracer: keeps the last N events in memory, dumped on failure
//   - MultiTracer: fans out to several tracers
//
// # Levels
//
//   - LevelOff: nothing
//   - LevelError: phase events kept in the ring only, dumped when a command fails
//   - LevelPhase: command and per-input spans
//   - LevelDetail: per-table spans, blob decompression, halts
//   - LevelDebug: everything, including every promoted symbol
//
// # Context propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopeInput, "a.o", parentID)
//	defer span.End("")
package trace
