package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"odrtab/internal/prof"
	"odrtab/internal/trace"
)

// session holds the tracer and profilers of one CLI run.
type session struct {
	tracer   trace.Tracer
	span     *trace.Span // команда целиком
	profiler *prof.Session
}

// setupProfiling starts the profilers named by the persistent flags.
func setupProfiling(cmd *cobra.Command, s *session) error {
	root := cmd.Root()
	var opts prof.Options
	var err error
	if opts.CPUProfile, err = root.PersistentFlags().GetString("cpu-profile"); err != nil {
		return fmt.Errorf("failed to get cpu-profile flag: %w", err)
	}
	if opts.MemProfile, err = root.PersistentFlags().GetString("mem-profile"); err != nil {
		return fmt.Errorf("failed to get mem-profile flag: %w", err)
	}
	if opts.RuntimeTrace, err = root.PersistentFlags().GetString("runtime-trace"); err != nil {
		return fmt.Errorf("failed to get runtime-trace flag: %w", err)
	}
	if !opts.Enabled() {
		return nil
	}
	s.profiler, err = prof.Start(opts)
	return err
}

// setupTracing inspects trace-related flags, initializes the tracer and
// attaches it to the command context.
func setupTracing(cmd *cobra.Command, s *session) error {
	root := cmd.Root()

	traceOutput, err := root.PersistentFlags().GetString("trace")
	if err != nil {
		return fmt.Errorf("failed to get trace flag: %w", err)
	}
	levelStr, err := root.PersistentFlags().GetString("trace-level")
	if err != nil {
		return fmt.Errorf("failed to get trace-level flag: %w", err)
	}
	modeStr, err := root.PersistentFlags().GetString("trace-mode")
	if err != nil {
		return fmt.Errorf("failed to get trace-mode flag: %w", err)
	}
	ringSize, err := root.PersistentFlags().GetInt("trace-ring-size")
	if err != nil {
		return fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}

	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return err
	}
	// --trace без уровня включает фазы
	if level == trace.LevelOff && traceOutput != "" {
		level = trace.LevelPhase
	}
	if level == trace.LevelOff {
		s.tracer = trace.Nop
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return nil
	}

	mode, err := trace.ParseMode(modeStr)
	if err != nil {
		return err
	}
	tracer, err := trace.New(trace.Config{
		Level:      level,
		Mode:       mode,
		OutputPath: traceOutput,
		RingSize:   ringSize,
	})
	if err != nil {
		return fmt.Errorf("failed to create tracer: %w", err)
	}
	s.tracer = tracer

	s.span = trace.Begin(tracer, trace.ScopeDriver, cmd.CommandPath(), 0)
	ctx := trace.WithSpan(trace.WithTracer(cmd.Context(), tracer), s.span.ID())
	cmd.SetContext(ctx)
	return nil
}

// ring returns the ring buffer of the session tracer, if it keeps one.
func (s *session) ring() (*trace.RingTracer, bool) {
	switch t := s.tracer.(type) {
	case *trace.RingTracer:
		return t, true
	case *trace.MultiTracer:
		return t.Ring()
	default:
		return nil, false
	}
}

// dumpRing writes the buffered events after a failed command.
func (s *session) dumpRing(w io.Writer) {
	r, ok := s.ring()
	if !ok {
		return
	}
	fmt.Fprintln(w, "trace: last events before failure:")
	if err := r.Dump(w, trace.FormatText); err != nil {
		fmt.Fprintf(w, "trace: dump error: %v\n", err)
	}
}

func (s *session) close(w io.Writer) {
	if err := s.profiler.Stop(); err != nil {
		fmt.Fprintf(w, "profile: %v\n", err)
	}
	s.profiler = nil
	if s.tracer == nil {
		return
	}
	s.span.End("")
	if err := s.tracer.Flush(); err != nil {
		fmt.Fprintf(w, "trace: flush error: %v\n", err)
	}
	if err := s.tracer.Close(); err != nil {
		fmt.Fprintf(w, "trace: close error: %v\n", err)
	}
	s.tracer = nil
}
