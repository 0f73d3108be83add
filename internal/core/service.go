package core

import (
	"context"
	"sync"
	"time"

	"fabtrack/pkg/progress"
)

// Service holds the active snapshot and answers report queries against it.
// Reports are memoized keyed on the snapshot's content fingerprint; the memo
// is purely an optimization and dropping it at any point only costs a
// recomputation that reproduces the identical result.
type Service struct {
	mu      sync.Mutex
	snap    Snapshot
	memo    reportMemo
	metrics MetricsRecorder
	tracer  Tracer
}

// reportMemo caches the four report shapes for one fingerprint.
type reportMemo struct {
	fingerprint string
	summary     *progress.Summary
	steps       []progress.StepAdvancement
	phases      []progress.PhaseAdvancement
	assemblies  []progress.AssemblySummary
}

// Option configures a Service at construction time.
type Option func(*Service)

// WithMetrics wires an operation metrics recorder into the service.
func WithMetrics(rec MetricsRecorder) Option {
	return func(s *Service) { s.metrics = rec }
}

// WithTracer wires an operation tracer into the service.
func WithTracer(tr Tracer) Option {
	return func(s *Service) { s.tracer = tr }
}

// NewService constructs a service with an empty snapshot. Queries against an
// empty snapshot succeed and report zeroed metrics.
func NewService(opts ...Option) *Service {
	s := &Service{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Replace swaps in a new snapshot built from validated records and drops the
// memo. It returns the installed snapshot.
func (s *Service) Replace(ctx context.Context, sourceKey string, records []progress.Record) Snapshot {
	done := s.observe(ctx, "replace_snapshot")
	snap := NewSnapshot(sourceKey, records)

	s.mu.Lock()
	s.snap = snap
	s.memo = reportMemo{fingerprint: snap.Fingerprint}
	s.mu.Unlock()

	done(nil)
	return snap
}

// Restore installs a previously persisted snapshot, preserving its original
// load time and source key. Derived fields are recomputed rather than
// trusted: persistence carries only the logical input.
func (s *Service) Restore(ctx context.Context, snap Snapshot) Snapshot {
	done := s.observe(ctx, "restore_snapshot")
	restored := NewSnapshot(snap.SourceKey, snap.Records)
	if !snap.LoadedAt.IsZero() {
		restored.LoadedAt = snap.LoadedAt
	}

	s.mu.Lock()
	s.snap = restored
	s.memo = reportMemo{fingerprint: restored.Fingerprint}
	s.mu.Unlock()

	done(nil)
	return restored
}

// Snapshot returns a copy of the active snapshot.
func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.snap
	snap.Records = s.snap.copyRecords()
	return snap
}

// Summary returns the global KPI triple for the active snapshot.
func (s *Service) Summary(ctx context.Context) progress.Summary {
	done := s.observe(ctx, "summary")
	s.mu.Lock()
	if s.memo.summary == nil {
		summary := progress.Summarize(s.snap.Records)
		s.memo.summary = &summary
	}
	out := *s.memo.summary
	s.mu.Unlock()
	done(nil)
	return out
}

// StepReport returns the cumulative per-step advancement table.
func (s *Service) StepReport(ctx context.Context) []progress.StepAdvancement {
	done := s.observe(ctx, "step_report")
	s.mu.Lock()
	if s.memo.steps == nil {
		s.memo.steps = progress.StepAdvancements(s.snap.Records)
	}
	out := make([]progress.StepAdvancement, len(s.memo.steps))
	copy(out, s.memo.steps)
	s.mu.Unlock()
	done(nil)
	return out
}

// PhaseReport returns the mass-weighted per-phase advancement table.
func (s *Service) PhaseReport(ctx context.Context) []progress.PhaseAdvancement {
	done := s.observe(ctx, "phase_report")
	s.mu.Lock()
	if s.memo.phases == nil {
		s.memo.phases = progress.PhaseAdvancements(s.snap.Records)
	}
	out := make([]progress.PhaseAdvancement, len(s.memo.phases))
	copy(out, s.memo.phases)
	s.mu.Unlock()
	done(nil)
	return out
}

// AssemblyReport returns the per-assembly rollup table.
func (s *Service) AssemblyReport(ctx context.Context) []progress.AssemblySummary {
	done := s.observe(ctx, "assembly_report")
	s.mu.Lock()
	if s.memo.assemblies == nil {
		s.memo.assemblies = progress.AssemblySummaries(s.snap.Records)
	}
	out := make([]progress.AssemblySummary, len(s.memo.assemblies))
	copy(out, s.memo.assemblies)
	s.mu.Unlock()
	done(nil)
	return out
}

// observe starts a trace span and returns a completion func that records the
// span and the operation metric.
func (s *Service) observe(ctx context.Context, operation string) func(error) {
	started := time.Now()
	var span TraceSpan
	if s.tracer != nil {
		_, span = s.tracer.Start(ctx, operation)
	}
	return func(err error) {
		if span != nil {
			span.End(err)
		}
		if s.metrics != nil {
			s.metrics.Observe(ctx, operation, err == nil, time.Since(started))
		}
	}
}
