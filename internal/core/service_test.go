package core

import (
	"context"
	"reflect"
	"testing"
	"time"

	"fabtrack/pkg/progress"
)

func testRecords() []progress.Record {
	return []progress.Record{
		{Phase: "A", AssemblyID: "A-01", PartID: "P1", MassKg: 100, Step: progress.StepPreparation},
		{Phase: "A", AssemblyID: "A-01", PartID: "P2", MassKg: 100, Step: progress.StepFinalization},
		{Phase: "B", AssemblyID: "B-01", PartID: "P3", MassKg: 40, Step: progress.StepNone},
	}
}

func TestService_EmptySnapshot(t *testing.T) {
	svc := NewService()
	ctx := context.Background()
	if s := svc.Summary(ctx); s.TotalMassKg != 0 || s.Pct != 0 {
		t.Fatalf("empty service summary must be zeroed: %+v", s)
	}
	if steps := svc.StepReport(ctx); len(steps) != 4 {
		t.Fatalf("empty service must still enumerate steps: %+v", steps)
	}
	if !svc.Snapshot().Empty() {
		t.Fatalf("expected empty snapshot")
	}
}

func TestService_ReplaceAndReports(t *testing.T) {
	svc := NewService()
	ctx := context.Background()
	snap := svc.Replace(ctx, "upload::test.xlsx", testRecords())
	if snap.Fingerprint == "" || snap.Rows() != 3 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}

	want := progress.Recompute(testRecords())
	if got := svc.Summary(ctx); !reflect.DeepEqual(got, progress.Summarize(want)) {
		t.Fatalf("summary diverges from direct computation: %+v", got)
	}
	if got := svc.StepReport(ctx); !reflect.DeepEqual(got, progress.StepAdvancements(want)) {
		t.Fatalf("step report diverges from direct computation: %+v", got)
	}
	if got := svc.PhaseReport(ctx); !reflect.DeepEqual(got, progress.PhaseAdvancements(want)) {
		t.Fatalf("phase report diverges from direct computation: %+v", got)
	}
	if got := svc.AssemblyReport(ctx); !reflect.DeepEqual(got, progress.AssemblySummaries(want)) {
		t.Fatalf("assembly report diverges from direct computation: %+v", got)
	}
}

func TestService_MemoizedReportsAreStable(t *testing.T) {
	svc := NewService()
	ctx := context.Background()
	svc.Replace(ctx, "local::default.xlsx", testRecords())

	first := svc.StepReport(ctx)
	second := svc.StepReport(ctx)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("repeated report calls diverge:\n%+v\n%+v", first, second)
	}
	// callers may mutate their copy without poisoning the memo
	first[0].TreatedMassKg = -1
	third := svc.StepReport(ctx)
	if !reflect.DeepEqual(second, third) {
		t.Fatalf("memo aliased a caller-held slice: %+v", third)
	}
}

func TestService_ReplaceInvalidatesMemo(t *testing.T) {
	svc := NewService()
	ctx := context.Background()
	svc.Replace(ctx, "a", testRecords())
	before := svc.Summary(ctx)

	svc.Replace(ctx, "b", []progress.Record{
		{Phase: "Z", AssemblyID: "1", PartID: "p", MassKg: 10, Step: progress.StepFinalization},
	})
	after := svc.Summary(ctx)
	if reflect.DeepEqual(before, after) {
		t.Fatalf("summary did not change after snapshot replacement")
	}
	if after.TotalMassKg != 10 || after.Pct != 100 {
		t.Fatalf("unexpected summary after replacement: %+v", after)
	}
}

func TestService_RestoreRecomputesDerivedFields(t *testing.T) {
	svc := NewService()
	ctx := context.Background()
	loaded := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	stale := Snapshot{
		SourceKey: "local::default.xlsx",
		LoadedAt:  loaded,
		Records: []progress.Record{
			// derived fields deliberately inconsistent with the inputs
			{Phase: "A", AssemblyID: "1", PartID: "p", MassKg: 10, Step: progress.StepFinalization, RowProgress: 0.1, CompletedMassKg: 999},
		},
	}
	snap := svc.Restore(ctx, stale)
	if snap.LoadedAt != loaded || snap.SourceKey != "local::default.xlsx" {
		t.Fatalf("restore must preserve source metadata: %+v", snap)
	}
	if rec := snap.Records[0]; rec.RowProgress != 1.0 || rec.CompletedMassKg != 10 {
		t.Fatalf("restore must recompute derived fields: %+v", rec)
	}
}

func TestService_ObservesOperations(t *testing.T) {
	rec := NewExpvarMetricsRecorder("")
	tracer := NewJSONTracer(nil)
	svc := NewService(WithMetrics(rec), WithTracer(tracer))
	ctx := context.Background()

	svc.Replace(ctx, "a", testRecords())
	svc.Summary(ctx)
	svc.Summary(ctx)

	snap := rec.Snapshot()
	if snap.Operations["replace_snapshot"].Count != 1 {
		t.Fatalf("replace not observed: %+v", snap.Operations)
	}
	if snap.Operations["summary"].Count != 2 || snap.Operations["summary"].Errors != 0 {
		t.Fatalf("summary observations wrong: %+v", snap.Operations)
	}
	entries := tracer.Entries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 trace spans, got %d", len(entries))
	}
	for _, e := range entries {
		if e.Status != "success" {
			t.Fatalf("unexpected span status: %+v", e)
		}
	}
}
