package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"fabtrack/internal/core"
	"fabtrack/internal/state"
	"fabtrack/pkg/progress"
)

func TestHydrate_EmptyStart(t *testing.T) {
	t.Setenv("FABTRACK_DEFAULT_WORKBOOK", "")
	service := core.NewService()
	if err := hydrate(context.Background(), zap.NewNop(), service, state.NewMemory()); err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	if !service.Snapshot().Empty() {
		t.Fatalf("expected empty session")
	}
}

func TestHydrate_RestoresPersistedSession(t *testing.T) {
	t.Setenv("FABTRACK_DEFAULT_WORKBOOK", "")
	ctx := context.Background()
	store := state.NewMemory()
	saved := core.NewSnapshot("upload::suivi.xlsx", []progress.Record{
		{Phase: "A", AssemblyID: "1", PartID: "p", MassKg: 10, Step: progress.StepAssembly},
	})
	if err := store.Save(ctx, saved); err != nil {
		t.Fatalf("save: %v", err)
	}

	service := core.NewService()
	if err := hydrate(ctx, zap.NewNop(), service, store); err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	snap := service.Snapshot()
	if snap.SourceKey != "upload::suivi.xlsx" || snap.Rows() != 1 {
		t.Fatalf("restored snapshot: %+v", snap)
	}
	if got := service.Summary(ctx); got.Pct != 60 {
		t.Fatalf("derived fields must be recomputed on restore: %+v", got)
	}
}

func TestHydrate_SeedsFromDefaultWorkbook(t *testing.T) {
	seed := filepath.Join(t.TempDir(), "suivi.csv")
	csv := "PHASE,ASSEMBLY NO.,PART NO.,TOT MASS (Kg),Etape\nA,1,p,100,Finalisation\n"
	if err := os.WriteFile(seed, []byte(csv), 0o600); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	t.Setenv("FABTRACK_DEFAULT_WORKBOOK", seed)

	ctx := context.Background()
	store := state.NewMemory()
	service := core.NewService()
	if err := hydrate(ctx, zap.NewNop(), service, store); err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	if got := service.Summary(ctx); got.TotalMassKg != 100 || got.Pct != 100 {
		t.Fatalf("seeded summary: %+v", got)
	}
	if _, ok, err := store.Load(ctx); err != nil || !ok {
		t.Fatalf("seeded session must be persisted: %v %v", ok, err)
	}
}

func TestHydrate_MissingDefaultWorkbook(t *testing.T) {
	t.Setenv("FABTRACK_DEFAULT_WORKBOOK", filepath.Join(t.TempDir(), "absent.xlsx"))
	err := hydrate(context.Background(), zap.NewNop(), core.NewService(), state.NewMemory())
	if err == nil {
		t.Fatalf("expected error for missing default workbook")
	}
}
