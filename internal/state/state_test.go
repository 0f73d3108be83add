package state

import (
	"context"
	"database/sql"
	"path/filepath"
	"reflect"
	"testing"

	"fabtrack/internal/core"
	"fabtrack/pkg/progress"
)

func testSnapshot() core.Snapshot {
	return core.NewSnapshot("upload::structural.xlsx", []progress.Record{
		{Phase: "A", AssemblyID: "A-01", PartID: "P1", MassKg: 100, Step: progress.StepPreparation},
		{Phase: "B", AssemblyID: "B-01", PartID: "P2", MassKg: 40, Step: progress.StepFinalization},
	})
}

// roundtrip exercises the Store contract shared by the drivers.
func roundtrip(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := store.Load(ctx); err != nil || ok {
		t.Fatalf("fresh store must load nothing: %v %v", ok, err)
	}

	snap := testSnapshot()
	if err := store.Save(ctx, snap); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, ok, err := store.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("load: %v %v", ok, err)
	}
	if loaded.SourceKey != snap.SourceKey || loaded.Fingerprint != snap.Fingerprint {
		t.Fatalf("metadata mismatch: %+v vs %+v", loaded, snap)
	}
	if !loaded.LoadedAt.Equal(snap.LoadedAt) {
		t.Fatalf("loaded-at mismatch: %v vs %v", loaded.LoadedAt, snap.LoadedAt)
	}
	if !reflect.DeepEqual(loaded.Records, snap.Records) {
		t.Fatalf("records mismatch:\n%+v\n%+v", loaded.Records, snap.Records)
	}

	// second save replaces, not appends
	replacement := core.NewSnapshot("upload::other.xlsx", []progress.Record{
		{Phase: "Z", AssemblyID: "1", PartID: "p", MassKg: 7, Step: progress.StepAssembly},
	})
	if err := store.Save(ctx, replacement); err != nil {
		t.Fatalf("save replacement: %v", err)
	}
	loaded, ok, err = store.Load(ctx)
	if err != nil || !ok || loaded.SourceKey != "upload::other.xlsx" || len(loaded.Records) != 1 {
		t.Fatalf("replacement not loaded: %v %v %+v", ok, err, loaded)
	}
}

func TestMemoryStore(t *testing.T) {
	store := NewMemory()
	defer func() { _ = store.Close() }()
	roundtrip(t, store)
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "fabtrack.db")
	store, err := NewSQLite(path)
	if err != nil {
		t.Fatalf("new sqlite store: %v", err)
	}
	roundtrip(t, store)

	// reopening the same file resumes the persisted session
	snap := testSnapshot()
	if err := store.Save(context.Background(), snap); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	reopened, err := NewSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = reopened.Close() }()
	loaded, ok, err := reopened.Load(context.Background())
	if err != nil || !ok || loaded.Fingerprint != snap.Fingerprint {
		t.Fatalf("reopened load: %v %v %+v", ok, err, loaded)
	}
}

func TestPostgresStore(t *testing.T) {
	// The store is exercised against a file-backed SQLite database through
	// the sqlOpen override: SQLite accepts the $N placeholders and the
	// EXCLUDED upsert syntax the store emits, so the full Save/Load path
	// runs without a live Postgres instance.
	path := filepath.Join(t.TempDir(), "pgstub.db")
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) {
		return sql.Open("sqlite", path)
	})
	defer restore()

	store, err := NewPostgres(context.Background(), "postgres://ignored/dsn")
	if err != nil {
		t.Fatalf("new postgres store: %v", err)
	}
	defer func() { _ = store.Close() }()
	roundtrip(t, store)
}

func TestOpen_UnknownDriver(t *testing.T) {
	t.Setenv("FABTRACK_STATE_DRIVER", "stone-tablet")
	if _, err := Open(context.Background()); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}

func TestOpen_Memory(t *testing.T) {
	t.Setenv("FABTRACK_STATE_DRIVER", "memory")
	store, err := Open(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, ok := store.(*Memory); !ok {
		t.Fatalf("expected memory store, got %T", store)
	}
}

func TestOpen_SQLiteDefault(t *testing.T) {
	t.Setenv("FABTRACK_STATE_DRIVER", "")
	t.Setenv("FABTRACK_STATE_SQLITE_PATH", filepath.Join(t.TempDir(), "fabtrack.db"))
	store, err := Open(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = store.Close() }()
	if _, ok := store.(*SQLite); !ok {
		t.Fatalf("expected sqlite store, got %T", store)
	}
}
