// Package state persists the active session snapshot so a restarted daemon
// resumes with the last loaded source instead of an empty dashboard. Only the
// logical input is stored; derived progress fields are recomputed on restore.
package state

import (
	"context"
	"fmt"
	"os"
	"time"

	"fabtrack/internal/core"
	"fabtrack/pkg/progress"
)

// Store persists at most one snapshot: the active session.
type Store interface {
	// Save replaces the persisted snapshot.
	Save(ctx context.Context, snap core.Snapshot) error
	// Load returns the persisted snapshot; ok is false when none was saved.
	Load(ctx context.Context) (snap core.Snapshot, ok bool, err error)
	Close() error
}

// Snapshot state is stored as two JSON buckets so the row payload can grow
// without touching the metadata encoding.
const (
	bucketSource  = "source"
	bucketRecords = "records"
)

// sourceMeta is the metadata bucket payload.
type sourceMeta struct {
	SourceKey   string    `json:"source_key"`
	LoadedAt    time.Time `json:"loaded_at"`
	Fingerprint string    `json:"fingerprint"`
	Rows        int       `json:"rows"`
}

func metaFor(snap core.Snapshot) sourceMeta {
	return sourceMeta{
		SourceKey:   snap.SourceKey,
		LoadedAt:    snap.LoadedAt,
		Fingerprint: snap.Fingerprint,
		Rows:        snap.Rows(),
	}
}

func snapshotFrom(meta sourceMeta, records []progress.Record) core.Snapshot {
	return core.Snapshot{
		SourceKey:   meta.SourceKey,
		LoadedAt:    meta.LoadedAt,
		Fingerprint: meta.Fingerprint,
		Records:     records,
	}
}

// Open selects a Store implementation from the environment.
//
//	FABTRACK_STATE_DRIVER: sqlite|postgres|memory (default sqlite)
//	FABTRACK_STATE_SQLITE_PATH: database path when driver=sqlite (default fabtrack.db)
//	FABTRACK_STATE_POSTGRES_DSN: DSN when driver=postgres
func Open(ctx context.Context) (Store, error) {
	driver := os.Getenv("FABTRACK_STATE_DRIVER")
	if driver == "" {
		driver = "sqlite"
	}
	switch driver {
	case "sqlite":
		return NewSQLite(os.Getenv("FABTRACK_STATE_SQLITE_PATH"))
	case "postgres":
		return NewPostgres(ctx, os.Getenv("FABTRACK_STATE_POSTGRES_DSN"))
	case "memory":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("state: unknown driver %q", driver)
	}
}
