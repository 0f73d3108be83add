// Package core owns the active fabrication snapshot and serves memoized
// progress reports over it. The snapshot is replaced wholesale when a new
// source is ingested; readers always see a consistent, fully recomputed
// record set.
package core

import (
	"time"

	"fabtrack/pkg/progress"
)

// Snapshot is the immutable session table: the validated record set of one
// source workbook plus identifying metadata. Records are recomputed and
// fingerprinted at construction and never mutated afterwards.
type Snapshot struct {
	SourceKey   string            `json:"source_key"`
	LoadedAt    time.Time         `json:"loaded_at"`
	Fingerprint string            `json:"fingerprint"`
	Records     []progress.Record `json:"records"`
}

// NewSnapshot builds a consistent snapshot from validated records: derived
// fields are recomputed and the content fingerprint taken over the result.
func NewSnapshot(sourceKey string, records []progress.Record) Snapshot {
	computed := progress.Recompute(records)
	return Snapshot{
		SourceKey:   sourceKey,
		LoadedAt:    time.Now().UTC(),
		Fingerprint: progress.Fingerprint(computed),
		Records:     computed,
	}
}

// Rows returns the number of line items in the snapshot.
func (s Snapshot) Rows() int { return len(s.Records) }

// Empty reports whether the snapshot carries no records, either because no
// source was loaded yet or the source had no rows.
func (s Snapshot) Empty() bool { return len(s.Records) == 0 }

// copyRecords returns a defensive copy so callers cannot alias the service's
// internal slice.
func (s Snapshot) copyRecords() []progress.Record {
	out := make([]progress.Record, len(s.Records))
	copy(out, s.Records)
	return out
}
