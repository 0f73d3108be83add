package core

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestExpvarMetricsRecorder(t *testing.T) {
	rec := NewExpvarMetricsRecorder("")
	if rec.Name() == "" {
		t.Fatalf("expected generated expvar name")
	}
	ctx := context.Background()
	rec.Observe(ctx, "summary", true, 10*time.Millisecond)
	rec.Observe(ctx, "summary", false, 5*time.Millisecond)
	rec.Observe(ctx, "", true, time.Millisecond) // ignored

	snap := rec.Snapshot()
	stats, ok := snap.Operations["summary"]
	if !ok {
		t.Fatalf("summary stats missing: %+v", snap.Operations)
	}
	if stats.Count != 2 || stats.Errors != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.TotalDurationMS < 14.9 || stats.TotalDurationMS > 15.1 {
		t.Fatalf("unexpected cumulative duration: %v", stats.TotalDurationMS)
	}
	if len(snap.Operations) != 1 {
		t.Fatalf("empty operation must be dropped: %+v", snap.Operations)
	}
}

func TestJSONTracer_WritesAndRetains(t *testing.T) {
	var buf bytes.Buffer
	tracer := NewJSONTracer(&buf)
	ctx := context.Background()

	_, span := tracer.Start(ctx, "step_report")
	span.End(nil)
	_, span = tracer.Start(ctx, "replace_snapshot")
	span.End(errors.New("boom"))

	entries := tracer.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Status != "success" || entries[1].Status != "error" || entries[1].Error != "boom" {
		t.Fatalf("unexpected entries: %+v", entries)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 JSON lines, got %d", len(lines))
	}
	var decoded TraceEntry
	if err := json.Unmarshal([]byte(lines[1]), &decoded); err != nil {
		t.Fatalf("decode line: %v", err)
	}
	if decoded.Operation != "replace_snapshot" || decoded.Error != "boom" {
		t.Fatalf("unexpected decoded entry: %+v", decoded)
	}
}

func TestJSONTracer_NilWriterOnlyRetains(t *testing.T) {
	tracer := NewJSONTracer(nil)
	_, span := tracer.Start(context.Background(), "summary")
	span.End(nil)
	if len(tracer.Entries()) != 1 {
		t.Fatalf("expected retained entry")
	}
}
