// Package reports exposes the progress engine over HTTP: read-only report
// endpoints plus a source endpoint that ingests a new workbook and swaps the
// active session.
package reports

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"fabtrack/internal/core"
	"fabtrack/internal/ingest"
	"fabtrack/internal/sourcestore"
	"fabtrack/internal/state"
	"fabtrack/pkg/progress"
)

// maxSourceBytes bounds an uploaded workbook. The largest fabrication export
// seen to date is under 4 MB.
const maxSourceBytes = 32 << 20

// Handler provides HTTP access to progress reports and source ingestion.
type Handler struct {
	Service *core.Service
	// Sources archives raw uploaded payloads. Optional: ingestion works
	// without an archive.
	Sources sourcestore.Store
	// State persists the active snapshot across restarts. Optional.
	State state.Store

	// now is swapped in tests for deterministic upload keys.
	now func() time.Time
}

// NewHandler constructs a reports HTTP handler around the service.
func NewHandler(svc *core.Service) *Handler {
	return &Handler{Service: svc, now: time.Now}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		writeError(w, http.StatusInternalServerError, "progress service not configured")
		return
	}

	p := strings.TrimSuffix(r.URL.Path, "/")
	switch {
	case strings.HasPrefix(p, "/api/v1/progress/"):
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h.handleReport(w, r, strings.TrimPrefix(p, "/api/v1/progress/"))
	case p == "/api/v1/source":
		switch r.Method {
		case http.MethodGet:
			h.handleSourceInfo(w, r)
		case http.MethodPost:
			h.handleSourceUpload(w, r)
		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	default:
		http.NotFound(w, r)
	}
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request, report string) {
	ctx := r.Context()
	switch report {
	case "summary":
		writeJSON(w, http.StatusOK, map[string]any{
			"summary": h.Service.Summary(ctx),
			"source":  sourceInfo(h.Service.Snapshot()),
		})
	case "steps":
		writeJSON(w, http.StatusOK, map[string]any{"steps": h.Service.StepReport(ctx)})
	case "phases":
		writeJSON(w, http.StatusOK, map[string]any{"phases": h.Service.PhaseReport(ctx)})
	case "assemblies":
		writeJSON(w, http.StatusOK, map[string]any{"assemblies": h.Service.AssemblyReport(ctx)})
	default:
		writeError(w, http.StatusNotFound, "unknown report")
	}
}

func (h *Handler) handleSourceInfo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"source": sourceInfo(h.Service.Snapshot())})
}

// handleSourceUpload ingests a workbook payload and replaces the active
// session. The raw payload is archived before decoding so a rejected upload
// can still be inspected.
func (h *Handler) handleSourceUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := r.URL.Query().Get("name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "missing name query parameter")
		return
	}
	name = path.Base(name)

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxSourceBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "source payload too large")
		return
	}
	if len(data) == 0 {
		writeError(w, http.StatusBadRequest, "empty source payload")
		return
	}

	key := name
	if h.Sources != nil {
		key = fmt.Sprintf("uploads/%s/%s", h.clock().UTC().Format("20060102T150405.000000000Z"), name)
		if _, err := h.Sources.Put(ctx, key, bytes.NewReader(data), contentTypeFor(name, data)); err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("archive source: %v", err))
			return
		}
	}

	records, err := ingest.DecodeRecords(name, data)
	if err != nil {
		var schemaErr progress.SchemaError
		if errors.As(err, &schemaErr) {
			writeError(w, http.StatusBadRequest, schemaErr.Error())
			return
		}
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unreadable source: %v", err))
		return
	}

	snap := h.Service.Replace(ctx, key, records)
	if h.State != nil {
		if err := h.State.Save(ctx, snap); err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("persist session: %v", err))
			return
		}
	}
	writeJSON(w, http.StatusCreated, map[string]any{"source": sourceInfo(snap)})
}

func (h *Handler) clock() time.Time {
	if h.now != nil {
		return h.now()
	}
	return time.Now()
}

func contentTypeFor(name string, data []byte) string {
	switch ingest.DetectFormat(name, data) {
	case ingest.FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/csv"
	}
}

// SourceInfo describes the active session source in API responses.
type SourceInfo struct {
	Loaded      bool      `json:"loaded"`
	Key         string    `json:"key,omitempty"`
	LoadedAt    time.Time `json:"loaded_at,omitzero"`
	Fingerprint string    `json:"fingerprint,omitempty"`
	Rows        int       `json:"rows"`
}

func sourceInfo(snap core.Snapshot) SourceInfo {
	return SourceInfo{
		Loaded:      !snap.Empty(),
		Key:         snap.SourceKey,
		LoadedAt:    snap.LoadedAt,
		Fingerprint: snap.Fingerprint,
		Rows:        snap.Rows(),
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
