// Package sourcestore stores the raw workbook files fed into the progress
// pipeline. Objects are immutable inputs: Put is create-only, and the SHA-256
// of the payload doubles as the ETag so re-uploads of identical content are
// detectable. This is not an export or editing surface.
package sourcestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Driver identifies a concrete storage backend.
type Driver string

const (
	// DriverFilesystem stores workbooks under a local directory (default).
	DriverFilesystem Driver = "fs"
	// DriverMemory keeps workbooks in process memory (tests, ephemeral runs).
	DriverMemory Driver = "memory"
	// DriverS3 stores workbooks in an S3 / MinIO compatible bucket.
	DriverS3 Driver = "s3"
)

// Info describes a stored workbook.
type Info struct {
	Key         string    `json:"key"`
	Size        int64     `json:"size_bytes"`
	ContentType string    `json:"content_type,omitempty"`
	SHA256      string    `json:"sha256,omitempty"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// Store is the minimal blob abstraction the ingest flow needs.
type Store interface {
	// Put stores a new workbook. Implementations fail if the key exists.
	Put(ctx context.Context, key string, r io.Reader, contentType string) (Info, error)
	// Get returns metadata and a reader over the workbook payload.
	Get(ctx context.Context, key string) (Info, io.ReadCloser, error)
	// Head returns metadata only.
	Head(ctx context.Context, key string) (Info, error)
	// Delete removes the workbook; reports whether it existed. Idempotent.
	Delete(ctx context.Context, key string) (bool, error)
	// List returns workbooks whose keys start with prefix, sorted by key.
	List(ctx context.Context, prefix string) ([]Info, error)
	Driver() Driver
}

// ErrNotFound reports a key with no stored workbook behind it.
var ErrNotFound = errors.New("sourcestore: workbook not found")

// ErrExists reports a create-only Put against an existing key.
var ErrExists = errors.New("sourcestore: workbook already exists")

// sanitizeKey rejects empty keys and path traversal so filesystem-backed
// stores cannot be steered outside their root.
func sanitizeKey(key string) (string, error) {
	k := strings.TrimSpace(key)
	if k == "" {
		return "", fmt.Errorf("sourcestore: empty key")
	}
	if strings.HasPrefix(k, "/") || strings.Contains(k, "..") || strings.Contains(k, "\\") {
		return "", fmt.Errorf("sourcestore: invalid key %q", key)
	}
	return k, nil
}

// Open selects a Store implementation from the environment.
//
//	FABTRACK_SOURCE_DRIVER: fs|memory|s3 (default fs)
//	FABTRACK_SOURCE_FS_ROOT: directory root when driver=fs (default ./sourcedata)
//	(S3 specific variables are documented in s3.go)
func Open(ctx context.Context) (Store, error) {
	driver := os.Getenv("FABTRACK_SOURCE_DRIVER")
	if driver == "" {
		driver = string(DriverFilesystem)
	}
	switch Driver(driver) {
	case DriverFilesystem:
		return NewFilesystem(os.Getenv("FABTRACK_SOURCE_FS_ROOT"))
	case DriverMemory:
		return NewMemory(), nil
	case DriverS3:
		return OpenS3FromEnv(ctx)
	default:
		return nil, fmt.Errorf("sourcestore: unknown driver %q", driver)
	}
}
