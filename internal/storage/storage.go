package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// Package storage contains the blob store abstraction for uploaded file bytes.
// Implementations must avoid using local disk and rely on streaming I/O only.

// ErrObjectNotFound is returned by Get and Stat when the key does not exist in
// the backend. Callers treat this as a data-integrity anomaly: the registry
// row names a blob that is gone.
var ErrObjectNotFound = errors.New("object not found")

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; if unknown, set to -1 and the implementation
// will buffer/chunk as supported by the backend.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is the blob store consumed by the document services. Objects are
// write-once: Put a generated key, Get a streaming reader, Stat for existence,
// Delete best-effort.
type Storage interface {
	// Put uploads an object under the given key using the provided reader and options.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get retrieves an object's content as a streaming reader alongside its info.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Stat returns object metadata without fetching the body, or ErrObjectNotFound.
	Stat(ctx context.Context, key string) (ObjectInfo, error)
	// Delete removes an object by key.
	Delete(ctx context.Context, key string) error
}
