package model

import "time"

// Status is the moderation state of a document. Every upload starts as
// StatusPending; only an administrator moves it to StatusApproved or
// StatusRejected, and any metadata edit by the owner sends it back to
// StatusPending for re-review.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Valid reports whether s is one of the known moderation states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Document represents a stored file plus its metadata and moderation state.
// This is a pure domain model with no database-specific dependencies or tags.
// It can be used across layers (HTTP, service, storage) without coupling to persistence.
type Document struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	Tags         string    `json:"tags,omitempty"` // comma-separated labels, e.g. "math,calculus"
	StoragePath  string    `json:"storage_path"`   // generated object key in the blob store
	OriginalName string    `json:"original_name"`  // filename as uploaded by the user
	MimeType     string    `json:"mime_type"`
	Size         int64     `json:"size"`
	Status       Status    `json:"status"`
	Downloads    int64     `json:"downloads"`
	UploaderID   string    `json:"uploader_id"`
	Uploader     *User     `json:"uploader,omitempty"` // populated by an explicit join, not always present
	CreatedAt    time.Time `json:"created_at"`
}
