package repository

import (
	"context"

	"notesapi/internal/model"
)

// DocumentFilter narrows List results. Zero values mean "no restriction".
// Query is matched case-insensitively as a substring of title OR description
// OR tags.
type DocumentFilter struct {
	Query      string
	Status     model.Status
	UploaderID string
}

// DocumentRepository defines data access for documents using SQL queries only.
// No business logic here — strictly persistence operations.
type DocumentRepository interface {
	// Create inserts a new document record and returns the stored row.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document by its ID with the uploader joined in.
	// Returns sql.ErrNoRows when the id is unknown.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// List returns a paginated list of documents matching the filter, newest
	// first, and the total row count for the same filter.
	List(ctx context.Context, f DocumentFilter, pq PageQuery) (*PageResult[model.Document], error)

	// UpdateMeta replaces the user-editable metadata fields and resets the
	// moderation state to pending in the same statement.
	// Returns sql.ErrNoRows when the id is unknown.
	UpdateMeta(ctx context.Context, id, title, description, tags string) (*model.Document, error)

	// SetStatus moves a document to the given moderation state.
	// Returns sql.ErrNoRows when the id is unknown.
	SetStatus(ctx context.Context, id string, status model.Status) (*model.Document, error)

	// IncrementDownloads bumps the download counter by one as a single atomic
	// statement.
	IncrementDownloads(ctx context.Context, id string) error

	// Delete removes a document by ID. It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, id string) error
}
