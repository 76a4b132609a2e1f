package repository

import (
	"context"
	"time"

	"notesapi/internal/model"
)

// Summary holds aggregate counts and sums over the whole documents table.
type Summary struct {
	Total          int   `json:"total"`
	Approved       int   `json:"approved"`
	Pending        int   `json:"pending"`
	Rejected       int   `json:"rejected"`
	TotalSizeBytes int64 `json:"total_size_bytes"`
	TotalDownloads int64 `json:"total_downloads"`
}

// DayCount is one grouped row of the downloads-by-day query. Day is a UTC
// calendar date (midnight). Days with no rows are absent; the service layer
// fills the gaps.
type DayCount struct {
	Day       time.Time
	Downloads int64
}

// AnalyticsRepository exposes the aggregate queries the admin dashboard is
// built from. Read-only; all queries run against the documents table.
type AnalyticsRepository interface {
	Summary(ctx context.Context) (*Summary, error)

	// RecentUploads returns the latest documents by creation time descending.
	RecentUploads(ctx context.Context, limit int) ([]model.Document, error)

	// TopDownloads returns documents ordered by download count descending,
	// optionally restricted to approved ones.
	TopDownloads(ctx context.Context, limit int, approvedOnly bool) ([]model.Document, error)

	// DownloadsByDay sums per-document download counters grouped by the UTC
	// calendar day the document was created, for rows created at or after
	// since. Only days with at least one row are returned.
	DownloadsByDay(ctx context.Context, since time.Time) ([]DayCount, error)
}
