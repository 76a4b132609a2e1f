package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"notesapi/internal/model"
	"notesapi/internal/repository"
)

// AnalyticsPostgres is a PostgreSQL implementation of repository.AnalyticsRepository.
// All queries are read-only aggregates over the documents table.
type AnalyticsPostgres struct {
	db *sql.DB
}

// NewAnalyticsPostgres creates a new AnalyticsPostgres repository.
func NewAnalyticsPostgres(db *sql.DB) *AnalyticsPostgres {
	return &AnalyticsPostgres{db: db}
}

var _ repository.AnalyticsRepository = (*AnalyticsPostgres)(nil)

// Summary aggregates counts and sums in a single statement using FILTER
// clauses instead of one query per counter.
func (r *AnalyticsPostgres) Summary(ctx context.Context) (*repository.Summary, error) {
	const q = `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'approved'),
		       COUNT(*) FILTER (WHERE status = 'pending'),
		       COUNT(*) FILTER (WHERE status = 'rejected'),
		       COALESCE(SUM(size), 0),
		       COALESCE(SUM(downloads), 0)
		FROM documents
	`
	var s repository.Summary
	if err := r.db.QueryRowContext(ctx, q).Scan(
		&s.Total,
		&s.Approved,
		&s.Pending,
		&s.Rejected,
		&s.TotalSizeBytes,
		&s.TotalDownloads,
	); err != nil {
		return nil, err
	}
	return &s, nil
}

// RecentUploads returns the newest documents first.
func (r *AnalyticsPostgres) RecentUploads(ctx context.Context, limit int) ([]model.Document, error) {
	q := fmt.Sprintf("SELECT %s FROM documents ORDER BY created_at DESC, id DESC LIMIT $1", docColumns)
	return r.queryDocuments(ctx, q, limit)
}

// TopDownloads returns documents ordered by download count descending.
func (r *AnalyticsPostgres) TopDownloads(ctx context.Context, limit int, approvedOnly bool) ([]model.Document, error) {
	where := ""
	args := []any{limit}
	if approvedOnly {
		where = " WHERE status = $2"
		args = append(args, model.StatusApproved)
	}
	q := fmt.Sprintf("SELECT %s FROM documents%s ORDER BY downloads DESC, created_at DESC LIMIT $1", docColumns, where)
	return r.queryDocuments(ctx, q, args...)
}

// DownloadsByDay groups download sums by the UTC calendar day each document
// was created. Days with no rows are simply absent from the result.
func (r *AnalyticsPostgres) DownloadsByDay(ctx context.Context, since time.Time) ([]repository.DayCount, error) {
	const q = `
		SELECT date_trunc('day', created_at AT TIME ZONE 'UTC') AS day,
		       COALESCE(SUM(downloads), 0)
		FROM documents
		WHERE created_at >= $1
		GROUP BY day
		ORDER BY day ASC
	`
	rows, err := r.db.QueryContext(ctx, q, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]repository.DayCount, 0)
	for rows.Next() {
		var dc repository.DayCount
		if err := rows.Scan(&dc.Day, &dc.Downloads); err != nil {
			return nil, err
		}
		out = append(out, dc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *AnalyticsPostgres) queryDocuments(ctx context.Context, q string, args ...any) ([]model.Document, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
