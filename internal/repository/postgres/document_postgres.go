package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"notesapi/internal/model"
	"notesapi/internal/repository"
)

// docColumns is the column list shared by every document query.
const docColumns = "id, title, description, tags, storage_path, original_name, mime_type, size, status, downloads, uploader_id, created_at"

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

func scanDocument(row interface{ Scan(...any) error }) (*model.Document, error) {
	var d model.Document
	if err := row.Scan(
		&d.ID,
		&d.Title,
		&d.Description,
		&d.Tags,
		&d.StoragePath,
		&d.OriginalName,
		&d.MimeType,
		&d.Size,
		&d.Status,
		&d.Downloads,
		&d.UploaderID,
		&d.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &d, nil
}

// Create inserts a new document row and returns the stored record.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	const q = `
		INSERT INTO documents (id, title, description, tags, storage_path, original_name, mime_type, size, status, downloads, uploader_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + docColumns
	row := r.db.QueryRowContext(ctx, q,
		doc.ID,
		doc.Title,
		doc.Description,
		doc.Tags,
		doc.StoragePath,
		doc.OriginalName,
		doc.MimeType,
		doc.Size,
		doc.Status,
		doc.Downloads,
		doc.UploaderID,
		doc.CreatedAt,
	)
	return scanDocument(row)
}

// FindByID fetches a single document with its uploader joined in. The join is
// resolved here, at the access point, rather than materialized on every list row.
func (r *DocumentPostgres) FindByID(ctx context.Context, id string) (*model.Document, error) {
	const q = `
		SELECT d.id, d.title, d.description, d.tags, d.storage_path, d.original_name, d.mime_type, d.size, d.status, d.downloads, d.uploader_id, d.created_at,
		       u.id, u.email, u.name, u.role, u.created_at
		FROM documents d
		JOIN users u ON u.id = d.uploader_id
		WHERE d.id = $1
	`
	row := r.db.QueryRowContext(ctx, q, id)
	var d model.Document
	var u model.User
	if err := row.Scan(
		&d.ID,
		&d.Title,
		&d.Description,
		&d.Tags,
		&d.StoragePath,
		&d.OriginalName,
		&d.MimeType,
		&d.Size,
		&d.Status,
		&d.Downloads,
		&d.UploaderID,
		&d.CreatedAt,
		&u.ID,
		&u.Email,
		&u.Name,
		&u.Role,
		&u.CreatedAt,
	); err != nil {
		return nil, err
	}
	d.Uploader = &u
	return &d, nil
}

// whereClause renders the filter as a WHERE fragment plus its bind arguments.
func whereClause(f repository.DocumentFilter) (string, []any) {
	var conds []string
	var args []any

	if f.Status != "" {
		args = append(args, f.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.UploaderID != "" {
		args = append(args, f.UploaderID)
		conds = append(conds, fmt.Sprintf("uploader_id = $%d", len(args)))
	}
	if f.Query != "" {
		args = append(args, "%"+f.Query+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d OR tags ILIKE $%d)", n, n, n))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// List returns documents matching the filter using LIMIT/OFFSET pagination and
// a total count taken before pagination.
func (r *DocumentPostgres) List(ctx context.Context, f repository.DocumentFilter, pq repository.PageQuery) (*repository.PageResult[model.Document], error) {
	where, args := whereClause(f)

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents"+where, args...).Scan(&total); err != nil {
		return nil, err
	}

	q := fmt.Sprintf(
		"SELECT %s FROM documents%s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d",
		docColumns, where, len(args)+1, len(args)+2,
	)
	rows, err := r.db.QueryContext(ctx, q, append(args, pq.Limit, pq.Offset)...)
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

	return &repository.PageResult[model.Document]{
		Items: items,
		Total: total,
	}, nil
}

// UpdateMeta rewrites the editable metadata and forces the document back into
// moderation in one statement.
func (r *DocumentPostgres) UpdateMeta(ctx context.Context, id, title, description, tags string) (*model.Document, error) {
	const q = `
		UPDATE documents
		SET title = $2, description = $3, tags = $4, status = $5
		WHERE id = $1
		RETURNING ` + docColumns
	row := r.db.QueryRowContext(ctx, q, id, title, description, tags, model.StatusPending)
	return scanDocument(row)
}

// SetStatus moves a document to the given moderation state.
func (r *DocumentPostgres) SetStatus(ctx context.Context, id string, status model.Status) (*model.Document, error) {
	const q = `
		UPDATE documents
		SET status = $2
		WHERE id = $1
		RETURNING ` + docColumns
	row := r.db.QueryRowContext(ctx, q, id, status)
	return scanDocument(row)
}

// IncrementDownloads bumps the counter atomically so concurrent downloads
// never lose updates.
func (r *DocumentPostgres) IncrementDownloads(ctx context.Context, id string) error {
	const q = `UPDATE documents SET downloads = downloads + 1 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}

// Delete removes a document by ID. It does not return an error if the row does not exist.
func (r *DocumentPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM documents WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	_, _ = res.RowsAffected()
	return nil
}
