package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"notesapi/internal/access"
	"notesapi/internal/model"
	"notesapi/internal/repository"
	"notesapi/internal/storage"
)

// UploadInput carries the user-supplied metadata of a new document.
type UploadInput struct {
	Title       string
	Description string
	Tags        string
}

// UpdateInput carries a partial metadata edit; nil fields stay unchanged.
type UpdateInput struct {
	Title       *string
	Description *string
	Tags        *string
}

// FileStream is a live byte stream over a document's blob plus the metadata
// needed for disposition headers. The caller owns closing Stream.
type FileStream struct {
	Stream   io.ReadCloser
	Filename string
	MimeType string
	Size     int64
}

// ListResult is the service-level DTO for paginated documents.
type ListResult struct {
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
	Total int              `json:"total"`
	Items []model.Document `json:"items"`
}

// DocumentService defines the use cases of the document lifecycle: upload,
// listing, moderation, metadata edits, deletion, and file streaming.
type DocumentService interface {
	// Upload stores the content in the blob store, saves metadata with status
	// pending, and rolls back the blob if the metadata save fails.
	// originalName is used only to extract the extension; the stored key is
	// UUID + original extension.
	Upload(ctx context.Context, in UploadInput, r io.Reader, originalName, contentType string, size int64, uploaderID string) (*model.Document, error)

	// Get returns a single document by its ID.
	Get(ctx context.Context, id string) (*model.Document, error)

	// ListPublic returns approved documents, optionally matching a free-text query.
	ListPublic(ctx context.Context, query string, page, limit int) (*ListResult, error)
	// ListMine returns the requester's own uploads regardless of status.
	ListMine(ctx context.Context, uploaderID string, page, limit int) (*ListResult, error)
	// ListPending returns documents awaiting moderation.
	ListPending(ctx context.Context, page, limit int) (*ListResult, error)
	// ListAll returns every document, optionally matching a free-text query.
	ListAll(ctx context.Context, query string, page, limit int) (*ListResult, error)

	// UpdateMeta applies a metadata edit by the owner and forces the document
	// back into moderation.
	UpdateMeta(ctx context.Context, id string, requester *model.Requester, in UpdateInput) (*model.Document, error)
	// Approve marks a document publicly visible. Admin-only; the caller's
	// authorization layer enforces that.
	Approve(ctx context.Context, id string) (*model.Document, error)
	// Reject marks a document as rejected. Admin-only, enforced by the caller.
	Reject(ctx context.Context, id string) (*model.Document, error)

	// Delete removes a document's row and blob if the requester may do so.
	Delete(ctx context.Context, id string, requester *model.Requester) error

	// OpenPreview resolves a document to a byte stream without touching the
	// download counter. Anonymous requesters reach only approved documents.
	OpenPreview(ctx context.Context, id string, requester *model.Requester) (*FileStream, error)
	// OpenDownload is OpenPreview plus a best-effort download counter bump.
	OpenDownload(ctx context.Context, id string, requester *model.Requester) (*FileStream, error)
}

// documentService is a concrete implementation of DocumentService.
type documentService struct {
	store     storage.Storage
	docs      repository.DocumentRepository
	users     repository.UserRepository
	downloads prometheus.Counter // optional; nil disables the metric

	// counterWG tracks in-flight asynchronous counter updates so tests can
	// wait for them; production callers never block on it.
	counterWG sync.WaitGroup
}

// NewDocumentService constructs a new DocumentService. downloads may be nil.
func NewDocumentService(store storage.Storage, docs repository.DocumentRepository, users repository.UserRepository, downloads prometheus.Counter) DocumentService {
	return &documentService{store: store, docs: docs, users: users, downloads: downloads}
}

func (s *documentService) Upload(ctx context.Context, in UploadInput, r io.Reader, originalName, contentType string, size int64, uploaderID string) (*model.Document, error) {
	if r == nil {
		return nil, ErrReaderNil
	}
	if in.Title == "" {
		return nil, ErrTitleRequired
	}

	// The uploader must resolve to a real account before any bytes move.
	if _, err := s.users.FindByID(ctx, uploaderID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("uploader: %w", ErrNotFound)
		}
		return nil, err
	}

	// Generate the stored key using UUID + extension
	ext := filepath.Ext(originalName)
	key := filepath.ToSlash(filepath.Join("documents", uuid.New().String()+ext))

	objInfo, err := s.store.Put(ctx, key, r, storage.PutObjectOptions{
		Size:        size,
		ContentType: contentType,
		Metadata: map[string]string{
			"original-filename": originalName,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	doc := &model.Document{
		ID:           uuid.New().String(),
		Title:        in.Title,
		Description:  in.Description,
		Tags:         in.Tags,
		StoragePath:  objInfo.Key,
		OriginalName: originalName,
		MimeType:     contentType,
		Size:         objInfo.Size,
		Status:       model.StatusPending,
		Downloads:    0,
		UploaderID:   uploaderID,
		CreatedAt:    time.Now().UTC(),
	}
	stored, err := s.docs.Create(ctx, doc)
	if err != nil {
		// Rollback: delete the object from storage
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	return stored, nil
}

func (s *documentService) Get(ctx context.Context, id string) (*model.Document, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	doc, err := s.docs.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

func (s *documentService) ListPublic(ctx context.Context, query string, page, limit int) (*ListResult, error) {
	return s.list(ctx, repository.DocumentFilter{Query: query, Status: model.StatusApproved}, page, limit)
}

func (s *documentService) ListMine(ctx context.Context, uploaderID string, page, limit int) (*ListResult, error) {
	return s.list(ctx, repository.DocumentFilter{UploaderID: uploaderID}, page, limit)
}

func (s *documentService) ListPending(ctx context.Context, page, limit int) (*ListResult, error) {
	return s.list(ctx, repository.DocumentFilter{Status: model.StatusPending}, page, limit)
}

func (s *documentService) ListAll(ctx context.Context, query string, page, limit int) (*ListResult, error) {
	return s.list(ctx, repository.DocumentFilter{Query: query}, page, limit)
}

func (s *documentService) list(ctx context.Context, f repository.DocumentFilter, page, limit int) (*ListResult, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	res, err := s.docs.List(ctx, f, repository.PageQuery{Limit: limit, Offset: (page - 1) * limit})
	if err != nil {
		return nil, err
	}
	return &ListResult{Page: page, Limit: limit, Total: res.Total, Items: res.Items}, nil
}

// UpdateMeta is owner-only: even admins moderate rather than edit. A
// successful edit always lands the document back in pending.
func (s *documentService) UpdateMeta(ctx context.Context, id string, requester *model.Requester, in UpdateInput) (*model.Document, error) {
	doc, err := s.docs.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if requester == nil || requester.ID != doc.UploaderID {
		return nil, ErrForbidden
	}

	title, description, tags := doc.Title, doc.Description, doc.Tags
	if in.Title != nil {
		title = *in.Title
	}
	if in.Description != nil {
		description = *in.Description
	}
	if in.Tags != nil {
		tags = *in.Tags
	}

	updated, err := s.docs.UpdateMeta(ctx, id, title, description, tags)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return updated, nil
}

func (s *documentService) Approve(ctx context.Context, id string) (*model.Document, error) {
	return s.setStatus(ctx, id, model.StatusApproved)
}

func (s *documentService) Reject(ctx context.Context, id string) (*model.Document, error) {
	return s.setStatus(ctx, id, model.StatusRejected)
}

func (s *documentService) setStatus(ctx context.Context, id string, status model.Status) (*model.Document, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	doc, err := s.docs.SetStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

// Delete removes the blob best-effort, then the registry row. A failed blob
// delete is logged and ignored so a registry row can never outlive a delete
// request over a storage hiccup.
func (s *documentService) Delete(ctx context.Context, id string, requester *model.Requester) error {
	if id == "" {
		return ErrIDRequired
	}
	doc, err := s.docs.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if !access.CanDelete(doc, requester) {
		return ErrForbidden
	}

	if err := s.store.Delete(ctx, doc.StoragePath); err != nil {
		logWarn("blob_delete_failed", doc.ID, err)
	}
	return s.docs.Delete(ctx, id)
}

func (s *documentService) OpenPreview(ctx context.Context, id string, requester *model.Requester) (*FileStream, error) {
	return s.openStream(ctx, id, requester, false)
}

// OpenDownload requires a resolved requester; anonymous download is never
// allowed even for approved documents.
func (s *documentService) OpenDownload(ctx context.Context, id string, requester *model.Requester) (*FileStream, error) {
	if requester == nil {
		return nil, ErrForbidden
	}
	return s.openStream(ctx, id, requester, true)
}

func (s *documentService) openStream(ctx context.Context, id string, requester *model.Requester, countDownload bool) (*FileStream, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	doc, err := s.docs.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !access.CanView(doc, requester) {
		return nil, ErrForbidden
	}

	// The registry row names a blob; its absence is an integrity anomaly
	// surfaced to the caller because nothing can recover it here.
	if _, err := s.store.Stat(ctx, doc.StoragePath); err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, ErrFileMissing
		}
		return nil, err
	}

	rc, info, err := s.store.Get(ctx, doc.StoragePath)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, ErrFileMissing
		}
		return nil, err
	}

	if countDownload {
		s.countDownload(ctx, doc.ID)
	}

	return &FileStream{
		Stream:   rc,
		Filename: doc.OriginalName,
		MimeType: doc.MimeType,
		Size:     info.Size,
	}, nil
}

// countDownload persists the counter bump off the request path. The stream is
// already committed to the caller, so a persistence failure is logged and
// swallowed, never surfaced.
func (s *documentService) countDownload(ctx context.Context, id string) {
	if s.downloads != nil {
		s.downloads.Inc()
	}

	bg := context.WithoutCancel(ctx)
	s.counterWG.Add(1)
	go func() {
		defer s.counterWG.Done()
		if err := s.docs.IncrementDownloads(bg, id); err != nil {
			logWarn("download_counter_update_failed", id, err)
		}
	}()
}

func logWarn(msg, documentID string, err error) {
	b, mErr := json.Marshal(map[string]any{
		"ts":          time.Now().UTC().Format(time.RFC3339Nano),
		"level":       "warn",
		"msg":         msg,
		"document_id": documentID,
		"error":       err.Error(),
	})
	if mErr != nil {
		return
	}
	log.SetFlags(0)
	log.Println(string(b))
}
