package handler

import (
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"notesapi/internal/config"
	"notesapi/internal/http/middleware"
	"notesapi/internal/service"
)

const (
	maxTitleLen       = 200
	maxDescriptionLen = 1000
	maxTagsLen        = 300
)

// allowedMimeTypes is the upload allow-list: PDF, DOC, DOCX, PPT, PPTX, TXT.
var allowedMimeTypes = map[string]struct{}{
	"application/pdf":    {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
	"application/vnd.ms-powerpoint":                                           {},
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": {},
	"text/plain": {},
}

// pageParams reads ?page= and ?limit= with the original defaults.
func pageParams(c *fiber.Ctx) (page, limit int, err error) {
	page, err = strconv.Atoi(c.Query("page", "1"))
	if err != nil {
		return 0, 0, err
	}
	limit, err = strconv.Atoi(c.Query("limit", "10"))
	if err != nil {
		return 0, 0, err
	}
	return page, limit, nil
}

func docID(c *fiber.Ctx) (string, bool) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

// UploadDocument accepts a multipart form (field name: file) plus title,
// description, and tags fields. The MIME allow-list and size cap are enforced
// here, before any bytes reach the blob store.
func UploadDocument(svc service.DocumentService, cfg config.UploadConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		title := c.FormValue("title")
		if title == "" {
			return writeError(c, fiber.StatusBadRequest, "TITLE_REQUIRED", "title is required")
		}
		description := c.FormValue("description")
		tags := c.FormValue("tags")
		if len(title) > maxTitleLen || len(description) > maxDescriptionLen || len(tags) > maxTagsLen {
			return writeError(c, fiber.StatusBadRequest, "FIELD_TOO_LONG", "metadata field exceeds maximum length")
		}

		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		if cfg.MaxSizeBytes > 0 && fh.Size > cfg.MaxSizeBytes {
			return writeError(c, fiber.StatusBadRequest, "FILE_TOO_LARGE", "file exceeds the upload size limit")
		}

		ct := fh.Header.Get("Content-Type")
		if _, ok := allowedMimeTypes[ct]; !ok {
			return writeError(c, fiber.StatusBadRequest, "UNSUPPORTED_TYPE", "only PDF/DOC/DOCX/PPT/PPTX/TXT allowed")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		requester := middleware.RequesterFromCtx(c)
		in := service.UploadInput{Title: title, Description: description, Tags: tags}
		doc, err := svc.Upload(c.UserContext(), in, f, fh.Filename, ct, fh.Size, requester.ID)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(doc)
	}
}

// ListDocuments returns every document with optional free-text search.
func ListDocuments(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, limit, err := pageParams(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_PAGINATION", "invalid page or limit")
		}
		res, err := svc.ListAll(c.UserContext(), c.Query("q"), page, limit)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// PublicFeed returns only approved documents with optional free-text search.
func PublicFeed(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, limit, err := pageParams(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_PAGINATION", "invalid page or limit")
		}
		res, err := svc.ListPublic(c.UserContext(), c.Query("q"), page, limit)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// MyDocuments returns the authenticated requester's own uploads.
func MyDocuments(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, limit, err := pageParams(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_PAGINATION", "invalid page or limit")
		}
		requester := middleware.RequesterFromCtx(c)
		res, err := svc.ListMine(c.UserContext(), requester.ID, page, limit)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// PendingDocuments returns the moderation queue.
func PendingDocuments(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, limit, err := pageParams(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_PAGINATION", "invalid page or limit")
		}
		res, err := svc.ListPending(c.UserContext(), page, limit)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// GetDocument returns one document's metadata by ID.
func GetDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := docID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		doc, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	}
}

type updateDocumentRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Tags        *string `json:"tags"`
}

// UpdateDocument applies an owner's metadata edit; the document goes back to
// pending review.
func UpdateDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := docID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var req updateDocumentRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if (req.Title != nil && len(*req.Title) > maxTitleLen) ||
			(req.Description != nil && len(*req.Description) > maxDescriptionLen) ||
			(req.Tags != nil && len(*req.Tags) > maxTagsLen) {
			return writeError(c, fiber.StatusBadRequest, "FIELD_TOO_LONG", "metadata field exceeds maximum length")
		}
		if req.Title != nil && *req.Title == "" {
			return writeError(c, fiber.StatusBadRequest, "TITLE_REQUIRED", "title cannot be empty")
		}

		requester := middleware.RequesterFromCtx(c)
		in := service.UpdateInput{Title: req.Title, Description: req.Description, Tags: req.Tags}
		doc, err := svc.UpdateMeta(c.UserContext(), id, requester, in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	}
}

// DeleteDocument removes a document if the requester owns it or is an admin.
func DeleteDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := docID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		requester := middleware.RequesterFromCtx(c)
		if err := svc.Delete(c.UserContext(), id, requester); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ApproveDocument marks a document publicly visible. Admin-only route.
func ApproveDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := docID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		doc, err := svc.Approve(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	}
}

// RejectDocument marks a document rejected. Admin-only route.
func RejectDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := docID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		doc, err := svc.Reject(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	}
}

func sendStream(c *fiber.Ctx, fs *service.FileStream, disposition string) error {
	mime := fs.MimeType
	if mime == "" {
		mime = "application/octet-stream"
	}
	c.Set(fiber.HeaderContentType, mime)
	c.Set(fiber.HeaderContentDisposition, disposition+`; filename="`+url.PathEscape(fs.Filename)+`"`)
	if fs.Size > 0 {
		return c.SendStream(fs.Stream, int(fs.Size))
	}
	return c.SendStream(fs.Stream)
}

// PreviewDocument streams the file inline. Reachable anonymously; only
// approved documents are visible without a requester.
func PreviewDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := docID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		fs, err := svc.OpenPreview(c.UserContext(), id, middleware.RequesterFromCtx(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return sendStream(c, fs, "inline")
	}
}

// DownloadDocument streams the file as an attachment and counts the download.
func DownloadDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := docID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		fs, err := svc.OpenDownload(c.UserContext(), id, middleware.RequesterFromCtx(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return sendStream(c, fs, "attachment")
	}
}
