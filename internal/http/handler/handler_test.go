package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"notesapi/internal/config"
	"notesapi/internal/http/middleware"
	"notesapi/internal/model"
	"notesapi/internal/service"
	serviceMocks "notesapi/internal/service/mocks"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// withRequester injects an authenticated identity the way the auth middleware
// would, so handlers can be tested in isolation.
func withRequester(r *model.Requester) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if r != nil {
			c.Locals(middleware.RequesterLocalKey, r)
		}
		return c.Next()
	}
}

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "SERVICE_UNAVAILABLE", body.Error.Code)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListDocuments(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Get("/notes", ListDocuments(mockSvc))

	t.Run("success", func(t *testing.T) {
		expectedRes := &service.ListResult{
			Page:  1,
			Limit: 10,
			Total: 1,
			Items: []model.Document{{ID: uuid.New().String(), Title: "Calculus"}},
		}
		mockSvc.On("ListAll", mock.Anything, "calculus", 1, 10).Return(expectedRes, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/notes?q=calculus&page=1&limit=10", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result service.ListResult
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Len(t, result.Items, 1)
		assert.Equal(t, 1, result.Total)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid pagination", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/notes?limit=abc", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "INVALID_PAGINATION", body.Error.Code)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("ListAll", mock.Anything, "", 1, 10).Return(nil, errors.New("service error")).Once()

		req := httptest.NewRequest(http.MethodGet, "/notes", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestPublicFeed(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Get("/notes/public/feed", PublicFeed(mockSvc))

	expectedRes := &service.ListResult{Page: 2, Limit: 5, Total: 12, Items: []model.Document{}}
	mockSvc.On("ListPublic", mock.Anything, "", 2, 5).Return(expectedRes, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/notes/public/feed?page=2&limit=5", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	mockSvc.AssertExpectations(t)
}

func TestMyDocuments(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	requester := &model.Requester{ID: "user-1", Role: model.RoleStudent}

	app := fiber.New()
	app.Get("/notes/me", withRequester(requester), MyDocuments(mockSvc))

	expectedRes := &service.ListResult{Page: 1, Limit: 10, Total: 0, Items: []model.Document{}}
	mockSvc.On("ListMine", mock.Anything, "user-1", 1, 10).Return(expectedRes, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/notes/me", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	mockSvc.AssertExpectations(t)
}

func TestPendingDocuments(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Get("/notes/pending", PendingDocuments(mockSvc))

	expectedRes := &service.ListResult{Page: 1, Limit: 10, Total: 1, Items: []model.Document{{Status: model.StatusPending}}}
	mockSvc.On("ListPending", mock.Anything, 1, 10).Return(expectedRes, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/notes/pending", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	mockSvc.AssertExpectations(t)
}

func TestGetDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Get("/notes/:id", GetDocument(mockSvc))

	t.Run("found", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Get", mock.Anything, id).Return(&model.Document{ID: id}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/notes/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Get", mock.Anything, id).Return(nil, service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/notes/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "NOT_FOUND", body.Error.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/notes/not-a-uuid", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "INVALID_ID", body.Error.Code)
	})
}

func uploadForm(t *testing.T, title, filename, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if title != "" {
		require.NoError(t, writer.WriteField("title", title))
	}
	h := make(map[string][]string)
	h["Content-Disposition"] = []string{`form-data; name="file"; filename="` + filename + `"`}
	h["Content-Type"] = []string{contentType}
	part, err := writer.CreatePart(h)
	require.NoError(t, err)
	part.Write(content)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestUploadDocument(t *testing.T) {
	requester := &model.Requester{ID: "user-1", Role: model.RoleStudent}
	cfg := config.UploadConfig{MaxSizeBytes: 64}

	newApp := func(mockSvc *serviceMocks.MockDocumentService) *fiber.App {
		app := fiber.New()
		app.Post("/notes/upload", withRequester(requester), UploadDocument(mockSvc, cfg))
		return app
	}

	t.Run("success", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockDocumentService)
		app := newApp(mockSvc)

		body, ct := uploadForm(t, "Calculus Notes", "notes.pdf", "application/pdf", []byte("hello world"))

		expectedDoc := &model.Document{ID: uuid.New().String(), Title: "Calculus Notes", Status: model.StatusPending}
		mockSvc.On("Upload", mock.Anything,
			service.UploadInput{Title: "Calculus Notes"},
			mock.Anything, "notes.pdf", "application/pdf", int64(11), "user-1").
			Return(expectedDoc, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/notes/upload", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var result model.Document
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, expectedDoc.ID, result.ID)
		assert.Equal(t, model.StatusPending, result.Status)
		mockSvc.AssertExpectations(t)
	})

	t.Run("missing title", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockDocumentService)
		app := newApp(mockSvc)

		body, ct := uploadForm(t, "", "notes.pdf", "application/pdf", []byte("hello"))

		req := httptest.NewRequest(http.MethodPost, "/notes/upload", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "TITLE_REQUIRED", res.Error.Code)
	})

	t.Run("no file", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockDocumentService)
		app := newApp(mockSvc)

		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		writer.WriteField("title", "No File Here")
		writer.Close()

		req := httptest.NewRequest(http.MethodPost, "/notes/upload", body)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "FILE_REQUIRED", res.Error.Code)
	})

	t.Run("disallowed mime type", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockDocumentService)
		app := newApp(mockSvc)

		body, ct := uploadForm(t, "A Binary", "tool.exe", "application/octet-stream", []byte("MZ"))

		req := httptest.NewRequest(http.MethodPost, "/notes/upload", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "UNSUPPORTED_TYPE", res.Error.Code)
		mockSvc.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("file too large", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockDocumentService)
		app := newApp(mockSvc)

		body, ct := uploadForm(t, "Big One", "big.pdf", "application/pdf", bytes.Repeat([]byte("a"), 65))

		req := httptest.NewRequest(http.MethodPost, "/notes/upload", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "FILE_TOO_LARGE", res.Error.Code)
	})

	t.Run("title too long", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockDocumentService)
		app := newApp(mockSvc)

		body, ct := uploadForm(t, strings.Repeat("x", maxTitleLen+1), "notes.pdf", "application/pdf", []byte("hello"))

		req := httptest.NewRequest(http.MethodPost, "/notes/upload", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "FIELD_TOO_LONG", res.Error.Code)
	})
}

func TestUpdateDocument(t *testing.T) {
	requester := &model.Requester{ID: "user-1", Role: model.RoleStudent}

	newApp := func(mockSvc *serviceMocks.MockDocumentService) *fiber.App {
		app := fiber.New()
		app.Patch("/notes/:id", withRequester(requester), UpdateDocument(mockSvc))
		return app
	}

	t.Run("success", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockDocumentService)
		app := newApp(mockSvc)

		id := uuid.New().String()
		newTitle := "New Title"
		mockSvc.On("UpdateMeta", mock.Anything, id, requester, service.UpdateInput{Title: &newTitle}).
			Return(&model.Document{ID: id, Title: newTitle, Status: model.StatusPending}, nil).Once()

		req := httptest.NewRequest(http.MethodPatch, "/notes/"+id, strings.NewReader(`{"title":"New Title"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result model.Document
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, model.StatusPending, result.Status)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not the owner", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockDocumentService)
		app := newApp(mockSvc)

		id := uuid.New().String()
		mockSvc.On("UpdateMeta", mock.Anything, id, requester, mock.Anything).
			Return(nil, service.ErrForbidden).Once()

		req := httptest.NewRequest(http.MethodPatch, "/notes/"+id, strings.NewReader(`{"title":"Hijack"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("empty title rejected", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockDocumentService)
		app := newApp(mockSvc)

		id := uuid.New().String()
		req := httptest.NewRequest(http.MethodPatch, "/notes/"+id, strings.NewReader(`{"title":""}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		mockSvc.AssertNotCalled(t, "UpdateMeta", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestDeleteDocument(t *testing.T) {
	requester := &model.Requester{ID: "user-1", Role: model.RoleStudent}

	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Delete("/notes/:id", withRequester(requester), DeleteDocument(mockSvc))

	t.Run("success", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Delete", mock.Anything, id, requester).Return(nil).Once()

		req := httptest.NewRequest(http.MethodDelete, "/notes/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("forbidden", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Delete", mock.Anything, id, requester).Return(service.ErrForbidden).Once()

		req := httptest.NewRequest(http.MethodDelete, "/notes/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}

func TestModerationHandlers(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Post("/notes/:id/approve", ApproveDocument(mockSvc))
	app.Post("/notes/:id/reject", RejectDocument(mockSvc))

	t.Run("approve", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Approve", mock.Anything, id).
			Return(&model.Document{ID: id, Status: model.StatusApproved}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/notes/"+id+"/approve", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result model.Document
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, model.StatusApproved, result.Status)
	})

	t.Run("reject", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Reject", mock.Anything, id).
			Return(&model.Document{ID: id, Status: model.StatusRejected}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/notes/"+id+"/reject", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("approve missing", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Approve", mock.Anything, id).Return(nil, service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodPost, "/notes/"+id+"/approve", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestPreviewDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	// No requester middleware: preview is reachable anonymously.
	app.Get("/notes/:id/preview", PreviewDocument(mockSvc))

	t.Run("streams inline", func(t *testing.T) {
		id := uuid.New().String()
		fs := &service.FileStream{
			Stream:   io.NopCloser(strings.NewReader("pdf bytes")),
			Filename: "notes.pdf",
			MimeType: "application/pdf",
			Size:     9,
		}
		mockSvc.On("OpenPreview", mock.Anything, id, (*model.Requester)(nil)).Return(fs, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/notes/"+id+"/preview", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
		assert.Equal(t, `inline; filename="notes.pdf"`, resp.Header.Get("Content-Disposition"))

		data, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "pdf bytes", string(data))
		mockSvc.AssertExpectations(t)
	})

	t.Run("forbidden on unapproved", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("OpenPreview", mock.Anything, id, (*model.Requester)(nil)).
			Return(nil, service.ErrForbidden).Once()

		req := httptest.NewRequest(http.MethodGet, "/notes/"+id+"/preview", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("blob missing", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("OpenPreview", mock.Anything, id, (*model.Requester)(nil)).
			Return(nil, service.ErrFileMissing).Once()

		req := httptest.NewRequest(http.MethodGet, "/notes/"+id+"/preview", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "FILE_MISSING", body.Error.Code)
	})
}

func TestDownloadDocument(t *testing.T) {
	requester := &model.Requester{ID: "user-1", Role: model.RoleStudent}

	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Get("/notes/:id/download", withRequester(requester), DownloadDocument(mockSvc))

	t.Run("streams attachment", func(t *testing.T) {
		id := uuid.New().String()
		fs := &service.FileStream{
			Stream:   io.NopCloser(strings.NewReader("pdf bytes")),
			Filename: "notes.pdf",
			MimeType: "application/pdf",
			Size:     9,
		}
		mockSvc.On("OpenDownload", mock.Anything, id, requester).Return(fs, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/notes/"+id+"/download", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, `attachment; filename="notes.pdf"`, resp.Header.Get("Content-Disposition"))

		data, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "pdf bytes", string(data))
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("OpenDownload", mock.Anything, id, requester).
			Return(nil, service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/notes/"+id+"/download", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
