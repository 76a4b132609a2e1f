package mocks

import (
	"context"
	"io"

	"notesapi/internal/model"
	"notesapi/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Upload(ctx context.Context, in service.UploadInput, r io.Reader, originalName, contentType string, size int64, uploaderID string) (*model.Document, error) {
	args := m.Called(ctx, in, r, originalName, contentType, size, uploaderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) Get(ctx context.Context, id string) (*model.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) ListPublic(ctx context.Context, query string, page, limit int) (*service.ListResult, error) {
	args := m.Called(ctx, query, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListResult), args.Error(1)
}

func (m *MockDocumentService) ListMine(ctx context.Context, uploaderID string, page, limit int) (*service.ListResult, error) {
	args := m.Called(ctx, uploaderID, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListResult), args.Error(1)
}

func (m *MockDocumentService) ListPending(ctx context.Context, page, limit int) (*service.ListResult, error) {
	args := m.Called(ctx, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListResult), args.Error(1)
}

func (m *MockDocumentService) ListAll(ctx context.Context, query string, page, limit int) (*service.ListResult, error) {
	args := m.Called(ctx, query, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListResult), args.Error(1)
}

func (m *MockDocumentService) UpdateMeta(ctx context.Context, id string, requester *model.Requester, in service.UpdateInput) (*model.Document, error) {
	args := m.Called(ctx, id, requester, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) Approve(ctx context.Context, id string) (*model.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) Reject(ctx context.Context, id string) (*model.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) Delete(ctx context.Context, id string, requester *model.Requester) error {
	args := m.Called(ctx, id, requester)
	return args.Error(0)
}

func (m *MockDocumentService) OpenPreview(ctx context.Context, id string, requester *model.Requester) (*service.FileStream, error) {
	args := m.Called(ctx, id, requester)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.FileStream), args.Error(1)
}

func (m *MockDocumentService) OpenDownload(ctx context.Context, id string, requester *model.Requester) (*service.FileStream, error) {
	args := m.Called(ctx, id, requester)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.FileStream), args.Error(1)
}
