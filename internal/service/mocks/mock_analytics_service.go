package mocks

import (
	"context"

	"notesapi/internal/model"
	"notesapi/internal/repository"
	"notesapi/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockAnalyticsService struct {
	mock.Mock
}

func (m *MockAnalyticsService) Summary(ctx context.Context) (*repository.Summary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Summary), args.Error(1)
}

func (m *MockAnalyticsService) RecentUploads(ctx context.Context, limit int) ([]model.Document, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Document), args.Error(1)
}

func (m *MockAnalyticsService) TopDownloads(ctx context.Context, limit int, approvedOnly bool) ([]model.Document, error) {
	args := m.Called(ctx, limit, approvedOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Document), args.Error(1)
}

func (m *MockAnalyticsService) DownloadsByDay(ctx context.Context, days int) (*service.DownloadSeries, error) {
	args := m.Called(ctx, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DownloadSeries), args.Error(1)
}
