package mocks

import (
	"context"
	"time"

	"notesapi/internal/model"
	"notesapi/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockAnalyticsRepository struct {
	mock.Mock
}

func (m *MockAnalyticsRepository) Summary(ctx context.Context) (*repository.Summary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Summary), args.Error(1)
}

func (m *MockAnalyticsRepository) RecentUploads(ctx context.Context, limit int) ([]model.Document, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Document), args.Error(1)
}

func (m *MockAnalyticsRepository) TopDownloads(ctx context.Context, limit int, approvedOnly bool) ([]model.Document, error) {
	args := m.Called(ctx, limit, approvedOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Document), args.Error(1)
}

func (m *MockAnalyticsRepository) DownloadsByDay(ctx context.Context, since time.Time) ([]repository.DayCount, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.DayCount), args.Error(1)
}
