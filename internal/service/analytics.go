package service

import (
	"context"
	"time"

	"notesapi/internal/model"
	"notesapi/internal/repository"
)

// DayDownloads is one entry of the downloads-by-day series. Day is a UTC
// calendar date formatted YYYY-MM-DD.
type DayDownloads struct {
	Day       string `json:"day"`
	Downloads int64  `json:"downloads"`
}

// DownloadSeries is a contiguous, gap-free series of daily download sums.
type DownloadSeries struct {
	Since  time.Time      `json:"since"`
	Days   int            `json:"days"`
	Series []DayDownloads `json:"series"`
}

// AnalyticsService derives the admin dashboard numbers from the registry.
type AnalyticsService interface {
	Summary(ctx context.Context) (*repository.Summary, error)
	RecentUploads(ctx context.Context, limit int) ([]model.Document, error)
	TopDownloads(ctx context.Context, limit int, approvedOnly bool) ([]model.Document, error)

	// DownloadsByDay builds a series of exactly days entries anchored at UTC
	// midnight, from today-(days-1) through today inclusive. Calendar days
	// with no rows report zero; the series never has gaps.
	DownloadsByDay(ctx context.Context, days int) (*DownloadSeries, error)
}

type analyticsService struct {
	repo repository.AnalyticsRepository
}

// NewAnalyticsService constructs a new AnalyticsService.
func NewAnalyticsService(repo repository.AnalyticsRepository) AnalyticsService {
	return &analyticsService{repo: repo}
}

func (s *analyticsService) Summary(ctx context.Context) (*repository.Summary, error) {
	return s.repo.Summary(ctx)
}

func (s *analyticsService) RecentUploads(ctx context.Context, limit int) ([]model.Document, error) {
	if limit < 1 {
		limit = 10
	}
	return s.repo.RecentUploads(ctx, limit)
}

func (s *analyticsService) TopDownloads(ctx context.Context, limit int, approvedOnly bool) ([]model.Document, error) {
	if limit < 1 {
		limit = 10
	}
	return s.repo.TopDownloads(ctx, limit, approvedOnly)
}

const dayFormat = "2006-01-02"

func (s *analyticsService) DownloadsByDay(ctx context.Context, days int) (*DownloadSeries, error) {
	if days < 1 {
		days = 14
	}

	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	since := today.AddDate(0, 0, -(days - 1))

	rows, err := s.repo.DownloadsByDay(ctx, since)
	if err != nil {
		return nil, err
	}

	byDay := make(map[string]int64, len(rows))
	for _, r := range rows {
		byDay[r.Day.UTC().Format(dayFormat)] += r.Downloads
	}

	// Fill every calendar day so the chart never sees a gap.
	series := make([]DayDownloads, 0, days)
	for i := 0; i < days; i++ {
		day := since.AddDate(0, 0, i).Format(dayFormat)
		series = append(series, DayDownloads{Day: day, Downloads: byDay[day]})
	}

	return &DownloadSeries{Since: since, Days: days, Series: series}, nil
}
