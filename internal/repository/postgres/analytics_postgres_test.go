package postgres

import (
	"context"
	"testing"
	"time"

	"notesapi/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyticsPostgres_Summary(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewAnalyticsPostgres(db)
	ctx := context.Background()

	rows := sqlmock.NewRows([]string{"total", "approved", "pending", "rejected", "size", "downloads"}).
		AddRow(10, 6, 3, 1, 1048576, 42)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\),").
		WillReturnRows(rows)

	s, err := repo.Summary(ctx)

	require.NoError(t, err)
	assert.Equal(t, 10, s.Total)
	assert.Equal(t, 6, s.Approved)
	assert.Equal(t, 3, s.Pending)
	assert.Equal(t, 1, s.Rejected)
	assert.Equal(t, int64(1048576), s.TotalSizeBytes)
	assert.Equal(t, int64(42), s.TotalDownloads)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalyticsPostgres_RecentUploads(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewAnalyticsPostgres(db)
	ctx := context.Background()

	rows := sqlmock.NewRows(docTestCols).
		AddRow("new", "Newest", "", "", "documents/a.pdf", "a.pdf",
			"application/pdf", 10, model.StatusPending, 0, "user-1", time.Now())

	mock.ExpectQuery("SELECT (.+) FROM documents ORDER BY created_at DESC").
		WithArgs(5).
		WillReturnRows(rows)

	docs, err := repo.RecentUploads(ctx, 5)

	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "new", docs[0].ID)
}

func TestAnalyticsPostgres_TopDownloads(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewAnalyticsPostgres(db)
	ctx := context.Background()

	t.Run("approved only", func(t *testing.T) {
		rows := sqlmock.NewRows(docTestCols).
			AddRow("top", "Top", "", "", "documents/a.pdf", "a.pdf",
				"application/pdf", 10, model.StatusApproved, 99, "user-1", time.Now())

		mock.ExpectQuery("SELECT (.+) FROM documents WHERE status = (.+) ORDER BY downloads DESC").
			WithArgs(3, model.StatusApproved).
			WillReturnRows(rows)

		docs, err := repo.TopDownloads(ctx, 3, true)

		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, int64(99), docs[0].Downloads)
	})

	t.Run("all statuses", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM documents ORDER BY downloads DESC").
			WithArgs(3).
			WillReturnRows(sqlmock.NewRows(docTestCols))

		docs, err := repo.TopDownloads(ctx, 3, false)

		require.NoError(t, err)
		assert.Empty(t, docs)
	})
}

func TestAnalyticsPostgres_DownloadsByDay(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewAnalyticsPostgres(db)
	ctx := context.Background()

	since := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"day", "downloads"}).
		AddRow(time.Date(2026, 8, 21, 0, 0, 0, 0, time.UTC), 7).
		AddRow(time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC), 3)

	mock.ExpectQuery("SELECT date_trunc").
		WithArgs(since).
		WillReturnRows(rows)

	out, err := repo.DownloadsByDay(ctx, since)

	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, int64(7), out[0].Downloads)
	assert.Equal(t, time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC), out[1].Day)
	assert.NoError(t, mock.ExpectationsWereMet())
}
