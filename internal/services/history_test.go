package services

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/resume-matcher/internal/apperrors"
	"alfredoptarigan/resume-matcher/internal/models"
)

func historyItems(n int) []models.HistoryItem {
	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	items := make([]models.HistoryItem, n)
	for i := range items {
		// newest first, like the repository returns them
		items[i] = models.HistoryItem{
			ID:           uint(n - i),
			OverallScore: float64(50 + n - i),
			AnalyzedAt:   base.AddDate(0, 0, n-i),
			ResumeName:   "cv.pdf",
		}
	}
	return items
}

func TestNormalizePage(t *testing.T) {
	tests := []struct {
		page, size         int
		wantPage, wantSize int
	}{
		{0, 0, 1, 10},
		{-3, -1, 1, 10},
		{2, 25, 2, 25},
		{1, 500, 1, 100},
		{math.MaxInt, 100, MaxPage, 100},
		{MaxPage + 1, 10, MaxPage, 10},
	}
	for _, tt := range tests {
		page, size := NormalizePage(tt.page, tt.size)
		assert.Equal(t, tt.wantPage, page)
		assert.Equal(t, tt.wantSize, size)
	}
}

func TestHistoryList(t *testing.T) {
	matches := &fakeMatchRepo{items: historyItems(10), total: 11}
	svc := NewHistoryService(newFakeUploadRepo(), &fakeJobRepo{}, matches, nil)

	resp, err := svc.List(context.Background(), 1, 0, 0)

	require.NoError(t, err)
	assert.Equal(t, [2]int{1, 10}, matches.listArgs)
	assert.Len(t, resp.Items, 10)
	assert.Equal(t, int64(11), resp.Total)
	assert.Equal(t, 2, resp.TotalPages)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 10, resp.PageSize)
}

func TestHistoryList_HugePageIsCapped(t *testing.T) {
	matches := &fakeMatchRepo{items: []models.HistoryItem{}, total: 3}
	svc := NewHistoryService(newFakeUploadRepo(), &fakeJobRepo{}, matches, nil)

	resp, err := svc.List(context.Background(), 1, math.MaxInt, 100)

	require.NoError(t, err)
	assert.Equal(t, [2]int{MaxPage, 100}, matches.listArgs)
	assert.Equal(t, MaxPage, resp.Page)
	assert.Empty(t, resp.Items)
	assert.LessOrEqual(t, (matches.listArgs[0]-1)*matches.listArgs[1], math.MaxInt32)
}

func TestHistoryStats(t *testing.T) {
	uploads := newFakeUploadRepo()
	uploads.add(models.Upload{ID: 1, UserID: 1}, "a")
	uploads.add(models.Upload{ID: 2, UserID: 1}, "b")
	jobs := &fakeJobRepo{jobs: map[uint]*models.JobDescription{1: {ID: 1, UserID: 1}}}

	t.Run("with analyses", func(t *testing.T) {
		avg := 77.5
		svc := NewHistoryService(uploads, jobs, &fakeMatchRepo{total: 4, avg: &avg}, nil)

		stats, err := svc.Stats(context.Background(), 1)

		require.NoError(t, err)
		assert.Equal(t, &models.Stats{ResumeCount: 2, JobCount: 1, AnalysisCount: 4, AvgScore: &avg}, stats)
	})

	t.Run("no analyses leaves average null", func(t *testing.T) {
		svc := NewHistoryService(uploads, jobs, &fakeMatchRepo{}, nil)

		stats, err := svc.Stats(context.Background(), 1)

		require.NoError(t, err)
		assert.Nil(t, stats.AvgScore)
	})

	t.Run("any failing query fails the call", func(t *testing.T) {
		failing := &fakeJobRepo{countErr: apperrors.Persistence("count jobs", errors.New("boom"))}
		svc := NewHistoryService(uploads, failing, &fakeMatchRepo{}, nil)

		_, err := svc.Stats(context.Background(), 1)

		assert.Equal(t, apperrors.KindPersistence, apperrors.KindOf(err))
	})
}

func TestHistoryTrend(t *testing.T) {
	matches := &fakeMatchRepo{items: historyItems(3)}
	svc := NewHistoryService(newFakeUploadRepo(), &fakeJobRepo{}, matches, nil)

	points, err := svc.Trend(context.Background(), 1, 0)

	require.NoError(t, err)
	assert.Equal(t, DefaultTrendPoints, matches.recentArg.limit)
	require.Len(t, points, 3)
	assert.True(t, points[0].AnalyzedAt.Before(points[1].AnalyzedAt))
	assert.True(t, points[1].AnalyzedAt.Before(points[2].AnalyzedAt))
	assert.Equal(t, 51.0, points[0].Score)
	assert.Equal(t, "Mar 11", points[0].Label)
}

func TestHistoryGet(t *testing.T) {
	matches := &fakeMatchRepo{owned: map[uint]*models.MatchResult{
		5: {ID: 5, OverallScore: 64, Upload: models.Upload{UserID: 1, OriginalFilename: "cv.txt"}},
	}}
	svc := NewHistoryService(newFakeUploadRepo(), &fakeJobRepo{}, matches, nil)

	resp, err := svc.Get(context.Background(), 1, 5)
	require.NoError(t, err)
	assert.Equal(t, 64.0, resp.Report.OverallScore)
	assert.Empty(t, resp.Report.MatchingSkills)

	_, err = svc.Get(context.Background(), 2, 5)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestHistoryRelated(t *testing.T) {
	newMatches := func() *fakeMatchRepo {
		return &fakeMatchRepo{
			items: historyItems(6),
			owned: map[uint]*models.MatchResult{
				6: {ID: 6, Upload: models.Upload{UserID: 1}},
			},
		}
	}

	t.Run("without index falls back to recent", func(t *testing.T) {
		matches := newMatches()
		svc := NewHistoryService(newFakeUploadRepo(), &fakeJobRepo{}, matches, nil)

		items, err := svc.Related(context.Background(), 1, 6, 0)

		require.NoError(t, err)
		assert.Len(t, items, DefaultRelatedLimit)
		assert.Equal(t, uint(6), matches.recentArg.exclude)
		for _, item := range items {
			assert.NotEqual(t, uint(6), item.ID)
		}
	})

	t.Run("uses index order", func(t *testing.T) {
		matches := newMatches()
		svc := NewHistoryService(newFakeUploadRepo(), &fakeJobRepo{}, matches, &fakeIndex{related: []uint{2, 4}})

		items, err := svc.Related(context.Background(), 1, 6, 5)

		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, uint(2), items[0].ID)
		assert.Equal(t, uint(4), items[1].ID)
	})

	t.Run("index failure falls back", func(t *testing.T) {
		matches := newMatches()
		svc := NewHistoryService(newFakeUploadRepo(), &fakeJobRepo{}, matches, &fakeIndex{relatedErr: errors.New("down")})

		items, err := svc.Related(context.Background(), 1, 6, 2)

		require.NoError(t, err)
		assert.Len(t, items, 2)
	})

	t.Run("foreign analysis", func(t *testing.T) {
		svc := NewHistoryService(newFakeUploadRepo(), &fakeJobRepo{}, newMatches(), nil)

		_, err := svc.Related(context.Background(), 2, 6, 5)

		assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
	})
}
