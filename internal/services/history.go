package services

import (
	"context"
	"log"
	"math"

	"golang.org/x/sync/errgroup"

	"alfredoptarigan/resume-matcher/internal/models"
	"alfredoptarigan/resume-matcher/internal/repositories"
)

const (
	DefaultPageSize     = 10
	MaxPageSize         = 100
	DefaultTrendPoints  = 7
	DefaultRelatedLimit = 5
	maxListLimit        = 50

	// MaxPage keeps the row offset within an int32.
	MaxPage = math.MaxInt32 / MaxPageSize
)

type HistoryService interface {
	List(ctx context.Context, ownerID uint, page, pageSize int) (*models.HistoryResponse, error)
	Stats(ctx context.Context, ownerID uint) (*models.Stats, error)
	Trend(ctx context.Context, ownerID uint, limit int) ([]models.TrendPoint, error)
	Get(ctx context.Context, ownerID, id uint) (*models.AnalysisResponse, error)
	Related(ctx context.Context, ownerID, id uint, limit int) ([]models.HistoryItem, error)
}

type historyService struct {
	uploadRepo repositories.UploadRepository
	jobRepo    repositories.JobRepository
	matchRepo  repositories.MatchResultRepository
	index      AnalysisIndex
}

// NewHistoryService builds the read side. index may be nil.
func NewHistoryService(
	uploadRepo repositories.UploadRepository,
	jobRepo repositories.JobRepository,
	matchRepo repositories.MatchResultRepository,
	index AnalysisIndex,
) HistoryService {
	return &historyService{
		uploadRepo: uploadRepo,
		jobRepo:    jobRepo,
		matchRepo:  matchRepo,
		index:      index,
	}
}

// NormalizePage clamps paging input: page starts at 1, page size defaults
// to 10 and never exceeds 100.
func NormalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

func clampLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

func (h *historyService) List(ctx context.Context, ownerID uint, page, pageSize int) (*models.HistoryResponse, error) {
	page, pageSize = NormalizePage(page, pageSize)

	items, total, err := h.matchRepo.List(ctx, ownerID, page, pageSize)
	if err != nil {
		return nil, err
	}

	return &models.HistoryResponse{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: int((total + int64(pageSize) - 1) / int64(pageSize)),
	}, nil
}

// Stats runs the four aggregate queries concurrently.
func (h *historyService) Stats(ctx context.Context, ownerID uint) (*models.Stats, error) {
	var stats models.Stats
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := h.uploadRepo.CountByOwner(gctx, ownerID)
		stats.ResumeCount = n
		return err
	})
	g.Go(func() error {
		n, err := h.jobRepo.CountByOwner(gctx, ownerID)
		stats.JobCount = n
		return err
	})
	g.Go(func() error {
		n, err := h.matchRepo.CountByOwner(gctx, ownerID)
		stats.AnalysisCount = n
		return err
	})
	g.Go(func() error {
		avg, err := h.matchRepo.AverageScore(gctx, ownerID)
		stats.AvgScore = avg
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Trend returns the latest analyses oldest first, ready for charting.
func (h *historyService) Trend(ctx context.Context, ownerID uint, limit int) ([]models.TrendPoint, error) {
	items, err := h.matchRepo.Recent(ctx, ownerID, 0, clampLimit(limit, DefaultTrendPoints))
	if err != nil {
		return nil, err
	}

	points := make([]models.TrendPoint, len(items))
	for i, item := range items {
		points[len(items)-1-i] = models.TrendPoint{
			AnalyzedAt: item.AnalyzedAt,
			Label:      item.AnalyzedAt.Format("Jan 2"),
			Score:      item.OverallScore,
			JobTitle:   item.JobTitle,
		}
	}
	return points, nil
}

func (h *historyService) Get(ctx context.Context, ownerID, id uint) (*models.AnalysisResponse, error) {
	result, err := h.matchRepo.FindOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	resp := models.NewAnalysisResponse(result)
	return &resp, nil
}

// Related lists other analyses of the same owner: nearest job texts when the
// index is available, otherwise the most recent ones.
func (h *historyService) Related(ctx context.Context, ownerID, id uint, limit int) ([]models.HistoryItem, error) {
	if _, err := h.matchRepo.FindOwned(ctx, ownerID, id); err != nil {
		return nil, err
	}
	limit = clampLimit(limit, DefaultRelatedLimit)

	if h.index != nil {
		ids, err := h.index.Related(ctx, ownerID, id, limit)
		if err != nil {
			log.Printf("⚠️  Related lookup for analysis %d failed, using recent: %v", id, err)
		} else if len(ids) > 0 {
			items, err := h.matchRepo.FindItems(ctx, ownerID, ids)
			if err != nil {
				return nil, err
			}
			if len(items) > 0 {
				return items, nil
			}
		}
	}

	return h.matchRepo.Recent(ctx, ownerID, id, limit)
}
