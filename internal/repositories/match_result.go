package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"alfredoptarigan/resume-matcher/internal/apperrors"
	"alfredoptarigan/resume-matcher/internal/models"
)

type MatchResultRepository interface {
	Record(ctx context.Context, ownerID, uploadID uint, jobID *uint, draft *models.MatchDraft) (*models.MatchResult, error)
	FindOwned(ctx context.Context, ownerID, id uint) (*models.MatchResult, error)
	List(ctx context.Context, ownerID uint, page, pageSize int) ([]models.HistoryItem, int64, error)
	Recent(ctx context.Context, ownerID uint, excludeID uint, limit int) ([]models.HistoryItem, error)
	FindItems(ctx context.Context, ownerID uint, ids []uint) ([]models.HistoryItem, error)
	CountByOwner(ctx context.Context, ownerID uint) (int64, error)
	AverageScore(ctx context.Context, ownerID uint) (*float64, error)
	EachWithJobText(ctx context.Context, batchSize int, fn func(result *models.MatchResult, ownerID uint, jobText string) error) error
}

type matchResultRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewMatchResultRepository(db *gorm.DB) MatchResultRepository {
	return &matchResultRepository{db: db, now: time.Now}
}

const historyColumns = "mr.id, mr.overall_score, mr.analyzed_at, " +
	"u.original_filename AS resume_name, jd.title AS job_title, jd.company AS job_company"

// Record persists a validated draft. Ownership of the upload and of the
// optional job is checked inside the same transaction as the insert, so a
// caller cannot attach a result to another user's resume.
func (r *matchResultRepository) Record(ctx context.Context, ownerID, uploadID uint, jobID *uint, draft *models.MatchDraft) (*models.MatchResult, error) {
	result := &models.MatchResult{
		UploadID:        uploadID,
		JobID:           jobID,
		OverallScore:    draft.OverallScore,
		SkillsScore:     draft.SkillsScore,
		ExperienceScore: draft.ExperienceScore,
		EducationScore:  draft.EducationScore,
		FeedbackPayload: datatypes.JSON(draft.Payload),
		AnalyzedAt:      r.now().UTC(),
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owned int64
		if err := tx.Model(&models.Upload{}).
			Where("id = ? AND user_id = ?", uploadID, ownerID).
			Count(&owned).Error; err != nil {
			return apperrors.Persistence("check upload ownership", err)
		}
		if owned == 0 {
			return apperrors.NotFound("upload")
		}

		if jobID != nil {
			if err := tx.Model(&models.JobDescription{}).
				Where("id = ? AND user_id = ?", *jobID, ownerID).
				Count(&owned).Error; err != nil {
				return apperrors.Persistence("check job ownership", err)
			}
			if owned == 0 {
				return apperrors.NotFound("job description")
			}
		}

		if err := tx.Omit("Upload", "Job").Create(result).Error; err != nil {
			return apperrors.Persistence("insert match result", err)
		}
		return nil
	})
	if err != nil {
		return nil, asPersistence("record match result", err)
	}

	return result, nil
}

func (r *matchResultRepository) FindOwned(ctx context.Context, ownerID, id uint) (*models.MatchResult, error) {
	var result models.MatchResult
	err := r.db.WithContext(ctx).
		Joins("JOIN uploads u ON u.id = match_results.upload_id").
		Preload("Upload").
		Preload("Job").
		Where("match_results.id = ? AND u.user_id = ?", id, ownerID).
		First(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("analysis")
		}
		return nil, apperrors.Persistence("find analysis", err)
	}
	return &result, nil
}

// owned starts a fresh query over the owner's match results. gorm chains are
// not reusable after a finisher, so every caller gets its own.
func (r *matchResultRepository) owned(ctx context.Context, ownerID uint) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("match_results AS mr").
		Joins("JOIN uploads u ON mr.upload_id = u.id").
		Where("u.user_id = ?", ownerID)
}

func (r *matchResultRepository) withJob(q *gorm.DB) *gorm.DB {
	return q.Joins("LEFT JOIN job_descriptions jd ON mr.job_id = jd.id").Select(historyColumns)
}

func (r *matchResultRepository) List(ctx context.Context, ownerID uint, page, pageSize int) ([]models.HistoryItem, int64, error) {
	var total int64
	if err := r.owned(ctx, ownerID).Count(&total).Error; err != nil {
		return nil, 0, apperrors.Persistence("count analyses", err)
	}

	items := []models.HistoryItem{}
	if total == 0 {
		return items, 0, nil
	}

	err := r.withJob(r.owned(ctx, ownerID)).
		Order("mr.analyzed_at DESC, mr.id DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Scan(&items).Error
	if err != nil {
		return nil, 0, apperrors.Persistence("list analyses", err)
	}

	return items, total, nil
}

// Recent returns the newest analyses first. excludeID of zero excludes
// nothing.
func (r *matchResultRepository) Recent(ctx context.Context, ownerID uint, excludeID uint, limit int) ([]models.HistoryItem, error) {
	q := r.withJob(r.owned(ctx, ownerID))
	if excludeID != 0 {
		q = q.Where("mr.id <> ?", excludeID)
	}

	items := []models.HistoryItem{}
	if err := q.Order("mr.analyzed_at DESC, mr.id DESC").Limit(limit).Scan(&items).Error; err != nil {
		return nil, apperrors.Persistence("list recent analyses", err)
	}
	return items, nil
}

// FindItems loads the owner's analyses among ids, preserving the order of
// ids. Unknown or foreign ids are skipped.
func (r *matchResultRepository) FindItems(ctx context.Context, ownerID uint, ids []uint) ([]models.HistoryItem, error) {
	if len(ids) == 0 {
		return []models.HistoryItem{}, nil
	}

	var rows []models.HistoryItem
	if err := r.withJob(r.owned(ctx, ownerID)).Where("mr.id IN ?", ids).Scan(&rows).Error; err != nil {
		return nil, apperrors.Persistence("find analyses", err)
	}

	byID := make(map[uint]models.HistoryItem, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}

	items := make([]models.HistoryItem, 0, len(rows))
	for _, id := range ids {
		if item, ok := byID[id]; ok {
			items = append(items, item)
		}
	}
	return items, nil
}

func (r *matchResultRepository) CountByOwner(ctx context.Context, ownerID uint) (int64, error) {
	var count int64
	if err := r.owned(ctx, ownerID).Count(&count).Error; err != nil {
		return 0, apperrors.Persistence("count analyses", err)
	}
	return count, nil
}

// AverageScore is nil when the owner has no analyses.
func (r *matchResultRepository) AverageScore(ctx context.Context, ownerID uint) (*float64, error) {
	var avg *float64
	if err := r.owned(ctx, ownerID).Select("AVG(mr.overall_score)").Row().Scan(&avg); err != nil {
		return nil, apperrors.Persistence("average score", err)
	}
	return avg, nil
}

// EachWithJobText walks every stored analysis together with its owner and
// the job text it was scored against. Ad-hoc job texts are not stored, so
// those analyses get an empty jobText.
func (r *matchResultRepository) EachWithJobText(ctx context.Context, batchSize int, fn func(result *models.MatchResult, ownerID uint, jobText string) error) error {
	var batch []models.MatchResult
	tx := r.db.WithContext(ctx).
		Preload("Upload").
		Preload("Job").
		FindInBatches(&batch, batchSize, func(tx *gorm.DB, _ int) error {
			for i := range batch {
				jobText := ""
				if batch[i].Job != nil {
					jobText = batch[i].Job.Description
				}
				if err := fn(&batch[i], batch[i].Upload.UserID, jobText); err != nil {
					return err
				}
			}
			return nil
		})
	if tx.Error != nil {
		return asPersistence("iterate analyses", tx.Error)
	}
	return nil
}
