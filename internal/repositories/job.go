package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"alfredoptarigan/resume-matcher/internal/apperrors"
	"alfredoptarigan/resume-matcher/internal/models"
)

type JobRepository interface {
	FindOwned(ctx context.Context, ownerID, jobID uint) (*models.JobDescription, error)
	CountByOwner(ctx context.Context, ownerID uint) (int64, error)
}

type jobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) JobRepository {
	return &jobRepository{db: db}
}

func (r *jobRepository) FindOwned(ctx context.Context, ownerID, jobID uint) (*models.JobDescription, error) {
	var job models.JobDescription
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", jobID, ownerID).First(&job).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("job description")
		}
		return nil, apperrors.Persistence("find job description", err)
	}
	return &job, nil
}

func (r *jobRepository) CountByOwner(ctx context.Context, ownerID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.JobDescription{}).Where("user_id = ?", ownerID).Count(&count).Error; err != nil {
		return 0, apperrors.Persistence("count job descriptions", err)
	}
	return count, nil
}
