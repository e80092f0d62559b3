package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"alfredoptarigan/resume-matcher/internal/apperrors"
	"alfredoptarigan/resume-matcher/internal/models"
)

type UploadRepository interface {
	CreateWithText(ctx context.Context, upload *models.Upload, rawText string) error
	FindResumeText(ctx context.Context, ownerID, uploadID uint) (*models.Upload, string, error)
	ListRecent(ctx context.Context, ownerID uint, limit int) ([]models.Upload, error)
	CountByOwner(ctx context.Context, ownerID uint) (int64, error)
}

type uploadRepository struct {
	db *gorm.DB
}

func NewUploadRepository(db *gorm.DB) UploadRepository {
	return &uploadRepository{db: db}
}

// CreateWithText writes the upload row and its parsed text in one
// transaction. Either both rows exist afterwards or neither does.
func (r *uploadRepository) CreateWithText(ctx context.Context, upload *models.Upload, rawText string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("ParsedDocument").Create(upload).Error; err != nil {
			return apperrors.Persistence("insert upload", err)
		}

		parsed := &models.ParsedDocument{UploadID: upload.ID, RawText: rawText}
		if err := tx.Create(parsed).Error; err != nil {
			return apperrors.Persistence("insert parsed document", err)
		}

		upload.ParsedDocument = parsed
		return nil
	})
	if err != nil {
		upload.ID = 0
		upload.ParsedDocument = nil
		return asPersistence("store upload", err)
	}

	return nil
}

// FindResumeText returns the upload and its extracted text, scoped to the
// owner.
func (r *uploadRepository) FindResumeText(ctx context.Context, ownerID, uploadID uint) (*models.Upload, string, error) {
	var upload models.Upload
	err := r.db.WithContext(ctx).
		Preload("ParsedDocument").
		Where("id = ? AND user_id = ?", uploadID, ownerID).
		First(&upload).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", apperrors.NotFound("upload")
		}
		return nil, "", apperrors.Persistence("find upload", err)
	}

	if upload.ParsedDocument == nil {
		return &upload, "", nil
	}

	return &upload, upload.ParsedDocument.RawText, nil
}

func (r *uploadRepository) ListRecent(ctx context.Context, ownerID uint, limit int) ([]models.Upload, error) {
	var uploads []models.Upload
	err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&uploads).Error
	if err != nil {
		return nil, apperrors.Persistence("list uploads", err)
	}

	return uploads, nil
}

func (r *uploadRepository) CountByOwner(ctx context.Context, ownerID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Upload{}).Where("user_id = ?", ownerID).Count(&count).Error; err != nil {
		return 0, apperrors.Persistence("count uploads", err)
	}
	return count, nil
}

// asPersistence keeps typed errors from inside a transaction and tags
// anything else (commit failures, driver errors) as a persistence fault.
func asPersistence(op string, err error) error {
	if apperrors.KindOf(err) != apperrors.KindUnknown {
		return err
	}
	return apperrors.Persistence(op, fmt.Errorf("transaction: %w", err))
}
