package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"alfredoptarigan/resume-matcher/internal/apperrors"
	"alfredoptarigan/resume-matcher/internal/models"
	"alfredoptarigan/resume-matcher/internal/repositories"
)

const (
	defaultRecentUploads = 20
	maxRecentUploads     = 100
)

// UploadFile is a resume as received from the client. Size is what the
// client declared; the stored byte count is checked again while copying.
type UploadFile struct {
	Filename string
	Size     int64
	Content  io.Reader
}

type UploadService interface {
	Ingest(ctx context.Context, ownerID uint, file UploadFile) (*models.Upload, error)
	ListRecent(ctx context.Context, ownerID uint, limit int) ([]models.Upload, error)
}

type uploadService struct {
	uploadRepo  repositories.UploadRepository
	store       DocumentStore
	extractor   TextExtractor
	maxFileSize int64
	now         func() time.Time
}

func NewUploadService(
	uploadRepo repositories.UploadRepository,
	store DocumentStore,
	extractor TextExtractor,
	maxFileSize int64,
) UploadService {
	return &uploadService{
		uploadRepo:  uploadRepo,
		store:       store,
		extractor:   extractor,
		maxFileSize: maxFileSize,
		now:         time.Now,
	}
}

func fileTypeOf(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}

// Ingest stores the file, extracts its text and records both in one
// transaction. When the transaction fails the stored file is removed again.
func (s *uploadService) Ingest(ctx context.Context, ownerID uint, file UploadFile) (*models.Upload, error) {
	fileType := fileTypeOf(file.Filename)
	if !models.IsAllowedFileType(fileType) {
		return nil, apperrors.Validation("resume_file", "Only PDF, DOC, DOCX, and TXT files are allowed.")
	}
	if file.Size > s.maxFileSize {
		return nil, apperrors.Validation("resume_file", s.tooLargeMessage())
	}

	storedName := NewStoredFilename(fileType)
	written, err := s.store.Save(ctx, storedName, io.LimitReader(file.Content, s.maxFileSize+1))
	if err != nil {
		return nil, apperrors.Persistence("store resume file", err)
	}
	if written > s.maxFileSize {
		s.discard(ctx, storedName)
		return nil, apperrors.Validation("resume_file", s.tooLargeMessage())
	}
	if written == 0 {
		s.discard(ctx, storedName)
		return nil, apperrors.Validation("resume_file", "Please select a valid resume file.")
	}

	localPath, release, err := s.store.Materialize(ctx, storedName)
	if err != nil {
		s.discard(ctx, storedName)
		return nil, apperrors.Persistence("read stored resume", err)
	}
	rawText := s.extractor.Extract(ctx, localPath, fileType)
	release()

	upload := &models.Upload{
		UserID:           ownerID,
		StoredFilename:   storedName,
		OriginalFilename: filepath.Base(file.Filename),
		FileType:         fileType,
		FileSize:         written,
		CreatedAt:        s.now().UTC(),
	}

	if err := s.uploadRepo.CreateWithText(ctx, upload, rawText); err != nil {
		s.discard(ctx, storedName)
		return nil, err
	}

	log.Printf("💾 Stored resume %d (%s, %d bytes) for user %d", upload.ID, fileType, written, ownerID)
	return upload, nil
}

func (s *uploadService) ListRecent(ctx context.Context, ownerID uint, limit int) ([]models.Upload, error) {
	if limit <= 0 {
		limit = defaultRecentUploads
	}
	if limit > maxRecentUploads {
		limit = maxRecentUploads
	}
	return s.uploadRepo.ListRecent(ctx, ownerID, limit)
}

func (s *uploadService) discard(ctx context.Context, storedName string) {
	if err := s.store.Delete(ctx, storedName); err != nil {
		log.Printf("⚠️  Failed to remove stored file %s: %v", storedName, err)
	}
}

func (s *uploadService) tooLargeMessage() string {
	return fmt.Sprintf("File size exceeds the limit (%dMB).", s.maxFileSize/1000000)
}
