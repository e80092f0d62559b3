package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// DocumentStore keeps uploaded resumes. Materialize returns a local path the
// extractor can read plus a release func the caller must invoke when done.
type DocumentStore interface {
	Save(ctx context.Context, filename string, src io.Reader) (int64, error)
	Materialize(ctx context.Context, filename string) (string, func(), error)
	Delete(ctx context.Context, filename string) error
}

// NewStoredFilename builds the unique name a resume is stored under.
func NewStoredFilename(fileType string) string {
	return fmt.Sprintf("resume_%s.%s", uuid.New().String(), fileType)
}

type localStore struct {
	uploadPath string
}

func NewLocalStore(uploadPath string) (DocumentStore, error) {
	s := &localStore{uploadPath: uploadPath}
	if err := s.ensureUploadDir(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *localStore) ensureUploadDir() error {
	if err := os.MkdirAll(s.uploadPath, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	return nil
}

func (s *localStore) path(filename string) string {
	return filepath.Join(s.uploadPath, filepath.Base(filename))
}

// Save implements DocumentStore.
func (s *localStore) Save(_ context.Context, filename string, src io.Reader) (int64, error) {
	filePath := s.path(filename)

	dst, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return 0, fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, src)
	if err != nil {
		os.Remove(filePath)
		return 0, fmt.Errorf("failed to save file: %w", err)
	}

	return written, nil
}

// Materialize implements DocumentStore.
func (s *localStore) Materialize(_ context.Context, filename string) (string, func(), error) {
	filePath := s.path(filename)
	if _, err := os.Stat(filePath); err != nil {
		return "", nil, fmt.Errorf("stored file unavailable: %w", err)
	}
	return filePath, func() {}, nil
}

// Delete implements DocumentStore.
func (s *localStore) Delete(_ context.Context, filename string) error {
	if err := os.Remove(s.path(filename)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
