package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"alfredoptarigan/resume-matcher/internal/config"
)

// s3Store keeps resumes in an S3 compatible bucket (AWS, Cloudflare R2,
// MinIO). Files are staged in a temp dir for extraction.
type s3Store struct {
	client *s3.Client
	bucket string
}

func NewS3Store(ctx context.Context, cfg config.S3Config) (DocumentStore, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &s3Store{client: client, bucket: cfg.Bucket}, nil
}

// Save implements DocumentStore. The body is buffered because PutObject
// needs a seekable reader to compute the payload checksum.
func (s *s3Store) Save(ctx context.Context, filename string, src io.Reader) (int64, error) {
	buf := new(bytes.Buffer)
	written, err := io.Copy(buf, src)
	if err != nil {
		return 0, fmt.Errorf("failed to read upload: %w", err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(filename),
		Body:          bytes.NewReader(buf.Bytes()),
		ContentLength: aws.Int64(written),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to put object: %w", err)
	}

	return written, nil
}

// Materialize implements DocumentStore.
func (s *s3Store) Materialize(ctx context.Context, filename string) (string, func(), error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(filename),
	})
	if err != nil {
		return "", nil, fmt.Errorf("failed to get object: %w", err)
	}
	defer out.Body.Close()

	dir, err := os.MkdirTemp("", "resume-*")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	release := func() { os.RemoveAll(dir) }

	localPath := filepath.Join(dir, filepath.Base(filename))
	f, err := os.Create(localPath)
	if err != nil {
		release()
		return "", nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, out.Body); err != nil {
		release()
		return "", nil, fmt.Errorf("failed to read object body: %w", err)
	}

	return localPath, release, nil
}

// Delete implements DocumentStore.
func (s *s3Store) Delete(ctx context.Context, filename string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(filename),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// NewDocumentStore picks the backend configured in STORAGE_DRIVER.
func NewDocumentStore(ctx context.Context, cfg config.StorageConfig) (DocumentStore, error) {
	if cfg.Driver == "s3" {
		return NewS3Store(ctx, cfg.S3)
	}
	return NewLocalStore(cfg.UploadPath)
}
