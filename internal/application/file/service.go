// Package file manages dashboard asset uploads: blob in S3, metadata in
// DynamoDB.
package file

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/portfolio-api/internal/domain"
	"github.com/portfolio-api/internal/pkg/id"
)

const maxUploadSize = 10 << 20 // 10 MiB

var allowedTypes = map[string]bool{
	"image/png":       true,
	"image/jpeg":      true,
	"image/webp":      true,
	"image/gif":       true,
	"image/svg+xml":   true,
	"application/pdf": true,
}

type Service interface {
	Upload(ctx context.Context, userID, name, contentType string, body io.Reader) (*domain.File, error)
	// UploadBase64 accepts a base64-encoded payload and sniffs its content type.
	UploadBase64(ctx context.Context, userID, name, encoded string) (*domain.File, error)
	// DownloadURL returns a short-lived presigned URL for the stored object.
	DownloadURL(ctx context.Context, fileID string) (string, error)
	// Delete soft-deletes the metadata row and removes the S3 object.
	Delete(ctx context.Context, fileID string) error
}

type metaStore interface {
	Put(ctx context.Context, f *domain.File) error
	Get(ctx context.Context, fileID string) (*domain.File, error)
	SoftDelete(ctx context.Context, fileID string) error
}

type blobStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

type service struct {
	meta     metaStore
	blobs    blobStore
	urlTTL   time.Duration
	maxBytes int64
}

func NewService(meta metaStore, blobs blobStore) Service {
	return &service{
		meta:     meta,
		blobs:    blobs,
		urlTTL:   15 * time.Minute,
		maxBytes: maxUploadSize,
	}
}

func (s *service) Upload(ctx context.Context, userID, name, contentType string, body io.Reader) (*domain.File, error) {
	if !allowedTypes[contentType] {
		return nil, fmt.Errorf("unsupported content type %q: %w", contentType, domain.ErrBadRequest)
	}

	// Read fully to hash and enforce the size cap before touching S3.
	data, err := io.ReadAll(io.LimitReader(body, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, fmt.Errorf("file exceeds %d bytes: %w", s.maxBytes, domain.ErrBadRequest)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty upload: %w", domain.ErrBadRequest)
	}

	sum := sha256.Sum256(data)
	fileID := id.New()
	key := objectKey(fileID, name)

	if _, err := s.blobs.Upload(ctx, key, bytes.NewReader(data), contentType); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	f := &domain.File{
		FileID:           fileID,
		Object:           key,
		Size:             int64(len(data)),
		Type:             contentType,
		Name:             name,
		Hash:             hex.EncodeToString(sum[:]),
		UploadedByUserID: userID,
		Enable:           true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.meta.Put(ctx, f); err != nil {
		// Metadata write failed: clean up the orphaned object.
		if derr := s.blobs.Delete(ctx, key); derr != nil {
			slog.Warn("orphaned s3 object", "key", key, "err", derr)
		}
		return nil, err
	}
	slog.Info("file uploaded", "file_id", fileID, "size", f.Size, "type", contentType)
	return f, nil
}

func (s *service) UploadBase64(ctx context.Context, userID, name, encoded string) (*domain.File, error) {
	// Data-URL prefixes ("data:image/png;base64,....") are tolerated.
	if i := strings.Index(encoded, ","); i >= 0 && strings.HasPrefix(encoded, "data:") {
		encoded = encoded[i+1:]
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 payload: %w", domain.ErrBadRequest)
	}
	return s.Upload(ctx, userID, name, http.DetectContentType(data), bytes.NewReader(data))
}

func (s *service) DownloadURL(ctx context.Context, fileID string) (string, error) {
	if _, err := ulid.Parse(fileID); err != nil {
		return "", fmt.Errorf("invalid file id: %w", domain.ErrBadRequest)
	}
	f, err := s.meta.Get(ctx, fileID)
	if err != nil {
		return "", err
	}
	if !f.Enable {
		return "", fmt.Errorf("file not found: %w", domain.ErrNotFound)
	}
	return s.blobs.PresignedURL(ctx, f.Object, s.urlTTL)
}

func (s *service) Delete(ctx context.Context, fileID string) error {
	if _, err := ulid.Parse(fileID); err != nil {
		return fmt.Errorf("invalid file id: %w", domain.ErrBadRequest)
	}
	f, err := s.meta.Get(ctx, fileID)
	if err != nil {
		return err
	}
	if err := s.meta.SoftDelete(ctx, fileID); err != nil {
		return err
	}
	if err := s.blobs.Delete(ctx, f.Object); err != nil {
		slog.Warn("s3 delete failed after soft delete", "file_id", fileID, "key", f.Object, "err", err)
	}
	return nil
}

// objectKey shards uploads by year/month so the bucket listing stays usable.
func objectKey(fileID, name string) string {
	now := time.Now().UTC()
	return fmt.Sprintf("uploads/%04d/%02d/%s%s", now.Year(), now.Month(), fileID, path.Ext(name))
}
