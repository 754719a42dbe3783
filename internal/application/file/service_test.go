package file

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/portfolio-api/internal/domain"
	"github.com/portfolio-api/internal/pkg/id"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockMetaStore struct{ mock.Mock }

func (m *mockMetaStore) Put(ctx context.Context, f *domain.File) error {
	return m.Called(ctx, f).Error(0)
}
func (m *mockMetaStore) Get(ctx context.Context, fileID string) (*domain.File, error) {
	args := m.Called(ctx, fileID)
	if f, _ := args.Get(0).(*domain.File); f != nil {
		return f, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockMetaStore) SoftDelete(ctx context.Context, fileID string) error {
	return m.Called(ctx, fileID).Error(0)
}

type mockBlobStore struct{ mock.Mock }

func (m *mockBlobStore) Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	args := m.Called(ctx, key, r, contentType)
	return args.String(0), args.Error(1)
}
func (m *mockBlobStore) PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, key, ttl)
	return args.String(0), args.Error(1)
}
func (m *mockBlobStore) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func TestUpload_StoresBlobAndMetadata(t *testing.T) {
	meta, blobs := &mockMetaStore{}, &mockBlobStore{}
	blobs.On("Upload", mock.Anything, mock.Anything, mock.Anything, "image/png").Return("s3://b/k", nil)
	meta.On("Put", mock.Anything, mock.MatchedBy(func(f *domain.File) bool {
		return f.FileID != "" && f.Size == 4 && f.Hash != "" && f.Enable
	})).Return(nil)

	svc := NewService(meta, blobs)
	f, err := svc.Upload(context.Background(), "user-1", "logo.png", "image/png", strings.NewReader("data"))
	require.NoError(t, err)

	assert.Equal(t, "logo.png", f.Name)
	assert.Equal(t, "user-1", f.UploadedByUserID)
	assert.Contains(t, f.Object, ".png")
	meta.AssertExpectations(t)
}

func TestUpload_RejectsUnsupportedType(t *testing.T) {
	meta, blobs := &mockMetaStore{}, &mockBlobStore{}
	svc := NewService(meta, blobs)

	_, err := svc.Upload(context.Background(), "u", "x.exe", "application/octet-stream", strings.NewReader("x"))
	assert.ErrorIs(t, err, domain.ErrBadRequest)
	blobs.AssertNotCalled(t, "Upload")
}

func TestUpload_RejectsEmptyBody(t *testing.T) {
	svc := NewService(&mockMetaStore{}, &mockBlobStore{})
	_, err := svc.Upload(context.Background(), "u", "x.png", "image/png", strings.NewReader(""))
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestUpload_RejectsOversizedBody(t *testing.T) {
	svc := NewService(&mockMetaStore{}, &mockBlobStore{}).(*service)
	svc.maxBytes = 8

	_, err := svc.Upload(context.Background(), "u", "x.png", "image/png", strings.NewReader("123456789"))
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestUpload_CleansUpOnMetadataFailure(t *testing.T) {
	meta, blobs := &mockMetaStore{}, &mockBlobStore{}
	blobs.On("Upload", mock.Anything, mock.Anything, mock.Anything, "image/png").Return("s3://b/k", nil)
	meta.On("Put", mock.Anything, mock.Anything).Return(errors.New("dynamo down"))
	blobs.On("Delete", mock.Anything, mock.Anything).Return(nil)

	svc := NewService(meta, blobs)
	_, err := svc.Upload(context.Background(), "u", "x.png", "image/png", strings.NewReader("data"))
	assert.ErrorContains(t, err, "dynamo down")
	blobs.AssertCalled(t, "Delete", mock.Anything, mock.Anything)
}

// Eight-byte PNG signature, enough for content-type sniffing.
const pngSigBase64 = "iVBORw0KGgo="

func TestUploadBase64_SniffsContentType(t *testing.T) {
	meta, blobs := &mockMetaStore{}, &mockBlobStore{}
	blobs.On("Upload", mock.Anything, mock.Anything, mock.Anything, "image/png").Return("s3://b/k", nil)
	meta.On("Put", mock.Anything, mock.MatchedBy(func(f *domain.File) bool {
		return f.Type == "image/png"
	})).Return(nil)

	svc := NewService(meta, blobs)
	f, err := svc.UploadBase64(context.Background(), "u", "pixel.png", pngSigBase64)
	require.NoError(t, err)
	assert.Equal(t, "image/png", f.Type)
	meta.AssertExpectations(t)
}

func TestUploadBase64_StripsDataURLPrefix(t *testing.T) {
	meta, blobs := &mockMetaStore{}, &mockBlobStore{}
	blobs.On("Upload", mock.Anything, mock.Anything, mock.Anything, "image/png").Return("s3://b/k", nil)
	meta.On("Put", mock.Anything, mock.Anything).Return(nil)

	svc := NewService(meta, blobs)
	_, err := svc.UploadBase64(context.Background(), "u", "pixel.png", "data:image/png;base64,"+pngSigBase64)
	require.NoError(t, err)
}

func TestUploadBase64_RejectsGarbage(t *testing.T) {
	svc := NewService(&mockMetaStore{}, &mockBlobStore{})
	_, err := svc.UploadBase64(context.Background(), "u", "x.png", "!!not-base64!!")
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestDownloadURL_Presigns(t *testing.T) {
	meta, blobs := &mockMetaStore{}, &mockBlobStore{}
	fileID := id.New()
	meta.On("Get", mock.Anything, fileID).Return(&domain.File{FileID: fileID, Object: "uploads/x.png", Enable: true}, nil)
	blobs.On("PresignedURL", mock.Anything, "uploads/x.png", 15*time.Minute).Return("https://signed", nil)

	svc := NewService(meta, blobs)
	url, err := svc.DownloadURL(context.Background(), fileID)
	require.NoError(t, err)
	assert.Equal(t, "https://signed", url)
}

func TestDownloadURL_SoftDeletedIsNotFound(t *testing.T) {
	meta, blobs := &mockMetaStore{}, &mockBlobStore{}
	fileID := id.New()
	meta.On("Get", mock.Anything, fileID).Return(&domain.File{FileID: fileID, Object: "k", Enable: false}, nil)

	svc := NewService(meta, blobs)
	_, err := svc.DownloadURL(context.Background(), fileID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	blobs.AssertNotCalled(t, "PresignedURL")
}

func TestDelete_SoftDeletesThenRemovesBlob(t *testing.T) {
	meta, blobs := &mockMetaStore{}, &mockBlobStore{}
	fileID := id.New()
	meta.On("Get", mock.Anything, fileID).Return(&domain.File{FileID: fileID, Object: "k", Enable: true}, nil)
	meta.On("SoftDelete", mock.Anything, fileID).Return(nil)
	blobs.On("Delete", mock.Anything, "k").Return(nil)

	svc := NewService(meta, blobs)
	require.NoError(t, svc.Delete(context.Background(), fileID))
	meta.AssertExpectations(t)
	blobs.AssertExpectations(t)
}

func TestDelete_InvalidID(t *testing.T) {
	svc := NewService(&mockMetaStore{}, &mockBlobStore{})
	err := svc.Delete(context.Background(), "bogus")
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}
