package upload

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ArthurDelaporte/OnlyFeed-Posts/internal/apperr"
	"github.com/ArthurDelaporte/OnlyFeed-Posts/internal/media"
	"github.com/ArthurDelaporte/OnlyFeed-Posts/internal/storage"
)

var pngBytes = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52}

type mockBlobStore struct {
	mock.Mock
}

func (m *mockBlobStore) Put(ctx context.Context, data []byte, meta storage.Metadata) (string, error) {
	args := m.Called(ctx, data, meta)
	return args.String(0), args.Error(1)
}

func (m *mockBlobStore) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockBlobStore) Open(ctx context.Context, id string) (io.ReadCloser, storage.Metadata, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, storage.Metadata{}, args.Error(2)
	}
	return args.Get(0).(io.ReadCloser), args.Get(1).(storage.Metadata), args.Error(2)
}

func fileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("attachment", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))

	return req.MultipartForm.File["attachment"][0]
}

func newPipeline(blobs storage.BlobStore, max int64) *Pipeline {
	p := NewPipeline(media.NewValidator(media.Policy{
		MaxBytes:   max,
		Extensions: media.DefaultExtensions,
		MIMETypes:  media.DefaultMIMETypes,
	}), blobs)
	p.now = func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) }
	return p
}

func TestUploadSuccess(t *testing.T) {
	blobs := &mockBlobStore{}
	p := newPipeline(blobs, media.DefaultMaxBytes)
	ctx := context.Background()

	blobs.On("Put", ctx, pngBytes, mock.MatchedBy(func(meta storage.Metadata) bool {
		return meta.Filename == "my_photo.png" &&
			strings.HasSuffix(meta.Name, "_my_photo.png") &&
			meta.ContentType == "image/png" &&
			meta.Size == int64(len(pngBytes))
	})).Return("blob-1", nil).Once()

	att, err := p.Upload(ctx, fileHeader(t, "my photo.png", pngBytes))

	require.NoError(t, err)
	assert.Equal(t, "blob-1", att.ID)
	assert.Equal(t, "my_photo.png", att.Filename)
	assert.Equal(t, "image/png", att.ContentType)
	assert.Equal(t, int64(len(pngBytes)), att.Size)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), att.CreatedAt)
	blobs.AssertExpectations(t)
}

func TestUploadRejections(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		content  []byte
		max      int64
		want     apperr.Kind
	}{
		{name: "text file extension", filename: "a.txt", content: []byte("0123456789"), max: media.DefaultMaxBytes, want: apperr.FileTypeNotAllowed},
		{name: "no extension", filename: "photo", content: pngBytes, max: media.DefaultMaxBytes, want: apperr.FileTypeNotAllowed},
		{name: "renamed text", filename: "evil.png", content: []byte("<?php system($_GET['c']); ?>"), max: media.DefaultMaxBytes, want: apperr.InvalidFileType},
		{name: "empty", filename: "empty.png", content: []byte{}, max: media.DefaultMaxBytes, want: apperr.EmptyFile},
		{name: "too large", filename: "big.png", content: append(append([]byte{}, pngBytes...), make([]byte, 16)...), max: 16, want: apperr.FileTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blobs := &mockBlobStore{}
			p := newPipeline(blobs, tt.max)

			att, err := p.Upload(context.Background(), fileHeader(t, tt.filename, tt.content))

			assert.Nil(t, att)
			assert.Equal(t, tt.want, apperr.KindOf(err))
			blobs.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestUploadExactCeilingAccepted(t *testing.T) {
	content := append(append([]byte{}, pngBytes...), make([]byte, 16)...)
	blobs := &mockBlobStore{}
	p := newPipeline(blobs, int64(len(content)))

	blobs.On("Put", mock.Anything, content, mock.Anything).Return("blob-2", nil).Once()

	att, err := p.Upload(context.Background(), fileHeader(t, "exact.png", content))
	require.NoError(t, err)
	assert.Equal(t, "blob-2", att.ID)
}

func TestUploadUnderstatedSizeIsCaught(t *testing.T) {
	content := append(append([]byte{}, pngBytes...), make([]byte, 16)...)
	fh := fileHeader(t, "liar.png", content)
	fh.Size = 1

	blobs := &mockBlobStore{}
	p := newPipeline(blobs, 16)

	_, err := p.Upload(context.Background(), fh)
	assert.Equal(t, apperr.FileTooLarge, apperr.KindOf(err))
	blobs.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything)
}

func TestUploadStoreFailure(t *testing.T) {
	blobs := &mockBlobStore{}
	p := newPipeline(blobs, media.DefaultMaxBytes)
	cause := errors.New("bucket unavailable")
	blobs.On("Put", mock.Anything, mock.Anything, mock.Anything).Return("", cause).Once()

	_, err := p.Upload(context.Background(), fileHeader(t, "photo.png", pngBytes))

	assert.Equal(t, apperr.PostCreationFailed, apperr.KindOf(err))
	assert.ErrorIs(t, err, cause)
}

func TestUploadNilHeader(t *testing.T) {
	p := newPipeline(&mockBlobStore{}, media.DefaultMaxBytes)
	_, err := p.Upload(context.Background(), nil)
	assert.Equal(t, apperr.MissingFields, apperr.KindOf(err))
}

func TestServeFile(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("ok", func(t *testing.T) {
		blobs := &mockBlobStore{}
		blobs.On("Open", mock.Anything, "blob-1").Return(
			io.NopCloser(bytes.NewReader(pngBytes)),
			storage.Metadata{Filename: "photo.png", ContentType: "image/png", Size: int64(len(pngBytes))},
			nil,
		).Once()

		r := gin.New()
		r.GET("/api/files/:id", ServeFile(blobs))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/files/blob-1", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
		assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
		assert.Contains(t, w.Header().Get("Content-Disposition"), "photo.png")
		assert.Equal(t, pngBytes, w.Body.Bytes())
	})

	t.Run("not found", func(t *testing.T) {
		blobs := &mockBlobStore{}
		blobs.On("Open", mock.Anything, "missing").Return(nil, nil, storage.ErrBlobNotFound).Once()

		r := gin.New()
		r.GET("/api/files/:id", ServeFile(blobs))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/files/missing", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"error":"File not found"}`, w.Body.String())
	})
}
