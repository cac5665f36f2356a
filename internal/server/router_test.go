package server

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArthurDelaporte/OnlyFeed-Posts/internal/auth"
	"github.com/ArthurDelaporte/OnlyFeed-Posts/internal/guard"
	"github.com/ArthurDelaporte/OnlyFeed-Posts/internal/media"
	"github.com/ArthurDelaporte/OnlyFeed-Posts/internal/post"
	"github.com/ArthurDelaporte/OnlyFeed-Posts/internal/storage"
	"github.com/ArthurDelaporte/OnlyFeed-Posts/internal/upload"
	"github.com/ArthurDelaporte/OnlyFeed-Posts/internal/user"
)

// nopStore n'est jamais censé être appelé dans ces tests.
type nopStore struct{ calls int }

func (s *nopStore) Find(context.Context, post.Filter) ([]post.Post, error) {
	s.calls++
	return []post.Post{}, nil
}

func (s *nopStore) InsertOne(_ context.Context, p *post.Post) (string, error) {
	s.calls++
	return p.ID, nil
}

func (s *nopStore) UpdateOne(context.Context, post.Filter, post.Patch) (int64, error) {
	s.calls++
	return 0, nil
}

func (s *nopStore) DeleteOne(context.Context, post.Filter) (int64, error) {
	s.calls++
	return 0, nil
}

type nopBlobs struct{}

func (nopBlobs) Put(context.Context, []byte, storage.Metadata) (string, error) { return "blob", nil }
func (nopBlobs) Delete(context.Context, string) error { return nil }
func (nopBlobs) Open(context.Context, string) (io.ReadCloser, storage.Metadata, error) {
	return nil, storage.Metadata{}, storage.ErrBlobNotFound
}

type noProfiles struct{}

func (noProfiles) GetProfile(context.Context, string) (*user.Profile, error) {
	return nil, user.ErrUserNotFound
}
func (noProfiles) ResolveUsername(context.Context, string) (string, error) {
	return "", user.ErrUserNotFound
}

func newTestRouter(t *testing.T, maxUpload int64) (*gin.Engine, *nopStore, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := &nopStore{}
	blobs := nopBlobs{}
	tokens := auth.NewTokens("secret", time.Hour)
	pipeline := upload.NewPipeline(media.NewValidator(media.DefaultPolicy()), blobs)
	svc := post.NewService(store, blobs, pipeline, noProfiles{}, post.Options{})

	r := NewRouter(RouterDeps{
		Posts:          post.NewHandler(svc, tokens, guard.AcceptAllCSRF, "/"),
		Blobs:          blobs,
		Tokens:         tokens,
		MaxUploadBytes: maxUpload,
	})

	tok, err := tokens.Issue("user-a")
	require.NoError(t, err)
	return r, store, "Bearer " + tok
}

func TestHealth(t *testing.T) {
	r, _, _ := newTestRouter(t, media.DefaultMaxBytes)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestRoutesRequireAuthThenReferer(t *testing.T) {
	r, store, bearer := newTestRouter(t, media.DefaultMaxBytes)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/posts", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/posts", nil)
	req.Header.Set("Authorization", bearer)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, store.calls)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/posts", nil)
	req.Header.Set("Authorization", bearer)
	req.Header.Set("Referer", "https://onlyfeed.app/")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"posts":[]}`, w.Body.String())
}

func TestFileNotFound(t *testing.T) {
	r, _, bearer := newTestRouter(t, media.DefaultMaxBytes)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/files/unknown", nil)
	req.Header.Set("Authorization", bearer)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateBodyTooLarge(t *testing.T) {
	r, store, bearer := newTestRouter(t, 16)

	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("content", "Too big"))
	part, err := writer.CreateFormFile("attachment", "big.png")
	require.NoError(t, err)
	_, err = part.Write([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A})
	require.NoError(t, err)
	_, err = part.Write(make([]byte, multipartOverhead+1024))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/create-post", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", bearer)
	req.Header.Set("Referer", "https://onlyfeed.app/")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.JSONEq(t, `{"error":"File too large"}`, w.Body.String())
	assert.Zero(t, store.calls)
}
