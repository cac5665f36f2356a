package user

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPProfiles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/users", r.URL.Path)
		assert.Equal(t, "service-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer service-key", r.Header.Get("Authorization"))
		assert.Equal(t, profileColumns, r.URL.Query().Get("select"))

		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Query().Get("id") == "eq.user-a", r.URL.Query().Get("username") == "eq.alice":
			_, _ = w.Write([]byte(`[{"id":"user-a","username":"alice","firstname":"Alice","lastname":"Martin","avatar_url":""}]`))
		case r.URL.Query().Get("id") == "eq.broken":
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"message":"boom"}`))
		default:
			_, _ = w.Write([]byte(`[]`))
		}
	}))
	defer srv.Close()

	profiles := NewHTTPProfiles(srv.URL, "service-key")
	ctx := context.Background()

	p, err := profiles.GetProfile(ctx, "user-a")
	require.NoError(t, err)
	assert.Equal(t, "Alice", p.FirstName)
	assert.Equal(t, "alice", p.Username)

	id, err := profiles.ResolveUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "user-a", id)

	_, err = profiles.GetProfile(ctx, "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = profiles.GetProfile(ctx, "broken")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrUserNotFound)
}
