package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveUserCachesUntilTTL(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "/auth/v1/user", r.URL.Path)
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"msg":"invalid JWT"}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":"user-1","email":"a@example.com"}`))
	}))
	defer srv.Close()

	client, err := NewAuthServiceClient(srv.URL, "anon-key", 16, time.Minute)
	require.NoError(t, err)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	client.Now = func() time.Time { return now }
	ctx := context.Background()

	id, err := client.ResolveUser(ctx, "good")
	require.NoError(t, err)
	assert.Equal(t, "user-1", id)

	id, err = client.ResolveUser(ctx, "good")
	require.NoError(t, err)
	assert.Equal(t, "user-1", id)
	assert.EqualValues(t, 1, hits.Load())

	now = now.Add(2 * time.Minute)
	_, err = client.ResolveUser(ctx, "good")
	require.NoError(t, err)
	assert.EqualValues(t, 2, hits.Load())

	_, err = client.ResolveUser(ctx, "bad")
	assert.Error(t, err)
	_, err = client.ResolveUser(ctx, "bad")
	assert.Error(t, err)
	assert.EqualValues(t, 4, hits.Load())
}

func TestNewAuthServiceClientRejectsBadCacheSize(t *testing.T) {
	_, err := NewAuthServiceClient("http://auth", "", 0, time.Minute)
	assert.Error(t, err)
}
