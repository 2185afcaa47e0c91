package supabase_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bust-order-backend/internal/supabase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStorageClient_RequiresURL(t *testing.T) {
	_, err := supabase.NewStorageClient("", "key")
	assert.Error(t, err)
}

func TestStorageClient_SignedURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasPrefix(r.URL.Path, "/storage/v1/object/sign/Outputs/"), r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"signedURL":"/object/sign/Outputs/abc/clay_preview.png?token=t"}`))
	}))
	defer srv.Close()

	client, err := supabase.NewStorageClient(srv.URL+"/", "service-role")
	require.NoError(t, err)

	url, err := client.SignedURL(context.Background(), "Outputs", "abc/clay_preview.png", 30*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/storage/v1/object/sign/Outputs/abc/clay_preview.png?token=t", url)
}

func TestStorageClient_CanceledContext(t *testing.T) {
	client, err := supabase.NewStorageClient("https://example.supabase.co", "key")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = client.Upload(ctx, "Uploads", "a/b.jpg", []byte("x"), "image/jpeg", false)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = client.Download(ctx, "Uploads", "a/b.jpg")
	assert.ErrorIs(t, err, context.Canceled)
}
