package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhotoExtension(t *testing.T) {
	tests := []struct {
		filename, contentType, want string
	}{
		{"IMG_0001.JPEG", "", "jpg"},
		{"photo.png", "image/jpeg", "png"},
		{"", "image/webp", "webp"},
		{"blob", "image/heic", "heic"},
		{"", "image/jpeg", "jpg"},
		{"scan.tiff", "", "jpg"},
		{"", "", "jpg"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PhotoExtension(tt.filename, tt.contentType), "%q %q", tt.filename, tt.contentType)
	}
}

func TestPhoneUpload_Flow(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	issued, err := h.phone.IssueToken(ctx)
	require.NoError(t, err)
	_, err = uuid.Parse(issued.Token)
	require.NoError(t, err)

	status, err := h.phone.Status(ctx, issued.Token)
	require.NoError(t, err)
	assert.Equal(t, "waiting", status.Status)

	up, err := h.phone.Upload(ctx, issued.Token, Photo{Filename: "selfie.jpeg", ContentType: "image/jpeg", Data: []byte("jpeg")})
	require.NoError(t, err)
	assert.True(t, up.OK)
	assert.Equal(t, "Uploads", up.Bucket)
	assert.Equal(t, "phone/"+issued.Token+"/photo.jpg", up.Path)
	assert.NotEmpty(t, up.PreviewURL)

	// Re-uploading replaces the photo.
	_, err = h.phone.Upload(ctx, issued.Token, Photo{Filename: "selfie2.jpg", Data: []byte("jpeg2")})
	require.NoError(t, err)

	status, err = h.phone.Status(ctx, issued.Token)
	require.NoError(t, err)
	assert.Equal(t, "uploaded", status.Status)
	assert.Equal(t, up.Path, status.Path)

	photo, err := h.phone.Fetch(ctx, issued.Token)
	require.NoError(t, err)
	assert.Equal(t, "jpeg2", string(photo.Data))
	assert.Equal(t, "image/jpeg", photo.ContentType)
}

func TestPhoneUpload_Rejections(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	_, err := h.phone.Upload(ctx, "not-a-uuid", Photo{Data: []byte("x")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = h.phone.Upload(ctx, uuid.NewString(), Photo{Data: make([]byte, MaxPhoneUploadBytes+1)})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = h.phone.Fetch(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrPhotoNotFound)
}

func TestPhoneUpload_TokenStore(t *testing.T) {
	h := newHarness()
	tokens := &memTokens{issued: map[string]time.Duration{}}
	svc := NewPhoneUploadService(h.storage, h.blobs, tokens, nil)
	ctx := context.Background()

	issued, err := svc.IssueToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, phoneTokenTTL, tokens.issued[issued.Token])

	_, err = svc.Upload(ctx, issued.Token, Photo{Filename: "a.png", Data: []byte("png")})
	require.NoError(t, err)

	_, err = svc.Upload(ctx, uuid.NewString(), Photo{Filename: "a.png", Data: []byte("png")})
	assert.ErrorIs(t, err, ErrInvalidToken)

	photo, err := svc.Fetch(ctx, issued.Token)
	require.NoError(t, err)
	assert.Equal(t, "phone-photo.png", photo.Filename)

	_, err = svc.Fetch(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrInvalidToken)
}
