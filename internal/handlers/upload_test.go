package handlers_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"bust-order-backend/internal/handlers"
	"bust-order-backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func phoneRouter() *gin.Engine {
	h := handlers.NewPhoneUploadHandler(services.NewPhoneUploadService(nil, nil, nil, nil), nil)
	router := gin.New()
	router.POST("/phone-upload", h.Upload)
	router.GET("/phone-upload/status", h.Status)
	return router
}

func TestPhoneUploadHandler_IssuesToken(t *testing.T) {
	req, _ := http.NewRequest("POST", "/phone-upload", nil)
	w := httptest.NewRecorder()
	phoneRouter().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	token, _ := decode(t, w)["token"].(string)
	_, err := uuid.Parse(token)
	assert.NoError(t, err)
}

func TestPhoneUploadHandler_MultipartRejections(t *testing.T) {
	build := func(token string, withPhoto bool) (*bytes.Buffer, string) {
		buf := &bytes.Buffer{}
		mw := multipart.NewWriter(buf)
		if token != "" {
			require.NoError(t, mw.WriteField("token", token))
		}
		if withPhoto {
			fw, err := mw.CreateFormFile("photo", "selfie.jpg")
			require.NoError(t, err)
			_, _ = fw.Write([]byte("jpeg"))
		}
		require.NoError(t, mw.Close())
		return buf, mw.FormDataContentType()
	}

	tests := []struct {
		name      string
		token     string
		withPhoto bool
		wantError string
	}{
		{name: "no token", withPhoto: true, wantError: "missing token"},
		{name: "no photo", token: uuid.NewString(), wantError: "missing photo"},
		{name: "malformed token", token: "abc", withPhoto: true, wantError: "invalid input"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, contentType := build(tt.token, tt.withPhoto)
			req, _ := http.NewRequest("POST", "/phone-upload", body)
			req.Header.Set("Content-Type", contentType)
			w := httptest.NewRecorder()
			phoneRouter().ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.wantError, decode(t, w)["error"])
		})
	}
}

func TestPhoneUploadHandler_StatusRejectsBadToken(t *testing.T) {
	req, _ := http.NewRequest("GET", "/phone-upload/status?token=abc", nil)
	w := httptest.NewRecorder()
	phoneRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
