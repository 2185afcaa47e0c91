package handlers

import (
	"mime/multipart"
	"net/http"
	"strings"

	"bust-order-backend/internal/models"
	"bust-order-backend/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PhoneUploadHandler struct {
	phone *services.PhoneUploadService
	log   *zap.Logger
}

func NewPhoneUploadHandler(phone *services.PhoneUploadService, log *zap.Logger) *PhoneUploadHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &PhoneUploadHandler{phone: phone, log: log}
}

// Upload godoc
// @Summary     Phone upload
// @Description Without a multipart body, issues a new upload token for the QR code flow.
// @Description With a multipart body, stores the photo under phone/{token}/photo.{ext}, replacing any earlier one.
// @Tags        phone-upload
// @Accept      multipart/form-data
// @Produce     json
// @Param       token query    string false "Upload token (may also be sent as a form field)"
// @Param       photo formData file   false "Photo (max 12MB); the field may also be named file"
// @Success     200 {object} models.PhoneUploadResponse
// @Success     200 {object} models.PhoneTokenResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /phone-upload [post]
func (h *PhoneUploadHandler) Upload(c *gin.Context) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		resp, err := h.phone.IssueToken(c.Request.Context())
		if err != nil {
			respondError(c, h.log, err)
			return
		}
		c.JSON(http.StatusOK, resp)
		return
	}

	if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to parse multipart form",
			Message: err.Error(),
		})
		return
	}

	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		token = strings.TrimSpace(c.PostForm("token"))
	}
	if token == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "missing token"})
		return
	}

	var file *multipart.FileHeader
	for _, name := range []string{"photo", "file"} {
		if f := c.Request.MultipartForm.File[name]; len(f) > 0 {
			file = f[0]
			break
		}
	}
	if file == nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "missing photo"})
		return
	}
	if file.Size > services.MaxPhoneUploadBytes {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "photo must be less than 12MB"})
		return
	}

	photo, err := readPhoto(file, services.MaxPhoneUploadBytes)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to read photo",
			Message: err.Error(),
		})
		return
	}

	resp, err := h.phone.Upload(c.Request.Context(), token, *photo)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Status godoc
// @Summary     Phone upload status
// @Description Reports whether a photo has been uploaded for the token yet.
// @Tags        phone-upload
// @Produce     json
// @Param       token query string true "Upload token"
// @Success     200 {object} models.PhoneUploadStatusResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /phone-upload/status [get]
func (h *PhoneUploadHandler) Status(c *gin.Context) {
	resp, err := h.phone.Status(c.Request.Context(), c.Query("token"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
