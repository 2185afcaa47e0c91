package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"bust-order-backend/internal/models"
	"bust-order-backend/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// photoFieldNames are the multipart fields accepted for the intake photo.
var photoFieldNames = []string{"images", "image", "photo", "file"}

type OrderHandler struct {
	intake *services.IntakeService
	log    *zap.Logger
}

func NewOrderHandler(intake *services.IntakeService, log *zap.Logger) *OrderHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &OrderHandler{intake: intake, log: log}
}

// CreateOrder godoc
// @Summary     Create a bust order
// @Description Creates an order from one photo (or a prior phone upload) and starts the clay preview.
// @Description If something fails after the order row exists, the response is still 201 with a
// @Description warning and the order is left failed so the client can send the customer to the order page.
// @Tags        orders
// @Accept      multipart/form-data
// @Produce     json
// @Param       email            formData string true  "Customer email"
// @Param       bustSize         formData int    true  "Bust height in mm (100, 200 or 300)"
// @Param       style            formData string true  "classical, modern or custom"
// @Param       styleHint        formData string false "Free-text style hint"
// @Param       notes            formData string false "Order notes"
// @Param       phoneUploadToken formData string false "Token of a phone upload to use instead of a file"
// @Param       images           formData file   false "Portrait photo (max 10MB)"
// @Success     201 {object} models.CreateOrderResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /orders [post]
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "expected multipart form data",
			Message: err.Error(),
		})
		return
	}

	var req models.CreateOrderRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "missing or invalid fields",
			Message: err.Error(),
		})
		return
	}

	var files []*multipart.FileHeader
	for _, name := range photoFieldNames {
		if f := c.Request.MultipartForm.File[name]; len(f) > 0 {
			files = f
			break
		}
	}
	if len(files) > 1 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Upload exactly 1 image"})
		return
	}

	in := services.CreateOrderInput{
		Email:            req.Email,
		BustSize:         req.BustSize,
		Style:            models.BustStyle(req.Style),
		StyleHint:        req.StyleHint,
		Notes:            req.Notes,
		PhoneUploadToken: req.PhoneUploadToken,
	}
	if len(files) == 1 {
		photo, err := readPhoto(files[0], services.MaxPhotoBytes)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "failed to read image",
				Message: err.Error(),
			})
			return
		}
		in.Photo = photo
	}

	resp, err := h.intake.CreateOrder(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// readPhoto loads an uploaded file. Files above limit are returned with their
// size only so the caller can reject them.
func readPhoto(fh *multipart.FileHeader, limit int64) (*services.Photo, error) {
	photo := &services.Photo{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
	}
	if fh.Size > limit {
		return photo, nil
	}

	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	photo.Data = data
	photo.Size = int64(len(data))
	return photo, nil
}

var errorTitles = []error{
	services.ErrOrderNotFound,
	services.ErrInvalidInput,
	services.ErrRetryNotAllowed,
	services.ErrNoUpload,
	services.ErrRetryCreditRequired,
	services.ErrConflict,
	services.ErrUpstream,
	services.ErrPhotoNotFound,
	services.ErrInvalidToken,
	services.ErrUnauthorized,
	services.ErrNotConfigured,
}

// respondError writes err with the status services.HTTPStatus assigns it.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	status := services.HTTPStatus(err)
	title := "internal error"
	for _, sentinel := range errorTitles {
		if errors.Is(err, sentinel) {
			title = sentinel.Error()
			break
		}
	}

	if status >= http.StatusInternalServerError {
		log.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Int("status", status),
			zap.Error(err),
		)
	}
	c.JSON(status, models.ErrorResponse{Error: title, Message: err.Error()})
}
