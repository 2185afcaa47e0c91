package services

import (
	"context"
	"database/sql"
	"fmt"
	"path"
	"strings"
	"time"

	"bust-order-backend/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StorageService owns the asset path layout and turns stored paths into
// signed URLs for the API.
type StorageService struct {
	blobs         BlobStore
	uploadsBucket string
	outputsBucket string
	ttl           time.Duration
	log           *zap.Logger
}

func NewStorageService(blobs BlobStore, uploadsBucket, outputsBucket string, ttl time.Duration, log *zap.Logger) *StorageService {
	if log == nil {
		log = zap.NewNop()
	}
	return &StorageService{
		blobs:         blobs,
		uploadsBucket: uploadsBucket,
		outputsBucket: outputsBucket,
		ttl:           ttl,
		log:           log,
	}
}

func (s *StorageService) UploadsBucket() string { return s.uploadsBucket }
func (s *StorageService) OutputsBucket() string { return s.outputsBucket }

func ClayPreviewPath(orderID uuid.UUID) string { return orderID.String() + "/clay_preview.png" }
func ModelGLBPath(orderID uuid.UUID) string    { return orderID.String() + "/model.glb" }
func ModelOBJPath(orderID uuid.UUID) string    { return orderID.String() + "/model.obj" }

// OriginalPath is where an intake photo is stored.
func OriginalPath(orderID uuid.UUID, at time.Time, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "upload.jpg"
	}
	return fmt.Sprintf("%s/%d-%s", orderID, at.UnixMilli(), name)
}

func PhonePhotoPath(token, ext string) string {
	return fmt.Sprintf("phone/%s/photo.%s", token, ext)
}

func (s *StorageService) StoreOriginal(ctx context.Context, p string, data []byte, contentType string) error {
	return s.blobs.Upload(ctx, s.uploadsBucket, p, data, contentType, false)
}

func (s *StorageService) StoreOutput(ctx context.Context, p string, data []byte, contentType string) error {
	return s.blobs.Upload(ctx, s.outputsBucket, p, data, contentType, true)
}

func (s *StorageService) SignUpload(ctx context.Context, p string) (string, error) {
	return s.blobs.SignedURL(ctx, s.uploadsBucket, p, s.ttl)
}

func (s *StorageService) SignOutput(ctx context.Context, p string) (string, error) {
	return s.blobs.SignedURL(ctx, s.outputsBucket, p, s.ttl)
}

// signOptional signs p when set. Failures are logged and yield nil so a
// broken asset never hides the rest of the order.
func (s *StorageService) signOptional(ctx context.Context, p sql.NullString) *string {
	if !p.Valid || p.String == "" {
		return nil
	}
	url, err := s.SignOutput(ctx, p.String)
	if err != nil {
		s.log.Warn("failed to sign asset", zap.String("path", p.String), zap.Error(err))
		return nil
	}
	return &url
}

// OrderView builds the customer-facing projection of o.
func (s *StorageService) OrderView(ctx context.Context, o *models.Order) models.OrderView {
	view := models.OrderView{
		ID:              o.ID.String(),
		Status:          o.Status,
		PreviewAttempts: o.PreviewAttempts,
		RetryCredits:    o.RetryCredits,
		ClayPreviewURL:  s.signOptional(ctx, o.ClayPreviewPath),
		ModelGLBURL:     s.signOptional(ctx, o.ModelGLBPath),
		ModelOBJURL:     s.signOptional(ctx, o.ModelOBJPath),
	}
	if o.GenerationStartedAt.Valid {
		t := o.GenerationStartedAt.Time
		view.GenerationStartedAt = &t
	}
	return view
}

// AdminRow builds the operator list row for o, including signed asset links.
func (s *StorageService) AdminRow(ctx context.Context, o *models.Order) models.AdminOrderRow {
	row := models.AdminOrderRow{
		ID:                  o.ID.String(),
		CreatedAt:           o.CreatedAt,
		Status:              o.Status,
		Email:               o.Email,
		BustStyle:           o.BustStyle,
		BustHeightMM:        o.BustHeightMM,
		PriceCents:          o.PriceCents,
		FilamentColor:       o.FilamentColor.String,
		Notes:               o.Notes.String,
		PreviewAttempts:     o.PreviewAttempts,
		RetryCredits:        o.RetryCredits,
		MeshyModelAttempts:  o.MeshyModelAttempts,
		MeshyModelLastError: o.MeshyModelLastError.String,
		Shipping:            models.NewShippingView(o.Shipping),
		Ready:               o.ReadyForProduction(),
		PreviewURL:          deref(s.signOptional(ctx, o.ClayPreviewPath)),
		GLBURL:              deref(s.signOptional(ctx, o.ModelGLBPath)),
		OBJURL:              deref(s.signOptional(ctx, o.ModelOBJPath)),
	}
	if o.GenerationStartedAt.Valid {
		t := o.GenerationStartedAt.Time
		row.GenerationStartedAt = &t
	}
	return row
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
