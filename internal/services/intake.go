package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"bust-order-backend/internal/events"
	"bust-order-backend/internal/models"

	"go.uber.org/zap"
)

const MaxPhotoBytes = 10 << 20

type CreateOrderInput struct {
	Email            string
	BustSize         int
	Style            models.BustStyle
	StyleHint        string
	Notes            string
	PhoneUploadToken string
	// Photo is nil when the customer uploaded from their phone instead.
	Photo *Photo
}

// IntakeService creates orders and kicks off preview generation.
type IntakeService struct {
	repo      OrderRepository
	storage   *StorageService
	phone     *PhoneUploadService
	lifecycle *LifecycleService
	events    EventPublisher
	log       *zap.Logger
	now       func() time.Time
}

func NewIntakeService(repo OrderRepository, storage *StorageService, phone *PhoneUploadService, lifecycle *LifecycleService, publisher EventPublisher, log *zap.Logger) *IntakeService {
	if log == nil {
		log = zap.NewNop()
	}
	return &IntakeService{
		repo:      repo,
		storage:   storage,
		phone:     phone,
		lifecycle: lifecycle,
		events:    publisher,
		log:       log,
		now:       time.Now,
	}
}

func (in CreateOrderInput) validate() error {
	if strings.TrimSpace(in.Email) == "" || in.BustSize == 0 || in.Style == "" {
		return fmt.Errorf("%w: missing required fields", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}
	if !ValidBustSize(in.BustSize) {
		return fmt.Errorf("%w: bustSize must be 100, 200, or 300", ErrInvalidInput)
	}
	if !in.Style.Valid() {
		return fmt.Errorf("%w: style must be classical, modern, or custom", ErrInvalidInput)
	}
	if in.Photo == nil && strings.TrimSpace(in.PhoneUploadToken) == "" {
		return fmt.Errorf("%w: upload 1 image or upload from phone and then submit", ErrInvalidInput)
	}
	return nil
}

// CreateOrder inserts the order first so the client always gets an id back.
// Anything that goes wrong afterwards marks the order failed and is reported
// as a warning rather than an error.
func (s *IntakeService) CreateOrder(ctx context.Context, in CreateOrderInput) (*models.CreateOrderResponse, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	price, _ := PriceCents(in.BustSize)
	now := s.now().UTC()

	draft := &models.Order{
		Email:               strings.TrimSpace(in.Email),
		Notes:               models.NullString(in.Notes),
		StyleHint:           models.NullString(in.StyleHint),
		BustStyle:           in.Style,
		BustHeightMM:        in.BustSize,
		PriceCents:          price,
		Status:              models.StatusCreated,
		PreviewAttempts:     1,
		GenerationStartedAt: nullTime(now),
	}
	if in.Photo == nil {
		draft.PhoneUploadToken = models.NullString(in.PhoneUploadToken)
	}

	o, err := s.repo.CreateOrder(ctx, draft)
	if err != nil {
		return nil, err
	}
	s.log.Info("order created",
		zap.String("order_id", o.ID.String()),
		zap.Int("bust_height_mm", o.BustHeightMM),
		zap.Int64("price_cents", o.PriceCents),
	)
	publish(ctx, s.events, s.log, events.OrderCreated, events.CreatedPayload(o.ID, o.Status, o.BustHeightMM, o.PriceCents))

	resp := &models.CreateOrderResponse{OrderID: o.ID.String()}
	warn := func(msg string) (*models.CreateOrderResponse, error) {
		s.lifecycle.failPreview(ctx, o.ID, msg)
		resp.Warning = msg
		return resp, nil
	}

	photo := in.Photo
	if photo == nil {
		photo, err = s.phone.Fetch(ctx, strings.TrimSpace(in.PhoneUploadToken))
		if errors.Is(err, ErrPhotoNotFound) {
			return warn("No phone photo found yet. Upload from your phone first.")
		}
		if errors.Is(err, ErrInvalidToken) || errors.Is(err, ErrInvalidInput) {
			return warn("Phone upload link is invalid or expired. Scan the QR code again.")
		}
		if err != nil {
			s.log.Warn("phone photo fetch failed", zap.String("order_id", o.ID.String()), zap.Error(err))
			return warn("Phone photo could not be loaded.")
		}
	}
	if photo.Size > MaxPhotoBytes || len(photo.Data) > MaxPhotoBytes {
		return warn("Image must be less than 10MB")
	}

	contentType := photo.ContentType
	if contentType == "" {
		contentType = "image/jpeg"
	}
	path := OriginalPath(o.ID, now, photo.Filename)
	if err := s.storage.StoreOriginal(ctx, path, photo.Data, contentType); err != nil {
		s.log.Warn("original upload failed", zap.String("order_id", o.ID.String()), zap.Error(err))
		return warn("Upload failed")
	}

	upload, err := s.repo.CreateUpload(ctx, o.ID, path)
	if err != nil {
		s.log.Warn("upload record failed", zap.String("order_id", o.ID.String()), zap.Error(err))
		return warn("Upload failed")
	}

	taskID, err := s.lifecycle.SubmitPreview(ctx, o, upload, BuildPreviewPrompt(o.BustStyle, promptHint(o)))
	if err != nil {
		s.log.Warn("preview submit failed", zap.String("order_id", o.ID.String()), zap.Error(err))
		resp.Warning = "Failed to create preview task"
		return resp, nil
	}

	resp.MeshyImageTaskID = taskID
	return resp, nil
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
