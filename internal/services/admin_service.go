package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"bust-order-backend/internal/events"
	"bust-order-backend/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type AdminService struct {
	repo     OrderRepository
	storage  *StorageService
	events   EventPublisher
	password string
	log      *zap.Logger
	now      func() time.Time
}

// NewAdminService builds the operator service. password is either plain text
// or a bcrypt hash.
func NewAdminService(repo OrderRepository, storage *StorageService, publisher EventPublisher, password string, log *zap.Logger) *AdminService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AdminService{
		repo:     repo,
		storage:  storage,
		events:   publisher,
		password: password,
		log:      log,
		now:      time.Now,
	}
}

func (s *AdminService) CheckPassword(candidate string) error {
	if s.password == "" {
		return fmt.Errorf("%w: ADMIN_PASSWORD", ErrNotConfigured)
	}
	if strings.HasPrefix(s.password, "$2") {
		if bcrypt.CompareHashAndPassword([]byte(s.password), []byte(candidate)) != nil {
			return ErrUnauthorized
		}
		return nil
	}
	if subtle.ConstantTimeCompare([]byte(s.password), []byte(candidate)) != 1 {
		return ErrUnauthorized
	}
	return nil
}

// ListOrders returns the latest orders matching the filter with signed asset links.
func (s *AdminService) ListOrders(ctx context.Context, filter models.OrderFilter) (*models.AdminOrdersResponse, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, filter.Status)
	}

	orders, err := s.repo.ListOrders(ctx, filter)
	if err != nil {
		return nil, err
	}

	rows := make([]models.AdminOrderRow, 0, len(orders))
	for i := range orders {
		rows = append(rows, s.storage.AdminRow(ctx, &orders[i]))
	}
	return &models.AdminOrdersResponse{Orders: rows}, nil
}

// SetStatus applies an operator transition. Only paid, in_production and
// shipped may be set, in any order.
func (s *AdminService) SetStatus(ctx context.Context, rawID, rawStatus string) (*models.AdminStatusResponse, error) {
	id, err := uuid.Parse(strings.TrimSpace(rawID))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid orderId", ErrInvalidInput)
	}
	status, ok := models.ParseStatus(rawStatus)
	if !ok || !status.IsOperatorSettable() {
		return nil, fmt.Errorf("%w: status must be paid, in_production, or shipped", ErrInvalidInput)
	}

	updated, err := s.repo.SetStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, ErrOrderNotFound
	}

	s.log.Info("order status set by operator", zap.String("order_id", id.String()), zap.String("status", string(status)))
	publish(ctx, s.events, s.log, events.OrderStatusChanged, events.StatusChangedPayload(id, status))
	return &models.AdminStatusResponse{OK: true, Status: status}, nil
}

// ExportAssets bundles order metadata, shipping and signed asset URLs for fulfillment.
func (s *AdminService) ExportAssets(ctx context.Context, id uuid.UUID) (*models.AssetExport, error) {
	o, err := getOrder(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}

	row := s.storage.AdminRow(ctx, o)
	export := &models.AssetExport{
		OrderID:    o.ID.String(),
		ExportedAt: s.now().UTC(),
		Order:      row,
		Shipping:   row.Shipping,
		Assets: models.AssetURLs{
			ClayPreview: row.PreviewURL,
			ModelGLB:    row.GLBURL,
			ModelOBJ:    row.OBJURL,
		},
	}

	upload, err := s.repo.LatestUpload(ctx, id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return nil, err
	default:
		if url, err := s.storage.SignUpload(ctx, upload.StoragePath); err == nil {
			export.Assets.Original = url
		} else {
			s.log.Warn("failed to sign original upload", zap.String("order_id", id.String()), zap.Error(err))
		}
	}

	return export, nil
}
