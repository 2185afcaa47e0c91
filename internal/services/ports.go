package services

import (
	"context"
	"database/sql"
	"time"

	"bust-order-backend/internal/meshy"
	"bust-order-backend/internal/models"

	"github.com/google/uuid"
)

// OrderRepository is the persistence the services need. Every method is a
// single-row statement; conditional methods report whether the row matched.
type OrderRepository interface {
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, filter models.OrderFilter) ([]models.Order, error)

	CreateUpload(ctx context.Context, orderID uuid.UUID, storagePath string) (*models.Upload, error)
	LatestUpload(ctx context.Context, orderID uuid.UUID) (*models.Upload, error)

	MarkPreviewSubmitted(ctx context.Context, id uuid.UUID, taskID string, startedAt time.Time) error
	FailPreview(ctx context.Context, id uuid.UUID, message string) error
	MarkPreviewReady(ctx context.Context, id uuid.UUID, taskID, path string) (bool, error)
	StartPreviewRetry(ctx context.Context, id uuid.UUID, taskID string, startedAt time.Time, consumeCredit bool) (bool, error)

	SetModelTaskIfEmpty(ctx context.Context, id uuid.UUID, taskID string) (bool, error)
	RecordModelFailure(ctx context.Context, id uuid.UUID, message string) (int, error)
	FailModel(ctx context.Context, id uuid.UUID, message string) error
	SetModelAssets(ctx context.Context, id uuid.UUID, glbPath, objPath sql.NullString) error

	MarkPaid(ctx context.Context, id uuid.UUID, shipping models.Shipping, filament string) (bool, error)
	AddRetryCredit(ctx context.Context, id uuid.UUID, shipping models.Shipping) (bool, error)
	SetFilament(ctx context.Context, id uuid.UUID, filament models.FilamentColor) error
	SetStatus(ctx context.Context, id uuid.UUID, status models.Status) (bool, error)
}

// BlobStore is path-addressed object storage with signed URLs.
type BlobStore interface {
	Upload(ctx context.Context, bucket, path string, data []byte, contentType string, upsert bool) error
	Download(ctx context.Context, bucket, path string) ([]byte, error)
	SignedURL(ctx context.Context, bucket, path string, ttl time.Duration) (string, error)
	List(ctx context.Context, bucket, prefix string) ([]string, error)
}

// TaskClient is the generation provider.
type TaskClient interface {
	SubmitPreview(ctx context.Context, req meshy.PreviewRequest) (string, error)
	PollPreview(ctx context.Context, taskID string) (*meshy.Task, error)
	SubmitModel(ctx context.Context, imageURL string) (string, error)
	PollModel(ctx context.Context, taskID string) (*meshy.Task, error)
	Download(ctx context.Context, url string) ([]byte, error)
}

// EventPublisher receives order lifecycle notifications. Publishing is best
// effort; callers log and continue on error.
type EventPublisher interface {
	Publish(ctx context.Context, event string, payload map[string]any) error
}

// TokenStore tracks issued phone-upload tokens.
type TokenStore interface {
	Issue(ctx context.Context, token string, ttl time.Duration) error
	Valid(ctx context.Context, token string) (bool, error)
}
