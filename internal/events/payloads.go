// Package events describes order lifecycle notifications and publishes them.
package events

import (
	"time"

	"bust-order-backend/internal/models"

	"github.com/google/uuid"
)

const (
	OrderCreated       = "order.created"
	OrderPreviewReady  = "order.preview_ready"
	OrderFailed        = "order.failed"
	OrderPaid          = "order.paid"
	OrderRetryCredit   = "order.retry_credit"
	OrderModelStarted  = "order.model_started"
	OrderModelReady    = "order.model_ready"
	OrderStatusChanged = "order.status_changed"
)

// Envelope is the message body on the wire.
type Envelope struct {
	Event      string         `json:"event"`
	OccurredAt time.Time      `json:"occurred_at"`
	Data       map[string]any `json:"data"`
}

func CreatedPayload(orderID uuid.UUID, status models.Status, bustHeightMM int, priceCents int64) map[string]any {
	return map[string]any{
		"order_id":       orderID.String(),
		"status":         status,
		"bust_height_mm": bustHeightMM,
		"price_cents":    priceCents,
	}
}

func PreviewReadyPayload(orderID uuid.UUID, path string) map[string]any {
	return map[string]any{
		"order_id":          orderID.String(),
		"status":            models.StatusPreviewReady,
		"clay_preview_path": path,
	}
}

func FailedPayload(orderID uuid.UUID, stage models.Stage, errorMsg string) map[string]any {
	return map[string]any{
		"order_id": orderID.String(),
		"status":   models.StatusFailed,
		"stage":    stage,
		"error":    errorMsg,
	}
}

func PaidPayload(orderID uuid.UUID, filament string) map[string]any {
	return map[string]any{
		"order_id":       orderID.String(),
		"status":         models.StatusPaid,
		"filament_color": filament,
	}
}

func RetryCreditPayload(orderID uuid.UUID) map[string]any {
	return map[string]any{
		"order_id": orderID.String(),
	}
}

func ModelStartedPayload(orderID uuid.UUID, taskID string) map[string]any {
	return map[string]any{
		"order_id":            orderID.String(),
		"meshy_model_task_id": taskID,
	}
}

func ModelReadyPayload(orderID uuid.UUID, glbPath, objPath string) map[string]any {
	return map[string]any{
		"order_id":       orderID.String(),
		"model_glb_path": glbPath,
		"model_obj_path": objPath,
	}
}

func StatusChangedPayload(orderID uuid.UUID, status models.Status) map[string]any {
	return map[string]any{
		"order_id": orderID.String(),
		"status":   status,
	}
}
