package database

import (
	"bust-order-backend/internal/models"
)

// OrderColumns is the column list every order SELECT/RETURNING uses. It must
// stay in step with ScanOrder.
const OrderColumns = `id, status, email, notes, style_hint, bust_style, bust_height_mm, price_cents,
	filament_color, phone_upload_token, preview_attempts, retry_credits, generation_started_at,
	meshy_image_task_id, meshy_model_task_id, preview_last_error, clay_preview_path,
	model_glb_path, model_obj_path, meshy_model_attempts, meshy_model_last_error,
	ship_name, ship_email, ship_phone, ship_line1, ship_line2, ship_city, ship_region,
	ship_postal_code, ship_country, created_at, updated_at`

// OrderColumnNames mirrors OrderColumns for building mock rows in tests.
var OrderColumnNames = []string{
	"id", "status", "email", "notes", "style_hint", "bust_style", "bust_height_mm", "price_cents",
	"filament_color", "phone_upload_token", "preview_attempts", "retry_credits", "generation_started_at",
	"meshy_image_task_id", "meshy_model_task_id", "preview_last_error", "clay_preview_path",
	"model_glb_path", "model_obj_path", "meshy_model_attempts", "meshy_model_last_error",
	"ship_name", "ship_email", "ship_phone", "ship_line1", "ship_line2", "ship_city", "ship_region",
	"ship_postal_code", "ship_country", "created_at", "updated_at",
}

const UploadColumns = `id, order_id, storage_path, created_at`

// Scanner is satisfied by *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

func ScanOrder(s Scanner) (*models.Order, error) {
	var o models.Order
	err := s.Scan(
		&o.ID, &o.Status, &o.Email, &o.Notes, &o.StyleHint, &o.BustStyle, &o.BustHeightMM, &o.PriceCents,
		&o.FilamentColor, &o.PhoneUploadToken, &o.PreviewAttempts, &o.RetryCredits, &o.GenerationStartedAt,
		&o.MeshyImageTaskID, &o.MeshyModelTaskID, &o.PreviewLastError, &o.ClayPreviewPath,
		&o.ModelGLBPath, &o.ModelOBJPath, &o.MeshyModelAttempts, &o.MeshyModelLastError,
		&o.Shipping.Name, &o.Shipping.Email, &o.Shipping.Phone, &o.Shipping.Line1, &o.Shipping.Line2,
		&o.Shipping.City, &o.Shipping.Region, &o.Shipping.PostalCode, &o.Shipping.Country,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func ScanUpload(s Scanner) (*models.Upload, error) {
	var u models.Upload
	if err := s.Scan(&u.ID, &u.OrderID, &u.StoragePath, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}
