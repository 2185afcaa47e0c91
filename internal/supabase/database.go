package supabase

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"bust-order-backend/internal/database"
	"bust-order-backend/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const defaultListLimit = 200

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(connectionString string) (*DatabaseClient, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

// NewDatabaseClientWithDB wraps an existing connection pool.
func NewDatabaseClientWithDB(db *sql.DB) *DatabaseClient {
	return &DatabaseClient{db: db}
}

func (d *DatabaseClient) DB() *sql.DB {
	return d.db
}

func (d *DatabaseClient) Close() error {
	return d.db.Close()
}

func (d *DatabaseClient) CreateOrder(ctx context.Context, o *models.Order) (*models.Order, error) {
	row := d.db.QueryRowContext(ctx, `
		INSERT INTO orders (email, notes, style_hint, bust_style, bust_height_mm, price_cents,
			phone_upload_token, status, preview_attempts, generation_started_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+database.OrderColumns,
		o.Email, o.Notes, o.StyleHint, o.BustStyle, o.BustHeightMM, o.PriceCents,
		o.PhoneUploadToken, o.Status, o.PreviewAttempts, o.GenerationStartedAt,
	)

	order, err := database.ScanOrder(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	return order, nil
}

// GetOrder returns an error wrapping sql.ErrNoRows when the order does not exist.
func (d *DatabaseClient) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	row := d.db.QueryRowContext(ctx, `SELECT `+database.OrderColumns+` FROM orders WHERE id = $1`, id)
	order, err := database.ScanOrder(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return order, nil
}

func (d *DatabaseClient) ListOrders(ctx context.Context, filter models.OrderFilter) ([]models.Order, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Status != "" {
		where = append(where, "status = "+arg(filter.Status))
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		p := arg("%" + escapeLike(q) + "%")
		where = append(where, fmt.Sprintf(`(id::text ILIKE %[1]s OR email ILIKE %[1]s OR ship_name ILIKE %[1]s
			OR ship_email ILIKE %[1]s OR ship_city ILIKE %[1]s OR ship_postal_code ILIKE %[1]s
			OR ship_country ILIKE %[1]s)`, p))
	}
	if filter.Ready {
		where = append(where, "status = ANY("+arg(pq.Array(paidLikeStrings()))+")",
			"COALESCE(filament_color, '') <> ''",
			"(model_glb_path IS NOT NULL OR model_obj_path IS NOT NULL)")
	}

	limit := filter.Limit
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}

	query := `SELECT ` + database.OrderColumns + ` FROM orders`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC LIMIT " + arg(limit)

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		order, err := database.ScanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	return orders, nil
}

func (d *DatabaseClient) CreateUpload(ctx context.Context, orderID uuid.UUID, storagePath string) (*models.Upload, error) {
	row := d.db.QueryRowContext(ctx, `
		INSERT INTO uploads (order_id, storage_path)
		VALUES ($1, $2)
		RETURNING `+database.UploadColumns,
		orderID, storagePath,
	)
	upload, err := database.ScanUpload(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload: %w", err)
	}
	return upload, nil
}

// LatestUpload returns the most recent upload, or an error wrapping
// sql.ErrNoRows when the order has none.
func (d *DatabaseClient) LatestUpload(ctx context.Context, orderID uuid.UUID) (*models.Upload, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT `+database.UploadColumns+`
		FROM uploads
		WHERE order_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, orderID)
	upload, err := database.ScanUpload(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest upload: %w", err)
	}
	return upload, nil
}

func (d *DatabaseClient) MarkPreviewSubmitted(ctx context.Context, id uuid.UUID, taskID string, startedAt time.Time) error {
	_, err := d.db.ExecContext(ctx, `
		UPDATE orders
		SET status = 'processing', meshy_image_task_id = $1, generation_started_at = $2, preview_last_error = NULL
		WHERE id = $3
	`, taskID, startedAt, id)
	if err != nil {
		return fmt.Errorf("failed to mark preview submitted: %w", err)
	}
	return nil
}

func (d *DatabaseClient) FailPreview(ctx context.Context, id uuid.UUID, message string) error {
	_, err := d.db.ExecContext(ctx, `
		UPDATE orders
		SET status = 'failed', preview_last_error = $1
		WHERE id = $2
	`, message, id)
	if err != nil {
		return fmt.Errorf("failed to mark preview failed: %w", err)
	}
	return nil
}

// MarkPreviewReady links the stored preview only if no preview is linked yet
// and the order still points at taskID.
func (d *DatabaseClient) MarkPreviewReady(ctx context.Context, id uuid.UUID, taskID, path string) (bool, error) {
	res, err := d.db.ExecContext(ctx, `
		UPDATE orders
		SET status = 'preview_ready', clay_preview_path = $1, preview_last_error = NULL
		WHERE id = $2 AND clay_preview_path IS NULL AND meshy_image_task_id = $3
	`, path, id, taskID)
	if err != nil {
		return false, fmt.Errorf("failed to mark preview ready: %w", err)
	}
	return affected(res)
}

// StartPreviewRetry swaps in a fresh preview task. It only matches orders in a
// retryable status and, when consumeCredit is set, with a credit to spend.
func (d *DatabaseClient) StartPreviewRetry(ctx context.Context, id uuid.UUID, taskID string, startedAt time.Time, consumeCredit bool) (bool, error) {
	credit := 0
	if consumeCredit {
		credit = 1
	}
	res, err := d.db.ExecContext(ctx, `
		UPDATE orders
		SET status = 'processing',
			preview_attempts = preview_attempts + 1,
			retry_credits = retry_credits - $1,
			generation_started_at = $2,
			meshy_image_task_id = $3,
			clay_preview_path = NULL,
			preview_last_error = NULL
		WHERE id = $4
			AND status IN ('preview_ready', 'failed', 'created')
			AND retry_credits >= $1
	`, credit, startedAt, taskID, id)
	if err != nil {
		return false, fmt.Errorf("failed to start preview retry: %w", err)
	}
	return affected(res)
}

// SetModelTaskIfEmpty stores the 3D task id only while none is stored and the
// order is paid-like. A false result means another request got there first.
func (d *DatabaseClient) SetModelTaskIfEmpty(ctx context.Context, id uuid.UUID, taskID string) (bool, error) {
	res, err := d.db.ExecContext(ctx, `
		UPDATE orders
		SET meshy_model_task_id = $1, meshy_model_attempts = 0, meshy_model_last_error = NULL
		WHERE id = $2 AND meshy_model_task_id IS NULL AND status = ANY($3)
	`, taskID, id, pq.Array(paidLikeStrings()))
	if err != nil {
		return false, fmt.Errorf("failed to set model task: %w", err)
	}
	return affected(res)
}

// RecordModelFailure bumps the 3D attempt counter and returns its new value.
func (d *DatabaseClient) RecordModelFailure(ctx context.Context, id uuid.UUID, message string) (int, error) {
	var attempts int
	err := d.db.QueryRowContext(ctx, `
		UPDATE orders
		SET meshy_model_attempts = meshy_model_attempts + 1, meshy_model_last_error = $1
		WHERE id = $2
		RETURNING meshy_model_attempts
	`, message, id).Scan(&attempts)
	if err != nil {
		return 0, fmt.Errorf("failed to record model failure: %w", err)
	}
	return attempts, nil
}

func (d *DatabaseClient) FailModel(ctx context.Context, id uuid.UUID, message string) error {
	_, err := d.db.ExecContext(ctx, `
		UPDATE orders
		SET status = 'failed', meshy_model_last_error = $1
		WHERE id = $2
	`, message, id)
	if err != nil {
		return fmt.Errorf("failed to mark model failed: %w", err)
	}
	return nil
}

func (d *DatabaseClient) SetModelAssets(ctx context.Context, id uuid.UUID, glbPath, objPath sql.NullString) error {
	_, err := d.db.ExecContext(ctx, `
		UPDATE orders
		SET model_glb_path = COALESCE($1, model_glb_path),
			model_obj_path = COALESCE($2, model_obj_path),
			meshy_model_last_error = NULL
		WHERE id = $3
	`, glbPath, objPath, id)
	if err != nil {
		return fmt.Errorf("failed to set model assets: %w", err)
	}
	return nil
}

// MarkPaid sets status=paid and the shipping block in one statement. The
// filament from checkout metadata only fills an empty column.
func (d *DatabaseClient) MarkPaid(ctx context.Context, id uuid.UUID, s models.Shipping, filament string) (bool, error) {
	res, err := d.db.ExecContext(ctx, `
		UPDATE orders
		SET status = 'paid',
			filament_color = COALESCE(NULLIF(filament_color, ''), NULLIF($1::text, '')),
			`+shippingSet(2)+`
		WHERE id = $11
	`, shippingArgs(filament, s, id)...)
	if err != nil {
		return false, fmt.Errorf("failed to mark order paid: %w", err)
	}
	return affected(res)
}

func (d *DatabaseClient) AddRetryCredit(ctx context.Context, id uuid.UUID, s models.Shipping) (bool, error) {
	res, err := d.db.ExecContext(ctx, `
		UPDATE orders
		SET retry_credits = retry_credits + 1,
			`+shippingSet(1)+`
		WHERE id = $10
	`, shippingArgs(nil, s, id)[1:]...)
	if err != nil {
		return false, fmt.Errorf("failed to add retry credit: %w", err)
	}
	return affected(res)
}

func (d *DatabaseClient) SetFilament(ctx context.Context, id uuid.UUID, filament models.FilamentColor) error {
	_, err := d.db.ExecContext(ctx, `UPDATE orders SET filament_color = $1 WHERE id = $2`, filament, id)
	if err != nil {
		return fmt.Errorf("failed to set filament: %w", err)
	}
	return nil
}

func (d *DatabaseClient) SetStatus(ctx context.Context, id uuid.UUID, status models.Status) (bool, error) {
	res, err := d.db.ExecContext(ctx, `UPDATE orders SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return false, fmt.Errorf("failed to update order status: %w", err)
	}
	return affected(res)
}

// shippingSet renders the nine shipping assignments starting at placeholder $start.
func shippingSet(start int) string {
	cols := []string{"ship_name", "ship_email", "ship_phone", "ship_line1", "ship_line2",
		"ship_city", "ship_region", "ship_postal_code", "ship_country"}
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = fmt.Sprintf("%s = $%d", c, start+i)
	}
	return strings.Join(parts, ",\n\t\t\t")
}

func shippingArgs(first any, s models.Shipping, id uuid.UUID) []any {
	return []any{first,
		s.Name, s.Email, s.Phone, s.Line1, s.Line2, s.City, s.Region, s.PostalCode, s.Country,
		id,
	}
}

func paidLikeStrings() []string {
	out := make([]string, len(models.PaidLikeStatuses))
	for i, s := range models.PaidLikeStatuses {
		out[i] = string(s)
	}
	return out
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}
