package models

import "time"

type CreateOrderResponse struct {
	OrderID          string `json:"orderId"`
	MeshyImageTaskID string `json:"meshyImageTaskId,omitempty"`
	Warning          string `json:"warning,omitempty"`
	Error            string `json:"error,omitempty"`
}

// OrderView is the customer-facing projection of an order returned by the
// status endpoint. Asset URLs are short-lived signed URLs.
type OrderView struct {
	ID                  string     `json:"id"`
	Status              Status     `json:"status"`
	PreviewAttempts     int        `json:"preview_attempts"`
	RetryCredits        int        `json:"retry_credits"`
	GenerationStartedAt *time.Time `json:"generation_started_at"`
	ClayPreviewURL      *string    `json:"clayPreviewUrl"`
	ModelGLBURL         *string    `json:"modelGlbUrl"`
	ModelOBJURL         *string    `json:"modelObjUrl"`
}

type Stage string

const (
	StageClayPreview Stage = "clay_preview"
	StageModel       Stage = "model"
)

type OrderStatusResponse struct {
	Order         OrderView `json:"order"`
	Stage         Stage     `json:"stage"`
	Progress      int       `json:"progress"`
	Message       string    `json:"message"`
	PaymentLocked bool      `json:"paymentLocked"`
}

type RetryResponse struct {
	OK               bool   `json:"ok"`
	MeshyImageTaskID string `json:"meshyImageTaskId"`
}

type CheckoutResponse struct {
	URL string `json:"url"`
}

type WebhookAck struct {
	Received bool `json:"received"`
}

type PhoneTokenResponse struct {
	Token string `json:"token"`
}

type PhoneUploadResponse struct {
	OK         bool   `json:"ok"`
	Token      string `json:"token"`
	Bucket     string `json:"bucket"`
	Path       string `json:"path"`
	PreviewURL string `json:"previewUrl,omitempty"`
}

type PhoneUploadStatusResponse struct {
	Status     string `json:"status"` // "waiting" or "uploaded"
	Token      string `json:"token"`
	Path       string `json:"path,omitempty"`
	PreviewURL string `json:"previewUrl,omitempty"`
}

type AdminLoginResponse struct {
	OK       bool   `json:"ok"`
	Redirect string `json:"redirect"`
}

type AdminOrderRow struct {
	ID                  string       `json:"id"`
	CreatedAt           time.Time    `json:"created_at"`
	Status              Status       `json:"status"`
	Email               string       `json:"email"`
	BustStyle           BustStyle    `json:"bust_style"`
	BustHeightMM        int          `json:"bust_height_mm"`
	PriceCents          int64        `json:"price_cents"`
	FilamentColor       string       `json:"filament_color,omitempty"`
	Notes               string       `json:"notes,omitempty"`
	PreviewAttempts     int          `json:"preview_attempts"`
	RetryCredits        int          `json:"retry_credits"`
	GenerationStartedAt *time.Time   `json:"generation_started_at,omitempty"`
	MeshyModelAttempts  int          `json:"meshy_model_attempts"`
	MeshyModelLastError string       `json:"meshy_model_last_error,omitempty"`
	Shipping            ShippingView `json:"shipping"`
	Ready               bool         `json:"ready"`
	PreviewURL          string       `json:"previewUrl,omitempty"`
	GLBURL              string       `json:"glbUrl,omitempty"`
	OBJURL              string       `json:"objUrl,omitempty"`
}

type ShippingView struct {
	Name       string `json:"name,omitempty"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Line1      string `json:"line1,omitempty"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city,omitempty"`
	Region     string `json:"region,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
}

// NewShippingView flattens the nullable shipping columns.
func NewShippingView(s Shipping) ShippingView {
	return ShippingView{
		Name:       s.Name.String,
		Email:      s.Email.String,
		Phone:      s.Phone.String,
		Line1:      s.Line1.String,
		Line2:      s.Line2.String,
		City:       s.City.String,
		Region:     s.Region.String,
		PostalCode: s.PostalCode.String,
		Country:    s.Country.String,
	}
}

type AdminOrdersResponse struct {
	Orders []AdminOrderRow `json:"orders"`
}

type AdminStatusResponse struct {
	OK     bool   `json:"ok"`
	Status Status `json:"status"`
}

// AssetExport is the fulfillment bundle downloaded from the admin panel.
type AssetExport struct {
	OrderID    string        `json:"order_id"`
	ExportedAt time.Time     `json:"exported_at"`
	Order      AdminOrderRow `json:"order"`
	Shipping   ShippingView  `json:"shipping"`
	Assets     AssetURLs     `json:"assets"`
}

type AssetURLs struct {
	Original    string `json:"original,omitempty"`
	ClayPreview string `json:"clay_preview,omitempty"`
	ModelGLB    string `json:"model_glb,omitempty"`
	ModelOBJ    string `json:"model_obj,omitempty"`
}

type SupabaseDebugResponse struct {
	SupabaseURL       string `json:"supabase_url"`
	HasServiceRoleKey bool   `json:"has_service_role_key"`
	Environment       string `json:"environment"`
	OrdersReachable   bool   `json:"orders_reachable"`
	ProbeError        string `json:"probe_error,omitempty"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
}
