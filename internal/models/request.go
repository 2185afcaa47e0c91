package models

// CreateOrderRequest holds the non-file fields of the multipart order form.
// The photo itself arrives as the "images" file field.
type CreateOrderRequest struct {
	Email            string `form:"email" binding:"required,email" example:"jane@example.com"`
	BustSize         int    `form:"bustSize" binding:"required,bustsize" example:"200"`
	Style            string `form:"style" binding:"required,oneof=classical modern custom" example:"classical"`
	StyleHint        string `form:"styleHint"`
	Notes            string `form:"notes"`
	PhoneUploadToken string `form:"phoneUploadToken"`
}

type RetryRequest struct {
	OrderID string `json:"orderId" binding:"required" example:"6f1c2a7e-3a57-4a1e-9a4b-2d6f2b8a1c11"`
}

// CheckoutRequest starts a hosted checkout. Mode defaults to "order".
type CheckoutRequest struct {
	OrderID       string `json:"orderId" binding:"required"`
	Mode          string `json:"mode" binding:"omitempty,oneof=order retry" example:"order"`
	FilamentColor string `json:"filament_color" binding:"omitempty,filament" example:"marble_white"`
}

type AdminLoginRequest struct {
	Password string `json:"password" binding:"required"`
}

type AdminStatusRequest struct {
	OrderID string `json:"orderId" binding:"required"`
	Status  string `json:"status" binding:"required" example:"in_production"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
