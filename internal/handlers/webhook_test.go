package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bust-order-backend/internal/handlers"
	"bust-order-backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func paymentRouter() *gin.Engine {
	// No gateway configured: every request that reaches the service reports it.
	h := handlers.NewPaymentHandler(services.NewPaymentService(nil, nil, nil, "https://busts.test", nil), nil)
	router := gin.New()
	router.POST("/stripe/checkout", h.Checkout)
	router.POST("/stripe/webhook", h.HandleWebhook)
	return router
}

func TestPaymentHandler_Checkout(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{name: "missing order id", body: `{}`, wantCode: http.StatusBadRequest},
		{name: "unknown mode", body: `{"orderId":"` + uuid.NewString() + `","mode":"gift"}`, wantCode: http.StatusBadRequest},
		{name: "unknown filament", body: `{"orderId":"` + uuid.NewString() + `","filament_color":"gold"}`, wantCode: http.StatusBadRequest},
		{name: "payments not configured", body: `{"orderId":"` + uuid.NewString() + `","filament_color":"wood_tone"}`, wantCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest("POST", "/stripe/checkout", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			paymentRouter().ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}

func TestPaymentHandler_Webhook_MissingSignature(t *testing.T) {
	req, _ := http.NewRequest("POST", "/stripe/webhook", strings.NewReader(`{"type":"checkout.session.completed"}`))
	w := httptest.NewRecorder()
	paymentRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "missing stripe-signature header", decode(t, w)["error"])
}
