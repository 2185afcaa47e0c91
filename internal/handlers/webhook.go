package handlers

import (
	"io"
	"net/http"

	"bust-order-backend/internal/models"
	"bust-order-backend/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxWebhookBytes bounds the payment webhook body.
const maxWebhookBytes = 65536

type PaymentHandler struct {
	payments *services.PaymentService
	log      *zap.Logger
}

func NewPaymentHandler(payments *services.PaymentService, log *zap.Logger) *PaymentHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &PaymentHandler{payments: payments, log: log}
}

// Checkout godoc
// @Summary     Start a hosted checkout
// @Description Creates a Stripe Checkout session. mode=order pays for the bust plus shipping and needs a
// @Description filament color; mode=retry buys one extra preview generation.
// @Tags        payments
// @Accept      json
// @Produce     json
// @Param       request body models.CheckoutRequest true "Checkout options"
// @Success     200 {object} models.CheckoutResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /stripe/checkout [post]
func (h *PaymentHandler) Checkout(c *gin.Context) {
	var req models.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request body",
			Message: err.Error(),
		})
		return
	}

	resp, err := h.payments.Checkout(c.Request.Context(), req, c.GetHeader("Origin"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HandleWebhook godoc
// @Summary     Stripe webhook endpoint
// @Description Verifies the Stripe-Signature header and applies checkout.session.completed events.
// @Description Every other verified event is acknowledged without effect.
// @Tags        webhooks
// @Accept      json
// @Produce     json
// @Param       Stripe-Signature header string true "Stripe webhook signature"
// @Success     200 {object} models.WebhookAck
// @Failure     400 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /stripe/webhook [post]
func (h *PaymentHandler) HandleWebhook(c *gin.Context) {
	signature := c.GetHeader("Stripe-Signature")
	if signature == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "missing stripe-signature header"})
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to read request body",
			Message: err.Error(),
		})
		return
	}

	if err := h.payments.HandleWebhook(c.Request.Context(), body, signature); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, models.WebhookAck{Received: true})
}
