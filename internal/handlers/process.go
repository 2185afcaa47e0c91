package handlers

import (
	"net/http"
	"strings"

	"bust-order-backend/internal/models"
	"bust-order-backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type RetryHandler struct {
	lifecycle *services.LifecycleService
	log       *zap.Logger
}

func NewRetryHandler(lifecycle *services.LifecycleService, log *zap.Logger) *RetryHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &RetryHandler{lifecycle: lifecycle, log: log}
}

// Retry godoc
// @Summary     Regenerate the clay preview
// @Description Starts a new preview generation from the latest upload. Allowed from created, preview_ready
// @Description and failed. Attempts beyond the free allowance need a purchased retry credit (402 otherwise).
// @Tags        orders
// @Accept      json
// @Produce     json
// @Param       request body models.RetryRequest true "Order to retry"
// @Success     200 {object} models.RetryResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     402 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /orders/retry [post]
func (h *RetryHandler) Retry(c *gin.Context) {
	var req models.RetryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request body",
			Message: err.Error(),
		})
		return
	}

	orderID, err := uuid.Parse(strings.TrimSpace(req.OrderID))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid order id"})
		return
	}

	resp, err := h.lifecycle.Retry(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
