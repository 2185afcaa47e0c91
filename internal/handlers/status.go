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

type StatusHandler struct {
	lifecycle *services.LifecycleService
	log       *zap.Logger
}

func NewStatusHandler(lifecycle *services.LifecycleService, log *zap.Logger) *StatusHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &StatusHandler{lifecycle: lifecycle, log: log}
}

// GetStatus godoc
// @Summary     Poll an order
// @Description Advances the order by at most one lifecycle step and reports stage, progress and signed asset URLs.
// @Tags        orders
// @Produce     json
// @Param       orderId query string true "Order ID (UUID)"
// @Success     200 {object} models.OrderStatusResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /orders/status [get]
func (h *StatusHandler) GetStatus(c *gin.Context) {
	orderID, err := uuid.Parse(strings.TrimSpace(c.Query("orderId")))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid order id"})
		return
	}

	resp, err := h.lifecycle.Advance(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
