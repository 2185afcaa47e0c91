package handlers

import (
	"context"
	"net/http"

	"bust-order-backend/internal/config"
	"bust-order-backend/internal/models"

	"github.com/gin-gonic/gin"
)

// OrdersProber is implemented by supabase.Client.
type OrdersProber interface {
	ProbeOrders(ctx context.Context) error
}

type DebugHandler struct {
	cfg   *config.Config
	probe OrdersProber
}

// NewDebugHandler builds the diagnostics handler. probe may be nil when the
// Supabase API client could not be created.
func NewDebugHandler(cfg *config.Config, probe OrdersProber) *DebugHandler {
	return &DebugHandler{cfg: cfg, probe: probe}
}

// Supabase godoc
// @Summary     Supabase diagnostics
// @Description Shows the configured Supabase URL, whether a service role key is set, and a live probe of the orders table.
// @Tags        admin
// @Produce     json
// @Success     200 {object} models.SupabaseDebugResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /debug/supabase [get]
func (h *DebugHandler) Supabase(c *gin.Context) {
	resp := models.SupabaseDebugResponse{
		SupabaseURL:       h.cfg.SupabaseURL,
		HasServiceRoleKey: h.cfg.SupabaseServiceRoleKey != "",
		Environment:       h.cfg.Environment,
	}

	switch {
	case h.probe == nil:
		resp.ProbeError = "supabase client not configured"
	default:
		if err := h.probe.ProbeOrders(c.Request.Context()); err != nil {
			resp.ProbeError = err.Error()
		} else {
			resp.OrdersReachable = true
		}
	}
	c.JSON(http.StatusOK, resp)
}
