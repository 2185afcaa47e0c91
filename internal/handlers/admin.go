package handlers

import (
	"errors"
	"net/http"
	"strings"

	"bust-order-backend/internal/middleware"
	"bust-order-backend/internal/models"
	"bust-order-backend/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const adminListLimit = 200

type AdminHandler struct {
	admin    *services.AdminService
	sessions *middleware.AdminSessions
	log      *zap.Logger
}

func NewAdminHandler(admin *services.AdminService, sessions *middleware.AdminSessions, log *zap.Logger) *AdminHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AdminHandler{admin: admin, sessions: sessions, log: log}
}

// Login godoc
// @Summary     Admin login
// @Description Checks the shared admin password and sets the admin_auth session cookie (7 days).
// @Tags        admin
// @Accept      json
// @Produce     json
// @Param       request body models.AdminLoginRequest true "Credentials"
// @Success     200 {object} models.AdminLoginResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     429 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /admin/login [post]
func (h *AdminHandler) Login(c *gin.Context) {
	var req models.AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request body",
			Message: err.Error(),
		})
		return
	}

	if err := h.admin.CheckPassword(req.Password); err != nil {
		if errors.Is(err, services.ErrUnauthorized) {
			h.log.Warn("admin login rejected", zap.String("ip", c.ClientIP()))
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Wrong password"})
			return
		}
		respondError(c, h.log, err)
		return
	}

	if err := h.sessions.SetCookie(c); err != nil {
		respondError(c, h.log, err)
		return
	}
	h.log.Info("admin logged in", zap.String("ip", c.ClientIP()))
	c.JSON(http.StatusOK, models.AdminLoginResponse{OK: true, Redirect: "/admin"})
}

// Logout godoc
// @Summary     Admin logout
// @Tags        admin
// @Produce     json
// @Success     200 {object} models.AdminLoginResponse
// @Router      /admin/logout [post]
func (h *AdminHandler) Logout(c *gin.Context) {
	h.sessions.ClearCookie(c)
	c.JSON(http.StatusOK, models.AdminLoginResponse{OK: true, Redirect: "/admin/login"})
}

// ListOrders godoc
// @Summary     List orders
// @Description Latest 200 orders, newest first, with signed preview and model links.
// @Tags        admin
// @Produce     json
// @Param       status query string false "Exact status filter"
// @Param       q      query string false "Search id, email and shipping name/email/city/postal code/country"
// @Param       ready  query string false "1 to show only paid orders with a filament and a model file"
// @Success     200 {object} models.AdminOrdersResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /admin/orders [get]
func (h *AdminHandler) ListOrders(c *gin.Context) {
	filter := models.OrderFilter{
		Query: strings.TrimSpace(c.Query("q")),
		Ready: c.Query("ready") == "1" || strings.EqualFold(c.Query("ready"), "true"),
		Limit: adminListLimit,
	}
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		filter.Status, _ = models.ParseStatus(raw)
	}

	resp, err := h.admin.ListOrders(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SetStatus godoc
// @Summary     Set fulfillment status
// @Description Operator transition between paid, in_production and shipped, in any order.
// @Tags        admin
// @Accept      json
// @Produce     json
// @Param       request body models.AdminStatusRequest true "Order and target status"
// @Success     200 {object} models.AdminStatusResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /admin/orders/status [post]
func (h *AdminHandler) SetStatus(c *gin.Context) {
	var req models.AdminStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request body",
			Message: err.Error(),
		})
		return
	}

	resp, err := h.admin.SetStatus(c.Request.Context(), req.OrderID, req.Status)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
