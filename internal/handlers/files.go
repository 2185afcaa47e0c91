package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"bust-order-backend/internal/models"
	"bust-order-backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type FilesHandler struct {
	admin *services.AdminService
	log   *zap.Logger
}

func NewFilesHandler(admin *services.AdminService, log *zap.Logger) *FilesHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &FilesHandler{admin: admin, log: log}
}

// ExportAssets godoc
// @Summary     Export order assets
// @Description Returns a downloadable JSON bundle with order metadata, the shipping block and signed URLs
// @Description for the original photo, the clay preview and the GLB/OBJ models.
// @Tags        admin
// @Produce     json
// @Param       orderId query string true "Order ID (UUID)"
// @Success     200 {object} models.AssetExport
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /admin/orders/assets [get]
func (h *FilesHandler) ExportAssets(c *gin.Context) {
	orderID, err := uuid.Parse(strings.TrimSpace(c.Query("orderId")))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid order id"})
		return
	}

	export, err := h.admin.ExportAssets(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="order-%s.json"`, orderID))
	c.JSON(http.StatusOK, export)
}
