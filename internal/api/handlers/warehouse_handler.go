package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/deviceorder/fulfillment-service/internal/application"
	"github.com/deviceorder/fulfillment-service/pkg/errors"
	"github.com/deviceorder/fulfillment-service/pkg/logging"
	"github.com/deviceorder/fulfillment-service/pkg/middleware"
)

// WarehouseHandler handles HTTP requests for warehouses
type WarehouseHandler struct {
	service *application.WarehouseService
	logger  *logging.Logger
}

// NewWarehouseHandler creates a new WarehouseHandler
func NewWarehouseHandler(service *application.WarehouseService, logger *logging.Logger) *WarehouseHandler {
	return &WarehouseHandler{
		service: service,
		logger:  logger,
	}
}

// CreateWarehouse handles POST /api/v1/warehouses
func (h *WarehouseHandler) CreateWarehouse(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var cmd application.CreateWarehouseCommand
	if appErr := middleware.BindAndValidate(c, &cmd); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}

	middleware.AddSpanAttributes(c, map[string]interface{}{
		"warehouse.name": cmd.Name,
	})

	result, err := h.service.CreateWarehouse(c.Request.Context(), cmd)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			responder.RespondWithAppError(appErr)
		} else {
			responder.RespondInternalError(err)
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": result})
}

// ListWarehouses handles GET /api/v1/warehouses
func (h *WarehouseHandler) ListWarehouses(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	result, err := h.service.ListWarehouses(c.Request.Context())
	if err != nil {
		responder.RespondInternalError(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result, "count": len(result)})
}

// SetStock handles PUT /api/v1/warehouses/:warehouseId/stock
func (h *WarehouseHandler) SetStock(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	warehouseID := c.Param("warehouseId")

	var cmd application.SetStockCommand
	if appErr := middleware.BindAndValidate(c, &cmd); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}

	middleware.AddSpanAttributes(c, map[string]interface{}{
		"warehouse.id": warehouseID,
	})

	result, err := h.service.SetStock(c.Request.Context(), warehouseID, cmd)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			responder.RespondWithAppError(appErr)
		} else {
			responder.RespondInternalError(err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}
