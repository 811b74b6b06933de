package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/deviceorder/fulfillment-service/internal/application"
	"github.com/deviceorder/fulfillment-service/internal/domain"
	"github.com/deviceorder/fulfillment-service/pkg/errors"
	"github.com/deviceorder/fulfillment-service/pkg/logging"
	"github.com/deviceorder/fulfillment-service/pkg/middleware"
)

// OrderHandler handles HTTP requests for orders
type OrderHandler struct {
	service *application.OrderService
	metrics *middleware.OrderMetrics
	logger  *logging.Logger
}

// NewOrderHandler creates a new OrderHandler. The metrics helper may be
// nil when metrics are disabled.
func NewOrderHandler(service *application.OrderService, m *middleware.OrderMetrics, logger *logging.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		metrics: m,
		logger:  logger,
	}
}

// VerifyOrder handles POST /api/v1/orders/verify. Business rejections are
// part of the payload, not HTTP errors: the endpoint answers 200 with
// isValid=false.
func (h *OrderHandler) VerifyOrder(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var cmd application.VerifyOrderCommand
	if appErr := middleware.BindAndValidate(c, &cmd); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}

	middleware.AddSpanAttributes(c, map[string]interface{}{
		"order.quantity": cmd.Quantity,
	})

	result := h.service.VerifyOrder(c.Request.Context(), cmd)
	if h.metrics != nil {
		h.metrics.RecordVerified(result.IsValid)
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

// SubmitOrder handles POST /api/v1/orders
func (h *OrderHandler) SubmitOrder(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var cmd application.SubmitOrderCommand
	if appErr := middleware.BindAndValidate(c, &cmd); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}

	middleware.AddSpanAttributes(c, map[string]interface{}{
		"order.quantity": cmd.Quantity,
	})

	result, err := h.service.SubmitOrder(c.Request.Context(), cmd)
	if err != nil {
		h.respondSubmitError(c, responder, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordSubmitted()
	}

	c.JSON(http.StatusCreated, gin.H{"data": result})
}

// GetOrder handles GET /api/v1/orders/:orderId
func (h *OrderHandler) GetOrder(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	orderID := c.Param("orderId")

	middleware.AddSpanAttributes(c, map[string]interface{}{
		"order.id": orderID,
	})

	result, err := h.service.GetOrder(c.Request.Context(), orderID)
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

// respondSubmitError maps submission failures onto HTTP statuses. A lost
// stock race is a retryable 409; other business rejections are 422; bad
// input is 400.
func (h *OrderHandler) respondSubmitError(c *gin.Context, responder *middleware.ErrorResponder, err error) {
	if bizErr, ok := domain.AsBusinessError(err); ok {
		if h.metrics != nil {
			h.metrics.RecordRejected(string(bizErr.Kind))
		}

		switch bizErr.Kind {
		case domain.RejectionStockRace:
			if h.metrics != nil {
				h.metrics.RecordStockConflict()
			}
			responder.RespondConflict(bizErr.Reason)
		case domain.RejectionInvalidInput:
			responder.RespondBadRequest(bizErr.Reason)
		default:
			responder.RespondBusinessRejection(bizErr.Reason)
		}
		return
	}

	if appErr, ok := err.(*errors.AppError); ok {
		responder.RespondWithAppError(appErr)
		return
	}
	responder.RespondInternalError(err)
}
