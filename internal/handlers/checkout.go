// internal/handlers/checkout.go
package handlers

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cmdboutique/storefront-backend/internal/services"
	"github.com/cmdboutique/storefront-backend/internal/utils"
)

type CheckoutHandler struct {
	checkoutService *services.CheckoutService
	orderService    *services.OrderService
}

func NewCheckoutHandler(checkoutService *services.CheckoutService, orderService *services.OrderService) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		orderService:    orderService,
	}
}

// POST /checkout/verify-stock
func (h *CheckoutHandler) VerifyStock(c *gin.Context) {
	var req services.VerifyStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	result, err := h.checkoutService.VerifyStock(&req)
	if err != nil {
		if strings.Contains(err.Error(), "validation failed") {
			utils.ValidationErrorResponse(c, utils.GetValidationErrors(errors.Unwrap(err)))
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, result)
}

// POST /orders
func (h *CheckoutHandler) CreateOrder(c *gin.Context) {
	var req services.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	// Authenticated customers get the order on their account; guests pass
	// contact details in the payload.
	var userID *uuid.UUID
	if uid, ok := currentUserID(c); ok {
		userID = &uid
	}

	order, err := h.orderService.CreateOrder(userID, &req)
	if err != nil {
		var stockErr *services.InsufficientStockError
		if errors.As(err, &stockErr) {
			utils.ConflictResponse(c, "INSUFFICIENT_STOCK",
				"Some items are no longer available in the requested quantity",
				gin.H{"insufficientItems": stockErr.Items})
			return
		}
		if strings.Contains(err.Error(), "validation failed") {
			utils.ValidationErrorResponse(c, utils.GetValidationErrors(errors.Unwrap(err)))
			return
		}
		if strings.Contains(err.Error(), "totals") ||
			strings.Contains(err.Error(), "guest orders") {
			utils.BadRequestResponse(c, err.Error(), nil)
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.CreatedResponse(c, order)
}
