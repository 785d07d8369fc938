// internal/handlers/order.go
package handlers

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/bangazon/bangazon-backend/internal/i18n"
	"github.com/bangazon/bangazon-backend/internal/services"
	"github.com/bangazon/bangazon-backend/internal/utils"
)

type OrderHandler struct {
	orderService *services.OrderService
}

func NewOrderHandler(orderService *services.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

// GET /orders
func (h *OrderHandler) GetCompletedOrders(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	orders, err := h.orderService.ListCompletedOrders(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err, i18n.KeyOrderNotFound)
		return
	}

	utils.SuccessResponse(c, orders)
}

// GET /orders/cart
func (h *OrderHandler) GetCart(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	orders, err := h.orderService.GetCart(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err, i18n.KeyOrderNotFound)
		return
	}

	utils.SuccessResponse(c, orders)
}

// GET /orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	orderID, ok := parseIDParam(c, "id", i18n.KeyOrderNotFound)
	if !ok {
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), userID, orderID)
	if err != nil {
		handleServiceError(c, err, i18n.KeyOrderNotFound)
		return
	}

	utils.SuccessResponse(c, order)
}

// GET /orders/:id/checkout
func (h *OrderHandler) GetCheckoutForm(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	orderID, ok := parseIDParam(c, "id", i18n.KeyOrderNotFound)
	if !ok {
		return
	}

	form, err := h.orderService.GetCheckoutForm(c.Request.Context(), userID, orderID)
	if err != nil {
		handleServiceError(c, err, i18n.KeyOrderNotFound)
		return
	}

	utils.SuccessResponse(c, form)
}

// PUT /orders/:id/checkout
func (h *OrderHandler) Checkout(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	orderID, ok := parseIDParam(c, "id", i18n.KeyOrderNotFound)
	if !ok {
		return
	}

	// An empty body, sized or chunked, is a checkout without a payment type,
	// which the service rejects field by field
	var req services.CheckoutRequest
	if err := c.ShouldBind(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	order, err := h.orderService.Checkout(c.Request.Context(), userID, orderID, &req)
	if err != nil {
		handleServiceError(c, err, i18n.KeyOrderNotFound)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyOrderCompleted),
		"order":   order,
	})
}

// DELETE /orders/:id
func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	orderID, ok := parseIDParam(c, "id", i18n.KeyOrderNotFound)
	if !ok {
		return
	}

	if err := h.orderService.DeleteOrder(c.Request.Context(), userID, orderID); err != nil {
		handleServiceError(c, err, i18n.KeyOrderNotFound)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyOrderDeleted),
	})
}
