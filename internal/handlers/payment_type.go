// internal/handlers/payment_type.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/bangazon/bangazon-backend/internal/i18n"
	"github.com/bangazon/bangazon-backend/internal/services"
	"github.com/bangazon/bangazon-backend/internal/utils"
)

type PaymentTypeHandler struct {
	paymentTypeService *services.PaymentTypeService
}

func NewPaymentTypeHandler(paymentTypeService *services.PaymentTypeService) *PaymentTypeHandler {
	return &PaymentTypeHandler{
		paymentTypeService: paymentTypeService,
	}
}

// GET /payment-types
func (h *PaymentTypeHandler) GetPaymentTypes(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	paymentTypes, err := h.paymentTypeService.ListPaymentTypes(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err, i18n.KeyPaymentTypeInvalid)
		return
	}

	utils.SuccessResponse(c, paymentTypes)
}
