// internal/handlers/payment.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/storefront-api/internal/i18n"
	"github.com/javajoker/storefront-api/internal/services"
	"github.com/javajoker/storefront-api/internal/utils"
)

type PaymentHandler struct {
	paymentService *services.PaymentService
}

func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// POST /api/orders/:id/payment-intent
func (h *PaymentHandler) CreatePaymentIntent(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	id, ok := uuidParam(c, "id", i18n.KeyOrderNotFound)
	if !ok {
		return
	}

	intent, err := h.paymentService.CreatePaymentIntent(c.Request.Context(), id, user)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, intent)
}

// POST /api/orders/:id/payment-confirm
func (h *PaymentHandler) ConfirmPayment(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	id, ok := uuidParam(c, "id", i18n.KeyOrderNotFound)
	if !ok {
		return
	}

	order, err := h.paymentService.ConfirmPayment(c.Request.Context(), id, user)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, order)
}

// POST /api/orders/:id/refund
func (h *PaymentHandler) RefundOrder(c *gin.Context) {
	id, ok := uuidParam(c, "id", i18n.KeyOrderNotFound)
	if !ok {
		return
	}

	order, err := h.paymentService.RefundOrder(c.Request.Context(), id)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, order)
}
