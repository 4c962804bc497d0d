// internal/handlers/order.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/storefront-api/internal/i18n"
	"github.com/javajoker/storefront-api/internal/models"
	"github.com/javajoker/storefront-api/internal/services"
	"github.com/javajoker/storefront-api/internal/utils"
)

const (
	defaultUserOrdersLimit  = 10
	defaultAdminOrdersLimit = 20
)

type OrderHandler struct {
	orderService *services.OrderService
}

func NewOrderHandler(orderService *services.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

// POST /api/orders
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req services.PlaceOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.PlaceOrder(c.Request.Context(), user, &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.CreatedResponse(c, order)
}

// GET /api/orders/user/orders
func (h *OrderHandler) GetUserOrders(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c, defaultUserOrdersLimit)
	orders, total, err := h.orderService.ListUserOrders(c.Request.Context(), user.ID, params)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.PaginatedResponse(c, orders, utils.NewPagination(params, total))
}

// GET /api/orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	id, ok := uuidParam(c, "id", i18n.KeyOrderNotFound)
	if !ok {
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), id, user)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, order)
}

// GET /api/orders
func (h *OrderHandler) GetAllOrders(c *gin.Context) {
	params := utils.GetPaginationParams(c, defaultAdminOrdersLimit)
	orders, total, err := h.orderService.ListAllOrders(c.Request.Context(), params)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.PaginatedResponse(c, orders, utils.NewPagination(params, total))
}

// PUT /api/orders/:id/status
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	id, ok := uuidParam(c, "id", i18n.KeyOrderNotFound)
	if !ok {
		return
	}

	var req services.UpdateOrderStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	// Validate request
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	order, err := h.orderService.UpdateOrderStatus(c.Request.Context(), id, models.OrderStatus(req.Status))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, order)
}
