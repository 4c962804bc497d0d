// internal/handlers/cart.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/storefront-api/internal/i18n"
	"github.com/javajoker/storefront-api/internal/services"
	"github.com/javajoker/storefront-api/internal/utils"
)

type CartHandler struct {
	cartService *services.CartService
}

func NewCartHandler(cartService *services.CartService) *CartHandler {
	return &CartHandler{
		cartService: cartService,
	}
}

// GET /api/cart
func (h *CartHandler) GetCart(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	cart, err := h.cartService.GetCart(c.Request.Context(), user.ID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, cart)
}

// POST /api/cart/add
func (h *CartHandler) AddItem(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req services.AddToCartRequest
	if !bindJSON(c, &req) {
		return
	}

	cart, err := h.cartService.AddItem(c.Request.Context(), user.ID, &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, cart)
}

// PUT /api/cart/:productId
func (h *CartHandler) UpdateItem(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	productID, ok := uuidParam(c, "productId", i18n.KeyCartItemNotFound)
	if !ok {
		return
	}

	var req services.UpdateCartItemRequest
	if !bindJSON(c, &req) {
		return
	}

	cart, err := h.cartService.UpdateItem(c.Request.Context(), user.ID, productID, &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, cart)
}

// DELETE /api/cart/:productId
func (h *CartHandler) RemoveItem(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	productID, ok := uuidParam(c, "productId", i18n.KeyCartItemNotFound)
	if !ok {
		return
	}

	cart, err := h.cartService.RemoveItem(c.Request.Context(), user.ID, productID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, cart)
}

// DELETE /api/cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	cart, err := h.cartService.Clear(c.Request.Context(), user.ID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.APIResponse{
		Success: true,
		Message: i18n.T(utils.GetLangFromContext(c), i18n.KeyCartCleared),
		Data:    cart,
	})
}
