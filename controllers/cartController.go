package controllers

import (
	"net/http"

	"github.com/Kariqs/myfood-api/cart"
	"github.com/Kariqs/myfood-api/middlewares"
	"github.com/Kariqs/myfood-api/services"
	"github.com/gin-gonic/gin"
)

type CartController struct {
	carts *services.CartService
}

func NewCartController(carts *services.CartService) *CartController {
	return &CartController{carts: carts}
}

type addCartItemRequest struct {
	MenuItemID uint `json:"menuItemId" binding:"required"`
	Quantity   int  `json:"quantity"`
}

type setQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

func cartResponse(c *cart.Cart) gin.H {
	return gin.H{
		"items":      c.Lines(),
		"totalCount": c.TotalCount(),
	}
}

func (c *CartController) GetCart(ctx *gin.Context) {
	userCart, err := c.carts.Get(ctx.Request.Context(), middlewares.UserID(ctx))
	if err != nil {
		respondWithServiceError(ctx, "Unable to load cart", err)
		return
	}
	sendJSONResponse(ctx, http.StatusOK, cartResponse(userCart))
}

func (c *CartController) AddItem(ctx *gin.Context) {
	var req addCartItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondWithError(ctx, http.StatusBadRequest, "Invalid input", err)
		return
	}

	userCart, err := c.carts.AddItem(ctx.Request.Context(), middlewares.UserID(ctx), req.MenuItemID, req.Quantity)
	if err != nil {
		respondWithServiceError(ctx, "Unable to add item to cart", err)
		return
	}
	sendJSONResponse(ctx, http.StatusOK, cartResponse(userCart))
}

func (c *CartController) SetQuantity(ctx *gin.Context) {
	menuItemID, ok := parseID(ctx, "menuItemId")
	if !ok {
		return
	}
	var req setQuantityRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondWithError(ctx, http.StatusBadRequest, "Invalid input", err)
		return
	}

	userCart, err := c.carts.SetQuantity(ctx.Request.Context(), middlewares.UserID(ctx), menuItemID, *req.Quantity)
	if err != nil {
		respondWithServiceError(ctx, "Unable to update cart item quantity", err)
		return
	}
	sendJSONResponse(ctx, http.StatusOK, cartResponse(userCart))
}

func (c *CartController) RemoveItem(ctx *gin.Context) {
	menuItemID, ok := parseID(ctx, "menuItemId")
	if !ok {
		return
	}

	userCart, err := c.carts.RemoveItem(ctx.Request.Context(), middlewares.UserID(ctx), menuItemID)
	if err != nil {
		respondWithServiceError(ctx, "Unable to remove cart item", err)
		return
	}
	sendJSONResponse(ctx, http.StatusOK, cartResponse(userCart))
}

func (c *CartController) ClearCart(ctx *gin.Context) {
	if err := c.carts.Clear(ctx.Request.Context(), middlewares.UserID(ctx)); err != nil {
		respondWithServiceError(ctx, "Unable to clear cart", err)
		return
	}
	sendJSONResponse(ctx, http.StatusOK, cartResponse(cart.New()))
}

// GetTotal prices the cart with current catalog prices.
func (c *CartController) GetTotal(ctx *gin.Context) {
	breakdown, err := c.carts.Total(ctx.Request.Context(), middlewares.UserID(ctx))
	if err != nil {
		respondWithServiceError(ctx, "Unable to compute cart total", err)
		return
	}
	sendJSONResponse(ctx, http.StatusOK, breakdown)
}
