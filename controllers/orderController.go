package controllers

import (
	"net/http"

	"github.com/Kariqs/myfood-api/middlewares"
	"github.com/Kariqs/myfood-api/models"
	"github.com/Kariqs/myfood-api/services"
	"github.com/gin-gonic/gin"
)

type OrderController struct {
	orders   *services.OrderService
	checkout *services.CheckoutService
}

func NewOrderController(orders *services.OrderService, checkout *services.CheckoutService) *OrderController {
	return &OrderController{orders: orders, checkout: checkout}
}

// createOrderRequest names the captured payment that funds the order. Items and
// address were fixed when the payment order was created, so any sent here are ignored.
type createOrderRequest struct {
	PaymentOrderID       string               `json:"paymentOrderId" binding:"required"`
	Items                []models.LineRequest `json:"items"`
	DeliveryAddress      *models.Address      `json:"deliveryAddress"`
	DeliveryInstructions string               `json:"deliveryInstructions"`
}

type updateStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
}

func (c *OrderController) CreateOrder(ctx *gin.Context) {
	var req createOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondWithError(ctx, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	order, err := c.checkout.ConfirmedOrder(ctx.Request.Context(), middlewares.UserID(ctx), req.PaymentOrderID)
	if err != nil {
		respondWithServiceError(ctx, "Unable to place order", err)
		return
	}
	ctx.JSON(http.StatusCreated, order)
}

func (c *OrderController) GetMyOrders(ctx *gin.Context) {
	orders, err := c.orders.MyOrders(ctx.Request.Context(), middlewares.UserID(ctx))
	if err != nil {
		respondWithServiceError(ctx, "Unable to fetch orders", err)
		return
	}
	ctx.JSON(http.StatusOK, orders)
}

func (c *OrderController) GetOrders(ctx *gin.Context) {
	orders, err := c.orders.All(ctx.Request.Context())
	if err != nil {
		respondWithServiceError(ctx, "Unable to fetch orders", err)
		return
	}
	ctx.JSON(http.StatusOK, orders)
}

func (c *OrderController) GetOrder(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	order, err := c.orders.Get(ctx.Request.Context(), id, middlewares.UserID(ctx), middlewares.IsAdmin(ctx))
	if err != nil {
		respondWithServiceError(ctx, "Unable to fetch order", err)
		return
	}
	ctx.JSON(http.StatusOK, order)
}

func (c *OrderController) UpdateOrderStatus(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	var req updateStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondWithError(ctx, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	order, err := c.orders.UpdateStatus(ctx.Request.Context(), id, req.Status)
	if err != nil {
		respondWithServiceError(ctx, "Unable to update order status", err)
		return
	}
	ctx.JSON(http.StatusOK, order)
}
