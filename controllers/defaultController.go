package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func GetHome(ctx *gin.Context) {
	message := `Welcome to MyFood API. Order food, pay with PayPal or Razorpay, track delivery.

The following are the endpoints for this API:

AUTH
- POST "/auth/signup" - Create user account
- POST "/auth/login" - Access user account

MENU
- GET "/menu" - Get available menu items
- GET "/menu/:id" - Get menu item by ID
- POST "/menu" - Create menu item (admin)

CART
- GET "/cart" - Get cart
- POST "/cart/items" - Add item to cart
- PUT "/cart/items/:menuItemId" - Set item quantity
- DELETE "/cart/items/:menuItemId" - Remove item
- DELETE "/cart" - Clear cart
- GET "/cart/total" - Price the cart

PAYMENTS
- GET "/payments/providers" - List payment providers
- POST "/payments/create-order" - Open a provider payment order
- POST "/payments/capture" - Capture or verify a payment

ORDERS
- POST "/orders" - Get the order funded by a captured payment
- GET "/orders" - Get all orders (admin)
- GET "/orders/my-orders" - Get my orders
- GET "/orders/:id" - Get order by ID
- PUT "/orders/:id/status" - Update order status (admin)`

	ctx.JSON(http.StatusOK, gin.H{
		"message": message,
	})
}
