package routes

import (
	"github.com/Kariqs/myfood-api/controllers"
	"github.com/gin-gonic/gin"
)

func CartRoutes(server *gin.Engine, cartController *controllers.CartController, requireAuth gin.HandlerFunc) {
	cart := server.Group("/cart", requireAuth)
	{
		cart.GET("", cartController.GetCart)
		cart.DELETE("", cartController.ClearCart)
		cart.GET("/total", cartController.GetTotal)
		cart.POST("/items", cartController.AddItem)
		cart.PUT("/items/:menuItemId", cartController.SetQuantity)
		cart.DELETE("/items/:menuItemId", cartController.RemoveItem)
	}
}
