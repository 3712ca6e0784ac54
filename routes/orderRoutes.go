package routes

import (
	"github.com/Kariqs/myfood-api/controllers"
	"github.com/Kariqs/myfood-api/middlewares"
	"github.com/gin-gonic/gin"
)

func OrderRoutes(server *gin.Engine, orderController *controllers.OrderController, requireAuth gin.HandlerFunc) {
	orders := server.Group("/orders", requireAuth)
	{
		orders.POST("", orderController.CreateOrder)
		orders.GET("", middlewares.RequireAdmin(), orderController.GetOrders)
		orders.GET("/my-orders", orderController.GetMyOrders)
		orders.GET("/:id", orderController.GetOrder)
		orders.PUT("/:id/status", middlewares.RequireAdmin(), orderController.UpdateOrderStatus)
	}
}
