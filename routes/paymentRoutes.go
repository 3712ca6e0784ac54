package routes

import (
	"github.com/Kariqs/myfood-api/controllers"
	"github.com/gin-gonic/gin"
)

func PaymentRoutes(server *gin.Engine, paymentController *controllers.PaymentController, requireAuth gin.HandlerFunc) {
	server.GET("/payments/providers", paymentController.Providers)

	payments := server.Group("/payments", requireAuth)
	{
		payments.POST("/create-order", paymentController.CreateOrder)
		payments.POST("/capture", paymentController.Capture)
	}
}
