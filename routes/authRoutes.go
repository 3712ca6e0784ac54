package routes

import (
	"github.com/Kariqs/myfood-api/controllers"
	"github.com/gin-gonic/gin"
)

func AuthRoutes(server *gin.Engine, authController *controllers.AuthController) {
	auth := server.Group("/auth")
	{
		auth.POST("/signup", authController.Signup)
		auth.POST("/login", authController.Login)
	}
}
