package routes

import (
	"github.com/Kariqs/myfood-api/controllers"
	"github.com/Kariqs/myfood-api/middlewares"
	"github.com/gin-gonic/gin"
)

func MenuRoutes(server *gin.Engine, menuController *controllers.MenuController, requireAuth gin.HandlerFunc) {
	server.GET("/menu", menuController.GetMenu)
	server.GET("/menu/:id", menuController.GetMenuItem)
	server.POST("/menu", requireAuth, middlewares.RequireAdmin(), menuController.CreateMenuItem)
}
