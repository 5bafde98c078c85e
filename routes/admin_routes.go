package routes

import (
	"github.com/gabrielmaialva33/giftcard-platform-api/controllers"
	"github.com/gabrielmaialva33/giftcard-platform-api/middleware"
	"github.com/gabrielmaialva33/giftcard-platform-api/models"
	"github.com/gin-gonic/gin"
)

// initAdminRoutes wires the platform administration routes
func initAdminRoutes(router *gin.RouterGroup) {
	admin := router.Group("")
	admin.Use(middleware.AuthMiddleware())
	admin.Use(middleware.RequireRole(models.RoleAdmin))
	{
		// Franchises
		admin.POST("/franchises", controllers.CreateFranchise)
		admin.GET("/franchises", controllers.ListFranchises)
		admin.GET("/franchises/:id", controllers.GetFranchise)
		admin.PUT("/franchises/:id", controllers.UpdateFranchise)

		// Users
		admin.POST("/users", controllers.CreateUser)
		admin.GET("/users", controllers.ListUsers)
		admin.PATCH("/users/:id/toggle", controllers.ToggleUserActive)
	}
}
