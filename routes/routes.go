package routes

import (
	"github.com/gabrielmaialva33/giftcard-platform-api/controllers"
	"github.com/gabrielmaialva33/giftcard-platform-api/utils"
	"github.com/gin-gonic/gin"
)

// SetupRouter initializes and returns the Gin router with all routes
func SetupRouter() *gin.Engine {
	router := gin.New()

	router.Use(utils.LoggerMiddleware())
	router.Use(utils.RecoveryMiddleware())
	router.Use(utils.CORSMiddleware())
	router.Use(utils.RequestIDMiddleware())
	router.Use(utils.SecurityHeadersMiddleware())

	router.GET("/health", func(c *gin.Context) {
		utils.Success(c, "Service healthy", gin.H{"service": utils.AppName})
	})

	// API version group
	api := router.Group("/api/v1")
	{
		// Public routes (no authentication required). The balance check
		// lives under /public so it never shares a subtree with the
		// authenticated /gift-cards/:id routes.
		api.POST("/auth/login", controllers.Login)
		api.GET("/public/gift-cards/:code/balance", controllers.CheckBalance)
		api.POST("/webhooks/gateway", controllers.HandleGatewayWebhook)

		initPlatformRoutes(api)
		initAdminRoutes(api)
	}

	return router
}
