package routes

import (
	"github.com/gabrielmaialva33/giftcard-platform-api/controllers"
	"github.com/gabrielmaialva33/giftcard-platform-api/middleware"
	"github.com/gabrielmaialva33/giftcard-platform-api/models"
	"github.com/gin-gonic/gin"
)

// initPlatformRoutes wires the authenticated domain routes. Role checks that
// depend on ownership happen inside the controllers; the groups here only
// gate by role.
func initPlatformRoutes(router *gin.RouterGroup) {
	protected := router.Group("")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.GET("/me", controllers.Me)
		protected.POST("/logout", controllers.Logout)
		protected.PUT("/me/password", controllers.ChangePassword)

		// Establishments
		protected.GET("/establishments", controllers.ListEstablishments)
		protected.GET("/establishments/:id", controllers.GetEstablishment)

		// Gift cards
		protected.POST("/gift-cards", controllers.CreateGiftCard)
		protected.POST("/gift-cards/batch", controllers.CreateGiftCardBatch)
		protected.GET("/gift-cards", controllers.ListGiftCards)
		protected.GET("/gift-cards/:id", controllers.GetGiftCard)
		protected.GET("/gift-cards/:id/transactions", controllers.ListGiftCardTransactions)
		protected.POST("/gift-cards/recharge", controllers.RechargeGiftCard)
		protected.POST("/gift-cards/use", controllers.UseGiftCard)

		// Commissions
		protected.GET("/commissions", controllers.ListCommissions)
		protected.GET("/commissions/:id", controllers.GetCommission)
	}

	// Establishment management and commission charging stay with the
	// franchise and the platform
	management := router.Group("")
	management.Use(middleware.AuthMiddleware())
	management.Use(middleware.RequireRole(models.RoleAdmin, models.RoleFranchise))
	{
		management.POST("/establishments", controllers.CreateEstablishment)
		management.PUT("/establishments/:id", controllers.UpdateEstablishment)

		management.POST("/commissions/:id/charge", controllers.ChargeCommission)

		// Reports
		management.GET("/reports/commissions", controllers.GenerateCommissionReport)
		management.GET("/reports/commissions/excel", controllers.DownloadCommissionReportExcel)
		management.GET("/reports/commissions/pdf", controllers.DownloadCommissionReportPDF)
	}
}
