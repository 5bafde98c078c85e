package controllers

import (
	"strconv"

	"github.com/gabrielmaialva33/giftcard-platform-api/config"
	"github.com/gabrielmaialva33/giftcard-platform-api/services"
	"github.com/gabrielmaialva33/giftcard-platform-api/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var (
	ledgerService     *services.LedgerService
	giftCardService   *services.GiftCardService
	commissionService *services.CommissionService
	webhookToken      string
)

// InitServices wires the controller layer to its services. Called once from
// main after the database is up.
func InitServices(db *gorm.DB, gw services.PaymentGateway, cfg *config.Config) {
	ledgerService = services.NewLedgerService(db)
	giftCardService = services.NewGiftCardService(db, ledgerService)
	commissionService = services.NewCommissionService(db, gw, cfg.ChargeBillingType, cfg.ChargeDueDays)
	webhookToken = cfg.GatewayWebhookToken
}

// parseIDParam reads a numeric path parameter
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	value, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || value == 0 {
		utils.BadRequest(c, "Invalid "+name+" parameter", nil)
		return 0, false
	}
	return uint(value), true
}

// parseIDQuery reads an optional numeric query parameter; zero means absent
func parseIDQuery(c *gin.Context, name string) uint {
	value, err := strconv.ParseUint(c.Query(name), 10, 64)
	if err != nil {
		return 0
	}
	return uint(value)
}
