package controllers

import (
	"github.com/gabrielmaialva33/giftcard-platform-api/services"
	"github.com/gabrielmaialva33/giftcard-platform-api/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// BalanceOperationRequest represents a recharge or redemption body. The card
// may be referenced by id or by code, never both.
type BalanceOperationRequest struct {
	GiftCardID      uint            `json:"gift_card_id"`
	Code            string          `json:"code"`
	EstablishmentID uint            `json:"establishment_id"`
	Amount          decimal.Decimal `json:"amount" binding:"required"`
	Description     string          `json:"description"`
}

// RechargeGiftCard adds funds to a card on behalf of an establishment
func RechargeGiftCard(c *gin.Context) {
	utils.LogInfo("RechargeGiftCard called")
	var req BalanceOperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid recharge request: %v", err)
		utils.BadRequest(c, "Invalid input", err.Error())
		return
	}

	establishment, ok := actingEstablishment(c, req.EstablishmentID)
	if !ok {
		return
	}

	result, err := giftCardService.Recharge(services.RechargeInput{
		Ref:             services.CardRef{ID: req.GiftCardID, Code: req.Code},
		EstablishmentID: establishment.ID,
		Amount:          req.Amount,
		Description:     req.Description,
	})
	if err != nil {
		utils.RespondWithError(c, err)
		return
	}

	utils.LogInfo("Gift card %d recharged by establishment %d", result.GiftCard.ID, establishment.ID)
	utils.Success(c, "Gift card recharged", result)
}

// UseGiftCard redeems value from a card on behalf of an establishment
func UseGiftCard(c *gin.Context) {
	utils.LogInfo("UseGiftCard called")
	var req BalanceOperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid redemption request: %v", err)
		utils.BadRequest(c, "Invalid input", err.Error())
		return
	}

	establishment, ok := actingEstablishment(c, req.EstablishmentID)
	if !ok {
		return
	}

	result, err := giftCardService.Use(services.UseInput{
		Ref:             services.CardRef{ID: req.GiftCardID, Code: req.Code},
		EstablishmentID: establishment.ID,
		Amount:          req.Amount,
		Description:     req.Description,
	})
	if err != nil {
		utils.RespondWithError(c, err)
		return
	}

	utils.LogInfo("Gift card %d used at establishment %d", result.GiftCard.ID, establishment.ID)
	utils.Success(c, "Gift card used", result)
}
