package controllers

import (
	"github.com/gabrielmaialva33/giftcard-platform-api/utils"
	"github.com/gin-gonic/gin"
)

// CheckBalance returns a public snapshot of a card looked up by code. No
// authentication is required; the response exposes no ledger detail.
func CheckBalance(c *gin.Context) {
	code := c.Param("code")

	snapshot, err := giftCardService.GetBalance(code)
	if err != nil {
		utils.RespondWithError(c, err)
		return
	}

	utils.Success(c, "Balance retrieved", gin.H{"balance": snapshot})
}
