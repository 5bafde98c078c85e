package controllers

import (
	"time"

	"github.com/gabrielmaialva33/giftcard-platform-api/config"
	"github.com/gabrielmaialva33/giftcard-platform-api/middleware"
	"github.com/gabrielmaialva33/giftcard-platform-api/models"
	"github.com/gabrielmaialva33/giftcard-platform-api/services"
	"github.com/gabrielmaialva33/giftcard-platform-api/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// actingEstablishment resolves which establishment a request acts as, given
// the caller's role, and verifies the caller may act for it. Establishment
// users always act as their own establishment; franchise users may act for
// any establishment of their franchise.
func actingEstablishment(c *gin.Context, requested uint) (*models.Establishment, bool) {
	user, _ := middleware.CurrentUser(c)

	effective := requested
	if user.Role == models.RoleEstablishment {
		if user.EstablishmentID == nil {
			utils.Forbidden(c, utils.ErrForbidden)
			return nil, false
		}
		if requested != 0 && requested != *user.EstablishmentID {
			utils.Forbidden(c, utils.ErrForbidden)
			return nil, false
		}
		effective = *user.EstablishmentID
	}
	if effective == 0 {
		utils.BadRequest(c, "establishment_id is required", nil)
		return nil, false
	}

	var establishment models.Establishment
	if err := config.DB.First(&establishment, effective).Error; err != nil {
		utils.NotFound(c, "Establishment not found")
		return nil, false
	}

	if user.Role == models.RoleFranchise {
		if user.FranchiseID == nil || *user.FranchiseID != establishment.FranchiseID {
			utils.Forbidden(c, utils.ErrForbidden)
			return nil, false
		}
	}

	return &establishment, true
}

// mayViewCard reports whether the caller may read a card and its ledger
func mayViewCard(user models.User, card *models.GiftCard) bool {
	switch user.Role {
	case models.RoleAdmin:
		return true
	case models.RoleFranchise:
		return user.FranchiseID != nil && *user.FranchiseID == card.FranchiseID
	case models.RoleEstablishment:
		return user.EstablishmentID != nil && *user.EstablishmentID == card.EstablishmentID
	}
	return false
}

// CreateGiftCardRequest represents the gift card creation body
type CreateGiftCardRequest struct {
	EstablishmentID uint            `json:"establishment_id"`
	InitialValue    decimal.Decimal `json:"initial_value" binding:"required"`
	ValidUntil      *time.Time      `json:"valid_until"`
}

// CreateGiftCard issues a single gift card
func CreateGiftCard(c *gin.Context) {
	utils.LogInfo("CreateGiftCard called")
	var req CreateGiftCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid gift card request: %v", err)
		utils.BadRequest(c, "Invalid input", err.Error())
		return
	}

	establishment, ok := actingEstablishment(c, req.EstablishmentID)
	if !ok {
		return
	}

	created, err := giftCardService.Create(services.CreateGiftCardInput{
		FranchiseID:     establishment.FranchiseID,
		EstablishmentID: establishment.ID,
		InitialValue:    req.InitialValue,
		ValidUntil:      req.ValidUntil,
	})
	if err != nil {
		utils.RespondWithError(c, err)
		return
	}

	utils.Created(c, "Gift card created", gin.H{
		"gift_card": created.GiftCard,
		"qr_code":   created.QRCode,
	})
}

// CreateGiftCardBatchRequest represents the batch creation body
type CreateGiftCardBatchRequest struct {
	EstablishmentID uint            `json:"establishment_id"`
	InitialValue    decimal.Decimal `json:"initial_value" binding:"required"`
	ValidUntil      *time.Time      `json:"valid_until"`
	Quantity        int             `json:"quantity" binding:"required"`
}

// CreateGiftCardBatch issues up to quantity cards as independent creations;
// partial success is reported, not rolled back
func CreateGiftCardBatch(c *gin.Context) {
	utils.LogInfo("CreateGiftCardBatch called")
	var req CreateGiftCardBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid batch request: %v", err)
		utils.BadRequest(c, "Invalid input", err.Error())
		return
	}

	establishment, ok := actingEstablishment(c, req.EstablishmentID)
	if !ok {
		return
	}

	result, err := giftCardService.CreateBatch(services.CreateGiftCardInput{
		FranchiseID:     establishment.FranchiseID,
		EstablishmentID: establishment.ID,
		InitialValue:    req.InitialValue,
		ValidUntil:      req.ValidUntil,
	}, req.Quantity)
	if err != nil {
		utils.RespondWithError(c, err)
		return
	}

	utils.Created(c, "Batch processed", gin.H{"batch": result})
}

// ListGiftCards returns cards scoped by the caller's role
func ListGiftCards(c *gin.Context) {
	pagination := utils.NewPagination(c)
	user, _ := middleware.CurrentUser(c)

	filters := services.GiftCardFilters{
		Status: c.Query("status"),
	}
	switch user.Role {
	case models.RoleFranchise:
		if user.FranchiseID != nil {
			filters.FranchiseID = *user.FranchiseID
		}
		filters.EstablishmentID = parseIDQuery(c, "establishment_id")
	case models.RoleEstablishment:
		if user.EstablishmentID != nil {
			filters.EstablishmentID = *user.EstablishmentID
		}
	default:
		filters.FranchiseID = parseIDQuery(c, "franchise_id")
		filters.EstablishmentID = parseIDQuery(c, "establishment_id")
	}

	cards, err := giftCardService.ListGiftCards(filters, pagination)
	if err != nil {
		utils.RespondWithError(c, err)
		return
	}

	utils.SendPaginatedResponse(c, cards, pagination)
}

// GetGiftCard returns one card
func GetGiftCard(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	card, err := ledgerService.FindByID(id)
	if err != nil {
		utils.RespondWithError(c, err)
		return
	}

	user, _ := middleware.CurrentUser(c)
	if !mayViewCard(user, card) {
		utils.Forbidden(c, utils.ErrForbidden)
		return
	}

	utils.Success(c, "Gift card retrieved", gin.H{"gift_card": card})
}

// ListGiftCardTransactions returns a card's ledger, oldest first
func ListGiftCardTransactions(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	card, err := ledgerService.FindByID(id)
	if err != nil {
		utils.RespondWithError(c, err)
		return
	}

	user, _ := middleware.CurrentUser(c)
	if !mayViewCard(user, card) {
		utils.Forbidden(c, utils.ErrForbidden)
		return
	}

	pagination := utils.NewPagination(c)
	transactions, err := ledgerService.ListTransactions(card.ID, pagination)
	if err != nil {
		utils.RespondWithError(c, err)
		return
	}

	utils.SendPaginatedResponse(c, transactions, pagination)
}
