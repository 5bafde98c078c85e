package controllers

import (
	"time"

	"github.com/gabrielmaialva33/giftcard-platform-api/middleware"
	"github.com/gabrielmaialva33/giftcard-platform-api/models"
	"github.com/gabrielmaialva33/giftcard-platform-api/services"
	"github.com/gabrielmaialva33/giftcard-platform-api/utils"
	"github.com/gin-gonic/gin"
)

// mayViewCommission reports whether the caller may read a commission
func mayViewCommission(user models.User, commission *models.Commission) bool {
	switch user.Role {
	case models.RoleAdmin:
		return true
	case models.RoleFranchise:
		return user.FranchiseID != nil && *user.FranchiseID == commission.FranchiseID
	case models.RoleEstablishment:
		return user.EstablishmentID != nil && *user.EstablishmentID == commission.EstablishmentID
	}
	return false
}

// ListCommissions returns commissions scoped by the caller's role
func ListCommissions(c *gin.Context) {
	pagination := utils.NewPagination(c)
	user, _ := middleware.CurrentUser(c)

	filters := services.CommissionFilters{
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

	commissions, err := commissionService.ListCommissions(filters, pagination)
	if err != nil {
		utils.RespondWithError(c, err)
		return
	}

	utils.SendPaginatedResponse(c, commissions, pagination)
}

// GetCommission returns one commission
func GetCommission(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	commission, err := commissionService.GetCommission(id)
	if err != nil {
		utils.RespondWithError(c, err)
		return
	}

	user, _ := middleware.CurrentUser(c)
	if !mayViewCommission(user, commission) {
		utils.Forbidden(c, utils.ErrForbidden)
		return
	}

	utils.Success(c, "Commission retrieved", gin.H{"commission": commission})
}

// ChargeCommissionRequest represents the optional manual charge body
type ChargeCommissionRequest struct {
	PaymentMethod string     `json:"payment_method"`
	DueDate       *time.Time `json:"due_date"`
	Description   string     `json:"description"`
}

// ChargeCommission issues a gateway charge for a pending or failed
// commission. The worker charges commissions automatically; this endpoint
// exists for manual retries and custom due dates.
func ChargeCommission(c *gin.Context) {
	utils.LogInfo("ChargeCommission called")
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req ChargeCommissionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.LogError("Invalid charge request: %v", err)
			utils.BadRequest(c, "Invalid input", err.Error())
			return
		}
	}

	commission, err := commissionService.GetCommission(id)
	if err != nil {
		utils.RespondWithError(c, err)
		return
	}

	user, _ := middleware.CurrentUser(c)
	if !mayViewCommission(user, commission) {
		utils.Forbidden(c, utils.ErrForbidden)
		return
	}

	charged, err := commissionService.RequestCharge(c.Request.Context(), services.RequestChargeInput{
		CommissionID:  id,
		PaymentMethod: req.PaymentMethod,
		DueDate:       req.DueDate,
		Description:   req.Description,
	})
	if err != nil {
		utils.RespondWithError(c, err)
		return
	}

	utils.LogInfo("Commission %d charged at gateway: %s", charged.ID, charged.GatewayChargeID)
	utils.Success(c, "Commission charge requested", gin.H{"commission": charged})
}
