package controllers

import (
	"github.com/gabrielmaialva33/giftcard-platform-api/config"
	"github.com/gabrielmaialva33/giftcard-platform-api/models"
	"github.com/gabrielmaialva33/giftcard-platform-api/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CreateFranchiseRequest represents the franchise creation body
type CreateFranchiseRequest struct {
	Name           string          `json:"name" binding:"required"`
	Document       string          `json:"document" binding:"required"`
	Email          string          `json:"email" binding:"required,email"`
	Phone          string          `json:"phone"`
	CommissionRate decimal.Decimal `json:"commission_rate" binding:"required"`
}

// CreateFranchise registers a new franchise
func CreateFranchise(c *gin.Context) {
	utils.LogInfo("CreateFranchise called")
	var req CreateFranchiseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid franchise request: %v", err)
		utils.BadRequest(c, "Invalid input", err.Error())
		return
	}

	if req.CommissionRate.IsNegative() || req.CommissionRate.GreaterThan(decimal.NewFromInt(100)) {
		utils.BadRequest(c, "Commission rate must be between 0 and 100", nil)
		return
	}
	if valid, msg := utils.ValidateDocument(req.Document); !valid {
		utils.BadRequest(c, msg, nil)
		return
	}

	franchise := models.Franchise{
		Name:           req.Name,
		Document:       utils.OnlyDigits(req.Document),
		Email:          req.Email,
		Phone:          req.Phone,
		CommissionRate: req.CommissionRate,
		IsActive:       true,
	}
	if err := config.DB.Create(&franchise).Error; err != nil {
		utils.LogError("Failed to create franchise: %v", err)
		utils.Conflict(c, "A franchise with this document already exists", nil)
		return
	}

	utils.LogInfo("Franchise created: %d (%s)", franchise.ID, franchise.Name)
	utils.Created(c, utils.MsgCreateSuccess, gin.H{"franchise": franchise})
}

// ListFranchises returns franchises, paginated
func ListFranchises(c *gin.Context) {
	pagination := utils.NewPagination(c)

	query := config.DB.Model(&models.Franchise{})
	if search := c.Query("search"); search != "" {
		query = query.Where("name ILIKE ?", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.LogError("Failed to count franchises: %v", err)
		utils.InternalServerError(c, utils.ErrInternalServer, nil)
		return
	}
	pagination.SetTotal(total)

	var franchises []models.Franchise
	if err := query.Order("id DESC").Limit(pagination.Limit).Offset(pagination.Offset).Find(&franchises).Error; err != nil {
		utils.LogError("Failed to list franchises: %v", err)
		utils.InternalServerError(c, utils.ErrInternalServer, nil)
		return
	}

	utils.SendPaginatedResponse(c, franchises, pagination)
}

// GetFranchise returns one franchise with its establishments
func GetFranchise(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var franchise models.Franchise
	if err := config.DB.Preload("Establishments").First(&franchise, id).Error; err != nil {
		utils.NotFound(c, "Franchise not found")
		return
	}

	utils.Success(c, "Franchise retrieved", gin.H{"franchise": franchise})
}

// UpdateFranchiseRequest represents the updatable franchise fields
type UpdateFranchiseRequest struct {
	Name           *string          `json:"name"`
	Email          *string          `json:"email"`
	Phone          *string          `json:"phone"`
	CommissionRate *decimal.Decimal `json:"commission_rate"`
	IsActive       *bool            `json:"is_active"`
}

// UpdateFranchise patches a franchise. Changing the commission rate only
// affects future recharges; recorded commissions keep their snapshot.
func UpdateFranchise(c *gin.Context) {
	utils.LogInfo("UpdateFranchise called")
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var franchise models.Franchise
	if err := config.DB.First(&franchise, id).Error; err != nil {
		utils.NotFound(c, "Franchise not found")
		return
	}

	var req UpdateFranchiseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid input", err.Error())
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.CommissionRate != nil {
		if req.CommissionRate.IsNegative() || req.CommissionRate.GreaterThan(decimal.NewFromInt(100)) {
			utils.BadRequest(c, "Commission rate must be between 0 and 100", nil)
			return
		}
		updates["commission_rate"] = *req.CommissionRate
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) == 0 {
		utils.BadRequest(c, "No fields to update", nil)
		return
	}

	if err := config.DB.Model(&franchise).Updates(updates).Error; err != nil {
		utils.LogError("Failed to update franchise %d: %v", id, err)
		utils.InternalServerError(c, utils.ErrInternalServer, nil)
		return
	}

	utils.LogInfo("Franchise %d updated", id)
	utils.Success(c, utils.MsgUpdateSuccess, gin.H{"franchise": franchise})
}
