package controllers

import (
	"github.com/gabrielmaialva33/giftcard-platform-api/config"
	"github.com/gabrielmaialva33/giftcard-platform-api/middleware"
	"github.com/gabrielmaialva33/giftcard-platform-api/models"
	"github.com/gabrielmaialva33/giftcard-platform-api/utils"
	"github.com/gin-gonic/gin"
)

// CreateEstablishmentRequest represents the establishment creation body
type CreateEstablishmentRequest struct {
	FranchiseID uint   `json:"franchise_id" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Category    string `json:"category"`
	Document    string `json:"document" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Phone       string `json:"phone"`
}

// CreateEstablishment registers a point of sale under a franchise. Franchise
// users may only create establishments in their own franchise.
func CreateEstablishment(c *gin.Context) {
	utils.LogInfo("CreateEstablishment called")
	var req CreateEstablishmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid establishment request: %v", err)
		utils.BadRequest(c, "Invalid input", err.Error())
		return
	}

	user, _ := middleware.CurrentUser(c)
	if user.Role == models.RoleFranchise {
		if user.FranchiseID == nil || *user.FranchiseID != req.FranchiseID {
			utils.Forbidden(c, utils.ErrForbidden)
			return
		}
	}

	if valid, msg := utils.ValidateDocument(req.Document); !valid {
		utils.BadRequest(c, msg, nil)
		return
	}

	var franchise models.Franchise
	if err := config.DB.First(&franchise, req.FranchiseID).Error; err != nil {
		utils.NotFound(c, "Franchise not found")
		return
	}
	if !franchise.IsActive {
		utils.ValidationError(c, "Franchise is not active", nil)
		return
	}

	establishment := models.Establishment{
		FranchiseID: req.FranchiseID,
		Name:        req.Name,
		Category:    req.Category,
		Document:    utils.OnlyDigits(req.Document),
		Email:       req.Email,
		Phone:       req.Phone,
		IsActive:    true,
	}
	if err := config.DB.Create(&establishment).Error; err != nil {
		utils.LogError("Failed to create establishment: %v", err)
		utils.Conflict(c, "An establishment with this document already exists", nil)
		return
	}

	utils.LogInfo("Establishment created: %d (%s) under franchise %d",
		establishment.ID, establishment.Name, establishment.FranchiseID)
	utils.Created(c, utils.MsgCreateSuccess, gin.H{"establishment": establishment})
}

// ListEstablishments returns establishments, scoped by the caller's role
func ListEstablishments(c *gin.Context) {
	pagination := utils.NewPagination(c)
	user, _ := middleware.CurrentUser(c)

	query := config.DB.Model(&models.Establishment{})
	switch user.Role {
	case models.RoleFranchise:
		if user.FranchiseID != nil {
			query = query.Where("franchise_id = ?", *user.FranchiseID)
		}
	case models.RoleEstablishment:
		if user.EstablishmentID != nil {
			query = query.Where("id = ?", *user.EstablishmentID)
		}
	default:
		if franchiseID := parseIDQuery(c, "franchise_id"); franchiseID != 0 {
			query = query.Where("franchise_id = ?", franchiseID)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.LogError("Failed to count establishments: %v", err)
		utils.InternalServerError(c, utils.ErrInternalServer, nil)
		return
	}
	pagination.SetTotal(total)

	var establishments []models.Establishment
	if err := query.Order("id DESC").Limit(pagination.Limit).Offset(pagination.Offset).
		Find(&establishments).Error; err != nil {
		utils.LogError("Failed to list establishments: %v", err)
		utils.InternalServerError(c, utils.ErrInternalServer, nil)
		return
	}

	utils.SendPaginatedResponse(c, establishments, pagination)
}

// GetEstablishment returns one establishment
func GetEstablishment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var establishment models.Establishment
	if err := config.DB.Preload("Franchise").First(&establishment, id).Error; err != nil {
		utils.NotFound(c, "Establishment not found")
		return
	}

	user, _ := middleware.CurrentUser(c)
	switch user.Role {
	case models.RoleFranchise:
		if user.FranchiseID == nil || *user.FranchiseID != establishment.FranchiseID {
			utils.Forbidden(c, utils.ErrForbidden)
			return
		}
	case models.RoleEstablishment:
		if user.EstablishmentID == nil || *user.EstablishmentID != establishment.ID {
			utils.Forbidden(c, utils.ErrForbidden)
			return
		}
	}

	utils.Success(c, "Establishment retrieved", gin.H{"establishment": establishment})
}

// UpdateEstablishmentRequest represents the updatable establishment fields
type UpdateEstablishmentRequest struct {
	Name     *string `json:"name"`
	Category *string `json:"category"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	IsActive *bool   `json:"is_active"`
}

// UpdateEstablishment patches an establishment
func UpdateEstablishment(c *gin.Context) {
	utils.LogInfo("UpdateEstablishment called")
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var establishment models.Establishment
	if err := config.DB.First(&establishment, id).Error; err != nil {
		utils.NotFound(c, "Establishment not found")
		return
	}

	user, _ := middleware.CurrentUser(c)
	if user.Role == models.RoleFranchise {
		if user.FranchiseID == nil || *user.FranchiseID != establishment.FranchiseID {
			utils.Forbidden(c, utils.ErrForbidden)
			return
		}
	}

	var req UpdateEstablishmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid input", err.Error())
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) == 0 {
		utils.BadRequest(c, "No fields to update", nil)
		return
	}

	if err := config.DB.Model(&establishment).Updates(updates).Error; err != nil {
		utils.LogError("Failed to update establishment %d: %v", id, err)
		utils.InternalServerError(c, utils.ErrInternalServer, nil)
		return
	}

	utils.LogInfo("Establishment %d updated", id)
	utils.Success(c, utils.MsgUpdateSuccess, gin.H{"establishment": establishment})
}
